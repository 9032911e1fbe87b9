package cohort

import (
	"testing"

	"claimcohort/claims"
)

// newSet builds a record set from a header and positional rows.
func newSet(t *testing.T, name string, cols []string, rows ...[]string) *claims.RecordSet {
	t.Helper()
	set := &claims.RecordSet{Name: name, Columns: cols}
	for i, row := range rows {
		if len(row) != len(cols) {
			t.Fatalf("%s row %d: got %d values, want %d", name, i, len(row), len(cols))
		}
		rec := make(claims.Record, len(cols))
		for j, c := range cols {
			rec[c] = row[j]
		}
		set.Records = append(set.Records, rec)
	}
	return set
}

// claimColumns returns the id/date columns followed by fields, skipping
// duplicates so the header stays valid.
func claimColumns(fields []string) []string {
	cols := []string{PatientIDField, ServiceDateField}
	seen := map[string]bool{}
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			cols = append(cols, f)
		}
	}
	return cols
}

// claimSet builds a claim record set where each entry sets one diagnosis
// field and leaves the rest empty.
func claimSet(t *testing.T, name string, fields []string, rows ...claimRow) *claims.RecordSet {
	t.Helper()
	cols := claimColumns(fields)
	set := &claims.RecordSet{Name: name, Columns: cols}
	for _, r := range rows {
		rec := make(claims.Record, len(cols))
		for _, c := range cols {
			rec[c] = ""
		}
		rec[PatientIDField] = r.id
		rec[ServiceDateField] = r.date
		for f, v := range r.codes {
			rec[f] = v
		}
		set.Records = append(set.Records, rec)
	}
	return set
}

type claimRow struct {
	id    string
	date  string
	codes map[string]string
}

var (
	rxColumns   = []string{PatientIDField, PrescriptionDateField, DrugCodeField}
	beneColumns = []string{PatientIDField, BirthDateField}
)

// emptyDataset returns a dataset with headers but no rows.
func emptyDataset(t *testing.T) *claims.Dataset {
	t.Helper()
	return &claims.Dataset{
		Inpatient:    claimSet(t, claims.Inpatient, InpatientDiagnosisFields),
		Outpatient:   claimSet(t, claims.Outpatient, OutpatientDiagnosisFields),
		Carrier:      claimSet(t, claims.Carrier, CarrierDiagnosisFields),
		Beneficiary:  newSet(t, claims.Beneficiary, beneColumns),
		Prescription: newSet(t, claims.Prescription, rxColumns),
		DrugCodes:    claims.DrugCodes{},
	}
}
