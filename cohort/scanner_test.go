package cohort

import (
	"errors"
	"strings"
	"testing"

	"claimcohort/claims"
)

func TestScanDiagnosesMatchesYearAndPrefix(t *testing.T) {
	crit := DefaultCriteria()
	set := claimSet(t, claims.Inpatient, InpatientDiagnosisFields,
		claimRow{id: "A", date: "20090315", codes: map[string]string{"ICD9_DGNS_CD_1": "25000"}},
		claimRow{id: "B", date: "20080315", codes: map[string]string{"ICD9_DGNS_CD_1": "25000"}}, // wrong year
		claimRow{id: "C", date: "20090401", codes: map[string]string{"ICD9_DGNS_CD_2": "4019"}},  // not diabetes
		claimRow{id: "D", date: "20091120", codes: map[string]string{"ADMTNG_ICD9_DGNS_CD": "25002"}},
		claimRow{id: "E", date: "20090101", codes: map[string]string{"ICD9_DGNS_CD_3": "V250"}}, // prefix, not substring
	)

	hits, err := ScanDiagnoses(set, InpatientDiagnosisFields, crit)
	if err != nil {
		t.Fatalf("ScanDiagnoses: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d: %+v", len(hits), hits)
	}

	// ADMTNG_ICD9_DGNS_CD is scanned before ICD9_DGNS_CD_1.
	if hits[0] != (Hit{PatientID: "D", Date: "20091120"}) {
		t.Errorf("hits[0] = %+v", hits[0])
	}
	if hits[1] != (Hit{PatientID: "A", Date: "20090315"}) {
		t.Errorf("hits[1] = %+v", hits[1])
	}

	for _, h := range hits {
		if !strings.HasPrefix(string(h.Date), "2009") {
			t.Errorf("hit %+v outside target year", h)
		}
	}
}

func TestScanDiagnosesMultipleFieldsYieldMultipleHits(t *testing.T) {
	crit := DefaultCriteria()
	set := claimSet(t, claims.Outpatient, OutpatientDiagnosisFields,
		claimRow{id: "A", date: "20090315", codes: map[string]string{
			"ICD9_DGNS_CD_1": "25000",
			"ICD9_DGNS_CD_5": "25001",
			"ICD9_DGNS_CD_9": "25060",
		}},
	)

	hits, err := ScanDiagnoses(set, OutpatientDiagnosisFields, crit)
	if err != nil {
		t.Fatalf("ScanDiagnoses: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
}

func TestScanDiagnosesRepeatedFieldScannedTwice(t *testing.T) {
	crit := DefaultCriteria()
	set := claimSet(t, claims.Carrier, CarrierDiagnosisFields,
		claimRow{id: "A", date: "20090601", codes: map[string]string{"LINE_ICD9_DGNS_CD_11": "25000"}},
		claimRow{id: "B", date: "20090601", codes: map[string]string{"LINE_ICD9_DGNS_CD_1": "25000"}},
	)

	hits, err := ScanDiagnoses(set, CarrierDiagnosisFields, crit)
	if err != nil {
		t.Fatalf("ScanDiagnoses: %v", err)
	}

	var a, b int
	for _, h := range hits {
		switch h.PatientID {
		case "A":
			a++
		case "B":
			b++
		}
	}
	if a != 2 {
		t.Errorf("LINE_ICD9_DGNS_CD_11 listed twice: expected 2 hits for A, got %d", a)
	}
	if b != 1 {
		t.Errorf("expected 1 hit for B, got %d", b)
	}
}

func TestScanDiagnosesMissingField(t *testing.T) {
	crit := DefaultCriteria()
	set := newSet(t, claims.Inpatient,
		[]string{PatientIDField, ServiceDateField, "ICD9_DGNS_CD_1"},
		[]string{"A", "20090315", "25000"},
	)

	_, err := ScanDiagnoses(set, InpatientDiagnosisFields, crit)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if se.Set != claims.Inpatient || se.Field != "ADMTNG_ICD9_DGNS_CD" {
		t.Errorf("SchemaError = %+v", se)
	}
}

func TestScanDiagnosesMissingServiceDate(t *testing.T) {
	crit := DefaultCriteria()
	set := newSet(t, claims.Inpatient, []string{PatientIDField, "ICD9_DGNS_CD_1"},
		[]string{"A", "25000"},
	)
	_, err := ScanDiagnoses(set, []string{"ICD9_DGNS_CD_1"}, crit)
	var se *SchemaError
	if !errors.As(err, &se) || se.Field != ServiceDateField {
		t.Fatalf("expected SchemaError for %s, got %v", ServiceDateField, err)
	}
}

func TestScanAllOrderAndConcatenation(t *testing.T) {
	crit := DefaultCriteria()
	ds := emptyDataset(t)
	ds.Inpatient = claimSet(t, claims.Inpatient, InpatientDiagnosisFields,
		claimRow{id: "IN", date: "20090105", codes: map[string]string{"ICD9_DGNS_CD_1": "25000"}})
	ds.Outpatient = claimSet(t, claims.Outpatient, OutpatientDiagnosisFields,
		claimRow{id: "OUT", date: "20090205", codes: map[string]string{"ICD9_DGNS_CD_1": "25000"}})
	ds.Carrier = claimSet(t, claims.Carrier, CarrierDiagnosisFields,
		claimRow{id: "CAR", date: "20090305", codes: map[string]string{"ICD9_DGNS_CD_1": "25000"}})

	hits, err := ScanAll(ds, crit)
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	want := []string{"IN", "OUT", "CAR"}
	if len(hits) != len(want) {
		t.Fatalf("expected %d hits, got %d", len(want), len(hits))
	}
	for i, id := range want {
		if hits[i].PatientID != id {
			t.Errorf("hits[%d] = %s, want %s", i, hits[i].PatientID, id)
		}
	}
}

func TestScanAllWrapsSchemaError(t *testing.T) {
	crit := DefaultCriteria()
	ds := emptyDataset(t)
	ds.Carrier = newSet(t, claims.Carrier, []string{PatientIDField, ServiceDateField},
		[]string{"A", "20090101"})

	_, err := ScanAll(ds, crit)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if !strings.Contains(err.Error(), "scan carrier") {
		t.Errorf("error should name the record set: %v", err)
	}
}

func TestScanAllMissingSet(t *testing.T) {
	ds := emptyDataset(t)
	ds.Outpatient = nil
	if _, err := ScanAll(ds, DefaultCriteria()); err == nil {
		t.Fatal("expected error for unloaded record set")
	}
}

func TestDistinctPatients(t *testing.T) {
	hits := []Hit{
		{PatientID: "A", Date: "20090101"},
		{PatientID: "A", Date: "20090201"},
		{PatientID: "B", Date: "20090101"},
	}
	if n := DistinctPatients(hits); n != 2 {
		t.Errorf("DistinctPatients = %d, want 2", n)
	}
	if n := DistinctPatients(nil); n != 0 {
		t.Errorf("DistinctPatients(nil) = %d, want 0", n)
	}
}
