package cohort

import (
	"claimcohort/claims"
)

// Prescription is a drug event for one patient.
type Prescription struct {
	PatientID string
	Date      Date
}

// DrugPrescriptions returns the prescriptions whose product code is in codes,
// in file order.
func DrugPrescriptions(set *claims.RecordSet, codes claims.DrugCodes, crit Criteria) ([]Prescription, error) {
	if err := requireColumns(set, crit.PatientIDField, crit.PrescriptionDateField, crit.DrugCodeField); err != nil {
		return nil, err
	}

	var out []Prescription
	for _, rec := range set.Records {
		if !codes[rec[crit.DrugCodeField]] {
			continue
		}
		out = append(out, Prescription{
			PatientID: rec[crit.PatientIDField],
			Date:      Date(rec[crit.PrescriptionDateField]),
		})
	}
	return out, nil
}

// MatchPrescriptions keeps indexed patients with at least one prescription
// strictly inside (index date, index date + 1 year). Both ends are excluded.
// Prescriptions for patients without an index date are ignored.
func MatchPrescriptions(index IndexDates, rx []Prescription) (Cohort, error) {
	out := make(Cohort)
	windowEnd := make(map[string]Date, len(index))
	for _, p := range rx {
		start, ok := index[p.PatientID]
		if !ok {
			continue
		}
		end, ok := windowEnd[p.PatientID]
		if !ok {
			var err error
			end, err = start.PlusYear()
			if err != nil {
				return nil, err
			}
			windowEnd[p.PatientID] = end
		}
		if p.Date.After(start) && p.Date.Before(end) {
			out[p.PatientID] = start
		}
	}
	return out, nil
}
