package cohort

import (
	"fmt"

	"claimcohort/claims"
)

// BirthDates maps beneficiaries to their birth date. A later row for the same
// patient replaces an earlier one.
func BirthDates(set *claims.RecordSet, crit Criteria) (map[string]Date, error) {
	if err := requireColumns(set, crit.PatientIDField, crit.BirthDateField); err != nil {
		return nil, err
	}
	out := make(map[string]Date, len(set.Records))
	for _, rec := range set.Records {
		out[rec[crit.PatientIDField]] = Date(rec[crit.BirthDateField])
	}
	return out, nil
}

// AgeAt returns the age in years at date as elapsed days divided by
// daysPerYear. It is an approximation, not a calendar year count.
func AgeAt(birth, date Date, daysPerYear float64) (float64, error) {
	days, err := DaysBetween(birth, date)
	if err != nil {
		return 0, err
	}
	return float64(days) / daysPerYear, nil
}

// FilterByAge keeps patients whose age at their index date is at least
// crit.MinAge. Patients without a birth date are dropped silently.
func FilterByAge(matched Cohort, births map[string]Date, crit Criteria) (Cohort, error) {
	out := make(Cohort)
	for id, index := range matched {
		birth, ok := births[id]
		if !ok {
			continue
		}
		age, err := AgeAt(birth, index, crit.DaysPerYear)
		if err != nil {
			return nil, fmt.Errorf("age of patient %s: %w", id, err)
		}
		if age >= crit.MinAge {
			out[id] = index
		}
	}
	return out, nil
}
