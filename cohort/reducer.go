package cohort

import "sort"

// IndexDates maps each diagnosed patient to the earliest diagnosis date.
type IndexDates map[string]Date

// ReduceIndexDates keeps the smallest date per patient. Every patient present
// in hits appears exactly once in the result.
func ReduceIndexDates(hits []Hit) IndexDates {
	out := make(IndexDates)
	for _, h := range hits {
		cur, ok := out[h.PatientID]
		if !ok || h.Date.Before(cur) {
			out[h.PatientID] = h.Date
		}
	}
	return out
}

// Cohort maps a qualifying patient to their index date.
type Cohort map[string]Date

// PatientIDs returns the cohort members sorted.
func (c Cohort) PatientIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
