package cohort

import (
	"fmt"
	"strings"

	"claimcohort/claims"
)

// Hit is one diagnosis match: a patient and the service date of the claim
// whose diagnosis field matched. A claim matching in several fields yields
// several hits.
type Hit struct {
	PatientID string
	Date      Date
}

// ScanDiagnoses returns a hit for every (record, field) pair whose service
// date starts with crit.Year and whose field value starts with
// crit.DiagnosisPrefix. Fields are visited in the given order, records in
// file order within each field; repeated field names are scanned again.
func ScanDiagnoses(set *claims.RecordSet, fields []string, crit Criteria) ([]Hit, error) {
	if err := requireColumns(set, crit.PatientIDField, crit.ServiceDateField); err != nil {
		return nil, err
	}
	if err := requireColumns(set, fields...); err != nil {
		return nil, err
	}

	var hits []Hit
	for _, field := range fields {
		for _, rec := range set.Records {
			date := rec[crit.ServiceDateField]
			if !strings.HasPrefix(date, crit.Year) {
				continue
			}
			if !strings.HasPrefix(rec[field], crit.DiagnosisPrefix) {
				continue
			}
			hits = append(hits, Hit{PatientID: rec[crit.PatientIDField], Date: Date(date)})
		}
	}
	return hits, nil
}

// ScanAll concatenates the hits of every claim schema in crit.Claims, in order.
func ScanAll(ds *claims.Dataset, crit Criteria) ([]Hit, error) {
	var all []Hit
	for _, cs := range crit.Claims {
		set := ds.Set(cs.Set)
		if set == nil {
			return nil, fmt.Errorf("scan %s: record set not loaded", cs.Set)
		}
		hits, err := ScanDiagnoses(set, cs.Fields, crit)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", cs.Set, err)
		}
		all = append(all, hits...)
	}
	return all, nil
}

// DistinctPatients counts the distinct patient ids among hits.
func DistinctPatients(hits []Hit) int {
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		seen[h.PatientID] = struct{}{}
	}
	return len(seen)
}
