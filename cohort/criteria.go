package cohort

import "claimcohort/claims"

// Field names in the CMS DE-SynPUF claims extracts.
const (
	PatientIDField        = "DESYNPUF_ID"
	ServiceDateField      = "CLM_FROM_DT"
	PrescriptionDateField = "SRVC_DT"
	DrugCodeField         = "PROD_SRVC_ID"
	BirthDateField        = "BENE_BIRTH_DT"
)

// InpatientDiagnosisFields and OutpatientDiagnosisFields share the same layout.
var (
	InpatientDiagnosisFields = []string{
		"ADMTNG_ICD9_DGNS_CD", "ICD9_DGNS_CD_1", "ICD9_DGNS_CD_2", "ICD9_DGNS_CD_3",
		"ICD9_DGNS_CD_4", "ICD9_DGNS_CD_5", "ICD9_DGNS_CD_6", "ICD9_DGNS_CD_7",
		"ICD9_DGNS_CD_8", "ICD9_DGNS_CD_9", "ICD9_DGNS_CD_10",
	}
	OutpatientDiagnosisFields = []string{
		"ADMTNG_ICD9_DGNS_CD", "ICD9_DGNS_CD_1", "ICD9_DGNS_CD_2", "ICD9_DGNS_CD_3",
		"ICD9_DGNS_CD_4", "ICD9_DGNS_CD_5", "ICD9_DGNS_CD_6", "ICD9_DGNS_CD_7",
		"ICD9_DGNS_CD_8", "ICD9_DGNS_CD_9", "ICD9_DGNS_CD_10",
	}

	// CarrierDiagnosisFields lists LINE_ICD9_DGNS_CD_11 twice and has no
	// LINE_ICD9_DGNS_CD_12. Do not deduplicate; every entry is scanned.
	CarrierDiagnosisFields = []string{
		"ICD9_DGNS_CD_1", "ICD9_DGNS_CD_2", "ICD9_DGNS_CD_3", "ICD9_DGNS_CD_4",
		"ICD9_DGNS_CD_5", "ICD9_DGNS_CD_6", "ICD9_DGNS_CD_7", "ICD9_DGNS_CD_8",
		"LINE_ICD9_DGNS_CD_1", "LINE_ICD9_DGNS_CD_2", "LINE_ICD9_DGNS_CD_3",
		"LINE_ICD9_DGNS_CD_4", "LINE_ICD9_DGNS_CD_5", "LINE_ICD9_DGNS_CD_6",
		"LINE_ICD9_DGNS_CD_7", "LINE_ICD9_DGNS_CD_8", "LINE_ICD9_DGNS_CD_9",
		"LINE_ICD9_DGNS_CD_10", "LINE_ICD9_DGNS_CD_11", "LINE_ICD9_DGNS_CD_11",
		"LINE_ICD9_DGNS_CD_13",
	}
)

// ClaimSchema pairs a claim record set with the diagnosis fields scanned in it.
type ClaimSchema struct {
	Set    string
	Fields []string
}

// Criteria holds every constant the pipeline matches on.
type Criteria struct {
	Year            string  // service-date prefix, e.g. "2009"
	DiagnosisPrefix string  // ICD-9 prefix, e.g. "250"
	MinAge          float64 // inclusive
	DaysPerYear     float64

	PatientIDField        string
	ServiceDateField      string
	PrescriptionDateField string
	DrugCodeField         string
	BirthDateField        string

	// Claims is scanned in order.
	Claims []ClaimSchema
}

// DefaultCriteria returns the diabetes / 2009 / 65+ criteria.
func DefaultCriteria() Criteria {
	return Criteria{
		Year:                  "2009",
		DiagnosisPrefix:       "250",
		MinAge:                65,
		DaysPerYear:           365,
		PatientIDField:        PatientIDField,
		ServiceDateField:      ServiceDateField,
		PrescriptionDateField: PrescriptionDateField,
		DrugCodeField:         DrugCodeField,
		BirthDateField:        BirthDateField,
		Claims: []ClaimSchema{
			{Set: claims.Inpatient, Fields: InpatientDiagnosisFields},
			{Set: claims.Outpatient, Fields: OutpatientDiagnosisFields},
			{Set: claims.Carrier, Fields: CarrierDiagnosisFields},
		},
	}
}

// requireColumns returns a SchemaError for the first field not in set's
// columns. An empty set with no header has nothing to check.
func requireColumns(set *claims.RecordSet, fields ...string) error {
	if len(set.Columns) == 0 && len(set.Records) == 0 {
		return nil
	}
	for _, f := range fields {
		if !set.HasColumn(f) {
			return &SchemaError{Set: set.Name, Field: f}
		}
	}
	return nil
}
