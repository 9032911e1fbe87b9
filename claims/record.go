package claims

// Record set names. They double as Parquet snapshot file stems and
// PostgreSQL table names.
const (
	Inpatient    = "inpatient"
	Outpatient   = "outpatient"
	Carrier      = "carrier"
	Beneficiary  = "beneficiary"
	Prescription = "prescription"
	DrugCodeSet  = "drug_codes"
)

// RecordSetNames lists the tabular inputs in load order.
var RecordSetNames = []string{Inpatient, Outpatient, Carrier, Beneficiary, Prescription}

// Record is one row keyed by column name. Records are never mutated after load.
type Record map[string]string

// RecordSet is one tabular input: its column schema and its rows in file order.
type RecordSet struct {
	Name    string
	Columns []string
	Records []Record
}

// HasColumn reports whether name is part of the set's schema.
func (s *RecordSet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (s *RecordSet) Len() int { return len(s.Records) }

// DrugCodes is the reference set of product codes for the drug of interest.
type DrugCodes map[string]bool

// Codes returns the members in no particular order.
func (d DrugCodes) Codes() []string {
	out := make([]string, 0, len(d))
	for c := range d {
		out = append(out, c)
	}
	return out
}

// Dataset is everything the cohort pipeline reads for one run.
type Dataset struct {
	Inpatient    *RecordSet
	Outpatient   *RecordSet
	Carrier      *RecordSet
	Beneficiary  *RecordSet
	Prescription *RecordSet
	DrugCodes    DrugCodes
}

// Set returns the record set with the given name, or nil.
func (d *Dataset) Set(name string) *RecordSet {
	switch name {
	case Inpatient:
		return d.Inpatient
	case Outpatient:
		return d.Outpatient
	case Carrier:
		return d.Carrier
	case Beneficiary:
		return d.Beneficiary
	case Prescription:
		return d.Prescription
	}
	return nil
}

// setSlot returns a pointer to the named field so loaders can fill a Dataset
// by name.
func (d *Dataset) setSlot(name string) **RecordSet {
	switch name {
	case Inpatient:
		return &d.Inpatient
	case Outpatient:
		return &d.Outpatient
	case Carrier:
		return &d.Carrier
	case Beneficiary:
		return &d.Beneficiary
	case Prescription:
		return &d.Prescription
	}
	return nil
}
