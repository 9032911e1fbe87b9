package claims

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates name inside dir with the given content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// writeFixture lays out a tiny but complete set of extracts in dir.
func writeFixture(t *testing.T, dir string) Paths {
	t.Helper()
	return Paths{
		Inpatient: writeFile(t, dir, "inpatient.csv",
			"DESYNPUF_ID,CLM_FROM_DT,ADMTNG_ICD9_DGNS_CD,ICD9_DGNS_CD_1\n"+
				"P1,20090310,25000,4019\n"),
		Outpatient: writeFile(t, dir, "outpatient.csv",
			"DESYNPUF_ID,CLM_FROM_DT,ADMTNG_ICD9_DGNS_CD,ICD9_DGNS_CD_1\n"+
				"P2,20090501,,25002\n"),
		Carrier: writeFile(t, dir, "carrier.csv",
			"DESYNPUF_ID,CLM_FROM_DT,LINE_ICD_DGNS_CD_1\n"),
		Beneficiary: writeFile(t, dir, "beneficiary.csv",
			"DESYNPUF_ID,BENE_BIRTH_DT\nP1,19400101\nP2,19600101\n"),
		Prescription: writeFile(t, dir, "prescription.csv",
			"DESYNPUF_ID,SRVC_DT,PROD_SRVC_ID\nP1,20090601,00093092801\n"),
		DrugCodes: writeFile(t, dir, "lovastatin.txt", "00093092801\n00185007001\n"),
	}
}

// sampleDataset returns an in-memory dataset covering every record set.
func sampleDataset() *Dataset {
	return &Dataset{
		Inpatient: &RecordSet{
			Name:    Inpatient,
			Columns: []string{"DESYNPUF_ID", "CLM_FROM_DT", "ICD9_DGNS_CD_1"},
			Records: []Record{
				{"DESYNPUF_ID": "P1", "CLM_FROM_DT": "20090310", "ICD9_DGNS_CD_1": "25000"},
				{"DESYNPUF_ID": "P2", "CLM_FROM_DT": "20090102", "ICD9_DGNS_CD_1": ""},
			},
		},
		Outpatient: &RecordSet{
			Name:    Outpatient,
			Columns: []string{"DESYNPUF_ID", "CLM_FROM_DT", "ICD9_DGNS_CD_1"},
		},
		Carrier: &RecordSet{
			Name:    Carrier,
			Columns: []string{"DESYNPUF_ID", "CLM_FROM_DT", "LINE_ICD_DGNS_CD_1"},
			Records: []Record{
				{"DESYNPUF_ID": "P3", "CLM_FROM_DT": "20091111", "LINE_ICD_DGNS_CD_1": "2501"},
			},
		},
		Beneficiary: &RecordSet{
			Name:    Beneficiary,
			Columns: []string{"DESYNPUF_ID", "BENE_BIRTH_DT"},
			Records: []Record{
				{"DESYNPUF_ID": "P1", "BENE_BIRTH_DT": "19400101"},
			},
		},
		Prescription: &RecordSet{
			Name:    Prescription,
			Columns: []string{"DESYNPUF_ID", "SRVC_DT", "PROD_SRVC_ID"},
			Records: []Record{
				{"DESYNPUF_ID": "P1", "SRVC_DT": "20090601", "PROD_SRVC_ID": "00093092801"},
			},
		},
		DrugCodes: DrugCodes{"00093092801": true, "": true},
	}
}

// assertSetEqual compares two record sets column by column and row by row.
func assertSetEqual(t *testing.T, got, want *RecordSet) {
	t.Helper()
	if got.Name != want.Name {
		t.Errorf("name: got %q, want %q", got.Name, want.Name)
	}
	if len(got.Columns) != len(want.Columns) {
		t.Fatalf("%s columns: got %v, want %v", want.Name, got.Columns, want.Columns)
	}
	for i := range want.Columns {
		if got.Columns[i] != want.Columns[i] {
			t.Errorf("%s column %d: got %q, want %q", want.Name, i, got.Columns[i], want.Columns[i])
		}
	}
	if got.Len() != want.Len() {
		t.Fatalf("%s rows: got %d, want %d", want.Name, got.Len(), want.Len())
	}
	for i, rec := range want.Records {
		for _, c := range want.Columns {
			if got.Records[i][c] != rec[c] {
				t.Errorf("%s row %d %s: got %q, want %q", want.Name, i, c, got.Records[i][c], rec[c])
			}
		}
	}
}
