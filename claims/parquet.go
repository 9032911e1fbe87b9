package claims

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Key/value metadata stored in every record-set snapshot.
const (
	metaRecordSet = "claimcohort.record_set"
	metaColumns   = "claimcohort.columns"
)

// SnapshotRow is one record in a Parquet snapshot. Values follow the column
// order stored in the file metadata, so a snapshot holds any claims layout
// without a per-layout Go type.
type SnapshotRow struct {
	Values []string `parquet:"values"`
}

// DrugCodeRow is one member of a drug code snapshot.
type DrugCodeRow struct {
	Code string `parquet:"code"`
}

// SnapshotPath returns the snapshot file for a record set inside dir.
func SnapshotPath(dir, name string) string {
	return filepath.Join(dir, name+".parquet")
}

// SnapshotWriter writes one record set to a Zstd-compressed Parquet file.
type SnapshotWriter struct {
	file    *os.File
	writer  *parquet.GenericWriter[SnapshotRow]
	columns []string
	count   int
}

// NewSnapshotWriter creates path and records the set name and columns in the
// file metadata.
func NewSnapshotWriter(path, name string, columns []string) (*SnapshotWriter, error) {
	cols, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("encode columns: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[SnapshotRow](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.PageBufferSize(8*1024),
		parquet.KeyValueMetadata(metaRecordSet, name),
		parquet.KeyValueMetadata(metaColumns, string(cols)),
		parquet.CreatedBy("claimcohort", "1.0", ""),
	)

	return &SnapshotWriter{
		file:    file,
		writer:  writer,
		columns: columns,
	}, nil
}

// Write appends a batch of records.
func (w *SnapshotWriter) Write(recs []Record) (int, error) {
	rows := make([]SnapshotRow, len(recs))
	for i, rec := range recs {
		vals := make([]string, len(w.columns))
		for j, c := range w.columns {
			vals[j] = rec[c]
		}
		rows[i].Values = vals
	}
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Close flushes the final row group and closes the file.
func (w *SnapshotWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the total number of rows written.
func (w *SnapshotWriter) Count() int {
	return w.count
}

// WriteParquet writes a whole record set to path in batches of batchSize.
func WriteParquet(path string, set *RecordSet, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 10000
	}
	w, err := NewSnapshotWriter(path, set.Name, set.Columns)
	if err != nil {
		return 0, err
	}
	for start := 0; start < len(set.Records); start += batchSize {
		end := min(start+batchSize, len(set.Records))
		if _, err := w.Write(set.Records[start:end]); err != nil {
			w.Close()
			return w.Count(), err
		}
	}
	if err := w.Close(); err != nil {
		return w.Count(), err
	}
	return w.Count(), nil
}

// ReadParquet loads a record-set snapshot written by SnapshotWriter.
func ReadParquet(name, path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	pf, err := parquet.OpenFile(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}
	raw, ok := pf.Lookup(metaColumns)
	if !ok {
		return nil, fmt.Errorf("parquet %s: no column metadata", path)
	}
	var columns []string
	if err := json.Unmarshal([]byte(raw), &columns); err != nil {
		return nil, fmt.Errorf("parquet %s: decode columns: %w", path, err)
	}

	reader := parquet.NewGenericReader[SnapshotRow](f)
	defer reader.Close()

	set := &RecordSet{
		Name:    name,
		Columns: columns,
		Records: make([]Record, 0, reader.NumRows()),
	}

	const readBatch = 8192
	buf := make([]SnapshotRow, readBatch)
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			vals := buf[i].Values
			if len(vals) != len(columns) {
				return nil, fmt.Errorf("parquet %s row %d: %d values for %d columns",
					path, len(set.Records)+1, len(vals), len(columns))
			}
			rec := make(Record, len(columns))
			for j, c := range columns {
				rec[c] = strings.Clone(vals[j])
			}
			set.Records = append(set.Records, rec)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, fmt.Errorf("read parquet: %w", readErr)
		}
		if n == 0 {
			break
		}
	}
	return set, nil
}

// WriteDrugCodesParquet writes the code set sorted, one row per code.
func WriteDrugCodesParquet(path string, codes DrugCodes) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}
	writer := parquet.NewGenericWriter[DrugCodeRow](file,
		parquet.Compression(&parquet.Snappy),
		parquet.KeyValueMetadata(metaRecordSet, DrugCodeSet),
	)

	sorted := codes.Codes()
	sort.Strings(sorted)
	rows := make([]DrugCodeRow, len(sorted))
	for i, c := range sorted {
		rows[i] = DrugCodeRow{Code: c}
	}
	n, err := writer.Write(rows)
	if err != nil {
		writer.Close()
		file.Close()
		return n, fmt.Errorf("write drug code rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return n, fmt.Errorf("close drug code writer: %w", err)
	}
	return n, file.Close()
}

// ReadDrugCodesParquet loads a drug code snapshot.
func ReadDrugCodesParquet(path string) (DrugCodes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[DrugCodeRow](f)
	defer reader.Close()

	codes := make(DrugCodes, reader.NumRows())
	buf := make([]DrugCodeRow, 1024)
	for {
		n, readErr := reader.Read(buf)
		for _, r := range buf[:n] {
			codes[strings.Clone(r.Code)] = true
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, fmt.Errorf("read drug codes parquet: %w", readErr)
		}
		if n == 0 {
			break
		}
	}
	return codes, nil
}
