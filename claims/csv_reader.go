package claims

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVReader streams a comma-delimited claims extract whose first row is the
// column header, emitting one Record per data row.
type CSVReader struct {
	file    *os.File
	csv     *csv.Reader
	name    string
	rowNum  int64
	headers []string
}

// NewCSVReader opens path and reads its header row. name labels the record
// set in errors and in the RecordSet returned by ReadCSV.
func NewCSVReader(name, path string) (*CSVReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	r := &CSVReader{
		file: file,
		csv:  reader,
		name: name,
	}

	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func (r *CSVReader) readHeader() error {
	row, err := r.csv.Read()
	if err == io.EOF {
		// Empty file: no schema, no rows.
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s header: %w", r.name, err)
	}
	r.rowNum++

	// Header names are kept byte-for-byte; the row slice is reused.
	r.headers = append([]string(nil), row...)
	return nil
}

// Columns returns the header in file order.
func (r *CSVReader) Columns() []string {
	return r.headers
}

// Next returns the next data row keyed by header. Missing trailing values
// read as "" and extra values beyond the header are dropped. Blank lines are
// skipped. Returns nil, io.EOF when done.
func (r *CSVReader) Next() (Record, error) {
	if r.headers == nil {
		return nil, io.EOF
	}
	for {
		row, err := r.csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil, err
			}
			return nil, fmt.Errorf("read %s row %d: %w", r.name, r.rowNum+1, err)
		}
		r.rowNum++

		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}

		rec := make(Record, len(r.headers))
		for i, h := range r.headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		return rec, nil
	}
}

// RowNum returns the current CSV row number (1-based, header included).
func (r *CSVReader) RowNum() int64 {
	return r.rowNum
}

func (r *CSVReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadCSV loads a whole CSV file into memory.
func ReadCSV(name, path string) (*RecordSet, error) {
	r, err := NewCSVReader(name, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	set := &RecordSet{Name: name, Columns: append([]string(nil), r.Columns()...)}
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}
