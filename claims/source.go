package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Source loads every input of a cohort run into memory.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Paths locates the delimited input files.
type Paths struct {
	Inpatient    string
	Outpatient   string
	Carrier      string
	Beneficiary  string
	Prescription string
	DrugCodes    string
}

// Path returns the file for a record set name.
func (p Paths) Path(name string) string {
	switch name {
	case Inpatient:
		return p.Inpatient
	case Outpatient:
		return p.Outpatient
	case Carrier:
		return p.Carrier
	case Beneficiary:
		return p.Beneficiary
	case Prescription:
		return p.Prescription
	case DrugCodeSet:
		return p.DrugCodes
	}
	return ""
}

// CSVSource reads the delimited claims extracts.
type CSVSource struct {
	Paths  Paths
	Logger zerolog.Logger
}

func (s *CSVSource) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}
	for _, name := range RecordSetNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		set, err := ReadCSV(name, s.Paths.Path(name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		*ds.setSlot(name) = set
		s.Logger.Debug().Str("set", name).Int("rows", set.Len()).Dur("elapsed", time.Since(start)).Msg("record set loaded")
	}

	codes, err := LoadDrugCodes(s.Paths.DrugCodes)
	if err != nil {
		return nil, err
	}
	ds.DrugCodes = codes
	s.Logger.Debug().Int("codes", len(codes)).Msg("drug codes loaded")
	return ds, nil
}

// ParquetSource reads snapshots written by WriteSnapshots.
type ParquetSource struct {
	Dir    string
	Logger zerolog.Logger
}

func (s *ParquetSource) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}
	for _, name := range RecordSetNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		set, err := ReadParquet(name, SnapshotPath(s.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		*ds.setSlot(name) = set
		s.Logger.Debug().Str("set", name).Int("rows", set.Len()).Dur("elapsed", time.Since(start)).Msg("record set loaded")
	}

	codes, err := ReadDrugCodesParquet(SnapshotPath(s.Dir, DrugCodeSet))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", DrugCodeSet, err)
	}
	ds.DrugCodes = codes
	return ds, nil
}

// PostgresSource reads tables written by LoadPostgres.
type PostgresSource struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func (s *PostgresSource) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}
	for _, name := range RecordSetNames {
		start := time.Now()
		set, err := ReadTable(ctx, s.Pool, name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		*ds.setSlot(name) = set
		s.Logger.Debug().Str("set", name).Int("rows", set.Len()).Dur("elapsed", time.Since(start)).Msg("record set loaded")
	}

	codes, err := ReadDrugCodesTable(ctx, s.Pool)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", DrugCodeSet, err)
	}
	ds.DrugCodes = codes
	return ds, nil
}

// SnapshotStats summarises one WriteSnapshots call.
type SnapshotStats struct {
	Rows      map[string]int
	DrugCodes int
}

// WriteSnapshots writes every record set and the drug codes of ds into dir.
func WriteSnapshots(dir string, ds *Dataset, batchSize int) (*SnapshotStats, error) {
	stats := &SnapshotStats{Rows: make(map[string]int)}
	for _, name := range RecordSetNames {
		set := ds.Set(name)
		if set == nil {
			return nil, fmt.Errorf("snapshot %s: record set not loaded", name)
		}
		n, err := WriteParquet(SnapshotPath(dir, name), set, batchSize)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
		stats.Rows[name] = n
	}
	n, err := WriteDrugCodesParquet(SnapshotPath(dir, DrugCodeSet), ds.DrugCodes)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", DrugCodeSet, err)
	}
	stats.DrugCodes = n
	return stats, nil
}
