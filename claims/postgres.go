package claims

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// rowNumColumn preserves file order for record sets stored in PostgreSQL.
const rowNumColumn = "row_num"

// NewPool connects to PostgreSQL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// LoadStats reports what LoadPostgres wrote.
type LoadStats struct {
	Rows      map[string]int64
	DrugCodes int64
	Elapsed   time.Duration
}

// LoadPostgres replaces one table per record set, plus the drug_codes table,
// with the contents of ds. Each table is written in its own transaction using
// COPY in chunks of batchSize rows.
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool, ds *Dataset, batchSize int, logger zerolog.Logger) (*LoadStats, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	start := time.Now()
	stats := &LoadStats{Rows: make(map[string]int64)}

	for _, name := range RecordSetNames {
		set := ds.Set(name)
		if set == nil {
			return nil, fmt.Errorf("load %s: record set not loaded", name)
		}
		n, err := loadRecordSet(ctx, pool, set, batchSize)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		stats.Rows[name] = n
		logger.Info().Str("table", name).Int64("rows", n).Msg("table loaded")
	}

	n, err := loadDrugCodes(ctx, pool, ds.DrugCodes)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", DrugCodeSet, err)
	}
	stats.DrugCodes = n
	logger.Info().Str("table", DrugCodeSet).Int64("rows", n).Msg("table loaded")

	stats.Elapsed = time.Since(start)
	return stats, nil
}

// uniqueColumns drops repeated header names; a Record can only hold one value
// per name anyway.
func uniqueColumns(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if seen[c] || c == rowNumColumn {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func loadRecordSet(ctx context.Context, pool *pgxpool.Pool, set *RecordSet, batchSize int) (int64, error) {
	cols := uniqueColumns(set.Columns)
	table := pgx.Identifier{set.Name}

	var ddl strings.Builder
	fmt.Fprintf(&ddl, "CREATE TABLE %s (%s bigint PRIMARY KEY", table.Sanitize(), rowNumColumn)
	for _, c := range cols {
		fmt.Fprintf(&ddl, ", %s text", pgx.Identifier{c}.Sanitize())
	}
	ddl.WriteString(")")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+table.Sanitize()); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, ddl.String()); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	copyCols := append([]string{rowNumColumn}, cols...)
	var total int64
	pending := make([][]any, 0, batchSize)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		copied, err := tx.CopyFrom(ctx, table, copyCols, pgx.CopyFromRows(pending))
		if err != nil {
			return fmt.Errorf("copy rows: %w", err)
		}
		total += copied
		pending = pending[:0]
		return nil
	}

	for i, rec := range set.Records {
		row := make([]any, len(copyCols))
		row[0] = int64(i + 1)
		for j, c := range cols {
			row[j+1] = rec[c]
		}
		pending = append(pending, row)
		if len(pending) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	if err := tx.Commit(ctx); err != nil {
		return total, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

func loadDrugCodes(ctx context.Context, pool *pgxpool.Pool, codes DrugCodes) (int64, error) {
	table := pgx.Identifier{DrugCodeSet}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+table.Sanitize()); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, "CREATE TABLE "+table.Sanitize()+" (code text PRIMARY KEY)"); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	sorted := codes.Codes()
	sort.Strings(sorted)
	rows := make([][]any, len(sorted))
	for i, c := range sorted {
		rows[i] = []any{c}
	}
	copied, err := tx.CopyFrom(ctx, table, []string{"code"}, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy codes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return copied, fmt.Errorf("commit: %w", err)
	}
	return copied, nil
}

// ReadTable loads a record set table written by LoadPostgres, in row order.
// NULL values read as "". A table holding only row_num reads as an empty set.
func ReadTable(ctx context.Context, pool *pgxpool.Pool, name string) (*RecordSet, error) {
	var exists bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_name::text = $1)`,
		name,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("look up table %s: %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("table %s not found", name)
	}

	colRows, err := pool.Query(ctx,
		`SELECT column_name::text FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name::text = $1 AND column_name::text <> $2
		 ORDER BY ordinal_position`,
		name, rowNumColumn,
	)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", name, err)
	}
	columns, err := pgx.CollectRows(colRows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", name, err)
	}
	if len(columns) == 0 {
		return &RecordSet{Name: name}, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), pgx.Identifier{name}.Sanitize(), rowNumColumn)

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	set := &RecordSet{Name: name, Columns: columns}
	vals := make([]pgtype.Text, len(columns))
	dest := make([]any, len(columns))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", name, len(set.Records)+1, err)
		}
		rec := make(Record, len(columns))
		for i, c := range columns {
			rec[c] = vals[i].String
		}
		set.Records = append(set.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return set, nil
}

// ReadDrugCodesTable loads the drug_codes table.
func ReadDrugCodesTable(ctx context.Context, pool *pgxpool.Pool) (DrugCodes, error) {
	rows, err := pool.Query(ctx, "SELECT code FROM "+pgx.Identifier{DrugCodeSet}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", DrugCodeSet, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", DrugCodeSet, err)
	}
	codes := make(DrugCodes, len(list))
	for _, c := range list {
		codes[c] = true
	}
	return codes, nil
}
