package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"claimcohort/claims"
	"claimcohort/config"
)

// load copies the delimited inputs into PostgreSQL tables.
func load(ctx context.Context, cfg *config.Config, batchSize int, logger zerolog.Logger, stdout io.Writer) error {
	src := &claims.CSVSource{Paths: cfg.Paths(), Logger: logger}
	ds, err := src.Load(ctx)
	if err != nil {
		return err
	}

	pool, err := claims.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	stats, err := claims.LoadPostgres(ctx, pool, ds, batchSize, logger)
	if err != nil {
		return err
	}

	for _, name := range claims.RecordSetNames {
		fmt.Fprintf(stdout, "%-13s %10d rows\n", name, stats.Rows[name])
	}
	fmt.Fprintf(stdout, "%-13s %10d rows\n", claims.DrugCodeSet, stats.DrugCodes)
	fmt.Fprintf(stdout, "\nLoaded in %s\n", stats.Elapsed.Round(time.Millisecond))
	return nil
}
