package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"claimcohort/claims"
	"claimcohort/config"
)

// convert snapshots every delimited input into outDir as Parquet.
func convert(ctx context.Context, cfg *config.Config, outDir string, batchSize int, logger zerolog.Logger, stdout io.Writer) error {
	start := time.Now()
	paths := cfg.Paths()

	src := &claims.CSVSource{Paths: paths, Logger: logger}
	ds, err := src.Load(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	stats, err := claims.WriteSnapshots(outDir, ds, batchSize)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Output:  %s\n\n", outDir)
	var inTotal, outTotal int64
	names := append(append([]string(nil), claims.RecordSetNames...), claims.DrugCodeSet)
	for _, name := range names {
		rows := stats.DrugCodes
		if name != claims.DrugCodeSet {
			rows = stats.Rows[name]
		}
		in := fileSize(paths.Path(name))
		out := fileSize(claims.SnapshotPath(outDir, name))
		inTotal += in
		outTotal += out
		fmt.Fprintf(stdout, "%-13s %10d rows  %8.1f KB -> %8.1f KB\n",
			name, rows, float64(in)/1024, float64(out)/1024)
	}
	if outTotal > 0 {
		fmt.Fprintf(stdout, "\nCompression: %.1fx\n", float64(inTotal)/float64(outTotal))
	}

	logger.Info().Dur("elapsed", time.Since(start)).Str("out", outDir).Msg("conversion complete")
	return nil
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
