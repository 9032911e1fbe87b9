package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"claimcohort/claims"
	"claimcohort/cohort"
	"claimcohort/config"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cohortfinder",
		Short:         "Derive the diabetic, drug-treated, 65+ cohort from claims extracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (YAML or .env)")

	rootCmd.AddCommand(runCmd(stdout, stderr))
	rootCmd.AddCommand(convertCmd(stdout, stderr))
	rootCmd.AddCommand(loadCmd(stdout, stderr))
	rootCmd.AddCommand(versionCmd(stdout))
	return rootCmd
}

// setup loads config and builds the run's logger. A failure is logged to
// stderr before it is returned.
func setup(cmd *cobra.Command, stderr io.Writer) (*config.Config, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		logger := zerolog.New(stderr).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("load config")
		return nil, logger, err
	}
	return cfg, newLogger(cfg, stderr), nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level).With().Str("run_id", uuid.New().String()).Logger()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cohort pipeline and print the summary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			if src, _ := cmd.Flags().GetString("source"); src != "" {
				cfg.Source = strings.ToLower(src)
				if err := cfg.Validate(); err != nil {
					logger.Error().Err(err).Msg("invalid source")
					return err
				}
			}

			ctx, stop := signalContext()
			defer stop()

			counts, err := runCohort(ctx, cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("cohort run failed")
				return err
			}
			printSummary(stdout, cfg.DrugLabel, cfg.MinAge, counts)
			return nil
		},
	}
	cmd.Flags().String("source", "", "Record source: csv, parquet, or postgres (overrides SOURCE)")
	return cmd
}

// runCohort loads the configured dataset and derives the cohort counts.
func runCohort(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cohort.Counts, error) {
	logger.Info().Str("source", cfg.Source).Msg("loading dataset")

	var src claims.Source
	switch cfg.Source {
	case config.SourceCSV:
		src = &claims.CSVSource{Paths: cfg.Paths(), Logger: logger}
	case config.SourceParquet:
		src = &claims.ParquetSource{Dir: cfg.ParquetDir, Logger: logger}
	case config.SourcePostgres:
		pool, err := claims.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return cohort.Counts{}, err
		}
		defer pool.Close()
		src = &claims.PostgresSource{Pool: pool, Logger: logger}
	default:
		return cohort.Counts{}, fmt.Errorf("unknown source %q", cfg.Source)
	}

	ds, err := src.Load(ctx)
	if err != nil {
		return cohort.Counts{}, err
	}

	res, err := cohort.Run(ctx, ds, cfg.Criteria(), logger)
	if err != nil {
		return cohort.Counts{}, err
	}
	return res.Counts(), nil
}

// printSummary writes the funnel table. Labels are padded so the counts line
// up under "Count".
func printSummary(w io.Writer, drugLabel string, minAge float64, c cohort.Counts) {
	rows := []struct {
		label string
		n     int
	}{
		{"Node 1 (Diabetes):", c.Diagnosed},
		{"Node 2 (" + drugLabel + "):", c.Matched},
		{fmt.Sprintf("Node 3 (Age > %g):", minAge), c.Retired},
	}
	width := len("Section")
	for _, r := range rows {
		width = max(width, len(r.label))
	}
	fmt.Fprintf(w, "%-*sCount\n", width+1, "Section")
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s%d\n", width+1, r.label, r.n)
	}
}

func convertCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the delimited extracts to Parquet snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = cfg.ParquetDir
			}
			batch, _ := cmd.Flags().GetInt("batch")

			ctx, stop := signalContext()
			defer stop()

			if err := convert(ctx, cfg, out, batch, logger, stdout); err != nil {
				logger.Error().Err(err).Msg("convert failed")
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output directory (default PARQUET_DIR)")
	cmd.Flags().Int("batch", 10000, "Rows per Parquet write")
	return cmd
}

func loadCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the delimited extracts into PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				err := fmt.Errorf("DATABASE_URL is required for load")
				logger.Error().Err(err).Msg("load failed")
				return err
			}
			batch, _ := cmd.Flags().GetInt("batch")

			ctx, stop := signalContext()
			defer stop()

			if err := load(ctx, cfg, batch, logger, stdout); err != nil {
				logger.Error().Err(err).Msg("load failed")
				return err
			}
			return nil
		},
	}
	cmd.Flags().Int("batch", 500, "Rows per COPY chunk")
	return cmd
}

func versionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "cohortfinder %s\n", version)
		},
	}
}
