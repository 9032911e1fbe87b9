package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"claimcohort/claims"
	"claimcohort/cohort"
)

// Record sources accepted by SOURCE.
const (
	SourceCSV      = "csv"
	SourceParquet  = "parquet"
	SourcePostgres = "postgres"
)

// EnvPrefix namespaces every environment variable, e.g. COHORT_DATA_DIR.
const EnvPrefix = "COHORT"

type Config struct {
	Source string `mapstructure:"SOURCE"`

	DataDir          string `mapstructure:"DATA_DIR"`
	InpatientFile    string `mapstructure:"INPATIENT_FILE"`
	OutpatientFile   string `mapstructure:"OUTPATIENT_FILE"`
	CarrierFile      string `mapstructure:"CARRIER_FILE"`
	BeneficiaryFile  string `mapstructure:"BENEFICIARY_FILE"`
	PrescriptionFile string `mapstructure:"PRESCRIPTION_FILE"`
	DrugCodesFile    string `mapstructure:"DRUG_CODES_FILE"`
	ParquetDir       string `mapstructure:"PARQUET_DIR"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	TargetYear      string  `mapstructure:"TARGET_YEAR"`
	DiagnosisPrefix string  `mapstructure:"DIAGNOSIS_PREFIX"`
	MinAge          float64 `mapstructure:"MIN_AGE"`
	DrugLabel       string  `mapstructure:"DRUG_LABEL"`
}

var keys = []string{
	"SOURCE", "DATA_DIR",
	"INPATIENT_FILE", "OUTPATIENT_FILE", "CARRIER_FILE",
	"BENEFICIARY_FILE", "PRESCRIPTION_FILE", "DRUG_CODES_FILE",
	"PARQUET_DIR", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"LOG_LEVEL", "LOG_FORMAT",
	"TARGET_YEAR", "DIAGNOSIS_PREFIX", "MIN_AGE", "DRUG_LABEL",
}

// Load reads configuration from the optional file at path, then from
// COHORT_* environment variables, which take precedence. An empty path
// skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Defaults follow the extract layout of the synthetic claims release.
	v.SetDefault("SOURCE", SourceCSV)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("INPATIENT_FILE", "raw/inpatient/inpatient.txt")
	v.SetDefault("OUTPATIENT_FILE", "raw/outpatient/outpatient.txt")
	v.SetDefault("CARRIER_FILE", "raw/carrier/carrier.txt")
	v.SetDefault("BENEFICIARY_FILE", "raw/beneficiary/beneficiary.txt")
	v.SetDefault("PRESCRIPTION_FILE", "raw/prescription/prescription.txt")
	v.SetDefault("DRUG_CODES_FILE", "lookup/lovastatin.txt")
	v.SetDefault("PARQUET_DIR", "parquet")
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("TARGET_YEAR", "2009")
	v.SetDefault("DIAGNOSIS_PREFIX", "250")
	v.SetDefault("MIN_AGE", 65)
	v.SetDefault("DRUG_LABEL", "Lovastatin")

	// Unmarshal only sees env vars that are bound.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a run.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV, SourceParquet:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SOURCE is %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("SOURCE must be %q, %q, or %q, got %q",
			SourceCSV, SourceParquet, SourcePostgres, c.Source)
	}

	if len(c.TargetYear) != 4 {
		return fmt.Errorf("TARGET_YEAR must be a 4-digit year, got %q", c.TargetYear)
	}
	if _, err := cohort.ParseDate(c.TargetYear + "0101"); err != nil {
		return fmt.Errorf("TARGET_YEAR must be a 4-digit year, got %q", c.TargetYear)
	}
	if c.MinAge <= 0 {
		return fmt.Errorf("MIN_AGE must be positive, got %v", c.MinAge)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be \"json\" or \"console\", got %q", c.LogFormat)
	}
	return nil
}

// Paths resolves the per-set file names against DataDir. Absolute names are
// used as given.
func (c *Config) Paths() claims.Paths {
	resolve := func(name string) string {
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(c.DataDir, name)
	}
	return claims.Paths{
		Inpatient:    resolve(c.InpatientFile),
		Outpatient:   resolve(c.OutpatientFile),
		Carrier:      resolve(c.CarrierFile),
		Beneficiary:  resolve(c.BeneficiaryFile),
		Prescription: resolve(c.PrescriptionFile),
		DrugCodes:    resolve(c.DrugCodesFile),
	}
}

// Criteria returns the cohort rules with the configured overrides applied.
func (c *Config) Criteria() cohort.Criteria {
	crit := cohort.DefaultCriteria()
	crit.Year = c.TargetYear
	crit.DiagnosisPrefix = c.DiagnosisPrefix
	crit.MinAge = c.MinAge
	return crit
}
