package cohort

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"claimcohort/claims"
)

// Result holds the output of every stage of one run.
type Result struct {
	Hits    []Hit
	Index   IndexDates
	Matched Cohort
	Retired Cohort
}

// Counts is the three-node funnel summary.
type Counts struct {
	Diagnosed int
	Matched   int
	Retired   int
}

// Counts derives the funnel. The diagnosed count comes from the raw hits,
// not from the reduced index dates.
func (r *Result) Counts() Counts {
	return Counts{
		Diagnosed: DistinctPatients(r.Hits),
		Matched:   len(r.Matched),
		Retired:   len(r.Retired),
	}
}

// Run executes scanner, reducer, matcher and age filter over ds.
func Run(ctx context.Context, ds *claims.Dataset, crit Criteria, logger zerolog.Logger) (*Result, error) {
	start := time.Now()

	hits, err := ScanAll(ds, crit)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("hits", len(hits)).Msg("diagnosis scan complete")

	index := ReduceIndexDates(hits)
	logger.Debug().Int("patients", len(index)).Msg("index dates reduced")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ds.Prescription == nil {
		return nil, fmt.Errorf("match prescriptions: record set not loaded")
	}
	rx, err := DrugPrescriptions(ds.Prescription, ds.DrugCodes, crit)
	if err != nil {
		return nil, fmt.Errorf("filter prescriptions: %w", err)
	}
	matched, err := MatchPrescriptions(index, rx)
	if err != nil {
		return nil, fmt.Errorf("match prescriptions: %w", err)
	}
	logger.Debug().Int("prescriptions", len(rx)).Int("patients", len(matched)).Msg("prescriptions matched")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ds.Beneficiary == nil {
		return nil, fmt.Errorf("filter by age: record set not loaded")
	}
	births, err := BirthDates(ds.Beneficiary, crit)
	if err != nil {
		return nil, fmt.Errorf("read birth dates: %w", err)
	}
	retired, err := FilterByAge(matched, births, crit)
	if err != nil {
		return nil, fmt.Errorf("filter by age: %w", err)
	}

	res := &Result{Hits: hits, Index: index, Matched: matched, Retired: retired}
	c := res.Counts()
	logger.Info().
		Int("diagnosed", c.Diagnosed).
		Int("matched", c.Matched).
		Int("retired", c.Retired).
		Dur("elapsed", time.Since(start)).
		Msg("cohort derived")
	return res, nil
}
