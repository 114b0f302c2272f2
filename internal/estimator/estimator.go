// Package estimator extrapolates a "100% cut" grade beyond the observed
// 70th-percentile cutoff. The formula is a hand-tuned heuristic, not a fitted
// model: the base multiplier assumes the grade spread compresses past the
// 70th percentile, and the competition tiers and waitlist coefficient have
// never been calibrated against real admission outcomes.
package estimator

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/jinhak-lab/admitscan/internal/config"
)

// Params holds the tunable extrapolation constants.
type Params struct {
	// BaseSpreadMul scales the cut50→cut70 spread when projecting past cut70.
	BaseSpreadMul float64
	// WaitlistCoef converts the capped waitlist-to-quota ratio into a
	// multiplicative bump.
	WaitlistCoef float64
	// WaitlistCap bounds the waitlist-to-quota ratio against extreme
	// outliers (departments that churn through several times their quota).
	WaitlistCap float64
}

// FromConfig builds Params from configuration. The stock constants are
// config.Load defaults, so an explicit zero here is an operator decision
// (waitlist_coef: 0 disables the waitlist bump), not an unset value.
func FromConfig(cfg config.EstimatorConfig) Params {
	return Params{
		BaseSpreadMul: cfg.BaseSpreadMul,
		WaitlistCoef:  cfg.WaitlistCoef,
		WaitlistCap:   cfg.WaitlistCap,
	}
}

// Inputs carries one record's signals for the cut100 computation.
type Inputs struct {
	Cut50 float64
	Cut70 float64
	// CompetitionRate is nil when the source row had no ratio; the school
	// average is substituted in that case.
	CompetitionRate *float64
	// Quota is floored at 1 for the waitlist ratio.
	Quota *int
	// WaitlistRank defaults to 0 when absent.
	WaitlistRank *int
	// SchoolAvgCompetition is the per-university mean of all known
	// competition rates in the same batch of records.
	SchoolAvgCompetition float64
}

// compTier maps a relative-competition lower bound (exclusive) to the tail
// compression factor applied above it.
type compTier struct {
	above  float64
	factor float64
}

// Departments much more competitive than their school's average get a
// compressed tail (strong applicants cluster tightly); much less competitive
// ones get an extended tail.
var compTiers = []compTier{
	{above: 1.50, factor: 0.85},
	{above: 1.25, factor: 0.90},
	{above: 0.80, factor: 1.00},
	{above: 0.50, factor: 1.10},
}

const floorCompFactor = 1.15

func competitionFactor(relativeComp float64) float64 {
	for _, t := range compTiers {
		if relativeComp > t.above {
			return t.factor
		}
	}
	return floorCompFactor
}

// Cut100 computes the estimated full-admit cutoff for one record, rounded to
// two decimal places. Korean grade bands run 1 (best) to 9, so cuts must be
// positive and cut70 can never sit above (numerically below) cut50.
func Cut100(in Inputs, p Params) (float64, error) {
	if in.Cut50 <= 0 || in.Cut70 <= 0 {
		return 0, eris.New("estimator: cuts must be positive")
	}
	if in.Cut70 < in.Cut50 {
		return 0, eris.Errorf("estimator: cut70 %.2f below cut50 %.2f", in.Cut70, in.Cut50)
	}

	spread := in.Cut70 - in.Cut50

	rate := in.SchoolAvgCompetition
	if in.CompetitionRate != nil {
		rate = *in.CompetitionRate
	}
	relativeComp := 1.0
	if in.SchoolAvgCompetition > 0 {
		relativeComp = rate / in.SchoolAvgCompetition
	}

	quota := 1
	if in.Quota != nil && *in.Quota > 1 {
		quota = *in.Quota
	}
	waitlist := 0
	if in.WaitlistRank != nil {
		waitlist = *in.WaitlistRank
	}
	waitlistRatio := math.Min(float64(waitlist)/float64(quota), p.WaitlistCap)
	waitlistFactor := 1 + waitlistRatio*p.WaitlistCoef

	cut100 := in.Cut70 + spread*p.BaseSpreadMul*competitionFactor(relativeComp)*waitlistFactor
	return math.Round(cut100*100) / 100, nil
}
