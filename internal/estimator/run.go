package estimator

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jinhak-lab/admitscan/internal/model"
)

// RecordStore is the slice of the persistence layer the batch pass needs.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]model.StoredRecord, error)
	UpdateCut100(ctx context.Context, id string, cut100 float64) error
}

// Result summarizes one batch pass.
type Result struct {
	Scanned int
	Updated int
	Skipped int
}

// Runner recomputes cut100 across all persisted records.
type Runner struct {
	store  RecordStore
	params Params
}

// NewRunner creates a batch runner. Returns nil if store is nil.
func NewRunner(store RecordStore, params Params) *Runner {
	if store == nil {
		return nil
	}
	return &Runner{store: store, params: params}
}

// Run loads every persisted record, computes each university's average
// competition rate, and writes a cut100 estimate for every record carrying
// both observed cuts. Records missing a cut, or failing the edge checks,
// are skipped without touching the stored row. A non-empty filter restricts
// updates to universities whose name contains it; averages still come from
// each university's own records.
func (r *Runner) Run(ctx context.Context, filter string) (Result, error) {
	records, err := r.store.ListRecords(ctx)
	if err != nil {
		return Result{}, eris.Wrap(err, "estimator: list records")
	}

	averages := schoolAverages(records)

	var res Result
	for _, rec := range records {
		if filter != "" && !strings.Contains(rec.UniversityName, filter) {
			continue
		}
		res.Scanned++
		if rec.Cut50 == nil || rec.Cut70 == nil {
			res.Skipped++
			continue
		}

		cut100, err := Cut100(Inputs{
			Cut50:                *rec.Cut50,
			Cut70:                *rec.Cut70,
			CompetitionRate:      rec.CompetitionRate,
			Quota:                rec.Quota,
			WaitlistRank:         rec.WaitlistRank,
			SchoolAvgCompetition: averages[rec.UniversityName],
		}, r.params)
		if err != nil {
			zap.L().Debug("skipping record",
				zap.String("university", rec.UniversityName),
				zap.String("department", rec.DepartmentName),
				zap.Error(err),
			)
			res.Skipped++
			continue
		}

		if err := r.store.UpdateCut100(ctx, rec.ID, cut100); err != nil {
			return res, eris.Wrapf(err, "estimator: update record %s", rec.ID)
		}
		res.Updated++
	}

	zap.L().Info("cut100 pass complete",
		zap.Int("scanned", res.Scanned),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// schoolAverages computes the mean of all known competition rates per
// university. Universities with no known rates map to 0, which the pure
// function treats as "no signal" (relativeComp pinned to 1.0).
func schoolAverages(records []model.StoredRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.CompetitionRate == nil {
			continue
		}
		sums[rec.UniversityName] += *rec.CompetitionRate
		counts[rec.UniversityName]++
	}

	averages := make(map[string]float64, len(sums))
	for name, sum := range sums {
		averages[name] = sum / float64(counts[name])
	}
	return averages
}
