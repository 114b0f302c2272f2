// Package pipeline orchestrates the per-university fetch, parse, review, and
// persist loop.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jinhak-lab/admitscan/internal/config"
	"github.com/jinhak-lab/admitscan/internal/model"
	"github.com/jinhak-lab/admitscan/internal/parser"
	"github.com/jinhak-lab/admitscan/internal/review"
	"github.com/jinhak-lab/admitscan/internal/store"
	"github.com/jinhak-lab/admitscan/pkg/adiga"
)

// RuleParser extracts records from raw HTML without model calls.
type RuleParser func(html string, defaultYear int) []model.AdmissionRecord

// LLMParser is the fallback extractor for pages the rule parser cannot read.
type LLMParser interface {
	Parse(ctx context.Context, html, universityName string, defaultYear int) ([]model.AdmissionRecord, error)
}

// Options are the per-run flags.
type Options struct {
	// DryRun parses without persisting.
	DryRun bool
	// Filter keeps only universities whose name contains this substring.
	Filter string
	// Delay overrides the configured inter-request delay when positive.
	Delay time.Duration
	// ForceLLM skips the rule parser entirely.
	ForceLLM bool
	// Interactive routes every batch through the terminal reviewer.
	Interactive bool
}

// Pipeline runs the extraction loop. Universities are processed one at a
// time: the inter-request delay is a politeness policy against the source
// site, and interactive review only makes sense one session at a time.
type Pipeline struct {
	cfg     *config.Config
	fetcher adiga.Fetcher
	rules   RuleParser
	llm     LLMParser
	store   store.Store

	newTerminal func() review.Terminal
}

// New wires a pipeline. llm may be nil when no API key is configured; the
// fallback then degrades to keeping whatever the rule parser produced.
func New(cfg *config.Config, fetcher adiga.Fetcher, llm LLMParser, st store.Store) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		fetcher:     fetcher,
		rules:       parser.Parse,
		llm:         llm,
		store:       st,
		newTerminal: func() review.Terminal { return review.NewStdTerminal() },
	}
}

// Run processes every configured university matching the filter. Per-
// university errors are logged and counted, not fatal; the summary always
// covers everything attempted. The returned error is reserved for run-level
// failures (context cancellation, a broken review terminal).
func (p *Pipeline) Run(ctx context.Context, opts Options) (*model.RunSummary, error) {
	delay := opts.Delay
	if delay <= 0 {
		delay = p.cfg.Fetch.Delay()
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	var term review.Terminal
	if opts.Interactive {
		term = p.newTerminal()
		defer term.Close() //nolint:errcheck
	}

	summary := &model.RunSummary{}
	for _, u := range p.cfg.Universities {
		if opts.Filter != "" && !strings.Contains(u.Name, opts.Filter) {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return summary, eris.Wrap(err, "pipeline: wait for rate limit")
		}

		log := zap.L().With(zap.String("university", u.Name))
		batch, err := p.extract(ctx, u, opts)
		if err != nil {
			log.Error("university failed", zap.Error(err))
			summary.Add(u.Name, "", 0, 0, 0, model.OutcomeFailed, err)
			continue
		}
		log.Info("extracted records",
			zap.Int("records", len(batch.Records)),
			zap.String("parser", string(batch.Source)),
		)

		if opts.Interactive {
			outcome, kept, err := review.NewSession(term, u.Name, batch.Records).Run()
			if err != nil {
				return summary, eris.Wrapf(err, "pipeline: review %s", u.Name)
			}
			switch outcome {
			case review.OutcomeSkip:
				summary.Add(u.Name, batch.Source, len(batch.Records), 0, 0, model.OutcomeSkipped, nil)
				continue
			case review.OutcomeQuit:
				summary.Add(u.Name, batch.Source, len(batch.Records), 0, 0, model.OutcomeSkipped, nil)
				log.Info("run aborted by operator")
				return summary, nil
			case review.OutcomeSave:
				batch.ReplaceYears = batch.Years()
				batch.Records = kept
			}
		}

		if opts.DryRun {
			summary.Add(u.Name, batch.Source, len(batch.Records), 0, 0, model.OutcomeDryRun, nil)
			continue
		}

		res, err := p.store.ReplaceRecords(ctx, batch)
		if err != nil {
			log.Error("persist failed", zap.Error(err))
			summary.Add(u.Name, batch.Source, len(batch.Records), 0, 0, model.OutcomeFailed, err)
			continue
		}
		summary.Add(u.Name, batch.Source, len(batch.Records), res.Inserted, res.Deleted, model.OutcomeSaved, nil)
	}
	return summary, nil
}

// extract fetches one university and picks a parser. The rule parser runs
// first unless LLM mode is forced; its output is replaced by the LLM parse
// when the quality signals trip.
func (p *Pipeline) extract(ctx context.Context, u model.University, opts Options) (model.Batch, error) {
	html, err := p.fetcher.FetchUniversity(ctx, u.Code)
	if err != nil {
		return model.Batch{}, eris.Wrapf(err, "pipeline: fetch %s", u.Name)
	}

	batch := model.Batch{University: u}
	if !opts.ForceLLM {
		records := p.rules(html, p.cfg.Fetch.Year)
		if !p.needsFallback(records) {
			batch.Records = records
			batch.Source = model.ParseSourceRules
			return batch, nil
		}
		if p.llm == nil {
			zap.L().Warn("rule parse looks unreliable but no LLM parser is configured",
				zap.String("university", u.Name),
				zap.Int("records", len(records)),
			)
			batch.Records = records
			batch.Source = model.ParseSourceRules
			return batch, nil
		}
		zap.L().Info("falling back to LLM parser",
			zap.String("university", u.Name),
			zap.Int("rule_records", len(records)),
		)
	} else if p.llm == nil {
		return model.Batch{}, eris.New("pipeline: LLM mode forced but no API key configured")
	}

	records, err := p.llm.Parse(ctx, html, u.Name, p.cfg.Fetch.Year)
	if err != nil {
		return model.Batch{}, eris.Wrapf(err, "pipeline: llm parse %s", u.Name)
	}
	batch.Records = records
	batch.Source = model.ParseSourceLLM
	return batch, nil
}

// needsFallback checks the rule parser's quality signals: an implausibly low
// record count, or too many records with no admission type resolved.
func (p *Pipeline) needsFallback(records []model.AdmissionRecord) bool {
	if len(records) == 0 || len(records) < p.cfg.Fetch.MinRecords {
		return true
	}
	empty := 0
	for _, r := range records {
		if r.AdmissionType == "" {
			empty++
		}
	}
	return float64(empty)/float64(len(records)) > p.cfg.Fetch.EmptyTypeThreshold
}
