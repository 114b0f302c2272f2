package llmparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jinhak-lab/admitscan/internal/config"
	"github.com/jinhak-lab/admitscan/internal/model"
	"github.com/jinhak-lab/admitscan/internal/resilience"
	"github.com/jinhak-lab/admitscan/pkg/anthropic"
)

const systemPrompt = "You extract structured admission records from Korean university admission-result HTML tables. Return only a JSON array, no prose, no markdown fences."

// The schema deliberately omits the admission track label: short structured
// labels are resolved more reliably and cheaply by the context rules, while
// row-level extraction from irregular tables is where the model earns its
// keep. The resolved label is injected after extraction.
const chunkPrompt = `University: %s

Extract every data row from the following admission-results table as a JSON array.
Each element must be exactly:
{"year": <int or null>, "department_name": <string>, "quota": <int or null>, "competition_rate": <number or null>, "waitlist_rank": <int or null>, "cut50": <string or null>, "cut70": <string or null>, "subjects": <string or null>}

Rules:
- Skip column-header rows, section-label rows, and footnote rows (※ ...).
- A competition rate written "5.2:1" is the number 5.2.
- Use null for blank or "-" cells.
- cut50 and cut70 are grade strings, keep them as printed (e.g. "2.35").
- Do not include the admission track name anywhere; it is handled separately.

Table:
%s`

// Extractor runs the LLM fallback parse for one page.
type Extractor struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// NewExtractor creates an Extractor.
func NewExtractor(client anthropic.Client, cfg config.AnthropicConfig) *Extractor {
	return &Extractor{client: client, cfg: cfg}
}

// Parse extracts records from a raw HTML page, retrying the whole pass on
// failure with a fixed delay. Per-chunk failures inside one pass are skipped;
// the pass only fails when every chunk fails.
func (e *Extractor) Parse(ctx context.Context, html, universityName string, defaultYear int) ([]model.AdmissionRecord, error) {
	return resilience.DoVal(ctx, resilience.RetryConfig{
		MaxAttempts: e.cfg.MaxRetries,
		Delay:       time.Duration(e.cfg.RetryDelaySecs) * time.Second,
		ShouldRetry: func(error) bool { return true },
		OnRetry:     resilience.RetryLogger("anthropic", "parse_page"),
	}, func(ctx context.Context) ([]model.AdmissionRecord, error) {
		return e.parseOnce(ctx, html, universityName, defaultYear)
	})
}

func (e *Extractor) parseOnce(ctx context.Context, html, universityName string, defaultYear int) ([]model.AdmissionRecord, error) {
	sanitized := Sanitize(html)
	zap.L().Debug("llmparse: sanitized page",
		zap.String("university", universityName),
		zap.Int("raw_bytes", len(html)),
		zap.Int("sanitized_bytes", len(sanitized)),
	)

	chunks := SplitChunks(sanitized, e.cfg.MinChunkBytes)
	if len(chunks) == 0 {
		zap.L().Info("llmparse: no table chunks found", zap.String("university", universityName))
		return nil, nil
	}

	var (
		mu      sync.Mutex
		results = make([][]model.AdmissionRecord, len(chunks))
		failed  int
	)

	workers := e.cfg.ChunkWorkers
	if workers <= 0 {
		workers = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chunk := range chunks {
		g.Go(func() error {
			records, err := e.extractChunk(gCtx, chunk, universityName, defaultYear)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Skip the chunk: a page with some good chunks still
				// returns partial results.
				failed++
				zap.L().Warn("llmparse: chunk extraction failed, skipping",
					zap.String("university", universityName),
					zap.Int("chunk", chunk.Index),
					zap.Error(err),
				)
				return nil
			}
			results[chunk.Index] = records
			return nil
		})
	}
	_ = g.Wait()
	if err := gCtx.Err(); err != nil {
		return nil, eris.Wrap(err, "llmparse: parse canceled")
	}

	if failed == len(chunks) {
		return nil, eris.Errorf("llmparse: all %d chunks failed for %s", len(chunks), universityName)
	}

	var records []model.AdmissionRecord
	for _, rs := range results {
		records = append(records, rs...)
	}

	zap.L().Info("llmparse: page extracted",
		zap.String("university", universityName),
		zap.Int("chunks", len(chunks)),
		zap.Int("chunks_failed", failed),
		zap.Int("records", len(records)),
	)

	return records, nil
}

func (e *Extractor) extractChunk(ctx context.Context, chunk Chunk, universityName string, defaultYear int) ([]model.AdmissionRecord, error) {
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(chunkPrompt, universityName, chunk.HTML)},
		},
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(e.cfg.Model, "llmparse")

	wire, err := decodeRecords(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "llmparse: decode chunk %d", chunk.Index)
	}

	records := make([]model.AdmissionRecord, 0, len(wire))
	for _, w := range wire {
		if strings.TrimSpace(w.DepartmentName) == "" {
			continue
		}
		rec := model.AdmissionRecord{
			Year:            defaultYear,
			AdmissionType:   chunk.AdmissionType,
			DepartmentName:  strings.TrimSpace(w.DepartmentName),
			Quota:           w.Quota.Value,
			CompetitionRate: w.CompetitionRate.Value,
			WaitlistRank:    w.WaitlistRank.Value,
			Cut50:           w.Cut50.Value,
			Cut70:           w.Cut70.Value,
			Subjects:        w.Subjects.Value,
		}
		if w.Year.Value != nil {
			rec.Year = *w.Year.Value
		}
		if !rec.HasCutSignal() {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeRecords parses the model's JSON array output, repairing common JSON
// defects (markdown fences, trailing commas, single quotes) first.
func decodeRecords(text string) ([]wireRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, eris.New("empty model response")
	}

	var wire []wireRecord
	if err := json.Unmarshal([]byte(text), &wire); err == nil {
		return wire, nil
	}

	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return nil, eris.Wrap(err, "repair json")
	}
	if err := json.Unmarshal([]byte(repaired), &wire); err != nil {
		return nil, eris.Wrap(err, "unmarshal repaired json")
	}
	return wire, nil
}
