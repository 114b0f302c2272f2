package model

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// UniversityOutcome describes how one university ended the run.
type UniversityOutcome string

const (
	OutcomeSaved   UniversityOutcome = "saved"
	OutcomeSkipped UniversityOutcome = "skipped"
	OutcomeFailed  UniversityOutcome = "failed"
	OutcomeDryRun  UniversityOutcome = "dry_run"
)

// RunSummary accumulates counters across a fetch run. It is always rendered
// at the end of the run, even when some universities failed.
type RunSummary struct {
	rows []summaryRow

	Processed int
	Failed    int
	Skipped   int
	Records   int
	Inserted  int
	Deleted   int
}

type summaryRow struct {
	university string
	source     ParseSource
	records    int
	inserted   int
	deleted    int
	outcome    UniversityOutcome
	err        string
}

// Add records the outcome for one university.
func (s *RunSummary) Add(university string, source ParseSource, records, inserted, deleted int, outcome UniversityOutcome, err error) {
	row := summaryRow{
		university: university,
		source:     source,
		records:    records,
		inserted:   inserted,
		deleted:    deleted,
		outcome:    outcome,
	}
	if err != nil {
		row.err = err.Error()
	}
	s.rows = append(s.rows, row)

	s.Processed++
	s.Records += records
	s.Inserted += inserted
	s.Deleted += deleted
	switch outcome {
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// Render writes the summary table to w.
func (s *RunSummary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"University", "Parser", "Records", "Inserted", "Deleted", "Outcome", "Error"})
	for _, r := range s.rows {
		src := ""
		if r.source != "" {
			src = string(r.source)
		}
		t.AppendRow(table.Row{r.university, src, r.records, r.inserted, r.deleted, string(r.outcome), r.err})
	}
	t.AppendFooter(table.Row{"total", "", s.Records, s.Inserted, s.Deleted, "", ""})
	t.Render()
}
