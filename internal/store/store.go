// Package store persists extracted admission records behind a
// driver-selectable interface (PostgreSQL via pgx, SQLite via modernc).
package store

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/jinhak-lab/admitscan/internal/model"
)

// Store defines the persistence interface for the extraction pipeline.
type Store interface {
	// ReplaceRecords deletes the prior records for the batch's university
	// and year span, then inserts the batch, in one transaction.
	ReplaceRecords(ctx context.Context, batch model.Batch) (ReplaceResult, error)

	// ListRecords returns every persisted record in read-boundary shape.
	ListRecords(ctx context.Context) ([]model.StoredRecord, error)

	// ListUniversities summarizes which universities currently have records.
	ListUniversities(ctx context.Context) ([]UniversitySummary, error)

	// UpdateCut100 writes a derived estimate onto one record.
	UpdateCut100(ctx context.Context, id string, cut100 float64) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ReplaceResult reports what one ReplaceRecords call changed.
type ReplaceResult struct {
	Deleted  int
	Inserted int
}

// UniversitySummary is one row of the universities listing.
type UniversitySummary struct {
	Name    string
	Records int
	MinYear int
	MaxYear int
}

var leadingNumberRE = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseCut extracts the numeric grade from a raw cut cell. Cells usually
// hold a bare number ("2.30") but sometimes carry a unit suffix ("2.3등급");
// anything without a digit maps to NULL.
func parseCut(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := leadingNumberRE.FindString(strings.TrimSpace(*raw))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// dedupeRecords drops in-batch duplicates of the storage key
// (department, admission type, year), keeping the last occurrence. Source
// pages occasionally repeat a row across a summary table and a detail
// table; the later, more detailed row wins.
func dedupeRecords(records []model.AdmissionRecord) []model.AdmissionRecord {
	type key struct {
		dept string
		typ  string
		year int
	}
	last := make(map[key]int, len(records))
	for i, r := range records {
		last[key{r.DepartmentName, r.AdmissionType, r.Year}] = i
	}

	out := make([]model.AdmissionRecord, 0, len(last))
	for i, r := range records {
		if last[key{r.DepartmentName, r.AdmissionType, r.Year}] == i {
			out = append(out, r)
		}
	}
	return out
}
