package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinhak-lab/admitscan/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_ReplaceAndList(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	res, err := s.ReplaceRecords(ctx, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, ReplaceResult{Deleted: 0, Inserted: 2}, res)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Ordered by department within the type: 물리학과 before 컴퓨터공학과.
	assert.Equal(t, "물리학과", records[0].DepartmentName)
	assert.Nil(t, records[0].Cut50)
	require.NotNil(t, records[0].Cut70)
	assert.Equal(t, 3.1, *records[0].Cut70) // numeric part of "3.1등급"

	assert.Equal(t, "컴퓨터공학과", records[1].DepartmentName)
	require.NotNil(t, records[1].Cut50)
	assert.Equal(t, 2.10, *records[1].Cut50)
	assert.Equal(t, 20, *records[1].Quota)
	assert.Nil(t, records[1].Cut100)
}

func TestSQLiteStore_ReplaceIsIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRecords(ctx, sampleBatch())
	require.NoError(t, err)

	// Re-running the same batch replaces rather than accumulates.
	res, err := s.ReplaceRecords(ctx, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, ReplaceResult{Deleted: 2, Inserted: 2}, res)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLiteStore_EmptyBatchWithPinnedYearsClears(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRecords(ctx, sampleBatch())
	require.NoError(t, err)

	// Review can delete every record; the pinned span still replaces.
	empty := model.Batch{
		University:   sampleBatch().University,
		Source:       model.ParseSourceRules,
		ReplaceYears: []int{2025},
	}
	res, err := s.ReplaceRecords(ctx, empty)
	require.NoError(t, err)
	assert.Equal(t, ReplaceResult{Deleted: 2, Inserted: 0}, res)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_ReplaceScopedToYear(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	c70 := "2.5"
	prior := model.Batch{
		University: model.University{Name: "한국대학교"},
		Source:     model.ParseSourceRules,
		Records: []model.AdmissionRecord{
			{Year: 2024, AdmissionType: "논술전형", DepartmentName: "수학과", Cut70: &c70},
		},
	}
	_, err := s.ReplaceRecords(ctx, prior)
	require.NoError(t, err)

	// A 2025-only batch must leave the 2024 rows alone.
	res, err := s.ReplaceRecords(ctx, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Deleted)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestSQLiteStore_ReplaceDedupesWithinBatch(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	c1, c2 := "2.5", "2.3"
	batch := model.Batch{
		University: model.University{Name: "한국대학교"},
		Source:     model.ParseSourceLLM,
		Records: []model.AdmissionRecord{
			{Year: 2025, AdmissionType: "논술전형", DepartmentName: "수학과", Cut70: &c1},
			{Year: 2025, AdmissionType: "논술전형", DepartmentName: "수학과", Cut70: &c2},
		},
	}

	res, err := s.ReplaceRecords(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2.3, *records[0].Cut70)
}

func TestSQLiteStore_ListUniversities(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRecords(ctx, sampleBatch())
	require.NoError(t, err)

	c70 := "1.9"
	other := model.Batch{
		University: model.University{Name: "서울과학대학교"},
		Source:     model.ParseSourceRules,
		Records: []model.AdmissionRecord{
			{Year: 2024, AdmissionType: "학생부종합전형", DepartmentName: "화학과", Cut70: &c70},
			{Year: 2025, AdmissionType: "학생부종합전형", DepartmentName: "화학과", Cut70: &c70},
		},
	}
	_, err = s.ReplaceRecords(ctx, other)
	require.NoError(t, err)

	summaries, err := s.ListUniversities(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, UniversitySummary{Name: "서울과학대학교", Records: 2, MinYear: 2024, MaxYear: 2025}, summaries[0])
	assert.Equal(t, UniversitySummary{Name: "한국대학교", Records: 2, MinYear: 2025, MaxYear: 2025}, summaries[1])
}

func TestSQLiteStore_UpdateCut100(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.ReplaceRecords(ctx, sampleBatch())
	require.NoError(t, err)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	require.NoError(t, s.UpdateCut100(ctx, records[0].ID, 2.47))

	records, err = s.ListRecords(ctx)
	require.NoError(t, err)
	require.NotNil(t, records[0].Cut100)
	assert.Equal(t, 2.47, *records[0].Cut100)
}

func TestSQLiteStore_UpdateCut100_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	err := s.UpdateCut100(context.Background(), "no-such-id", 2.47)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
