package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jinhak-lab/admitscan/internal/model"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func sp(v string) *string   { return &v }

func TestParseCut(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *float64
	}{
		{"nil", nil, nil},
		{"plain number", sp("2.30"), fp(2.30)},
		{"integer grade", sp("3"), fp(3)},
		{"unit suffix", sp("2.3등급"), fp(2.3)},
		{"surrounding space", sp(" 1.85 "), fp(1.85)},
		{"no digits", sp("미발표"), nil},
		{"empty", sp(""), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCut(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestDedupeRecords_KeepsLastOccurrence(t *testing.T) {
	records := []model.AdmissionRecord{
		{Year: 2025, AdmissionType: "학생부교과전형", DepartmentName: "컴퓨터공학과", Cut70: sp("2.5")},
		{Year: 2025, AdmissionType: "학생부교과전형", DepartmentName: "물리학과", Cut70: sp("3.0")},
		// Repeat of the first key with a richer row.
		{Year: 2025, AdmissionType: "학생부교과전형", DepartmentName: "컴퓨터공학과", Cut70: sp("2.3"), Cut50: sp("2.1")},
	}

	out := dedupeRecords(records)
	assert.Len(t, out, 2)
	assert.Equal(t, "물리학과", out[0].DepartmentName)
	assert.Equal(t, "2.3", *out[1].Cut70)
	assert.NotNil(t, out[1].Cut50)
}

func TestDedupeRecords_DistinctKeysUntouched(t *testing.T) {
	records := []model.AdmissionRecord{
		{Year: 2024, AdmissionType: "논술전형", DepartmentName: "수학과"},
		{Year: 2025, AdmissionType: "논술전형", DepartmentName: "수학과"},
		{Year: 2025, AdmissionType: "학생부종합전형", DepartmentName: "수학과"},
	}
	assert.Len(t, dedupeRecords(records), 3)
}
