package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompetitionRate(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"3.75:1", f(3.75)},
		{"10.5:1", f(10.5)},
		{"2.33:1", f(2.33)},
		{"7:2", f(3.5)},
		{"5.2", f(5.2)},
		{"５.２:１", f(5.2)}, // full-width digits
		{"-", nil},
		{"", nil},
		{"3.75:0", nil},
		{"abc", nil},
		{"3.75:1:2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseCompetitionRate(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseIntCell(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"20", i(20)},
		{"20명", i(20)},
		{"1,024", i(1024)},
		{"-", nil},
		{"", nil},
		{"미정", nil},
	}
	for _, tt := range tests {
		got := ParseIntCell(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, "input %q", tt.in)
			continue
		}
		require.NotNil(t, got, "input %q", tt.in)
		assert.Equal(t, *tt.want, *got, "input %q", tt.in)
	}
}

func TestParseStringCell(t *testing.T) {
	assert.Nil(t, ParseStringCell("-"))
	assert.Nil(t, ParseStringCell("  "))
	got := ParseStringCell(" 2.35 ")
	require.NotNil(t, got)
	assert.Equal(t, "2.35", *got)
}

func TestNormalizeTypeLabel(t *testing.T) {
	assert.Equal(t, "학생부종합전형(면접형)", NormalizeTypeLabel("학생부종합전형 ( 면접형 )"))
	assert.Equal(t, "서울캠퍼스 학생부종합전형(면접형)", NormalizeTypeLabel("서울캠퍼스  학생부종합전형 ( 면접형 )"))
	assert.Equal(t, "일반전형", NormalizeTypeLabel("  일반전형 "))
}

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
func s(v string) *string   { return &v }
