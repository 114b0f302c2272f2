package llmparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks_OnePerTableWithResolvedType(t *testing.T) {
	sanitized := `
	<p>[2025학년도] 서울캠퍼스 학생부종합전형 ( 면접형 )</p>
	<table><tr><td>컴퓨터공학과</td><td>20</td><td>5.2:1</td><td>3</td><td>2.10</td><td>2.35</td></tr></table>
	<p>안내문입니다</p>
	<table><tr><td>기계공학과</td><td>15</td><td>4.0:1</td><td>2</td><td>2.50</td><td>2.80</td></tr></table>`

	chunks := SplitChunks(sanitized, 10)
	require.Len(t, chunks, 2)

	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "서울캠퍼스 학생부종합전형(면접형)", chunks[0].AdmissionType)
	assert.Contains(t, chunks[0].HTML, "컴퓨터공학과")

	// No 전형-pattern in context: numbered placeholder.
	assert.Equal(t, "Unknown Type 2", chunks[1].AdmissionType)
	assert.Contains(t, chunks[1].HTML, "기계공학과")
}

func TestSplitChunks_DropsTinyTables(t *testing.T) {
	sanitized := `<table><tr><td>x</td></tr></table>`
	assert.Empty(t, SplitChunks(sanitized, 200))
}

func TestSplitChunks_ContextDoesNotCrossPreviousTable(t *testing.T) {
	sanitized := `
	<p>수시 논술전형</p>
	<table><tr><td>물리학과</td><td>8</td><td>12.5:1</td><td>0</td><td>1.80</td><td>1.95</td></tr></table>
	<table><tr><td>화학과</td><td>9</td><td>11.0:1</td><td>1</td><td>1.90</td><td>2.05</td></tr></table>`

	chunks := SplitChunks(sanitized, 10)
	require.Len(t, chunks, 2)
	assert.Equal(t, "수시 논술전형", chunks[0].AdmissionType)
	// The label before the first table must not leak past it.
	assert.Equal(t, "Unknown Type 2", chunks[1].AdmissionType)
}
