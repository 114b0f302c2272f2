package llmparse

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jinhak-lab/admitscan/internal/parser"
)

// Chunk is one table element with its deterministically resolved admission
// type. The type comes from context text preceding the table, never from
// the model.
type Chunk struct {
	Index         int
	AdmissionType string
	HTML          string
}

// contextLookback bounds how many non-empty preceding siblings are examined
// for an admission-type label.
const contextLookback = 4

// SplitChunks splits a sanitized document into one chunk per table element.
// Chunks smaller than minBytes are treated as decorative layout tables and
// dropped. Tables whose context yields no type label get a numbered
// placeholder so downstream grouping still works.
func SplitChunks(sanitized string, minBytes int) []Chunk {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return nil
	}

	var chunks []Chunk
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		tableHTML, err := goquery.OuterHtml(table)
		if err != nil || len(tableHTML) < minBytes {
			return
		}

		label, ok := resolvePrecedingType(table)
		if !ok {
			label = fmt.Sprintf("Unknown Type %d", len(chunks)+1)
		}

		chunks = append(chunks, Chunk{
			Index:         len(chunks),
			AdmissionType: label,
			HTML:          tableHTML,
		})
	})

	return chunks
}

// resolvePrecedingType scans the siblings before a table, nearest first, and
// applies the section-header heuristic to each line of their text.
func resolvePrecedingType(table *goquery.Selection) (string, bool) {
	searched := 0
	for prev := table.Prev(); prev.Length() > 0 && searched < contextLookback; prev = prev.Prev() {
		if goquery.NodeName(prev) == "table" {
			break
		}
		text := strings.TrimSpace(prev.Text())
		if text == "" {
			continue
		}
		searched++
		lines := strings.Split(text, "\n")
		for j := len(lines) - 1; j >= 0; j-- {
			if label, ok := parser.ResolveContextType(lines[j]); ok {
				return label, true
			}
		}
	}
	return "", false
}
