package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var (
	ratioRE      = regexp.MustCompile(`^([\d.]+)\s*:\s*([\d.]+)$`)
	intRE        = regexp.MustCompile(`-?\d+`)
	spaceRE      = regexp.MustCompile(`\s+`)
	openParenRE  = regexp.MustCompile(`\s*\(\s*`)
	closeParenRE = regexp.MustCompile(`\s*\)`)
)

// NormalizeCell folds full-width characters to their half-width forms,
// replaces non-breaking spaces, and collapses whitespace runs. Source pages
// mix full-width digits and colons into otherwise numeric cells.
func NormalizeCell(s string) string {
	s = width.Fold.String(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeTypeLabel canonicalizes an admission-type label: whitespace
// collapsed, no space around parentheses ("학생부종합전형 ( 면접형 )" →
// "학생부종합전형(면접형)").
func NormalizeTypeLabel(s string) string {
	s = NormalizeCell(s)
	s = openParenRE.ReplaceAllString(s, "(")
	s = closeParenRE.ReplaceAllString(s, ")")
	return s
}

// ParseCompetitionRate converts a competition-rate cell to a float.
// "3.75:1" → 3.75, "10.5:1" → 10.5, a bare numeric string parses directly,
// "-" and malformed input → nil. Never panics.
func ParseCompetitionRate(s string) *float64 {
	s = NormalizeCell(s)
	if s == "" || s == "-" {
		return nil
	}

	if m := ratioRE.FindStringSubmatch(s); m != nil {
		num, err1 := strconv.ParseFloat(m[1], 64)
		den, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && den != 0 {
			v := math.Round(num/den*100) / 100
			return &v
		}
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseIntCell extracts an integer from a cell ("20", "20명", "1,024").
// Returns nil when no digits are present.
func ParseIntCell(s string) *int {
	s = strings.ReplaceAll(NormalizeCell(s), ",", "")
	if s == "" || s == "-" {
		return nil
	}
	m := intRE.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}

// ParseStringCell returns the cell text, or nil for blank and "-" cells.
func ParseStringCell(s string) *string {
	s = NormalizeCell(s)
	if s == "" || s == "-" {
		return nil
	}
	return &s
}
