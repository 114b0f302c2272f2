package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Universities label the same concept three different ways in markup: a
// standalone header paragraph before the table, a merged header cell inside
// it, or an inline label row. Each convention gets one resolver; they are
// tried in order and the first success wins, so the more reliable structural
// signal always overrides the noisier one.

// typeResolver attempts to determine a table's admission type. The boolean
// reports success; an empty string with true is never returned.
type typeResolver func(table *goquery.Selection) (string, bool)

// tableTypeResolvers is the resolution order for table-level signals. The
// inline-row convention is handled during the row walk because it shares the
// row cursor; it only applies when every resolver here failed.
var tableTypeResolvers = []typeResolver{
	resolveSectionHeader,
	resolveColspanHeader,
}

// ResolveTableType runs the resolver chain for one table element.
func ResolveTableType(table *goquery.Selection) (string, bool) {
	for _, resolve := range tableTypeResolvers {
		if label, ok := resolve(table); ok {
			return label, true
		}
	}
	return "", false
}

// sectionHeaderRE matches a section header preceding a table: an optional
// [YYYY학년도] marker, then an optional campus name and a label ending in
// 전형, optionally with a parenthesized qualifier.
var sectionHeaderRE = regexp.MustCompile(`^(?:\[\s*\d{4}\s*학년도\s*\]\s*)?(.{0,60}?전형(?:\s*\([^)]*\))?)\s*$`)

// maxHeaderLookback bounds how many non-empty preceding siblings are
// examined for a section header.
const maxHeaderLookback = 3

func resolveSectionHeader(table *goquery.Selection) (string, bool) {
	searched := 0
	for prev := table.Prev(); prev.Length() > 0 && searched < maxHeaderLookback; prev = prev.Prev() {
		if goquery.NodeName(prev) == "table" {
			break
		}
		text := NormalizeCell(prev.Text())
		if text == "" {
			continue
		}
		searched++
		if m := sectionHeaderRE.FindStringSubmatch(text); m != nil {
			return NormalizeTypeLabel(m[1]), true
		}
	}
	return "", false
}

// typeVocab are substrings that mark a merged header cell as an
// admission-type label.
var typeVocab = []string{"전형", "균형", "우수", "특별", "교과", "논술", "실기"}

// tableHeaderVocab are substrings that mark a cell as a column header, not a
// type label.
var tableHeaderVocab = []string{"모집단위", "모집인원", "경쟁률", "충원", "교과목", "50%", "70%", "cut", "Cut", "CUT"}

func resolveColspanHeader(table *goquery.Selection) (string, bool) {
	var label string
	table.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		attr, ok := td.Attr("colspan")
		if !ok {
			return true
		}
		span, err := strconv.Atoi(strings.TrimSpace(attr))
		if err != nil || span < 4 {
			return true
		}
		text := NormalizeCell(td.Text())
		if text == "" {
			return true
		}
		if containsAny(text, tableHeaderVocab) || !containsAny(text, typeVocab) {
			return true
		}
		label = NormalizeTypeLabel(text)
		return false
	})
	return label, label != ""
}

// ResolveContextType applies the section-header pattern to a line of free
// context text. The LLM fallback parser uses it on the text preceding each
// table chunk so the admission type never depends on model output.
func ResolveContextType(text string) (string, bool) {
	text = NormalizeCell(text)
	if text == "" {
		return "", false
	}
	if m := sectionHeaderRE.FindStringSubmatch(text); m != nil {
		return NormalizeTypeLabel(m[1]), true
	}
	return "", false
}

// isInlineTypeRow reports whether a row is the inline type-header convention:
// some cell containing 전형. Such rows are never data rows.
func isInlineTypeRow(cells []string) (string, bool) {
	for _, c := range cells {
		if strings.Contains(c, "전형") {
			return NormalizeTypeLabel(c), true
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
