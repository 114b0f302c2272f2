// Package parser turns one admissions HTML page into admission records using
// deterministic rules. It never fails on malformed rows; it skips them. An
// empty result is a valid outcome meaning the page needs the LLM fallback or
// manual attention.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jinhak-lab/admitscan/internal/model"
)

var (
	// docYearRE matches a [YYYY학년도]-style marker in page prose.
	docYearRE = regexp.MustCompile(`\[?\s*(\d{4})\s*\]?\s*학년도`)
	// rowYearRE matches a year-marker row inside a table.
	rowYearRE = regexp.MustCompile(`\[\s*(\d{4})\s*학년도\s*\]`)
)

// warningMarkers flag footnote/caveat rows that look like data but are not.
var warningMarkers = []string{"※", "대학별", "비교할 수 없습니다"}

// minDataCells is the minimum cell count for a row to qualify as data.
const minDataCells = 6

// parseContext carries the row-scan state for one table: the running
// admission type and whether a table-level resolver already fixed it (which
// suppresses inline-row updates). The running year lives outside the context
// because a year-marker row governs every following table until the next
// marker, not just its own.
type parseContext struct {
	year          *int
	admissionType string
	typeLocked    bool
}

// Parse extracts admission records from one university's admissions page.
// defaultYear applies when the page carries no year marker.
func Parse(html string, defaultYear int) []model.AdmissionRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.L().Warn("parser: unreadable document", zap.Error(err))
		return nil
	}

	year := defaultYear
	if y, ok := scanDocumentYear(doc); ok {
		year = y
	}

	var records []model.AdmissionRecord
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		pctx := parseContext{year: &year}
		if label, ok := ResolveTableType(table); ok {
			pctx.admissionType = label
			pctx.typeLocked = true
		}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if rec, ok := parseRow(&pctx, rowCells(tr)); ok {
				records = append(records, rec)
			}
		})
	})

	return records
}

// scanDocumentYear looks for a year marker in prose outside any table.
func scanDocumentYear(doc *goquery.Document) (int, bool) {
	year := 0
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if p.ParentsFiltered("table").Length() > 0 {
			return true
		}
		if m := docYearRE.FindStringSubmatch(p.Text()); m != nil {
			year, _ = strconv.Atoi(m[1])
			return false
		}
		return true
	})
	return year, year != 0
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("td,th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, NormalizeCell(cell.Text()))
	})
	return cells
}

// parseRow applies the skip rules and positional parse to one row.
func parseRow(pctx *parseContext, cells []string) (model.AdmissionRecord, bool) {
	var zero model.AdmissionRecord
	if len(cells) == 0 {
		return zero, false
	}

	rowText := strings.Join(cells, " ")

	// Year-marker row: update the running year, consume the row.
	if m := rowYearRE.FindStringSubmatch(rowText); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			*pctx.year = y
		}
		return zero, false
	}

	// Inline type-header row. Updates the running type only when no
	// table-level resolver already fixed it.
	if label, ok := isInlineTypeRow(cells); ok {
		if !pctx.typeLocked {
			pctx.admissionType = label
		}
		return zero, false
	}

	// Column header. Matched on the first cell only: data cells further
	// right can legitimately contain header-like substrings.
	if containsAny(cells[0], tableHeaderVocab) {
		return zero, false
	}

	// Footnote/warning rows.
	if containsAny(rowText, warningMarkers) {
		return zero, false
	}

	if len(cells) < minDataCells || cells[0] == "" {
		return zero, false
	}

	rec := model.AdmissionRecord{
		Year:            *pctx.year,
		AdmissionType:   pctx.admissionType,
		DepartmentName:  cells[0],
		Quota:           ParseIntCell(cells[1]),
		CompetitionRate: ParseCompetitionRate(cells[2]),
		WaitlistRank:    ParseIntCell(cells[3]),
		Cut50:           ParseStringCell(cells[4]),
		Cut70:           ParseStringCell(cells[5]),
	}
	if len(cells) > 6 {
		rec.Subjects = ParseStringCell(cells[6])
	}

	// No cut signal, nothing to chart.
	if !rec.HasCutSignal() {
		return zero, false
	}

	return rec, true
}
