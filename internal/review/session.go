package review

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"

	"github.com/jinhak-lab/admitscan/internal/model"
)

// Outcome is the terminal action chosen from the summary state.
type Outcome int

const (
	// OutcomeSave commits all records not marked deleted.
	OutcomeSave Outcome = iota
	// OutcomeSkip discards this university's batch without persisting.
	OutcomeSkip
	// OutcomeQuit aborts the entire remaining run.
	OutcomeQuit
)

const pageSize = 15

// Session walks an operator through one university's record batch before it
// is persisted. Deletion is a soft mark on an index set, reversible until
// save materializes the surviving records.
type Session struct {
	term       Terminal
	university string
	records    []model.AdmissionRecord
	deleted    map[int]bool
}

// NewSession creates a review session over one extracted batch.
func NewSession(term Terminal, university string, records []model.AdmissionRecord) *Session {
	return &Session{
		term:       term,
		university: university,
		records:    records,
		deleted:    make(map[int]bool),
	}
}

// Run drives the session state machine. Summary is the entry point and the
// only state offering terminal actions; every sub-state returns to it. For
// OutcomeSave the returned slice holds the records not marked deleted, in
// their original order.
func (s *Session) Run() (Outcome, []model.AdmissionRecord, error) {
	for {
		s.printSummary()
		choice, err := s.term.Prompt("[a]ll / by-[t]ype / [l]ist / [s]ave / s[k]ip / [q]uit > ")
		if err != nil {
			return OutcomeQuit, nil, eris.Wrap(err, "review: read command")
		}
		switch strings.ToLower(choice) {
		case "s":
			return OutcomeSave, s.materialize(), nil
		case "k":
			return OutcomeSkip, nil, nil
		case "q":
			confirm, err := s.term.Prompt("abort the entire remaining run? [y/N] > ")
			if err != nil {
				return OutcomeQuit, nil, eris.Wrap(err, "review: read confirmation")
			}
			if strings.EqualFold(confirm, "y") {
				return OutcomeQuit, nil, nil
			}
		case "a":
			if err := s.review(s.indices("")); err != nil {
				return OutcomeQuit, nil, err
			}
		case "t":
			typ, ok, err := s.pickSeenType("review which type?")
			if err != nil {
				return OutcomeQuit, nil, err
			}
			if !ok {
				continue
			}
			if err := s.review(s.indices(typ)); err != nil {
				return OutcomeQuit, nil, err
			}
		case "l":
			if err := s.listView(); err != nil {
				return OutcomeQuit, nil, err
			}
		default:
			s.term.Println("unknown command:", choice)
		}
	}
}

// indices returns the record indices to walk, optionally filtered to one
// admission type.
func (s *Session) indices(admissionType string) []int {
	var out []int
	for i, r := range s.records {
		if admissionType == "" || r.AdmissionType == admissionType {
			out = append(out, i)
		}
	}
	return out
}

// review walks records one at a time. Returns only on operator exit or a
// terminal read error; all record mutations happen in place.
func (s *Session) review(indices []int) error {
	if len(indices) == 0 {
		s.term.Println("no records to review")
		return nil
	}
	pos := 0
	for pos < len(indices) {
		idx := indices[pos]
		s.printRecord(pos+1, len(indices), idx)
		choice, err := s.term.Prompt("[e]dit / [d]elete / [g]oto / [l]ist / [n]ext / [p]rev / [b]ack > ")
		if err != nil {
			return eris.Wrap(err, "review: read action")
		}
		switch strings.ToLower(choice) {
		case "", "n":
			pos++
		case "p":
			if pos > 0 {
				pos--
			}
		case "e":
			if err := s.editRecord(idx); err != nil {
				return err
			}
		case "d":
			s.deleted[idx] = !s.deleted[idx]
		case "g":
			raw, err := s.term.Prompt(fmt.Sprintf("record number (1-%d) > ", len(indices)))
			if err != nil {
				return eris.Wrap(err, "review: read index")
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > len(indices) {
				s.term.Println("invalid record number:", raw)
				continue
			}
			pos = n - 1
		case "l":
			if err := s.listView(); err != nil {
				return err
			}
		case "b":
			return nil
		default:
			s.term.Println("unknown action:", choice)
		}
	}
	return nil
}

// editRecord prompts for a field and a new value. Blank input clears
// nullable fields and is ignored for required ones.
func (s *Session) editRecord(idx int) error {
	r := &s.records[idx]
	field, err := s.term.Prompt("field: [1]year [2]type [3]department [4]quota [5]rate [6]waitlist [7]cut50 [8]cut70 [9]subjects > ")
	if err != nil {
		return eris.Wrap(err, "review: read field")
	}

	if field == "2" {
		typ, ok, err := s.pickSeenType("new admission type")
		if err != nil {
			return err
		}
		if ok {
			r.AdmissionType = typ
		}
		return nil
	}

	value, err := s.term.Prompt("new value (blank clears) > ")
	if err != nil {
		return eris.Wrap(err, "review: read value")
	}
	value = strings.TrimSpace(value)

	switch field {
	case "1":
		n, err := strconv.Atoi(value)
		if err != nil {
			s.term.Println("year must be a number:", value)
			return nil
		}
		r.Year = n
	case "3":
		if value != "" {
			r.DepartmentName = value
		}
	case "4":
		if v, ok := parseOptionalInt(s.term, value); ok {
			r.Quota = v
		}
	case "5":
		if v, ok := parseOptionalFloat(s.term, value); ok {
			r.CompetitionRate = v
		}
	case "6":
		if v, ok := parseOptionalInt(s.term, value); ok {
			r.WaitlistRank = v
		}
	case "7":
		r.Cut50 = optionalString(value)
	case "8":
		r.Cut70 = optionalString(value)
	case "9":
		r.Subjects = optionalString(value)
	default:
		s.term.Println("unknown field:", field)
	}
	return nil
}

// pickSeenType offers the admission types already present in the batch as a
// numbered pick-list, with 0 as a custom-value escape hatch. Returns ok=false
// when the operator backs out with blank input.
func (s *Session) pickSeenType(msg string) (string, bool, error) {
	types := s.seenTypes()
	for i, typ := range types {
		s.term.Printf("  [%d] %s\n", i+1, typ)
	}
	s.term.Println("  [0] custom value")

	raw, err := s.term.Prompt(msg + " (blank cancels) > ")
	if err != nil {
		return "", false, eris.Wrap(err, "review: read type choice")
	}
	if raw == "" {
		return "", false, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > len(types) {
		s.term.Println("invalid choice:", raw)
		return "", false, nil
	}
	if n == 0 {
		custom, err := s.term.Prompt("admission type > ")
		if err != nil {
			return "", false, eris.Wrap(err, "review: read custom type")
		}
		if custom == "" {
			return "", false, nil
		}
		return custom, true, nil
	}
	return types[n-1], true, nil
}

// seenTypes returns the distinct admission types in first-seen order.
func (s *Session) seenTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, r := range s.records {
		if r.AdmissionType != "" && !seen[r.AdmissionType] {
			seen[r.AdmissionType] = true
			types = append(types, r.AdmissionType)
		}
	}
	return types
}

// materialize converts the soft delete marks into the final record list.
func (s *Session) materialize() []model.AdmissionRecord {
	out := make([]model.AdmissionRecord, 0, len(s.records))
	for i, r := range s.records {
		if !s.deleted[i] {
			out = append(out, r)
		}
	}
	return out
}

func (s *Session) printSummary() {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("%s / %d records", s.university, len(s.records))
	t.AppendHeader(table.Row{"admission type", "records", "delete-marked"})

	counts := make(map[string]int)
	marked := make(map[string]int)
	for i, r := range s.records {
		counts[r.AdmissionType]++
		if s.deleted[i] {
			marked[r.AdmissionType]++
		}
	}
	for _, typ := range s.seenTypes() {
		t.AppendRow(table.Row{typ, counts[typ], marked[typ]})
	}
	if n := counts[""]; n > 0 {
		t.AppendRow(table.Row{"(no type)", n, marked[""]})
	}
	s.term.Println(t.Render())
}

func (s *Session) printRecord(pos, total, idx int) {
	r := s.records[idx]
	mark := ""
	if s.deleted[idx] {
		mark = "  [DELETE-MARKED]"
	}
	s.term.Printf("\n[%d/%d] %s%s\n", pos, total, r.DepartmentName, mark)
	s.term.Printf("  year: %d  type: %s\n", r.Year, orDash(r.AdmissionType))
	s.term.Printf("  quota: %s  rate: %s  waitlist: %s\n",
		fmtInt(r.Quota), fmtFloat(r.CompetitionRate), fmtInt(r.WaitlistRank))
	s.term.Printf("  cut50: %s  cut70: %s  subjects: %s\n",
		fmtStr(r.Cut50), fmtStr(r.Cut70), fmtStr(r.Subjects))
}

// listView pages through the full batch in a table.
func (s *Session) listView() error {
	page := 0
	pages := (len(s.records) + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	for {
		s.printPage(page, pages)
		choice, err := s.term.Prompt("[n]ext / [p]rev / [b]ack > ")
		if err != nil {
			return eris.Wrap(err, "review: read page command")
		}
		switch strings.ToLower(choice) {
		case "", "n":
			if page < pages-1 {
				page++
			}
		case "p":
			if page > 0 {
				page--
			}
		case "b":
			return nil
		default:
			s.term.Println("unknown command:", choice)
		}
	}
}

func (s *Session) printPage(page, pages int) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("page %d/%d", page+1, pages)
	t.AppendHeader(table.Row{"#", "type", "department", "quota", "rate", "cut50", "cut70", "del"})

	start := page * pageSize
	end := start + pageSize
	if end > len(s.records) {
		end = len(s.records)
	}
	for i := start; i < end; i++ {
		r := s.records[i]
		del := ""
		if s.deleted[i] {
			del = "✗"
		}
		t.AppendRow(table.Row{
			i + 1, orDash(r.AdmissionType), r.DepartmentName,
			fmtInt(r.Quota), fmtFloat(r.CompetitionRate),
			fmtStr(r.Cut50), fmtStr(r.Cut70), del,
		})
	}
	s.term.Println(t.Render())
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// parseOptionalInt returns ok=false on unparseable input so the caller can
// leave the field as it was. Blank input clears the field.
func parseOptionalInt(term Terminal, v string) (*int, bool) {
	if v == "" {
		return nil, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		term.Println("not a number:", v)
		return nil, false
	}
	return &n, true
}

func parseOptionalFloat(term Terminal, v string) (*float64, bool) {
	if v == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		term.Println("not a number:", v)
		return nil, false
	}
	return &f, true
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func fmtInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtStr(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}
