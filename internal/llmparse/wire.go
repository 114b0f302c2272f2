package llmparse

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jinhak-lab/admitscan/internal/parser"
)

// The wire types tolerate the model returning numbers as strings (or ratio
// strings like "5.2:1") instead of failing the whole chunk on a type
// mismatch.

type wireRecord struct {
	Year            flexInt    `json:"year"`
	DepartmentName  string     `json:"department_name"`
	Quota           flexInt    `json:"quota"`
	CompetitionRate flexFloat  `json:"competition_rate"`
	WaitlistRank    flexInt    `json:"waitlist_rank"`
	Cut50           flexString `json:"cut50"`
	Cut70           flexString `json:"cut70"`
	Subjects        flexString `json:"subjects"`
}

type flexInt struct {
	Value *int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		f.Value = &v
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		f.Value = parser.ParseIntCell(str)
	}
	return nil
}

type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = &v
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		f.Value = parser.ParseCompetitionRate(str)
	}
	return nil
}

type flexString struct {
	Value *string
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		f.Value = parser.ParseStringCell(str)
		return nil
	}
	// Bare number: keep its textual form.
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = &s
	}
	return nil
}
