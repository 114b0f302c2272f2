// Package model defines the core data types shared across the extraction pipeline.
package model

// AdmissionRecord is the unit of extraction: one department row from one
// admission-track table on a university's admissions page.
type AdmissionRecord struct {
	Year            int      `json:"year"`
	AdmissionType   string   `json:"admission_type"`
	DepartmentName  string   `json:"department_name"`
	Quota           *int     `json:"quota,omitempty"`
	CompetitionRate *float64 `json:"competition_rate,omitempty"`
	WaitlistRank    *int     `json:"waitlist_rank,omitempty"`
	Cut50           *string  `json:"cut50,omitempty"`
	Cut70           *string  `json:"cut70,omitempty"`
	// Cut100 is derived by the estimator pass, never filled by the parsers.
	Cut100   *float64 `json:"cut100,omitempty"`
	Subjects *string  `json:"subjects,omitempty"`
}

// HasCutSignal reports whether at least one observed cutoff is present.
// Records without any cut signal carry nothing to chart and are discarded
// during parsing.
func (r AdmissionRecord) HasCutSignal() bool {
	return r.Cut50 != nil || r.Cut70 != nil
}

// StoredRecord is the persisted, read-boundary shape of an admission record.
// Cut values are numeric here: the store parses the raw cut strings on
// insert and keeps NULL for anything non-numeric, so downstream consumers
// (the estimator pass, charting) never re-parse grades.
type StoredRecord struct {
	ID              string
	UniversityName  string
	Year            int
	AdmissionType   string
	DepartmentName  string
	Quota           *int
	CompetitionRate *float64
	WaitlistRank    *int
	Cut50           *float64
	Cut70           *float64
	Cut100          *float64
	Subjects        *string
}

// University identifies one target school in the configured fetch list.
type University struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	// Code is the source site's numeric identifier for the school.
	Code string `json:"code" yaml:"code" mapstructure:"code"`
}

// ParseSource names which parser produced a batch of records.
type ParseSource string

const (
	ParseSourceRules ParseSource = "rules"
	ParseSourceLLM   ParseSource = "llm"
)

// Batch is the per-university output of a fetch-and-parse step.
type Batch struct {
	University University
	Records    []AdmissionRecord
	Source     ParseSource
	// ReplaceYears pins the year span a save clears. Review can remove
	// every record of a year; the save must still delete that year's
	// persisted rows.
	ReplaceYears []int
}

// Years returns the distinct academic years the batch covers, in first-seen
// order: the pinned ReplaceYears plus any year present in the records.
func (b Batch) Years() []int {
	seen := make(map[int]bool, 2)
	var years []int
	for _, y := range b.ReplaceYears {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for _, r := range b.Records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	return years
}
