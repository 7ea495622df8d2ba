package models

import "strings"

// SearchFilters is the structured query input for the case list.
// Empty fields mean "no constraint".
type SearchFilters struct {
	Query        string `json:"query" query:"q"`
	ActName      string `json:"act_name" query:"act_name"`
	Section      string `json:"section" query:"section"`
	Court        string `json:"court" query:"court"`
	Year         string `json:"year" query:"year"`
	Jurisdiction string `json:"jurisdiction" query:"jurisdiction"`
}

// IsEmpty reports whether no filter constrains the result set
func (f *SearchFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return strings.TrimSpace(f.Query) == "" &&
		strings.TrimSpace(f.ActName) == "" &&
		strings.TrimSpace(f.Section) == "" &&
		strings.TrimSpace(f.Court) == "" &&
		strings.TrimSpace(f.Year) == "" &&
		strings.TrimSpace(f.Jurisdiction) == ""
}

// CaseFormData is the create/edit draft of a case. Citations is a single
// comma separated string and Status is not yet validated.
type CaseFormData struct {
	Title        string `json:"title" form:"title"`
	Court        string `json:"court" form:"court"`
	Date         string `json:"date" form:"date"`
	Jurisdiction string `json:"jurisdiction" form:"jurisdiction"`
	ActName      string `json:"act_name" form:"act_name"`
	Section      string `json:"section" form:"section"`
	Summary      string `json:"summary" form:"summary"`
	FullText     string `json:"full_text" form:"full_text"`
	Citations    string `json:"citations" form:"citations"`
	Status       string `json:"status" form:"status"`
}
