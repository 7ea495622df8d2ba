package services

import (
	"slices"
	"strings"
	"time"

	"case_law_app_go/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the order of a presented case list
type SortKey string

const (
	SortDateDesc SortKey = "date-desc"
	SortDateAsc  SortKey = "date-asc"
	SortTitle    SortKey = "title"
	SortCourt    SortKey = "court"
)

// StatusFilter keeps cases of one status, or all of them
type StatusFilter string

const StatusAll StatusFilter = "all"

// ViewMode is the list layout. It does not change which cases are shown.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// BrowseView is the client-side presentation state of a case list
type BrowseView struct {
	SortBy   SortKey      `json:"sort_by"`
	FilterBy StatusFilter `json:"filter_by"`
	ViewMode ViewMode     `json:"view_mode"`
}

// DefaultBrowseView is newest first, all statuses, grid layout
func DefaultBrowseView() BrowseView {
	return BrowseView{SortBy: SortDateDesc, FilterBy: StatusAll, ViewMode: ViewGrid}
}

// ParseSortKey maps user input to a SortKey, defaulting to date-desc
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDateDesc, SortDateAsc, SortTitle, SortCourt:
		return k
	}
	return DefaultBrowseView().SortBy
}

// ParseStatusFilter maps user input to a StatusFilter, defaulting to all
func ParseStatusFilter(s string) StatusFilter {
	v := strings.ToLower(strings.TrimSpace(s))
	if models.IsValidCaseStatus(v) {
		return StatusFilter(v)
	}
	return DefaultBrowseView().FilterBy
}

// ParseViewMode maps user input to a ViewMode, defaulting to grid
func ParseViewMode(s string) ViewMode {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewGrid, ViewList:
		return m
	}
	return DefaultBrowseView().ViewMode
}

// ParseBrowseView builds a view from query values. Empty or unknown values
// keep the default.
func ParseBrowseView(sortBy, status, view string) BrowseView {
	return BrowseView{
		SortBy:   ParseSortKey(sortBy),
		FilterBy: ParseStatusFilter(status),
		ViewMode: ParseViewMode(view),
	}
}

// Present filters an already fetched case list by status and orders it.
// The input slice is left untouched and ties keep their input order.
func Present(cases []models.Case, sortBy SortKey, filterBy StatusFilter) []models.Case {
	out := make([]models.Case, 0, len(cases))
	for _, c := range cases {
		if filterBy == "" || filterBy == StatusAll || c.Status == string(filterBy) {
			out = append(out, c)
		}
	}

	switch sortBy {
	case SortDateAsc:
		slices.SortStableFunc(out, func(a, b models.Case) int {
			return parseCaseDate(a.Date).Compare(parseCaseDate(b.Date))
		})
	case SortTitle:
		col := newCollator()
		slices.SortStableFunc(out, func(a, b models.Case) int {
			return col.CompareString(a.Title, b.Title)
		})
	case SortCourt:
		col := newCollator()
		slices.SortStableFunc(out, func(a, b models.Case) int {
			return col.CompareString(a.Court, b.Court)
		})
	default:
		slices.SortStableFunc(out, func(a, b models.Case) int {
			return parseCaseDate(b.Date).Compare(parseCaseDate(a.Date))
		})
	}

	return out
}

// newCollator returns a case-insensitive English collator. Collators are not
// safe for concurrent use, so each Present call gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

// parseCaseDate returns the zero time for unparseable dates so they sort
// as the oldest.
func parseCaseDate(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
