package components

import (
	"strconv"
	"time"

	"case_law_app_go/models"
)

var statusBadgeClasses = map[string]string{
	models.CaseStatusLandmark:  "bg-purple-100 text-purple-800",
	models.CaseStatusRecent:    "bg-blue-100 text-blue-800",
	models.CaseStatusPrecedent: "bg-amber-100 text-amber-800",
}

func displayDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("2 Jan 2006")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// actLine joins the act name and section, or returns "" without an act
func actLine(c models.Case) string {
	act := deref(c.ActName)
	if act == "" {
		return ""
	}
	if section := deref(c.Section); section != "" {
		act += ", " + section
	}
	return act
}

func summaryClamp(listLayout bool) string {
	if listLayout {
		return "line-clamp-1"
	}
	return "line-clamp-3"
}

func layoutClass(listLayout bool) string {
	if listLayout {
		return "cases-list"
	}
	return "cases-grid"
}

func uintString(n uint64) string {
	return strconv.FormatUint(n, 10)
}
