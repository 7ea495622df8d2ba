package services

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
	"time"

	"case_law_app_go/models"
)

const (
	longDateLayout    = "2 January 2006"
	generatedOnLayout = "02/01/2006"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// CaseDownloadFileName derives the download name from the case title:
// lower-cased, every non-alphanumeric byte replaced by an underscore.
func CaseDownloadFileName(title, ext string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "_") + ext
}

// FormatCaseDate renders a YYYY-MM-DD date as "5 March 1997". Unparseable
// dates are returned unchanged.
func FormatCaseDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(longDateLayout)
}

func heading(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", len(title)))
	b.WriteByte('\n')
}

func valueOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

// CaseTextDocument renders the plain-text export of a case
func CaseTextDocument(c *models.Case, now time.Time) string {
	var b strings.Builder

	heading(&b, "CASE DETAILS")
	b.WriteByte('\n')
	b.WriteString("Title: " + c.Title + "\n")
	b.WriteString("Court: " + c.Court + "\n")
	b.WriteString("Date: " + FormatCaseDate(c.Date) + "\n")
	if v := valueOr(c.Jurisdiction, ""); v != "" {
		b.WriteString("Jurisdiction: " + v + "\n")
	}
	if v := valueOr(c.ActName, ""); v != "" {
		b.WriteString("Act: " + v + "\n")
	}
	if v := valueOr(c.Section, ""); v != "" {
		b.WriteString("Section: " + v + "\n")
	}
	b.WriteString("Status: " + c.Status + "\n\n")

	heading(&b, "SUMMARY")
	b.WriteString(valueOr(c.Summary, "No summary available") + "\n\n")

	heading(&b, "FULL TEXT")
	b.WriteString(valueOr(c.FullText, "No full text available") + "\n\n")

	if len(c.Citations) > 0 {
		heading(&b, "CITATIONS")
		b.WriteString(strings.Join(c.Citations, "\n") + "\n\n")
	}

	b.WriteString("Generated on: " + now.Format(generatedOnLayout) + "\n")
	return b.String()
}

var caseHTMLTemplate = template.Must(template.New("case").Parse(`<h1>{{.Case.Title}}</h1>
<table class="case-meta">
<tr><th>Court</th><td>{{.Case.Court}}</td></tr>
<tr><th>Date</th><td>{{.Date}}</td></tr>
{{with .Case.Jurisdiction}}<tr><th>Jurisdiction</th><td>{{.}}</td></tr>{{end}}
{{with .Case.ActName}}<tr><th>Act</th><td>{{.}}</td></tr>{{end}}
{{with .Case.Section}}<tr><th>Section</th><td>{{.}}</td></tr>{{end}}
<tr><th>Status</th><td>{{.Case.Status}}</td></tr>
</table>
<h2>Summary</h2>
<p>{{.Summary}}</p>
<h2>Full Text</h2>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .Case.Citations}}<h2>Citations</h2>
<ul>{{range .Case.Citations}}<li>{{.}}</li>{{end}}</ul>
{{end}}<p class="date-line">Generated on: {{.GeneratedOn}}</p>`))

// CaseHTMLDocument renders the case body used for PDF export
func CaseHTMLDocument(c *models.Case, now time.Time) (string, error) {
	fullText := valueOr(c.FullText, "No full text available")
	var paragraphs []string
	for _, p := range strings.Split(fullText, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var buf bytes.Buffer
	err := caseHTMLTemplate.Execute(&buf, struct {
		Case        *models.Case
		Date        string
		Summary     string
		Paragraphs  []string
		GeneratedOn string
	}{
		Case:        c,
		Date:        FormatCaseDate(c.Date),
		Summary:     valueOr(c.Summary, "No summary available"),
		Paragraphs:  paragraphs,
		GeneratedOn: now.Format(generatedOnLayout),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
