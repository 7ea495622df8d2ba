package components

import (
	"bytes"
	"context"
	"testing"

	"case_law_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseList(t *testing.T) {
	summary := "Fair <procedure>"
	cases := []models.Case{
		{ID: "c1", Title: "Maneka Gandhi v. Union of India", Court: "Supreme Court", Date: "1978-01-25", Summary: &summary, Status: models.CaseStatusLandmark},
		{ID: "c2", Title: "A & B", Court: "High Court", Date: "2001-02-03", Status: models.CaseStatusRecent},
	}

	var buf bytes.Buffer
	require.NoError(t, CaseList(cases, true, 7).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `class="cases-list"`)
	assert.Contains(t, html, `data-generation="7"`)
	assert.Contains(t, html, `href="/cases/c1"`)
	assert.Contains(t, html, "Fair &lt;procedure&gt;")
	assert.Contains(t, html, "A &amp; B")
	assert.Contains(t, html, "25 Jan 1978")
	assert.Contains(t, html, "line-clamp-1")
	assert.Contains(t, html, ">landmark</span>")
}

func TestCaseListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CaseList(nil, false, 0).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No cases found")
	assert.Contains(t, buf.String(), `class="cases-grid"`)
}

func TestToast(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Toast(ToastWarning, "Case created", "<upload> failed").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `data-kind="warning"`)
	assert.Contains(t, buf.String(), "&lt;upload&gt; failed")

	buf.Reset()
	require.NoError(t, Toast("unknown", "Oops", "").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `data-kind="error"`)
	assert.NotContains(t, buf.String(), `class="text-sm"`)
}

func TestJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, JSON(map[string]int{"a": 1}))
	assert.Equal(t, "{}", JSON(make(chan int)))
}

func TestCaseCardDetails(t *testing.T) {
	jurisdiction, act, section := "India", "Passports Act", "Section 10(3)(c)"
	summary := "Procedure must be fair."
	c := models.Case{
		ID: "c9", Title: "<Doe> v. Roe", Court: "Supreme Court", Date: "not-a-date",
		Jurisdiction: &jurisdiction, ActName: &act, Section: &section, Summary: &summary,
		Status: models.CaseStatusPrecedent,
	}

	var buf bytes.Buffer
	require.NoError(t, CaseCard(c, false).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `id="case-c9"`)
	assert.Contains(t, html, "&lt;Doe&gt; v. Roe")
	assert.Contains(t, html, "not-a-date &middot; India")
	assert.Contains(t, html, "Passports Act, Section 10(3)(c)")
	assert.Contains(t, html, "line-clamp-3")
	assert.Contains(t, html, "bg-amber-100")
}

func TestToastClasses(t *testing.T) {
	assert.Equal(t, ToastSuccess, toastKind(ToastSuccess))
	assert.Equal(t, ToastError, toastKind("bogus"))
	assert.Equal(t, toastClasses[ToastError], toastClass("bogus"))
}
