package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"case_law_app_go/models"
	"case_law_app_go/services"
	"case_law_app_go/templates/components"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	visitorCookieName = "case_law_visitor"
	generationHeader  = "X-Result-Generation"

	// documentURLTTL bounds how long a redirected document link stays valid
	documentURLTTL = 15 * time.Minute
)

// bindSearch reads the server-side filters and the presentation state from
// the query string
func bindSearch(c echo.Context) (*models.SearchFilters, services.BrowseView, error) {
	var filters models.SearchFilters
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filters); err != nil {
		return nil, services.BrowseView{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid search parameters")
	}

	view := services.ParseBrowseView(c.QueryParam("sort"), c.QueryParam("status"), c.QueryParam("view"))
	return &filters, view, nil
}

// visitorKey identifies a browser across live-search requests
func visitorKey(c echo.Context) string {
	if cookie, err := c.Cookie(visitorCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	key := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     visitorCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

// ListCasesHandler returns the filtered, sorted case list with catalogue
// statistics. HTMX requests get the list fragment instead of JSON.
func ListCasesHandler(c echo.Context) error {
	filters, view, err := bindSearch(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	generation := resultBus.Generation()

	if !isHTMX(c) {
		result, err := services.Browse(ctx, caseLister, filters, view)
		if err != nil {
			return respondCaseError(c, err)
		}
		c.Response().Header().Set(generationHeader, strconv.FormatUint(generation, 10))
		return c.JSON(http.StatusOK, result)
	}

	guard := searchGuards.Guard(visitorKey(c))
	ticket := guard.Begin()

	result, err := services.Browse(ctx, caseLister, filters, view)
	if !guard.Accept(ticket) {
		// A newer search from this browser superseded this one
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return respondCaseError(c, err)
	}

	c.Response().Header().Set(generationHeader, strconv.FormatUint(generation, 10))
	c.Response().Header().Set("HX-Trigger", components.JSON(map[string]interface{}{"case-stats": result.Stats}))
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return components.CaseList(result.Cases, view.ViewMode == services.ViewList, generation).Render(ctx, c.Response())
}

// CaseStatsHandler returns the number of cases per status
func CaseStatsHandler(c echo.Context) error {
	cases, err := caseLister.ListCases(c.Request().Context(), nil)
	if err != nil {
		return respondCaseError(c, err)
	}
	return c.JSON(http.StatusOK, services.CountByStatus(cases))
}

// GetCaseHandler returns a single case
func GetCaseHandler(c echo.Context) error {
	found, err := caseQueries.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondCaseError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// CaseDraftHandler returns the edit form pre-filled from a stored case
func CaseDraftHandler(c echo.Context) error {
	found, err := caseQueries.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondCaseError(c, err)
	}
	return c.JSON(http.StatusOK, services.DraftFromCase(found))
}

// DownloadCaseHandler exports a case as a text file or, with format=pdf, a PDF
func DownloadCaseHandler(c echo.Context) error {
	ctx := c.Request().Context()
	found, err := caseQueries.GetCase(ctx, c.Param("id"))
	if err != nil {
		return respondCaseError(c, err)
	}

	now := time.Now()
	switch c.QueryParam("format") {
	case "", "txt":
		name := services.CaseDownloadFileName(found.Title, ".txt")
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, []byte(services.CaseTextDocument(found, now)))
	case "pdf":
		pdf, err := services.GenerateCasePDF(ctx, found, now)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
		}
		name := services.CaseDownloadFileName(found.Title, ".pdf")
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		return c.Blob(http.StatusOK, services.MimeTypePDF, pdf)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be txt or pdf")
	}
}

// CaseDocumentHandler streams the document attached to a case
func CaseDocumentHandler(c echo.Context) error {
	ctx := c.Request().Context()
	found, err := caseQueries.GetCase(ctx, c.Param("id"))
	if err != nil {
		return respondCaseError(c, err)
	}
	if !found.HasDocument() {
		return echo.NewHTTPError(http.StatusNotFound, "Case has no document")
	}
	if caseStorage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Document storage unavailable")
	}

	signed, err := caseStorage.GetSignedURL(ctx, *found.FilePath, documentURLTTL)
	if err != nil {
		log.Printf("[CASES] Signing document URL for %s failed, streaming instead: %v", found.ID, err)
	} else if signed != "" {
		return c.Redirect(http.StatusFound, signed)
	}

	reader, contentType, err := caseStorage.Get(ctx, *found.FilePath)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Document not found")
	}
	defer reader.Close()

	if found.FileType != nil && *found.FileType != "" {
		contentType = *found.FileType
	}
	name := *found.FilePath
	if found.FileName != nil {
		name = *found.FileName
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", name))
	return c.Stream(http.StatusOK, contentType, reader)
}

// ExportCasesHandler downloads the filtered, sorted case list as XLSX
func ExportCasesHandler(c echo.Context) error {
	filters, view, err := bindSearch(c)
	if err != nil {
		return err
	}

	cases, err := caseLister.ListCases(c.Request().Context(), filters)
	if err != nil {
		return respondCaseError(c, err)
	}

	buf, err := services.ExportCasesXLSX(services.Present(cases, view.SortBy, view.FilterBy))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to export cases")
	}
	return sendXLSX(c, "cases_"+time.Now().Format("20060102")+".xlsx", buf)
}

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func sendXLSX(c echo.Context, filename string, buf *bytes.Buffer) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Blob(http.StatusOK, xlsxMimeType, buf.Bytes())
}
