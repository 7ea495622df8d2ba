package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"case_law_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetImportTemplateHandler serves the XLSX template for bulk import
func GetImportTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateImportTemplate()
	if err != nil {
		log.Printf("[CASES] Failed to generate import template: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate template")
	}
	return sendXLSX(c, "case_import_template.xlsx", buf)
}

// ImportCasesHandler creates cases from an uploaded XLSX workbook. Admin only.
func ImportCasesHandler(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") {
		return echo.NewHTTPError(http.StatusBadRequest, "Please upload an .xlsx file")
	}
	if file.Size > services.MaxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, services.ErrFileTooLarge.Error())
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open file")
	}
	defer src.Close()

	result, err := services.ImportCasesXLSX(c.Request().Context(), caseMutations, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
	}

	if result.SuccessCount > 0 {
		c.Response().Header().Set("HX-Trigger", "reload-cases")
	}
	return c.JSON(http.StatusOK, result)
}
