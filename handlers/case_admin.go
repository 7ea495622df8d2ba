package handlers

import (
	"context"
	"errors"
	"net/http"

	"case_law_app_go/middleware"
	"case_law_app_go/models"
	"case_law_app_go/services"
	"case_law_app_go/templates/components"

	"github.com/labstack/echo/v4"
)

// createCaseResponse is returned by a successful create. Warnings lists
// problems with the attached document; the case itself was saved.
type createCaseResponse struct {
	Case     *models.Case `json:"case"`
	Warnings []string     `json:"warnings,omitempty"`
}

func bindCaseForm(c echo.Context) (models.CaseFormData, error) {
	var form models.CaseFormData
	if err := c.Bind(&form); err != nil {
		return form, echo.NewHTTPError(http.StatusBadRequest, "Invalid case form")
	}
	return form, nil
}

// stagedUpload stages the optional "file" part of a multipart create
func stagedUpload(c echo.Context) (*services.StagedFile, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid file upload")
	}
	return services.StageUpload(fileHeader)
}

// CreateCaseHandler creates a case, then stores its optional document.
// Admin only.
func CreateCaseHandler(c echo.Context) error {
	if !middleware.GetSessionGate(c).IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	form, err := bindCaseForm(c)
	if err != nil {
		return err
	}

	staged, err := stagedUpload(c)
	if err != nil {
		return respondCaseError(c, err)
	}

	fc := services.NewFormController(form)
	if staged != nil {
		if err := fc.Update(services.FieldFullText, staged.ApplyToForm(form.FullText)); err != nil {
			return err
		}
	}

	var warnings []string
	created, err := fc.Submit(c.Request().Context(), func(ctx context.Context, draft models.CaseFormData) (*models.Case, error) {
		saved, w, err := caseMutations.CreateCaseWithDocument(ctx, draft, staged)
		warnings = w
		return saved, err
	})
	if err != nil {
		return respondCaseError(c, err)
	}

	if isHTMX(c) {
		c.Response().Header().Set("HX-Trigger", "reload-cases")
		if len(warnings) > 0 {
			return renderToast(c, http.StatusCreated, components.ToastWarning, "Case created", warnings[0])
		}
		return renderToast(c, http.StatusCreated, components.ToastSuccess, "Case created", created.Title)
	}
	return c.JSON(http.StatusCreated, createCaseResponse{Case: created, Warnings: warnings})
}

// UpdateCaseHandler overwrites the editable fields of a case. Admin only.
func UpdateCaseHandler(c echo.Context) error {
	if !middleware.GetSessionGate(c).IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	form, err := bindCaseForm(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	fc := services.NewFormController(form)
	updated, err := fc.Submit(c.Request().Context(), func(ctx context.Context, draft models.CaseFormData) (*models.Case, error) {
		return caseMutations.UpdateCase(ctx, id, draft)
	})
	if err != nil {
		return respondCaseError(c, err)
	}

	if isHTMX(c) {
		c.Response().Header().Set("HX-Trigger", "reload-cases")
		return renderToast(c, http.StatusOK, components.ToastSuccess, "Case updated", updated.Title)
	}
	return c.JSON(http.StatusOK, updated)
}
