package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"case_law_app_go/models"
)

// FormField names an editable field of a case draft
type FormField string

const (
	FieldTitle        FormField = "title"
	FieldCourt        FormField = "court"
	FieldDate         FormField = "date"
	FieldJurisdiction FormField = "jurisdiction"
	FieldActName      FormField = "act_name"
	FieldSection      FormField = "section"
	FieldSummary      FormField = "summary"
	FieldFullText     FormField = "full_text"
	FieldCitations    FormField = "citations"
	FieldStatus       FormField = "status"
)

// FieldUpdate sets one field of a draft
type FieldUpdate struct {
	Field FormField
	Value string
}

// EmptyDraft returns a draft with every field blank
func EmptyDraft() models.CaseFormData {
	return models.CaseFormData{}
}

// ApplyField returns a copy of draft with one field replaced. Unknown fields
// are rejected and the draft is returned unchanged.
func ApplyField(draft models.CaseFormData, update FieldUpdate) (models.CaseFormData, error) {
	switch update.Field {
	case FieldTitle:
		draft.Title = update.Value
	case FieldCourt:
		draft.Court = update.Value
	case FieldDate:
		draft.Date = update.Value
	case FieldJurisdiction:
		draft.Jurisdiction = update.Value
	case FieldActName:
		draft.ActName = update.Value
	case FieldSection:
		draft.Section = update.Value
	case FieldSummary:
		draft.Summary = update.Value
	case FieldFullText:
		draft.FullText = update.Value
	case FieldCitations:
		draft.Citations = update.Value
	case FieldStatus:
		draft.Status = update.Value
	default:
		return draft, fmt.Errorf("unknown form field %q", update.Field)
	}
	return draft, nil
}

// DraftFromCase pre-fills an edit draft from a stored case
func DraftFromCase(c *models.Case) models.CaseFormData {
	return models.CaseFormData{
		Title:        c.Title,
		Court:        c.Court,
		Date:         c.Date,
		Jurisdiction: deref(c.Jurisdiction),
		ActName:      deref(c.ActName),
		Section:      deref(c.Section),
		Summary:      deref(c.Summary),
		FullText:     deref(c.FullText),
		Citations:    strings.Join(c.Citations, ", "),
		Status:       c.Status,
	}
}

// SubmitFunc performs the remote write for a validated draft
type SubmitFunc func(ctx context.Context, form models.CaseFormData) (*models.Case, error)

// FormController holds the draft being edited by an admin
type FormController struct {
	mu    sync.Mutex
	draft models.CaseFormData
}

// NewFormController starts from the given draft
func NewFormController(initial models.CaseFormData) *FormController {
	return &FormController{draft: initial}
}

// Draft returns the current draft
func (fc *FormController) Draft() models.CaseFormData {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.draft
}

// Update sets a single field
func (fc *FormController) Update(field FormField, value string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	next, err := ApplyField(fc.draft, FieldUpdate{Field: field, Value: value})
	if err != nil {
		return err
	}
	fc.draft = next
	return nil
}

// Reset clears the draft
func (fc *FormController) Reset() {
	fc.mu.Lock()
	fc.draft = EmptyDraft()
	fc.mu.Unlock()
}

// Submit validates the draft and, if valid, hands it to submit. The draft is
// cleared on success and kept as-is on any failure so the user can retry.
// submit is never called for an invalid draft.
func (fc *FormController) Submit(ctx context.Context, submit SubmitFunc) (*models.Case, error) {
	draft := fc.Draft()
	if err := ValidateCaseForm(draft); err != nil {
		return nil, err
	}

	saved, err := submit(ctx, draft)
	if err != nil {
		return nil, err
	}

	fc.Reset()
	return saved, nil
}
