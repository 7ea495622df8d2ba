package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"case_law_app_go/models"

	"gorm.io/gorm"
)

// CaseMutationService creates and updates cases
type CaseMutationService struct {
	db      *gorm.DB
	bus     *ResultSetBus
	storage StorageProvider
}

// NewCaseMutationService creates a new mutation service. storage may be nil,
// in which case staged documents are reported as warnings and not stored.
func NewCaseMutationService(db *gorm.DB, bus *ResultSetBus, storage StorageProvider) *CaseMutationService {
	if bus == nil {
		bus = NewResultSetBus()
	}
	return &CaseMutationService{db: db, bus: bus, storage: storage}
}

// ParseCitations splits a comma separated citation string, trimming each
// entry and dropping empty ones. No citations yields nil.
func ParseCitations(s string) models.StringList {
	var out models.StringList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeStatus coerces free-form status input to a valid status,
// defaulting to recent
func NormalizeStatus(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if models.IsValidCaseStatus(v) {
		return v
	}
	return models.CaseStatusRecent
}

// trimText is the only rewrite applied to entered text. Markup is stored
// as typed and escaped when rendered.
func trimText(s string) string {
	return strings.TrimSpace(s)
}

func optional(s string) *string {
	if v := trimText(s); v != "" {
		return &v
	}
	return nil
}

// ValidateCaseForm checks the fields a case cannot be stored without
func ValidateCaseForm(form models.CaseFormData) error {
	var missing []string
	if strings.TrimSpace(form.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(form.Court) == "" {
		missing = append(missing, "court")
	}
	if strings.TrimSpace(form.Date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	if _, err := time.Parse(models.DateLayout, strings.TrimSpace(form.Date)); err != nil {
		return &ValidationError{Fields: []string{"date"}, Message: "date must be formatted as YYYY-MM-DD"}
	}
	return nil
}

// caseFromForm maps a validated form onto a new case record
func caseFromForm(form models.CaseFormData) models.Case {
	return models.Case{
		Title:        trimText(form.Title),
		Court:        trimText(form.Court),
		Date:         strings.TrimSpace(form.Date),
		Jurisdiction: optional(form.Jurisdiction),
		ActName:      optional(form.ActName),
		Section:      optional(form.Section),
		Summary:      optional(form.Summary),
		FullText:     optional(form.FullText),
		Citations:    ParseCitations(trimText(form.Citations)),
		Status:       NormalizeStatus(form.Status),
	}
}

// editableColumns is the full overwrite applied by UpdateCase. File columns
// are left alone.
func editableColumns(c models.Case) map[string]interface{} {
	return map[string]interface{}{
		"title":        c.Title,
		"court":        c.Court,
		"date":         c.Date,
		"jurisdiction": c.Jurisdiction,
		"act_name":     c.ActName,
		"section":      c.Section,
		"summary":      c.Summary,
		"full_text":    c.FullText,
		"citations":    c.Citations,
		"status":       c.Status,
	}
}

// CreateCase stores a new case built from form and returns the stored row
func (s *CaseMutationService) CreateCase(ctx context.Context, form models.CaseFormData) (*models.Case, error) {
	c, err := s.createCase(ctx, form)
	observeMutation(OpCreate, err)
	return c, err
}

func (s *CaseMutationService) createCase(ctx context.Context, form models.CaseFormData) (*models.Case, error) {
	if err := ValidateCaseForm(form); err != nil {
		return nil, err
	}

	record := caseFromForm(form)

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		log.Printf("[CASES] Error creating case: %v", err)
		return nil, &MutationError{Op: OpCreate, Err: err}
	}

	s.bus.Publish()
	log.Printf("[CASES] Created case %s (%s)", record.ID, record.Title)
	return &record, nil
}

// UpdateCase overwrites the editable fields of an existing case. It never
// creates a record: an unknown id fails with ErrCaseNotFound.
func (s *CaseMutationService) UpdateCase(ctx context.Context, id string, form models.CaseFormData) (*models.Case, error) {
	c, err := s.updateCase(ctx, id, form)
	observeMutation(OpUpdate, err)
	return c, err
}

func (s *CaseMutationService) updateCase(ctx context.Context, id string, form models.CaseFormData) (*models.Case, error) {
	if err := ValidateCaseForm(form); err != nil {
		return nil, err
	}

	record := caseFromForm(form)

	var updated models.Case
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}
		if err := tx.Model(&updated).Updates(editableColumns(record)).Error; err != nil {
			return err
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		log.Printf("[CASES] Error updating case %s: %v", id, err)
		return nil, &MutationError{Op: OpUpdate, ID: id, Err: err}
	}

	s.bus.Publish()
	log.Printf("[CASES] Updated case %s", id)
	return &updated, nil
}

// AttachFileMetadata records the stored document of a case. Only the three
// file columns are written.
func (s *CaseMutationService) AttachFileMetadata(ctx context.Context, caseID, filePath, fileName, fileType string) error {
	result := s.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ?", caseID).
		Updates(map[string]interface{}{
			"file_path": filePath,
			"file_name": fileName,
			"file_type": fileType,
		})
	if result.Error != nil {
		return &FileAttachError{CaseID: caseID, Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &FileAttachError{CaseID: caseID, Err: ErrCaseNotFound}
	}

	s.bus.Publish()
	return nil
}

// DocumentAttachWarning is shown when a case was saved without its document
const DocumentAttachWarning = "Case created but file upload failed. You can try uploading the file again."

// CreateCaseWithDocument creates the case and, only once that succeeded,
// stores the staged document under the new case id and attaches its
// metadata. Document failures never undo the case; they come back as
// warnings alongside the created case.
func (s *CaseMutationService) CreateCaseWithDocument(ctx context.Context, form models.CaseFormData, staged *StagedFile) (*models.Case, []string, error) {
	created, err := s.CreateCase(ctx, form)
	if err != nil {
		return nil, nil, err
	}
	if staged == nil {
		return created, nil, nil
	}

	if err := s.attachDocument(ctx, created, staged); err != nil {
		log.Printf("[WARNING] Case %s saved without document: %v", created.ID, err)
		return created, []string{DocumentAttachWarning}, nil
	}
	return created, nil, nil
}

func (s *CaseMutationService) attachDocument(ctx context.Context, c *models.Case, staged *StagedFile) error {
	if s.storage == nil || !s.storage.IsConfigured() {
		return &FileAttachError{CaseID: c.ID, Err: fmt.Errorf("document storage not configured")}
	}

	key := GenerateCaseDocumentKey(c.ID, staged.Name)
	stored, err := s.storage.UploadReader(ctx, bytes.NewReader(staged.Data), key, staged.ContentType, staged.Size)
	if err != nil {
		return &FileAttachError{CaseID: c.ID, Err: err}
	}

	fileName := filepath.Base(stored.Key)
	if err := s.AttachFileMetadata(ctx, c.ID, stored.Key, fileName, staged.ContentType); err != nil {
		// Do not leave an orphaned object behind
		if delErr := s.storage.Delete(ctx, stored.Key); delErr != nil {
			log.Printf("[WARNING] Failed to remove orphaned document %s: %v", stored.Key, delErr)
		}
		return err
	}

	c.FilePath = &stored.Key
	c.FileName = &fileName
	contentType := staged.ContentType
	c.FileType = &contentType
	return nil
}
