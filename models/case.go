package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusLandmark  = "landmark"
	CaseStatusRecent    = "recent"
	CaseStatusPrecedent = "precedent"
)

// DateLayout is the calendar date format used for Case.Date
const DateLayout = "2006-01-02"

// Case represents a published court decision
type Case struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `gorm:"not null" json:"title"`
	Court string `gorm:"not null;index" json:"court"`
	// YYYY-MM-DD, so lexical order is calendar order
	Date string `gorm:"type:varchar(10);not null;index" json:"date"`

	Jurisdiction *string    `gorm:"index" json:"jurisdiction"`
	ActName      *string    `json:"act_name"`
	Section      *string    `json:"section"`
	Summary      *string    `gorm:"type:text" json:"summary"`
	FullText     *string    `gorm:"type:text" json:"full_text"`
	Citations    StringList `gorm:"type:text" json:"citations"`
	Status       string     `gorm:"type:varchar(20);not null;default:recent;index" json:"status"`

	// Attached document, written after the case exists
	FilePath *string `json:"file_path"`
	FileName *string `json:"file_name"`
	FileType *string `json:"file_type"`
}

// BeforeCreate hook to generate UUID and default the status
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if !IsValidCaseStatus(c.Status) {
		c.Status = CaseStatusRecent
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// HasDocument reports whether a document was attached to the case
func (c *Case) HasDocument() bool {
	return c.FilePath != nil && *c.FilePath != ""
}

// IsValidCaseStatus checks if the status is one of the enumerated values
func IsValidCaseStatus(status string) bool {
	return slices.Contains(CaseStatuses(), status)
}

// CaseStatuses lists the statuses in display order
func CaseStatuses() []string {
	return []string{CaseStatusLandmark, CaseStatusRecent, CaseStatusPrecedent}
}

// StringList is an ordered list of strings persisted as a JSON array.
// An empty list is stored as NULL.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*l = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("invalid citation list: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*l = out
	return nil
}
