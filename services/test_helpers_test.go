package services

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	casedb "case_law_app_go/db"
	"case_law_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database with the case schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	db, err := gorm.Open(casedb.SQLiteDialector(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Case{}, &models.User{}, &models.Session{}))
	return db
}

func stringToPtr(s string) *string {
	return &s
}

// seedCase inserts a case directly, bypassing the mutation service
func seedCase(t *testing.T, db *gorm.DB, c models.Case) models.Case {
	t.Helper()
	if c.Status == "" {
		c.Status = models.CaseStatusRecent
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func validForm() models.CaseFormData {
	return models.CaseFormData{
		Title:        "Kesavananda Bharati v. State of Kerala",
		Court:        "Supreme Court of India",
		Date:         "1973-04-24",
		Jurisdiction: "India",
		ActName:      "Constitution of India",
		Section:      "Article 368",
		Summary:      "Basic structure doctrine.",
		Citations:    "AIR 1973 SC 1461, (1973) 4 SCC 225",
		Status:       "landmark",
	}
}

// MockStorage is a testify mock of StorageProvider
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error) {
	args := m.Called(ctx, reader, key, contentType, size)
	if r, ok := args.Get(0).(*StorageResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	if r, ok := args.Get(0).(io.ReadCloser); ok {
		return r, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockStorage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) IsConfigured() bool {
	return m.Called().Bool(0)
}
