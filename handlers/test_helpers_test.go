package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"case_law_app_go/config"
	"case_law_app_go/db"
	"case_law_app_go/middleware"
	"case_law_app_go/models"
	"case_law_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while letting the errgroup reads share it
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(db.SQLiteDialector("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(&models.Case{}, &models.User{}, &models.Session{}))

	db.DB = testDB
	InitCaseServices(testDB, services.NewLocalStorage(t.TempDir()), nil)
	InitAuthService(testDB, false)

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
		AppURL:        "http://localhost:8080",
	})

	return e, c, rec
}

// signInAs puts a gate for user on the context the way LoadSession does
func signInAs(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
	c.Set(middleware.ContextKeyGate, services.GateFor(user))
}

func seedUser(t *testing.T, database *gorm.DB, email, role string) *models.User {
	t.Helper()
	hash, err := services.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{Email: email, Password: hash, Role: role, IsActive: true}
	require.NoError(t, database.Create(user).Error)
	return user
}

func seedCase(t *testing.T, database *gorm.DB, c models.Case) models.Case {
	t.Helper()
	if c.Status == "" {
		c.Status = models.CaseStatusRecent
	}
	require.NoError(t, database.Create(&c).Error)
	return c
}

// multipartBody builds a multipart form with the given fields and an optional file part
func multipartBody(t *testing.T, fields map[string]string, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + fileName + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func stringToPtr(s string) *string {
	return &s
}
