package services

import (
	"testing"

	"case_law_app_go/config"
	"case_law_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWelcomeEmail(t *testing.T) {
	admin := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	email, err := BuildWelcomeEmail(admin, "https://cases.example.com/")
	require.NoError(t, err)

	assert.Equal(t, []string{"admin@example.com"}, email.To)
	assert.Contains(t, email.HTMLBody, "https://cases.example.com/admin/cases/new")
	assert.Contains(t, email.TextBody, "admin role")

	viewer := &models.User{Email: "reader@example.com", Role: models.RoleViewer}
	email, err = BuildWelcomeEmail(viewer, "https://cases.example.com")
	require.NoError(t, err)
	assert.NotContains(t, email.TextBody, "/admin/cases/new")
}

func TestSendEmailTestMode(t *testing.T) {
	cfg := &config.Config{EmailTestMode: true}
	err := SendEmail(cfg, &Email{To: []string{"a@example.com"}, Subject: "s", TextBody: "t"})
	assert.NoError(t, err)
}

func TestSendEmailRequiresAPIKey(t *testing.T) {
	cfg := &config.Config{EmailTestMode: false}
	err := SendEmail(cfg, &Email{To: []string{"a@example.com"}, Subject: "s", TextBody: "t"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY")
}
