package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"

	"case_law_app_go/config"
	"case_law_app_go/models"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

var (
	welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome.html").Parse(
		`<html><body><p>Welcome to Case Law Lookup, {{.Email}}.</p>` +
			`<p>Your account has the <strong>{{.Role}}</strong> role.</p>` +
			`{{if .IsAdmin}}<p>You can add and edit cases from <a href="{{.AppURL}}/admin/cases/new">the admin form</a>.</p>{{end}}` +
			`<p><a href="{{.AppURL}}">Browse the case library</a></p></body></html>`))
	welcomeText = texttemplate.Must(texttemplate.New("welcome.txt").Parse(
		"Welcome to Case Law Lookup, {{.Email}}.\n\n" +
			"Your account has the {{.Role}} role.\n" +
			"{{if .IsAdmin}}You can add and edit cases at {{.AppURL}}/admin/cases/new\n{{end}}" +
			"\nBrowse the case library: {{.AppURL}}\n"))
)

// WelcomeEmailData contains data for the welcome email templates
type WelcomeEmailData struct {
	Email   string
	Role    string
	IsAdmin bool
	AppURL  string
}

// BuildWelcomeEmail creates the welcome email for a new account
func BuildWelcomeEmail(user *models.User, appURL string) (*Email, error) {
	data := WelcomeEmailData{
		Email:   user.Email,
		Role:    user.Role,
		IsAdmin: user.IsAdmin(),
		AppURL:  strings.TrimRight(appURL, "/"),
	}

	var html, text bytes.Buffer
	if err := welcomeHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render welcome email: %w", err)
	}
	if err := welcomeText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render welcome email: %w", err)
	}

	return &Email{
		To:       []string{user.Email},
		Subject:  "Welcome to Case Law Lookup",
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode, not sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}

// SendEmailAsync sends an email in the background so handlers do not block on Resend
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}
