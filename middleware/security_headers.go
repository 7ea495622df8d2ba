package middleware

import (
	"case_law_app_go/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// contentSecurityPolicy admits no inline script. htmx is loaded from unpkg.
const contentSecurityPolicy = "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; object-src 'none'; frame-ancestors 'none'"

// hstsMaxAge is one year, sent only in production and only over HTTPS
const hstsMaxAge = 365 * 24 * 60 * 60

// SecurityHeaders sets the CSP and related response headers on every response
func SecurityHeaders(cfg *config.Config) echo.MiddlewareFunc {
	secure := echomiddleware.SecureConfig{
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "same-origin",
		ContentSecurityPolicy: contentSecurityPolicy,
	}
	if cfg.Environment == "production" {
		secure.HSTSMaxAge = hstsMaxAge
	}
	return echomiddleware.SecureWithConfig(secure)
}
