package middleware

import (
	"net/http"
	"slices"

	"case_law_app_go/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	// CSRFHeader carries the token on fetch and htmx requests
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField carries the token on plain form posts
	CSRFFormField = "_csrf"
	// CSRFCookieName holds the double-submit token
	CSRFCookieName = "_csrf"

	csrfContextKey = "csrf"
)

// CSRF checks the double-submit token on unsafe methods. The cookie is
// readable by the page so the client can echo it back in CSRFHeader.
// Requests to skipPaths (matched on the route path) are not checked.
func CSRF(cfg *config.Config, skipPaths ...string) echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "header:" + CSRFHeader + ",form:" + CSRFFormField,
		ContextKey:     csrfContextKey,
		CookieName:     CSRFCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: false,
		CookieSecure:   cfg.Environment == "production",
		CookieSameSite: http.SameSiteLaxMode,
		Skipper: func(c echo.Context) bool {
			return slices.Contains(skipPaths, c.Path())
		},
	})
}

// GetCSRFToken returns the token issued for this request, for the client
// to send back in CSRFHeader
func GetCSRFToken(c echo.Context) string {
	token, _ := c.Get(csrfContextKey).(string)
	return token
}
