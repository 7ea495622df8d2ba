package middleware

import (
	"net/http"
	"time"

	"case_law_app_go/config"
	"case_law_app_go/db"
	"case_law_app_go/models"
	"case_law_app_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "case_law_session"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
	// ContextKeyGate is the context key for the request's SessionGate
	ContextKeyGate = "session_gate"
)

// LoadSession resolves the session cookie, if any, into a SessionGate.
// Anonymous requests pass through with an empty gate.
func LoadSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyGate, services.GateFor(nil))

			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			session, err := services.ValidateSession(db.DB, cookie.Value)
			if err != nil || !session.User.IsActive {
				ClearSessionCookie(c)
				return next(c)
			}

			c.Set(ContextKeyUser, &session.User)
			c.Set(ContextKeySession, session)
			c.Set(ContextKeyGate, services.GateFor(&session.User))
			return next(c)
		}
	}
}

// RequireAuth rejects requests without a signed-in user. Must run after LoadSession.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !GetSessionGate(c).SignedIn() {
				if c.Request().Header.Get("HX-Request") == "true" {
					c.Response().Header().Set("HX-Redirect", "/auth")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects signed-in users without the admin role
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			gate := GetSessionGate(c)
			if !gate.SignedIn() {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			if !gate.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetCurrentSession retrieves the current session from context
func GetCurrentSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// GetSessionGate returns the gate set by LoadSession, or an anonymous gate
func GetSessionGate(c echo.Context) services.SessionGate {
	if gate, ok := c.Get(ContextKeyGate).(services.SessionGate); ok {
		return gate
	}
	return services.GateFor(GetCurrentUser(c))
}

func isProduction(c echo.Context) bool {
	cfg, ok := c.Get("config").(*config.Config)
	return ok && cfg.Environment == "production"
}

// SetSessionCookie writes the session cookie for a new session
func SetSessionCookie(c echo.Context, session *models.Session) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}
