package handlers

import (
	"errors"
	"log"
	"net/http"

	"case_law_app_go/config"
	"case_law_app_go/middleware"
	"case_law_app_go/services"

	"github.com/labstack/echo/v4"
)

type credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func bindCredentials(c echo.Context) (credentials, error) {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return creds, echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if creds.Email == "" || creds.Password == "" {
		return creds, echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}
	return creds, nil
}

// SignInHandler checks credentials and sets the session cookie
func SignInHandler(c echo.Context) error {
	creds, err := bindCredentials(c)
	if err != nil {
		return err
	}

	session, err := authService.SignIn(c.Request().Context(), creds.Email, creds.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, services.ErrAccountLocked), errors.Is(err, services.ErrAccountInactive):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		log.Printf("[AUTH] Sign in failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign in")
	}

	middleware.SetSessionCookie(c, session)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":     session.User,
		"is_admin": session.User.IsAdmin(),
	})
}

// SignUpHandler creates an account and signs it in
func SignUpHandler(c echo.Context) error {
	creds, err := bindCredentials(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := authService.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if cfg, ok := c.Get("config").(*config.Config); ok {
		if email, err := services.BuildWelcomeEmail(user, cfg.AppURL); err == nil {
			services.SendEmailAsync(cfg, email)
		} else {
			log.Printf("[WARNING] Welcome email for %s not sent: %v", user.Email, err)
		}
	}

	session, err := authService.SignIn(ctx, creds.Email, creds.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Account created but sign in failed")
	}

	middleware.SetSessionCookie(c, session)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"user":     user,
		"is_admin": user.IsAdmin(),
	})
}

// SignOutHandler ends the current session
func SignOutHandler(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := authService.SignOut(c.Request().Context(), cookie.Value); err != nil {
			log.Printf("[AUTH] Sign out failed: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign out")
		}
	}
	middleware.ClearSessionCookie(c)

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCurrentUserHandler returns the signed-in user and their role gate
func GetCurrentUserHandler(c echo.Context) error {
	gate := middleware.GetSessionGate(c)
	if !gate.SignedIn() {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	body := map[string]interface{}{
		"user":       gate.User,
		"is_admin":   gate.IsAdmin,
		"csrf_token": middleware.GetCSRFToken(c),
	}
	// Lets the client warn before the session lapses
	if session := middleware.GetCurrentSession(c); session != nil {
		body["session_expires_at"] = session.ExpiresAt
	}
	return c.JSON(http.StatusOK, body)
}
