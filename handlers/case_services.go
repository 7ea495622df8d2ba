package handlers

import (
	"errors"
	"log"
	"net/http"

	"case_law_app_go/services"
	"case_law_app_go/templates/components"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Case services shared by the handlers, set up once by InitCaseServices
var (
	caseQueries   *services.CaseQueryService
	caseLister    services.CaseLister
	caseMutations *services.CaseMutationService
	caseStorage   services.StorageProvider
	resultBus     *services.ResultSetBus
	authService   *services.AuthService

	// One guard per browser so late live-search responses are dropped
	searchGuards = services.NewGuardRegistry(4096)
)

// InitCaseServices wires the case read and write paths onto database and
// storage. The returned cache must be run by the caller to receive
// invalidations.
func InitCaseServices(database *gorm.DB, storage services.StorageProvider, bus *services.ResultSetBus) *services.CaseQueryCache {
	if bus == nil {
		bus = services.NewResultSetBus()
	}
	resultBus = bus
	caseStorage = storage
	caseQueries = services.NewCaseQueryService(database)
	cache := services.NewCaseQueryCache(caseQueries, bus, services.DefaultCacheEntries)
	caseLister = cache
	caseMutations = services.NewCaseMutationService(database, bus, storage)
	return cache
}

// InitAuthService sets up sign in and sign up
func InitAuthService(database *gorm.DB, allowAdminSignup bool) {
	authService = services.NewAuthService(database, allowAdminSignup)
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// renderToast writes a toast fragment with the given status
func renderToast(c echo.Context, status int, kind, title, message string) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return components.Toast(kind, title, message).Render(c.Request().Context(), c.Response())
}

// caseErrorStatus maps service errors onto HTTP status codes
func caseErrorStatus(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, services.ErrUnsupportedFileType), errors.Is(err, services.ErrFileTooLarge):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrCaseNotFound):
		return http.StatusNotFound, "Case not found"
	case errors.Is(err, services.ErrCreateFailed):
		return http.StatusInternalServerError, "Failed to create case"
	case errors.Is(err, services.ErrUpdateFailed):
		return http.StatusInternalServerError, "Failed to update case"
	default:
		return http.StatusInternalServerError, "Failed to load cases"
	}
}

// respondCaseError turns a service error into a JSON error or, for HTMX
// requests, an error toast
func respondCaseError(c echo.Context, err error) error {
	status, message := caseErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[CASES] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	if isHTMX(c) {
		return renderToast(c, status, components.ToastError, "Error", message)
	}
	return echo.NewHTTPError(status, message)
}
