package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuditEntry describes one access to clinic records under /api/v1.
type AuditEntry struct {
	RequestID  string
	Action     string // read, create, update, delete
	Resource   string
	PatientID  string
	Route      string
	Method     string
	IPAddress  string
	StatusCode int
}

// Audit logs every /api/v1 request as an access record with type
// "record_access". Requests touching a single patient carry its identifier.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, "/api/v1/") {
				return next(c)
			}

			err := next(c)

			entry := newAuditEntry(c, err)
			logger.Info().
				Str("type", "record_access").
				Str("request_id", entry.RequestID).
				Str("action", entry.Action).
				Bool("mutation", entry.Action != "read").
				Str("resource", entry.Resource).
				Str("patient_id", entry.PatientID).
				Str("method", entry.Method).
				Str("route", entry.Route).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_access")

			return err
		}
	}
}

func newAuditEntry(c echo.Context, err error) AuditEntry {
	req := c.Request()
	entry := AuditEntry{
		Action:     methodToAction(req.Method),
		Route:      c.Path(),
		Method:     req.Method,
		IPAddress:  c.RealIP(),
		StatusCode: c.Response().Status,
		Resource:   resourceOf(req.URL.Path),
		PatientID:  patientOf(c),
	}
	if he, ok := err.(*echo.HTTPError); ok {
		entry.StatusCode = he.Code
	}
	entry.RequestID, _ = c.Get("request_id").(string)
	return entry
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// resourceOf returns the first segment after /api/v1/, e.g. "patients".
func resourceOf(path string) string {
	rest := strings.TrimPrefix(path, "/api/v1/")
	seg, _, _ := strings.Cut(rest, "/")
	if seg == "" {
		return "unknown"
	}
	return seg
}

func patientOf(c echo.Context) string {
	if id := c.Param("patient_id"); id != "" {
		return id
	}
	if strings.HasPrefix(c.Path(), "/api/v1/patients/:id") {
		return c.Param("id")
	}
	return ""
}
