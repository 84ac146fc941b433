package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request ID; the client gets the
// survey.MapError message as JSON for API callers or as an error page
// otherwise.

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/JonMunkholm/surveyviz/internal/identity"
	"github.com/JonMunkholm/surveyviz/internal/logging"
	"github.com/JonMunkholm/surveyviz/internal/survey"
	"github.com/JonMunkholm/surveyviz/internal/web/templates"
)

// ErrorResponse is the JSON body of API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusByCode maps support codes to HTTP statuses.
var statusByCode = map[string]int{
	"FILE001": http.StatusRequestEntityTooLarge,
	"FILE002": http.StatusBadRequest,
	"FILE003": http.StatusBadRequest,
	"FILE004": http.StatusBadRequest,
	"FILE005": http.StatusBadRequest,
	"VAL001":  http.StatusUnprocessableEntity,
	"VAL005":  http.StatusUnprocessableEntity,
	"VAL006":  http.StatusNotFound,
	"AUTH001": http.StatusUnauthorized,
	"AUTH002": http.StatusUnauthorized,
	"UPL002":  http.StatusServiceUnavailable,
	"UPL004":  499,
	"UPL005":  http.StatusGatewayTimeout,
	"RATE001": http.StatusTooManyRequests,
}

// statusFor picks the response status for err.
func statusFor(err error) int {
	if s, ok := statusByCode[survey.MapError(err).Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes a user-facing response. A zero status is
// derived from the error.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := survey.MapError(err)
	if status == 0 {
		status = statusFor(err)
	}

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= 500 {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		writeJSONStatus(w, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	var user *identity.Identity
	if id, ok := identity.FromContext(r.Context()); ok {
		user = &id
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(msg, user).Render(r.Context(), w); err != nil {
		logger.Error("render error page", "error", err)
	}
}

// denyAccess handles requests without a session: API callers get 401,
// browsers are sent to the sign-in page.
func denyAccess(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		respondError(w, r, err, http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// wantsJSON reports whether the client expects a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP returns the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
