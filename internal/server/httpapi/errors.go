package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
)

const (
	msgInvalidInput       = "Invalid input"
	msgUserExists         = "User already exists"
	msgAlreadyActive      = "Account already activated"
	msgInvalidToken       = "Invalid or expired token"
	msgInvalidCredentials = "Invalid credentials"
	msgNotActivated       = "Account not activated. Please check your email."
	msgNotFound           = "Not found"
	msgExhausted          = "Could not allocate a short code, please try again later"
	msgServerError        = "Server error"
	msgNoToken            = "No token, authorization denied"
	msgBadToken           = "Token is not valid"
)

type apiError struct {
	status  int
	message string
}

// errorTable maps domain errors to responses. Order matters: internal
// errors may wrap a domain sentinel and must be matched first.
var errorTable = []struct {
	target error
	resp   apiError
}{
	{common.ErrorInternal, apiError{http.StatusInternalServerError, msgServerError}},
	{common.ErrorInvalidInput, apiError{http.StatusBadRequest, msgInvalidInput}},
	{common.ErrorAlreadyExists, apiError{http.StatusBadRequest, msgUserExists}},
	{common.ErrorAlreadyActive, apiError{http.StatusBadRequest, msgAlreadyActive}},
	{common.ErrInvalidToken, apiError{http.StatusBadRequest, msgInvalidToken}},
	{common.ErrorInvalidCredentials, apiError{http.StatusBadRequest, msgInvalidCredentials}},
	{common.ErrorNotActivated, apiError{http.StatusUnauthorized, msgNotActivated}},
	{common.ErrorUnauthorized, apiError{http.StatusUnauthorized, msgBadToken}},
	{common.ErrorNotFound, apiError{http.StatusNotFound, msgNotFound}},
	{common.ErrorResourceExhausted, apiError{http.StatusServiceUnavailable, msgExhausted}},
}

func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return e.resp
		}
	}
	return apiError{http.StatusInternalServerError, msgServerError}
}

type messageResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// fail answers with the mapped status. Server errors are logged with the
// operation and collaborator; the client only gets the generic message.
// notFound, when given, replaces the default not-found message.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, op string, err error, notFound ...string) {
	resp := classify(err)

	if resp.status == http.StatusInternalServerError {
		attrs := []any{"op", op, "error", err}
		var ie *common.InternalError
		if errors.As(err, &ie) {
			attrs = append(attrs, "collaborator", ie.Collaborator)
		}
		s.logger.Error(r.Context(), "request failed", attrs...)
	}

	if resp.status == http.StatusNotFound && len(notFound) > 0 {
		resp.message = notFound[0]
	}

	body := messageResponse{Message: resp.message}
	var verr *ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Fields
	}
	writeJSON(w, resp.status, body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
