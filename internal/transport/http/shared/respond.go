// Package shared holds the HTTP response helpers used by every feature
// handler so error bodies and status mapping stay uniform.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "vaxledger/pkg/domain-errors"
)

// errorBody is the uniform JSON error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusByCode maps domain error codes to HTTP statuses. Every rejected
// precondition keeps its distinguishable code in the body so clients can
// branch without parsing messages.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeTimeout:            http.StatusGatewayTimeout,
	dErrors.CodeInvariantViolation: http.StatusConflict,

	dErrors.CodeAlreadyRegistered:     http.StatusConflict,
	dErrors.CodeNotRegistered:         http.StatusNotFound,
	dErrors.CodeNotAuthorizedHospital: http.StatusForbidden,
	dErrors.CodeInvalidParent:         http.StatusBadRequest,
	dErrors.CodeNotTokenOwner:         http.StatusForbidden,
	dErrors.CodeTransferNotAllowed:    http.StatusForbidden,
}

// WriteError maps a coded domain error onto the wire. Uncoded errors
// surface as 500s with a generic message so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := errorBody{Code: string(code), Message: dErrors.MessageOf(err)}
	if status == http.StatusInternalServerError {
		body = errorBody{Code: string(dErrors.CodeInternal), Message: "internal server error"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
