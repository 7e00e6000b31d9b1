package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Server error codes the client reacts to.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeDuplicateUser    = "DUPLICATE_USER"
)

var (
	// ErrDuplicateUser matches any API error reporting an existing user.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUnauthorized matches any API error with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// Kind tags an error with its place in the client's error taxonomy.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindDuplicate
	KindAPI
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Anything that is not an API response error,
// such as a network failure or a cancelled context, is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	if errors.Is(err, ErrDuplicateUser) {
		return KindDuplicate
	}
	var ae *Error
	if errors.As(err, &ae) {
		return KindAPI
	}
	return KindUnknown
}

// Error is a non-2xx API response that is not a validation failure.
type Error struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

// Key returns the "<status>_<code>" classification key, e.g. "409_DUPLICATE_USER".
func (e *Error) Key() string {
	return strconv.Itoa(e.Status) + "_" + e.Code
}

// Is reports whether e matches one of the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDuplicateUser:
		return e.Code == CodeDuplicateUser &&
			(e.Status == http.StatusBadRequest || e.Status == http.StatusConflict)
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// ValidationError carries the server's per-field messages unaltered.
type ValidationError struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// envelope is the error body the server sends: {code, message, details?}.
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// classify turns a non-2xx status and body into a typed error.
// Bodies that are not a valid envelope still yield an *Error so callers
// can rely on the status.
func classify(status int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Code == "" {
		msg := strings.TrimSpace(string(body))
		if msg == "" || err != nil {
			msg = http.StatusText(status)
		}
		return &Error{Status: status, Message: msg}
	}

	if env.Message == "" {
		env.Message = http.StatusText(status)
	}

	if status == http.StatusBadRequest && env.Code == CodeValidationFailed {
		var fields []FieldError
		if len(env.Details) > 0 {
			// Details that are not a field list are dropped; the message
			// still describes the failure.
			_ = json.Unmarshal(env.Details, &fields)
		}
		return &ValidationError{
			Status:  status,
			Code:    env.Code,
			Message: env.Message,
			Fields:  fields,
		}
	}

	return &Error{
		Status:  status,
		Code:    env.Code,
		Message: env.Message,
		Details: env.Details,
	}
}
