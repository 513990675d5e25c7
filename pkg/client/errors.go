package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed API call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server_error"
	default:
		return "unknown"
	}
}

// FieldError is one entry of a 422 response.
type FieldError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// Path joins Loc with dots.
func (f FieldError) Path() string {
	parts := make([]string, 0, len(f.Loc))
	for _, p := range f.Loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}

// Error is returned for every failed call. It is classified exactly once,
// by the client.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Fields    []FieldError
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify builds the error for a non-2xx response. 401 handling is layered
// on top by the client.
func classify(status int, body []byte) *Error {
	e := &Error{Status: status}
	e.Message, e.Fields = parseDetail(body)
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthentication
	case status == http.StatusForbidden:
		e.Kind = KindAuthorization
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	case status >= 500:
		e.Kind = KindServer
		e.Retryable = true
	default:
		e.Kind = KindUnknown
	}
	return e
}

// parseDetail reads {detail: string} or {detail: [{loc,msg,type}]}.
func parseDetail(body []byte) (string, []FieldError) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text, nil
	}

	var fields []FieldError
	if err := json.Unmarshal(envelope.Detail, &fields); err != nil {
		return "", nil
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Path()+": "+f.Msg)
	}
	return strings.Join(msgs, "; "), fields
}
