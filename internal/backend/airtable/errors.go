package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTimeout      = errors.New("request timed out")
	ErrUnauthorized = errors.New("token expired or revoked (check TODOFLOW_TOKEN)")
	ErrNotFound     = errors.New("table not found")
	ErrNoRecord     = errors.New("record not found")
)

// recordNotFoundType is the error type for an unknown record id in a known table.
const recordNotFoundType = "MODEL_ID_NOT_FOUND"

// APIError is a non-success response from the record store.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "airtable: status %d", e.StatusCode)
	if e.Type != "" {
		b.WriteString(": " + e.Type)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// errorBody accepts both {"error":"NOT_FOUND"} and {"error":{"type":..,"message":..}}.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func parseAPIError(status int, raw []byte) *APIError {
	out := &APIError{StatusCode: status}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Error) == 0 {
		out.Message = strings.TrimSpace(string(raw))
		if out.Message == "" {
			out.Message = http.StatusText(status)
		}
		return out
	}
	var detail errorDetail
	if err := json.Unmarshal(body.Error, &detail); err == nil {
		out.Type = detail.Type
		out.Message = detail.Message
		return out
	}
	var kind string
	if err := json.Unmarshal(body.Error, &kind); err == nil {
		out.Type = kind
	}
	return out
}

// wrapError maps transport and API failures to user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrUnauthorized
		case http.StatusNotFound:
			if apiErr.Type == recordNotFoundType {
				return ErrNoRecord
			}
			return ErrNotFound
		}
	}
	return err
}
