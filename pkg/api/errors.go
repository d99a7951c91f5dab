package api

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// APIError is a transport failure or a non-2xx answer from the backend.
// StatusCode is 0 when no response was received. Detail only carries text
// the backend put in its JSON body; Title is the <title> of an HTML error
// page, usually written by a proxy in front of it.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
	Title      string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else if e.Title != "" {
		msg += ": " + e.Title
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// Detail returns the human-readable message the server attached to err, or
// "" when there is none.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// DetailOr returns Detail(err), falling back to err's own text.
func DetailOr(err error) string {
	if d := Detail(err); d != "" {
		return d
	}
	return err.Error()
}

// extractDetail looks for a message in an error body: FastAPI's "detail"
// (string, or a validation list), then "message".
func extractDetail(body string) string {
	if gjson.Valid(body) {
		detail := gjson.Get(body, "detail")
		switch {
		case detail.Type == gjson.String && detail.Str != "":
			return detail.Str
		case detail.IsArray():
			if msg := detail.Get("0.msg").String(); msg != "" {
				return msg
			}
		}
		if msg := gjson.Get(body, "message").String(); msg != "" {
			return msg
		}
	}
	return ""
}
