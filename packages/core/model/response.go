package model

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// NoResponseBody replaces an empty body so callers can tell "empty" from "never sent".
	NoResponseBody = "No response body"
	// StatusTextNoResponse is used when no status code could be resolved.
	StatusTextNoResponse = "No Response"
	// StatusTextUnknown is used when a status line exists but cannot be parsed.
	StatusTextUnknown = "Unknown"
	// StatusTextError is used for transport failures.
	StatusTextError = "Error"
)

// FailureKind classifies a status-0 response.
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureHostResolution    FailureKind = "host_resolution"
	FailureConnectionFailed  FailureKind = "connection_failed"
	FailureConnectionRefused FailureKind = "connection_refused"
	FailureTimeout           FailureKind = "timeout"
	FailureTransport         FailureKind = "transport"
	FailureNoResponse        FailureKind = "no_response"
	FailureUnparseable       FailureKind = "unparseable"
)

type HttpResponse struct {
	Status     int
	StatusText string
	Headers    map[string]string
	Body       string
	Time       time.Duration
	Size       int64
	Timestamp  time.Time
	Failure    FailureKind
}

// OK reports whether a response was obtained at all.
func (r *HttpResponse) OK() bool {
	return r.Status > 0
}

func (r *HttpResponse) Header(key string) string {
	return r.Headers[strings.ToLower(key)]
}

func (r *HttpResponse) ContentType() string {
	return r.Header("Content-Type")
}

func (r *HttpResponse) IsJSON() bool {
	return strings.Contains(r.ContentType(), "json")
}

func (r *HttpResponse) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *HttpResponse) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

func (r *HttpResponse) IsClientError() bool {
	return r.Status >= 400 && r.Status < 500
}

func (r *HttpResponse) IsServerError() bool {
	return r.Status >= 500
}

func (r *HttpResponse) TimeMs() int64 {
	return r.Time.Milliseconds()
}

type responseJSON struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	Time       float64           `json:"time"`
	Size       int64             `json:"size"`
	Timestamp  int64             `json:"timestamp"`
	Failure    FailureKind       `json:"failure,omitempty"`
}

// MarshalJSON encodes time as milliseconds and the timestamp as Unix milliseconds.
func (r HttpResponse) MarshalJSON() ([]byte, error) {
	headers := r.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return json.Marshal(responseJSON{
		Status:     r.Status,
		StatusText: r.StatusText,
		Headers:    headers,
		Body:       r.Body,
		Time:       float64(r.Time) / float64(time.Millisecond),
		Size:       r.Size,
		Timestamp:  r.Timestamp.UnixMilli(),
		Failure:    r.Failure,
	})
}

func (r *HttpResponse) UnmarshalJSON(data []byte) error {
	var v responseJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = HttpResponse{
		Status:     v.Status,
		StatusText: v.StatusText,
		Headers:    v.Headers,
		Body:       v.Body,
		Time:       time.Duration(v.Time * float64(time.Millisecond)),
		Size:       v.Size,
		Timestamp:  time.UnixMilli(v.Timestamp),
		Failure:    v.Failure,
	}
	return nil
}
