// Package wire holds the small pieces shared by the compiler and the
// interpreter: instrumentation markers, shell quoting and URL component encoding.
package wire

import (
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
)

// Markers are the sentinels written before each instrumentation value in the
// transport output.
type Markers struct {
	Time string
	Size string
	Code string
}

// DefaultMarkers are long enough that a response body will not contain them by accident.
var DefaultMarkers = Markers{
	Time: "__HITCURL_7f3a9c1e_TIME__",
	Size: "__HITCURL_7f3a9c1e_SIZE__",
	Code: "__HITCURL_7f3a9c1e_CODE__",
}

// IsZero reports whether no marker is set.
func (m Markers) IsZero() bool {
	return m.Time == "" && m.Size == "" && m.Code == ""
}

// OrDefault returns m, or DefaultMarkers when m is zero.
func (m Markers) OrDefault() Markers {
	if m.IsZero() {
		return DefaultMarkers
	}
	return m
}

// WriteOut is the curl --write-out template that emits the three markers.
func (m Markers) WriteOut() string {
	return "\n" + m.Time + "%{time_total}\n" + m.Size + "%{size_download}\n" + m.Code + "%{http_code}"
}

// Trailer renders the same block curl would emit for the given values.
func (m Markers) Trailer(seconds, size, code string) string {
	return "\n" + m.Time + seconds + "\n" + m.Size + size + "\n" + m.Code + code
}

// ShellQuote returns s unchanged when it needs no quoting, otherwise wrapped in
// single quotes with embedded single quotes escaped as '\''.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if isShellSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_./:,=@%+", r):
		default:
			return false
		}
	}
	return true
}

// EncodeComponent percent-encodes s the way encodeURIComponent does,
// so spaces become %20 rather than '+'.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// EncodePairs renders the enabled, keyed pairs of kvs as key=value joined with '&'.
func EncodePairs(kvs []model.KeyValue) string {
	parts := make([]string, 0, len(kvs))
	for _, kv := range model.Enabled(kvs) {
		parts = append(parts, EncodeComponent(kv.Key)+"="+EncodeComponent(kv.Value))
	}
	return strings.Join(parts, "&")
}

// StripNewlines removes CR and LF so a value cannot start a new header line.
func StripNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
