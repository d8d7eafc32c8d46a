package interpreter

import (
	"strings"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
)

const (
	msgHostResolution    = "Could not resolve host. Check the URL."
	msgConnectionRefused = "Connection refused. Is the server running on this port?"
	msgConnectionFailed  = "Connection failed. Is the server running?"
	msgTimeout           = "Request timed out."
	msgNoResponse        = "No response received from server"
)

type signature struct {
	kind     model.FailureKind
	message  string
	patterns []string
}

// signatures are matched in order against the lower-cased error text.
// Refusals come before generic connect failures because curl reports them as
// "Failed to connect to host port 80: Connection refused".
var signatures = []signature{
	{
		kind:     model.FailureHostResolution,
		message:  msgHostResolution,
		patterns: []string{"could not resolve host", "no such host", "dial tcp: lookup"},
	},
	{
		kind:     model.FailureConnectionRefused,
		message:  msgConnectionRefused,
		patterns: []string{"connection refused"},
	},
	{
		kind:     model.FailureTimeout,
		message:  msgTimeout,
		patterns: []string{"timeout", "timed out", "deadline exceeded"},
	},
	{
		kind:     model.FailureConnectionFailed,
		message:  msgConnectionFailed,
		patterns: []string{"failed to connect", "network is unreachable", "no route to host"},
	},
}

// Classify maps raw transport error text to a failure kind and a
// human-readable message. Unknown text is returned verbatim.
func Classify(errText string) (model.FailureKind, string) {
	trimmed := strings.TrimSpace(errText)
	if trimmed == "" {
		return model.FailureNoResponse, msgNoResponse
	}

	lower := strings.ToLower(trimmed)
	for _, sig := range signatures {
		for _, p := range sig.patterns {
			if strings.Contains(lower, p) {
				return sig.kind, sig.message
			}
		}
	}

	return model.FailureTransport, trimmed
}
