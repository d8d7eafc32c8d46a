// Package capture extracts values from responses.
//
// A path is either a pseudo-path naming a response field:
//   - status, statusText, time (milliseconds), size
//   - header.<name> (case-insensitive)
//   - body (the whole body, decoded when it is JSON)
//
// or a gjson path evaluated against a JSON body, such as "data.items.0.id"
// or "items.#.name". Extraction expressions may be named: "id=data.id".
package capture
