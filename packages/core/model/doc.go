// Package model defines the value types exchanged with the request engine.
//
// A Request describes what to send: method, URL, ordered query parameters and
// headers, an optional Auth and an optional Body. Auth and Body are closed sum
// types; a nil value means "none". An HttpResponse is what comes back, including
// the synthesized responses produced for transport failures (Status == 0).
package model
