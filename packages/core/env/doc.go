// Package env resolves {{variable}} references in requests.
//
// It provides functionality for:
//   - Variable interpolation using {{name}} syntax
//   - Process environment lookups with {{$NAME}}
//   - Built-in function evaluation ({{uuid()}}, {{timestamp()}}, {{base64(x)}}, ...)
//   - Loading .env files as variable sources
//
// Unresolved references are left in place and reported through a WarnFunc.
package env
