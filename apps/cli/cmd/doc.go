// Package cmd implements the hitcurl CLI commands using Cobra.
//
// Available commands:
//   - send: Execute a request document
//   - compile: Print the curl command line for a request document
//   - import: Convert curl command lines into request documents
//   - validate: Check request documents without executing them
//   - collection: Manage and send saved collections
//   - env: Manage environments used for variable interpolation
//   - history: Show or clear recorded responses
//   - init: Create a config file and an example request
//   - version: Show hitcurl version information
//   - completion: Generate shell completion scripts
//
// Flags default from HITCURL_* environment variables, then from the
// config file, then from built-in defaults.
package cmd
