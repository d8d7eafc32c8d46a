// Package collection defines the on-disk form of requests, collections and
// environments, and converts requests to and from the core model.
//
// Documents are JSON or YAML. A request document carries every auth and
// body sub-object; conversion reads only the one selected by its type.
package collection
