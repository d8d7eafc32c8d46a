// Package stats summarizes the latencies of repeated sends.
//
// Latencies are kept in an HDR histogram in microseconds, from 1µs to 60s with
// three significant digits. Responses with status 0 count as errors and do not
// contribute a latency sample.
package stats
