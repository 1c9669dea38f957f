// Package tracing provides a thin OpenTelemetry wrapper used to trace
// experiment runs: one span per run, per synchronization round and per job.
// Instrumentation lives in its own package so that applications which do not
// need tracing can leave the provider uninitialised and pay only for no-op
// spans.
package tracing
