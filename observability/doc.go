// Package observability wires OpenTelemetry tracing and metrics for the
// relay. Traces and metrics export over OTLP HTTP; instruments cover
// transcription requests, conversions, and active streams.
package observability
