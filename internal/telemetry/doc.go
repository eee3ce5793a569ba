// Package telemetry provides OpenTelemetry instrumentation for retrievald.
//
// It wires global tracer and meter providers with OTLP export (gRPC or
// HTTP) and manages graceful shutdown. Telemetry failures never crash the
// application; a failed provider leaves the global no-op in place and the
// instance reports itself degraded.
package telemetry
