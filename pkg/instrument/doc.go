// Package instrument provides the Prometheus metrics and OpenTelemetry
// tracing used by the component runtime.
//
// A nil *Metrics is valid and records nothing, so engine packages call it
// unconditionally:
//
//	reg := prometheus.NewRegistry()
//	m := instrument.NewMetrics(instrument.WithRegistry(reg))
//	env := component.NewEnv(dom.NewDocument(), component.WithMetrics(m))
//
// Spans are created from the global tracer provider unless a tracer is
// injected. Configure the provider in main() before mounting:
//
//	otel.SetTracerProvider(tp)
package instrument
