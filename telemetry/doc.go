// Package telemetry collects frame-time histograms into recording
// sessions and ships them to a collection endpoint.
//
// A [Session] owns a bounded set of histograms keyed by [MetricID].
// [BuildReport] serializes a session into the wire format, and an
// [Uploader] posts reports periodically in the background. Telemetry
// never blocks the render loop: when the endpoint is unreachable the
// report for that interval is dropped.
package telemetry
