// Package metrics provides observability hooks for publish runs.
//
// The package follows the Null Object pattern: components receive a Recorder
// through dependency injection and default to NoopRecorder, so metrics can be
// collected without nil checks scattered through the pipeline. When the
// preview server (or any other host) wants real metrics, it injects a
// PrometheusRecorder bound to its registry and serves it via HTTPHandler.
package metrics
