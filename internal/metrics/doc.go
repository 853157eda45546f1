// Package metrics provides build observability for sitebuilder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default so call sites never need nil checks; PrometheusRecorder backs
// the Recorder with client_golang collectors on a private registry, which the
// CLI can export to a node_exporter textfile after each build.
package metrics
