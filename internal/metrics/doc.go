// Package metrics records conversion metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can
// be switched on without nil checks at call sites:
//
//	reg := prometheus.NewRegistry()
//	conv := convert.New(cfg, convert.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The CLI has no long-running server to scrape, so the registry is exported
// in node_exporter textfile format with WriteTextfile after a run.
package metrics
