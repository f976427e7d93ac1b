package metrics

import "time"

// Outcome enumerates conversion run results.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Recorder defines observability hooks for conversion runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome Outcome)
	AddFootnotes(n int)
	AddQRCodes(n int)
	IncQREmissionFailure()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(Outcome)                      {}
func (NoopRecorder) AddFootnotes(int)                           {}
func (NoopRecorder) AddQRCodes(int)                             {}
func (NoopRecorder) IncQREmissionFailure()                      {}
