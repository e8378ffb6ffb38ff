package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PageKind labels page counters by the kind of page produced.
type PageKind string

const (
	PageSymbol   PageKind = "symbol"
	PageSource   PageKind = "source"
	PageTutorial PageKind = "tutorial"
	PageGlobal   PageKind = "global"
	PageIndex    PageKind = "index"
)

// Recorder defines observability hooks for publish and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must tolerate a zero-value receiver so the NoopRecorder can be injected.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObservePublishDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncPublishOutcome(outcome string) // outcome: success|warning|failed|canceled
	IncPagesGenerated(kind PageKind)
	IncSkippedWrites(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObservePublishDuration(time.Duration)       {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncPublishOutcome(string)                   {}
func (NoopRecorder) IncPagesGenerated(PageKind)                 {}
func (NoopRecorder) IncSkippedWrites(int)                       {}
