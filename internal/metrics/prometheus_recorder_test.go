package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("build_navigation", 150*time.Millisecond)
	pr.ObservePublishDuration(500 * time.Millisecond)
	pr.IncStageResult("build_navigation", ResultSuccess)
	pr.IncPublishOutcome("success")
	pr.IncPagesGenerated(PageSymbol)
	pr.IncSkippedWrites(3)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("x", time.Second)
	pr.ObservePublishDuration(time.Second)
	pr.IncStageResult("x", ResultFatal)
	pr.IncPublishOutcome("failed")
	pr.IncPagesGenerated(PageSource)
	pr.IncSkippedWrites(1)
}
