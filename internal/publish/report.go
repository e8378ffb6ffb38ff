package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Outcome is the typed enumeration of final run result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures metrics about one publish run. It is persisted into the
// output directory as publish-report.json.
type Report struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Doclets       int `json:"doclets"`
	Pages         int `json:"pages"`
	SourcePages   int `json:"source_pages"`
	TutorialPages int `json:"tutorial_pages"`
	StaticFiles   int `json:"static_files"`
	SkippedWrites int `json:"skipped_writes"`

	Warnings       []string                 `json:"warnings"`
	Errors         []string                 `json:"errors"`
	Stages         []string                 `json:"stages"` // execution order
	StageDurations map[string]time.Duration `json:"stage_durations"`
	Outcome        Outcome                  `json:"outcome"`

	canceled bool
}

func newReport(runID string) *Report {
	return &Report{
		ID:             runID,
		Start:          time.Now(),
		Warnings:       []string{},
		Errors:         []string{},
		StageDurations: make(map[string]time.Duration),
	}
}

func (r *Report) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Report) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
	if se, ok := err.(*StageError); ok && se.Kind == StageErrorCanceled {
		r.canceled = true
	}
}

// finish stamps the end time and derives the overall outcome.
func (r *Report) finish() {
	r.End = time.Now()
	switch {
	case r.canceled:
		r.Outcome = OutcomeCanceled
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration returns the wall-clock time of the run.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("doclets=%d pages=%d sources=%d tutorials=%d skipped=%d duration=%s warnings=%d outcome=%s",
		r.Doclets, r.Pages, r.SourcePages, r.TutorialPages, r.SkippedWrites,
		r.Duration().Truncate(time.Millisecond), len(r.Warnings), r.Outcome)
}

// Persist writes the report atomically into root. Best effort; errors are
// returned for caller logging but do not change the run outcome.
func (r *Report) Persist(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(root, "publish-report.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report: %w", err)
	}
	return nil
}
