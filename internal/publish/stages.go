package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/observability"
)

// Stage is a discrete unit of work in the publish run.
type Stage func(ctx context.Context, rs *runState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

type namedStage struct {
	name string
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning-kind stage errors are recorded and the run
// continues.
func runStages(ctx context.Context, rs *runState, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			rs.report.addError(se)
			rs.recorder.IncStageResult(st.name, metrics.ResultCanceled)
			return se
		default:
		}

		stageCtx := observability.WithStage(ctx, st.name)
		t0 := time.Now()
		err := st.fn(stageCtx, rs)
		dur := time.Since(t0)
		rs.report.Stages = append(rs.report.Stages, st.name)
		rs.report.StageDurations[st.name] = dur
		rs.recorder.ObserveStageDuration(st.name, dur)

		if err == nil {
			rs.recorder.IncStageResult(st.name, metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = newFatalStageError(st.name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			rs.report.addWarning(se.Error())
			rs.recorder.IncStageResult(st.name, metrics.ResultWarning)
			continue
		case StageErrorCanceled:
			rs.report.addError(se)
			rs.recorder.IncStageResult(st.name, metrics.ResultCanceled)
			return se
		default:
			rs.report.addError(se)
			rs.recorder.IncStageResult(st.name, metrics.ResultFatal)
			return se
		}
	}
	return nil
}
