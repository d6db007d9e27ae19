// Package pipeline orchestrates a generation run: load the phase record
// files, merge them into the entity model, render both projections, validate
// the result, and persist the report. Stages run strictly in order; a fatal
// stage error aborts the run, warnings accumulate into the report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/apiforge/internal/categories"
	"git.home.luguber.info/inful/apiforge/internal/config"
	"git.home.luguber.info/inful/apiforge/internal/entity"
	"git.home.luguber.info/inful/apiforge/internal/logfields"
	"git.home.luguber.info/inful/apiforge/internal/report"
)

// Stage is a discrete unit of work in a generation run.
type Stage func(ctx context.Context, st *State) error

// StageDef pairs a stage with its name for timing and error reporting.
type StageDef struct {
	Name string
	Fn   Stage
}

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Record and continue.
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
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// State carries mutable state across stages.
type State struct {
	Config config.Config
	Logger *slog.Logger
	Report *report.Report

	Inputs      entity.Inputs
	Categories  *categories.Mapping
	Model       *entity.Model
	MergeReport *entity.MergeReport

	Timings map[string]time.Duration
}

// NewState constructs the state for one run.
func NewState(cfg config.Config, logger *slog.Logger) *State {
	return &State{
		Config:  cfg,
		Logger:  logger,
		Report:  report.New(),
		Timings: make(map[string]time.Duration),
	}
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning-kind stage errors are already in the report by
// the time the stage returns.
func runStages(ctx context.Context, st *State, stages []StageDef) error {
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			return newCanceledStageError(stage.Name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := stage.Fn(ctx, st)
		dur := time.Since(t0)
		st.Timings[stage.Name] = dur

		st.Logger.Debug("stage complete",
			logfields.RunID(st.Report.RunID),
			logfields.Stage(stage.Name),
			logfields.DurationMS(float64(dur.Microseconds())/1000))

		if err != nil {
			se, ok := err.(*StageError)
			if !ok {
				se = newFatalStageError(stage.Name, err)
			}
			if se.Kind == StageErrorWarning {
				continue
			}
			st.Logger.Error("stage failed",
				logfields.RunID(st.Report.RunID),
				logfields.Stage(stage.Name),
				logfields.Error(se))
			return se
		}
	}
	return nil
}
