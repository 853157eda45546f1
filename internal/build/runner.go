package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// tracerName is the instrumentation scope of build spans.
const tracerName = "git.home.luguber.info/inful/sitebuilder/internal/build"

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage.
func runStages(ctx context.Context, st *State, stages []StageDef) error {
	tracer := otel.Tracer(tracerName)
	for _, def := range stages {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(def.Name, err)
			st.Report.Errors = append(st.Report.Errors, se)
			st.Report.recordStage(def.Name, 0, StageResultCanceled, st.Recorder)
			return se
		}

		stageCtx, span := tracer.Start(ctx, "stage."+string(def.Name),
			attributeSet(st.Report.ID, def.Name)...)
		slog.Debug("Stage started", logfields.Stage(string(def.Name)), logfields.BuildID(st.Report.ID))

		t0 := time.Now()
		err := def.Fn(stageCtx, st)
		dur := time.Since(t0)

		se := classifyStageError(ctx, def.Name, err)
		result := StageResultSuccess
		if se != nil {
			span.RecordError(se)
			switch se.Kind {
			case StageErrorWarning:
				result = StageResultWarning
				st.Report.Warnings = append(st.Report.Warnings, se)
				slog.Warn("Stage completed with warnings", logfields.Stage(string(def.Name)), logfields.Error(se.Err))
			case StageErrorCanceled:
				result = StageResultCanceled
				st.Report.Errors = append(st.Report.Errors, se)
			default:
				result = StageResultFatal
				st.Report.Errors = append(st.Report.Errors, se)
			}
		}
		if result == StageResultFatal || result == StageResultCanceled {
			span.SetStatus(codes.Error, string(result))
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		st.Report.recordStage(def.Name, dur, result, st.Recorder)
		slog.Debug("Stage finished",
			logfields.Stage(string(def.Name)),
			logfields.DurationMS(ms(dur)),
			slog.String("result", string(result)))

		if result == StageResultFatal || result == StageResultCanceled {
			return se
		}
	}
	return nil
}

// classifyStageError maps a stage's raw error onto a StageError. Errors that
// are already StageErrors keep their kind; cancellation of the caller context
// wins over everything else.
func classifyStageError(ctx context.Context, name StageName, err error) *StageError {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return newCanceledStageError(name, err)
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return newFatalStageError(name, err)
}

func attributeSet(buildID string, name StageName) []trace.SpanStartOption {
	return []trace.SpanStartOption{trace.WithAttributes(
		attribute.String("sitebuilder.build_id", buildID),
		attribute.String("sitebuilder.stage", string(name)),
	)}
}
