package build

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, st *State) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StagePrepareOutput   StageName = "prepare_output"
	StageLoadContent     StageName = "load_content"
	StageNormalizeMeta   StageName = "normalize_meta"
	StageBuildNavigation StageName = "build_navigation"
	StageEmitSitemap     StageName = "emit_sitemap"
	StageWriteMetadata   StageName = "write_metadata"
	StageRenderPages     StageName = "render_pages"
	StageCopyStatic      StageName = "copy_static"
	StageFinalizeOutput  StageName = "finalize_output"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the failing stage and cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{defs: make([]StageDef, 0, 9)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.defs = append(p.defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a copy of the stage definitions.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.defs))
	copy(out, p.defs)
	return out
}

// DefaultPipeline is the full build.
func DefaultPipeline() *Pipeline {
	return NewPipeline().
		Add(StagePrepareOutput, stagePrepareOutput).
		Add(StageLoadContent, stageLoadContent).
		Add(StageNormalizeMeta, stageNormalizeMeta).
		Add(StageBuildNavigation, stageBuildNavigation).
		Add(StageEmitSitemap, stageEmitSitemap).
		Add(StageWriteMetadata, stageWriteMetadata).
		Add(StageRenderPages, stageRenderPages).
		Add(StageCopyStatic, stageCopyStatic).
		Add(StageFinalizeOutput, stageFinalizeOutput)
}

// NavigationPipeline loads content and builds the tree without writing output.
func NavigationPipeline() *Pipeline {
	return NewPipeline().
		Add(StageLoadContent, stageLoadContent).
		Add(StageNormalizeMeta, stageNormalizeMeta).
		Add(StageBuildNavigation, stageBuildNavigation)
}
