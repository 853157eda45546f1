// Package build runs the site build as an ordered pipeline of named stages
// and reports what happened.
package build

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/navtree"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
)

// Builder runs builds for one configuration.
type Builder struct {
	cfg      *config.Config
	loader   content.Loader
	recorder metrics.Recorder
}

// Option configures a Builder.
type Option func(*Builder)

// WithLoader replaces the filesystem loader, e.g. with a content.StaticLoader.
func WithLoader(l content.Loader) Option {
	return func(b *Builder) { b.loader = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// New returns a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if b.loader == nil {
		b.loader = content.NewFSLoader(cfg.Content.Ignore, cfg.Build.LoadConcurrency, cfg.Build.GitLastmodEnabled())
	}
	if b.recorder == nil {
		b.recorder = metrics.NoopRecorder{}
	}
	return b
}

// Build runs the full pipeline. The returned report is never nil; on failure
// it carries the error and the previous output is left in place.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	st := b.newState()
	return st.Report, b.run(ctx, st, DefaultPipeline().Build())
}

// Navigation loads content and returns the navigation tree without writing
// any output.
func (b *Builder) Navigation(ctx context.Context) (*navtree.Node, *Report, error) {
	st := b.newState()
	if err := b.run(ctx, st, NavigationPipeline().Build()); err != nil {
		return nil, st.Report, err
	}
	return st.Tree, st.Report, nil
}

func (b *Builder) newState() *State {
	return &State{
		Config:   b.cfg,
		Loader:   b.loader,
		Recorder: b.recorder,
		Writer:   output.NewWriter(b.cfg.Output.Directory, b.cfg.Output.InPlace, b.cfg.Output.Precompress),
		Report:   NewReport(),
	}
}

func (b *Builder) run(ctx context.Context, st *State, stages []StageDef) error {
	report := st.Report
	ctx, span := otel.Tracer(tracerName).Start(ctx, "build",
		trace.WithAttributes(attribute.String("sitebuilder.build_id", report.ID)))
	defer span.End()

	slog.Info("Build started", logfields.BuildID(report.ID), logfields.Output(b.cfg.Output.Directory))

	err := runStages(ctx, st, stages)
	if err != nil {
		st.Writer.Abort()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	report.Finish()
	report.DeriveOutcome()
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	span.SetAttributes(attribute.String("sitebuilder.outcome", string(report.Outcome)))

	if err != nil {
		slog.Error("Build failed", logfields.BuildID(report.ID), logfields.Error(err))
		return err
	}
	if st.committed {
		if perr := report.Persist(st.Writer.Dir()); perr != nil {
			slog.Warn("Failed to persist build report", logfields.Output(st.Writer.Dir()), logfields.Error(perr))
		}
	}
	slog.Info("Build finished", logfields.BuildID(report.ID), slog.String("summary", report.Summary()))
	return nil
}
