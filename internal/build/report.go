package build

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	natomic "github.com/natefinch/atomic"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// ReportFile is the report's file name at the output root.
const ReportFile = "build-report.json"

// ReportSchemaVersion is bumped on incompatible changes to the JSON shape.
const ReportSchemaVersion = 1

// Outcome is the final result of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures what a build did.
type Report struct {
	ID    string
	Start time.Time
	End   time.Time

	Documents      int
	Excluded       int
	Drafts         int
	NavNodes       int
	RenderedPages  int
	MetadataFiles  int
	SitemapEntries int
	StaticFiles    int
	OutputFiles    int
	OutputBytes    int64
	OutputDir      string

	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]StageResult
	// stageOrder keeps stages in execution order for the JSON form.
	stageOrder []StageName

	Errors   []error
	Warnings []error
	Outcome  Outcome
}

// NewReport starts a report with a fresh build ID.
func NewReport() *Report {
	return &Report{
		ID:             uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]StageResult),
	}
}

// Finish sets the end time of the report.
func (r *Report) Finish() { r.End = time.Now() }

// Duration is the wall time of the build, or the time so far.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// recordStage stores a stage's duration and result and emits metrics.
func (r *Report) recordStage(stage StageName, d time.Duration, res StageResult, recorder metrics.Recorder) {
	if _, seen := r.StageResults[stage]; !seen {
		r.stageOrder = append(r.stageOrder, stage)
	}
	r.StageDurations[stage] = d
	r.StageResults[stage] = res
	if recorder == nil {
		return
	}
	recorder.ObserveStageDuration(string(stage), d)
	switch res {
	case StageResultSuccess:
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultWarning:
		recorder.IncStageResult(string(stage), metrics.ResultWarning)
	case StageResultFatal:
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	}
}

// DeriveOutcome sets Outcome from the recorded errors and warnings.
func (r *Report) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("documents=%d excluded=%d rendered=%d sitemap=%d static=%d files=%d duration=%s warnings=%d outcome=%s",
		r.Documents, r.Excluded, r.RenderedPages, r.SitemapEntries, r.StaticFiles, r.OutputFiles,
		r.Duration().Truncate(time.Millisecond), len(r.Warnings), r.Outcome)
}

// StageTiming is one stage in the serialized report.
type StageTiming struct {
	Name       string  `json:"name"`
	Result     string  `json:"result"`
	DurationMS float64 `json:"duration_ms"`
}

// Serializable is the JSON form of a Report.
type Serializable struct {
	SchemaVersion  int           `json:"schema_version"`
	ID             string        `json:"build_id"`
	Version        string        `json:"sitebuilder_version"`
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	DurationMS     float64       `json:"duration_ms"`
	Outcome        string        `json:"outcome"`
	Documents      int           `json:"documents"`
	Excluded       int           `json:"excluded"`
	Drafts         int           `json:"drafts"`
	NavNodes       int           `json:"nav_nodes"`
	RenderedPages  int           `json:"rendered_pages"`
	MetadataFiles  int           `json:"metadata_files"`
	SitemapEntries int           `json:"sitemap_entries"`
	StaticFiles    int           `json:"static_files"`
	OutputFiles    int           `json:"output_files"`
	OutputBytes    int64         `json:"output_bytes"`
	OutputDir      string        `json:"output_dir,omitempty"`
	Stages         []StageTiming `json:"stages"`
	Errors         []string      `json:"errors,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// SanitizedCopy converts the report into its JSON-friendly form.
func (r *Report) SanitizedCopy() *Serializable {
	s := &Serializable{
		SchemaVersion:  ReportSchemaVersion,
		ID:             r.ID,
		Version:        version.Resolved(),
		Start:          r.Start.UTC(),
		End:            r.End.UTC(),
		DurationMS:     ms(r.Duration()),
		Outcome:        string(r.Outcome),
		Documents:      r.Documents,
		Excluded:       r.Excluded,
		Drafts:         r.Drafts,
		NavNodes:       r.NavNodes,
		RenderedPages:  r.RenderedPages,
		MetadataFiles:  r.MetadataFiles,
		SitemapEntries: r.SitemapEntries,
		StaticFiles:    r.StaticFiles,
		OutputFiles:    r.OutputFiles,
		OutputBytes:    r.OutputBytes,
		OutputDir:      r.OutputDir,
		Stages:         make([]StageTiming, 0, len(r.stageOrder)),
	}
	for _, name := range r.stageOrder {
		s.Stages = append(s.Stages, StageTiming{
			Name:       string(name),
			Result:     string(r.StageResults[name]),
			DurationMS: ms(r.StageDurations[name]),
		})
	}
	for _, e := range r.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	return s
}

// MarshalJSON encodes the sanitized form.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.SanitizedCopy())
}

// Persist writes the report atomically into root.
func (r *Report) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	data, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	data = append(data, '\n')
	if err := natomic.WriteFile(filepath.Join(root, ReportFile), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
