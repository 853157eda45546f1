package build

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// countingRecorder records the calls the pipeline makes.
type countingRecorder struct {
	metrics.NoopRecorder
	mu        sync.Mutex
	documents int
	pages     int
	outcome   metrics.BuildOutcomeLabel
	stages    map[metrics.ResultLabel]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{stages: map[metrics.ResultLabel]int{}}
}

func (c *countingRecorder) AddDocuments(n int) { c.documents += n }

func (c *countingRecorder) IncPagesRendered() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages++
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) { c.outcome = o }

func (c *countingRecorder) IncStageResult(_ string, r metrics.ResultLabel) { c.stages[r]++ }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	minify := false
	gitLastmod := false
	cfg := &config.Config{
		Site: config.SiteConfig{
			Title:    "Test Site",
			Origin:   "https://example.com",
			Language: "en",
		},
		Content: config.ContentConfig{
			Root:      filepath.Join(root, "content"),
			StaticDir: filepath.Join(root, "static"),
		},
		Output: config.OutputConfig{
			Directory: filepath.Join(root, "public"),
			Minify:    &minify,
		},
		Build: config.BuildConfig{GitLastmod: &gitLastmod},
	}
	require.NoError(t, config.ApplyDefaults(cfg))
	return cfg
}

func write(t *testing.T, dir, rel, body string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o600))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestBuild_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	write(t, cfg.Content.Root, "index.md", "---\ntitle: Home\n---\nWelcome home.\n")
	write(t, cfg.Content.Root, "guide/install.md", "# Install\n\nRun the [installer](https://go.dev/).\n")
	write(t, cfg.Content.Root, "guide/hidden.md", "---\nnav_exclude: true\n---\nHidden from menus.\n")
	write(t, cfg.Content.Root, "drafts/idea.md", "---\ndraft: true\n---\nNot ready.\n")
	write(t, cfg.Content.StaticDir, "css/site.css", "body { margin: 0; }")

	recorder := newCountingRecorder()
	report, err := New(cfg, WithRecorder(recorder)).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	out := cfg.Output.Directory
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "index.json"))
	assert.FileExists(t, filepath.Join(out, "guide", "install", "index.html"))
	assert.FileExists(t, filepath.Join(out, "guide", "hidden", "index.html"), "excluded pages are still rendered")
	assert.NoFileExists(t, filepath.Join(out, "drafts", "idea", "index.html"), "drafts are not rendered")
	assert.FileExists(t, filepath.Join(out, "css", "site.css"))
	assert.NoDirExists(t, out+"_stage")

	sitemapXML, err := os.ReadFile(filepath.Join(out, "sitemap.xml"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(sitemapXML), "<url>"))
	assert.Contains(t, string(sitemapXML), "<loc>https://example.com/guide/hidden/</loc>")
	assert.NotContains(t, string(sitemapXML), "drafts")

	var page map[string]any
	readJSON(t, filepath.Join(out, "guide", "install", "index.json"), &page)
	assert.Equal(t, "Install", page["title"])
	assert.Equal(t, "https://example.com/guide/install/", page["canonical_url"])

	installHTML, err := os.ReadFile(filepath.Join(out, "guide", "install", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(installHTML), `<a href="/">Home</a>`)
	assert.NotContains(t, string(installHTML), `href="/guide/hidden/"`, "excluded page must not be in navigation")
	assert.Contains(t, string(installHTML), `rel="noopener noreferrer"`)

	var persisted Serializable
	readJSON(t, filepath.Join(out, ReportFile), &persisted)
	assert.Equal(t, report.ID, persisted.ID)
	assert.Equal(t, "success", persisted.Outcome)
	assert.Equal(t, 4, persisted.Documents)
	assert.Equal(t, 3, persisted.RenderedPages)
	require.Len(t, persisted.Stages, 9)
	assert.Equal(t, string(StagePrepareOutput), persisted.Stages[0].Name)
	assert.Equal(t, string(StageFinalizeOutput), persisted.Stages[8].Name)

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 4, report.Documents)
	assert.Equal(t, 2, report.Excluded)
	assert.Equal(t, 1, report.Drafts)
	assert.Equal(t, 3, report.SitemapEntries)
	assert.Equal(t, 1, report.StaticFiles)

	assert.Equal(t, 4, recorder.documents)
	assert.Equal(t, 3, recorder.pages)
	assert.Equal(t, metrics.BuildOutcomeSuccess, recorder.outcome)
	assert.Equal(t, 9, recorder.stages[metrics.ResultSuccess])
}

func TestBuild_FailureKeepsPreviousOutput(t *testing.T) {
	cfg := testConfig(t)
	write(t, cfg.Content.Root, "index.md", "# Home\n")
	_, err := New(cfg).Build(context.Background())
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)

	write(t, cfg.Content.Root, "broken.md", "---\ntitle: [oops\n---\n")
	report, err := New(cfg).Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.ErrorIs(t, err, content.ErrFrontMatter)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageLoadContent, se.Stage)
	assert.Equal(t, StageErrorFatal, se.Kind)
	assert.Equal(t, ferrors.CategoryContent, ferrors.GetCategory(err))

	after, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NoDirExists(t, cfg.Output.Directory+"_stage")
	assert.Equal(t, StageResultFatal, report.StageResults[StageLoadContent])
	_, ran := report.StageResults[StageRenderPages]
	assert.False(t, ran, "stages after a fatal one must not run")
}

func TestBuild_StaticLoaderAndDuplicates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.StaticDir = ""
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loader := content.StaticLoader{Documents: []content.Document{
		{Path: "/", HTML: []byte("<p>home</p>"), ModTime: now},
		{Path: "/x/", FrontMatter: content.FrontMatter{Title: "First"}, ModTime: now},
		{Path: "/x/", FrontMatter: content.FrontMatter{Title: "Second"}, ModTime: now},
	}}

	report, err := New(cfg, WithLoader(loader)).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Warnings, 1)
	assert.ErrorIs(t, report.Warnings[0], ErrDuplicatePaths)
	assert.Equal(t, StageResultWarning, report.StageResults[StageBuildNavigation])

	var page map[string]any
	readJSON(t, filepath.Join(cfg.Output.Directory, "x", "index.json"), &page)
	assert.Equal(t, "Second", page["title"], "last write wins")
}

func TestBuild_InvalidPathIsValidationError(t *testing.T) {
	cfg := testConfig(t)
	loader := content.StaticLoader{Documents: []content.Document{{Path: "no-slashes"}}}

	_, err := New(cfg, WithLoader(loader)).Build(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestBuild_NonStringFrontMatterKeys(t *testing.T) {
	cfg := testConfig(t)
	write(t, cfg.Content.Root, "index.md", "---\ntitle: Home\nversions:\n  1: one\n  2: two\n---\nWelcome.\n")

	_, err := New(cfg).Build(context.Background())
	require.NoError(t, err)

	var page struct {
		Params map[string]any `json:"params"`
	}
	readJSON(t, filepath.Join(cfg.Output.Directory, "index.json"), &page)
	assert.Equal(t, map[string]any{"1": "one", "2": "two"}, page.Params["versions"])
}

func TestBuild_UnencodableMetadataIsContentError(t *testing.T) {
	cfg := testConfig(t)
	loader := content.StaticLoader{Documents: []content.Document{
		{Path: "/", RelPath: "index.md", Params: map[string]any{"ratio": math.NaN()}},
	}}

	_, err := New(cfg, WithLoader(loader)).Build(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))
	assert.False(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	assert.Contains(t, ferrors.NewCLIErrorAdapter(false, nil).FormatError(err), "index.md")
	assert.NoDirExists(t, cfg.Output.Directory)
}

func TestBuild_Canceled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(cfg, WithLoader(content.StaticLoader{})).Build(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.NoDirExists(t, cfg.Output.Directory)
}

func TestBuilder_Navigation(t *testing.T) {
	cfg := testConfig(t)
	loader := content.StaticLoader{Documents: []content.Document{
		{Path: "/blog/a/"},
		{Path: "/blog/b/"},
		{Path: "/secret/", FrontMatter: content.FrontMatter{NavExclude: true}},
	}}

	tree, report, err := New(cfg, WithLoader(loader)).Navigation(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, 4, tree.Count())
	assert.True(t, tree.Find("/blog/").IsPlaceholder())
	assert.Nil(t, tree.Find("/secret/"))
	assert.Equal(t, 1, report.Excluded)
	assert.NoDirExists(t, cfg.Output.Directory)
}

func TestPipeline(t *testing.T) {
	noop := func(context.Context, *State) error { return nil }
	defs := NewPipeline().
		Add("a", noop).
		AddIf(false, "b", noop).
		AddIf(true, "c", noop).
		Build()
	require.Len(t, defs, 2)
	assert.Equal(t, StageName("a"), defs[0].Name)
	assert.Equal(t, StageName("c"), defs[1].Name)
	assert.Len(t, DefaultPipeline().Build(), 9)
}

func TestReport_DeriveOutcome(t *testing.T) {
	r := NewReport()
	r.DeriveOutcome()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r.Warnings = append(r.Warnings, errors.New("w"))
	r.DeriveOutcome()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r.Errors = append(r.Errors, newFatalStageError(StageRenderPages, errors.New("boom")))
	r.DeriveOutcome()
	assert.Equal(t, OutcomeFailed, r.Outcome)

	r.Errors = []error{newCanceledStageError(StageRenderPages, context.Canceled)}
	r.DeriveOutcome()
	assert.Equal(t, OutcomeCanceled, r.Outcome)
	assert.NotEmpty(t, r.ID)
	assert.Contains(t, r.Summary(), "outcome=canceled")
}
