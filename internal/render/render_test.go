package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/meta"
	"git.home.luguber.info/inful/sitebuilder/internal/navtree"
)

func testConfig(t *testing.T, minify bool) *config.Config {
	t.Helper()
	cssPath := filepath.Join(t.TempDir(), "inline.css")
	require.NoError(t, os.WriteFile(cssPath, []byte("body { color: red; }"), 0o600))
	return &config.Config{
		Site: config.SiteConfig{
			Title:        "Docs",
			Origin:       "https://example.com",
			Color:        "#112233",
			SocialHandle: "@docs",
			Language:     "en",
		},
		Output: config.OutputConfig{Minify: &minify},
		Theme: config.ThemeConfig{
			Stylesheets: []string{"/css/site.css"},
			InlineCSS:   []string{cssPath},
			Scripts:     []string{"/js/app.js"},
		},
	}
}

func testTree() (*navtree.Node, *meta.Page) {
	home := &meta.Page{Path: "/", Title: "Docs", Language: "en", CanonicalURL: "https://example.com/"}
	page := &meta.Page{
		Path:         "/guide/install/",
		Title:        "Install",
		Description:  "How to install & run",
		Author:       "Ada and Grace",
		Tags:         []string{"setup", "go"},
		Language:     "en-GB",
		CanonicalURL: "https://example.com/guide/install/",
		EditURL:      "https://git.example.com/blob/main/guide/install.md",
		Published:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Modified:     time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		ReadingTime:  3,
	}
	other := &meta.Page{Path: "/about/", Title: "About", NavTitle: "About us"}
	tree := navtree.Build([]navtree.Entry{
		{Path: home.Path, Meta: home},
		{Path: page.Path, Meta: page},
		{Path: other.Path, Meta: other},
	})
	return tree, page
}

func TestRender_HeadAndNavigation(t *testing.T) {
	r, err := New(testConfig(t, false))
	require.NoError(t, err)
	tree, page := testTree()

	out, err := r.Render(context.Background(), Input{
		Page: page,
		Body: []byte(`<p>See <a href="https://go.dev/">Go</a> and <a href="/about/">about</a>.</p><img src="x.png"><h2>Next steps</h2>`),
		Tree: tree,
	})
	require.NoError(t, err)
	s := string(out)

	for _, want := range []string{
		`<html lang="en-GB">`,
		`<title>Install | Docs</title>`,
		`<meta name="description" content="How to install &amp; run"/>`,
		`<meta name="author" content="Ada and Grace"/>`,
		`<meta name="keywords" content="setup, go"/>`,
		`<link rel="canonical" href="https://example.com/guide/install/"/>`,
		`<meta name="theme-color" content="#112233"/>`,
		`<meta property="og:locale" content="en_GB"/>`,
		`<meta property="og:type" content="article"/>`,
		`<meta name="twitter:site" content="@docs"/>`,
		`<meta property="article:published_time" content="2024-01-02T03:04:05Z"/>`,
		`<meta property="article:modified_time" content="2024-02-03T04:05:06Z"/>`,
		`<link rel="alternate" type="application/json" href="index.json"/>`,
		`<link rel="stylesheet" href="/css/site.css"/>`,
		`<style>body { color: red; }</style>`,
		`<script defer="" src="/js/app.js"></script>`,
		`<a href="https://go.dev/" rel="noopener noreferrer" target="_blank">Go</a>`,
		`<a href="/about/">about</a>`,
		`<img src="x.png" loading="lazy" decoding="async"/>`,
		`<h2 id="next-steps">Next steps</h2>`,
		`<h1 id="install">Install</h1>`,
		`<a href="/about/">About us</a>`,
		`<span>guide</span>`,
		`<a href="/guide/install/" aria-current="page">Install</a>`,
		`<a href="https://git.example.com/blob/main/guide/install.md" rel="noopener noreferrer" target="_blank">Edit this page</a>`,
		`3 min read`,
	} {
		assert.Contains(t, s, want)
	}

	// Breadcrumbs: Docs > guide > Install.
	assert.Contains(t, s, `<nav class="breadcrumbs" aria-label="Breadcrumb">`)
	assert.Contains(t, s, `<span aria-current="page">Install</span>`)
}

func TestRender_SkipsLayoutTitleWhenBodyHasH1(t *testing.T) {
	r, err := New(testConfig(t, false))
	require.NoError(t, err)
	tree, page := testTree()
	page.TOC = []markdown.Heading{{Level: 1, ID: "install", Text: "Install"}}

	out, err := r.Render(context.Background(), Input{Page: page, Body: []byte(`<h1 id="install">Install</h1>`), Tree: tree})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), "<h1"))
}

func TestRender_Minified(t *testing.T) {
	tree, page := testTree()
	in := Input{Page: page, Body: []byte("<p>Hello   world</p>\n\n<p>Again</p>"), Tree: tree}

	plain, err := New(testConfig(t, false))
	require.NoError(t, err)
	full, err := plain.Render(context.Background(), in)
	require.NoError(t, err)

	mini, err := New(testConfig(t, true))
	require.NoError(t, err)
	small, err := mini.Render(context.Background(), in)
	require.NoError(t, err)

	assert.Less(t, len(small), len(full))
	assert.NotContains(t, string(small), "\n<meta")
	assert.Contains(t, string(small), "<title>Install | Docs</title>")
	assert.Contains(t, string(small), "</html>")
}

func TestRender_RootIsWebsite(t *testing.T) {
	r, err := New(testConfig(t, false))
	require.NoError(t, err)
	tree, _ := testTree()

	out, err := r.Render(context.Background(), Input{Page: tree.Meta, Tree: tree})
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<title>Docs</title>`)
	assert.Contains(t, s, `<meta property="og:type" content="website"/>`)
	assert.NotContains(t, s, `class="breadcrumbs"`)
}

func TestRender_CanceledContext(t *testing.T) {
	r, err := New(testConfig(t, false))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, page := testTree()
	_, err = r.Render(ctx, Input{Page: page})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_CustomLayoutDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LayoutName),
		[]byte(`<!DOCTYPE html><html><head><title>{{.Page.Title}}</title></head><body>{{.Content}}</body></html>`), 0o600))
	cfg := testConfig(t, false)
	cfg.Theme.LayoutDir = dir

	r, err := New(cfg)
	require.NoError(t, err)
	_, page := testTree()
	out, err := r.Render(context.Background(), Input{Page: page, Body: []byte("<p>x</p>")})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<html lang="en-GB">`)
	assert.Contains(t, string(out), "<p>x</p>")

	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(empty, "other.html"), []byte("x"), 0o600))
	cfg.Theme.LayoutDir = empty
	_, err = New(cfg)
	require.Error(t, err)
}

func TestNew_MissingInlineCSS(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Theme.InlineCSS = []string{filepath.Join(t.TempDir(), "missing.css")}
	_, err := New(cfg)
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "next-steps", Slugify("Next steps!"))
	assert.Equal(t, "über-café-2", Slugify("  Über Café 2 "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestTransform_UniqueHeadingIDs(t *testing.T) {
	out, err := Transform([]byte(`<html><body><h2 id="intro">A</h2><h2>Intro</h2><h3>Intro</h3></body></html>`), TransformOptions{Lang: "en"})
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<h2 id="intro-1">Intro</h2>`)
	assert.Contains(t, s, `<h3 id="intro-2">Intro</h3>`)
	assert.Contains(t, s, `<html lang="en">`)
}

func TestTransform_InternalAbsoluteLink(t *testing.T) {
	out, err := Transform([]byte(`<a href="https://example.com/x/">x</a><a href="mailto:a@b.c">m</a>`), TransformOptions{SiteOrigin: "https://example.com"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "noopener")
}
