// Package content discovers Markdown documents and loads them into
// Documents: canonical site path, front matter, rendered HTML and history.
package content

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// FrontMatter holds the recognized front matter keys.
type FrontMatter struct {
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	Author      frontmatter.StringList `yaml:"author"`
	Authors     frontmatter.StringList `yaml:"authors"`
	Tags        frontmatter.StringList `yaml:"tags"`
	Lang        string                 `yaml:"lang"`
	Date        frontmatter.Time       `yaml:"date"`
	Published   frontmatter.Time       `yaml:"published"`
	Lastmod     frontmatter.Time       `yaml:"lastmod"`
	Updated     frontmatter.Time       `yaml:"updated"`
	Slug        string                 `yaml:"slug"`
	Path        string                 `yaml:"path"`
	NavTitle    string                 `yaml:"nav_title"`
	Weight      int                    `yaml:"weight"`
	NavExclude  bool                   `yaml:"nav_exclude"`
	Draft       bool                   `yaml:"draft"`
}

// Document is one loaded source file.
type Document struct {
	// Path is the canonical site path, e.g. "/", "/blog/first-post/".
	Path string
	// SourcePath is the absolute path of the source file.
	SourcePath string
	// RelPath is SourcePath relative to the content root, slash separated.
	RelPath string

	FrontMatter FrontMatter
	// Params is the full decoded front matter, recognized keys included.
	Params map[string]any

	HTML []byte
	TOC  []markdown.Heading
	// FirstHeading is the text of the first H1 in the body.
	FirstHeading string

	Fingerprint string
	ModTime     time.Time
}

// Loader produces the documents of a site.
type Loader interface {
	ListDocuments(ctx context.Context, root string) ([]Document, error)
}

// StaticLoader returns a fixed set of documents and ignores root.
type StaticLoader struct {
	Documents []Document
}

// ListDocuments implements Loader.
func (s StaticLoader) ListDocuments(ctx context.Context, _ string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Document, len(s.Documents))
	copy(out, s.Documents)
	return out, nil
}
