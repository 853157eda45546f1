// Package meta turns loaded documents into the normalized page metadata
// consumed by navigation, sitemap, rendering and index.json.
package meta

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// Page is the normalized metadata of one document.
type Page struct {
	Path         string             `json:"path"`
	Title        string             `json:"title"`
	NavTitle     string             `json:"nav_title,omitempty"`
	Description  string             `json:"description,omitempty"`
	Authors      []string           `json:"authors,omitempty"`
	Author       string             `json:"author,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	Language     string             `json:"language"`
	Published    time.Time          `json:"published,omitzero"`
	Modified     time.Time          `json:"modified,omitzero"`
	CanonicalURL string             `json:"canonical_url"`
	EditURL      string             `json:"edit_url,omitempty"`
	Fingerprint  string             `json:"fingerprint,omitempty"`
	Excluded     bool               `json:"excluded,omitempty"`
	Draft        bool               `json:"draft,omitempty"`
	Weight       int                `json:"weight,omitempty"`
	WordCount    int                `json:"word_count"`
	ReadingTime  int                `json:"reading_time_minutes"`
	TOC          []markdown.Heading `json:"toc,omitempty"`
	Params       map[string]any     `json:"params,omitempty"`
}

// Label is the text used for the page in navigation.
func (p *Page) Label() string {
	if p.NavTitle != "" {
		return p.NavTitle
	}
	return p.Title
}
