package meta

import (
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Normalizer derives Page metadata from documents and site configuration.
type Normalizer struct {
	Site config.SiteConfig
	// Exclude holds doublestar globs on canonical paths hidden from navigation.
	Exclude []string
}

// NewNormalizer returns a normalizer for cfg.
func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{Site: cfg.Site, Exclude: cfg.Navigation.Exclude}
}

// Normalize builds the Page for doc. It fails only on an invalid language tag.
func (n *Normalizer) Normalize(doc content.Document) (Page, error) {
	fm := doc.FrontMatter

	lang, err := n.language(fm.Lang)
	if err != nil {
		return Page{}, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid language tag").
			WithContext("document", doc.Path).
			WithContext("file", doc.RelPath).
			Fatal().
			Build()
	}

	authors := n.authors(fm)
	text := StripHTML(string(doc.HTML))
	words := len(strings.Fields(text))

	page := Page{
		Path:         doc.Path,
		Title:        n.title(doc, lang),
		NavTitle:     strings.TrimSpace(fm.NavTitle),
		Description:  n.description(doc),
		Authors:      authors,
		Author:       FormatAuthors(authors),
		Tags:         tags(fm.Tags),
		Language:     lang.String(),
		CanonicalURL: n.Site.Origin + doc.Path,
		EditURL:      n.editURL(doc.RelPath),
		Fingerprint:  doc.Fingerprint,
		Draft:        fm.Draft,
		Weight:       fm.Weight,
		WordCount:    words,
		ReadingTime:  ReadingTime(words),
		TOC:          doc.TOC,
		Params:       doc.Params,
	}
	page.Modified, page.Published = dates(doc)
	page.Excluded = fm.NavExclude || fm.Draft || n.excluded(doc.Path)
	return page, nil
}

func (n *Normalizer) language(tag string) (language.Tag, error) {
	if strings.TrimSpace(tag) == "" {
		tag = n.Site.Language
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return language.Und, err
	}
	return parsed, nil
}

func (n *Normalizer) authors(fm content.FrontMatter) []string {
	names := append([]string{}, fm.Authors...)
	names = append(names, fm.Author...)
	if len(names) == 0 && n.Site.Author != "" {
		names = []string{n.Site.Author}
	}
	return names
}

func (n *Normalizer) title(doc content.Document, lang language.Tag) string {
	if t := strings.TrimSpace(doc.FrontMatter.Title); t != "" {
		return t
	}
	if doc.FirstHeading != "" {
		return doc.FirstHeading
	}
	if doc.Path == "/" {
		return n.Site.Title
	}
	last := path.Base(strings.TrimSuffix(doc.Path, "/"))
	return cases.Title(lang).String(strings.ReplaceAll(last, "-", " "))
}

func (n *Normalizer) description(doc content.Document) string {
	desc := strings.TrimSpace(doc.FrontMatter.Description)
	if desc != "" {
		desc = StripHTML(desc)
	} else {
		desc = FirstParagraph(doc.HTML)
	}
	if desc == "" && doc.Path == "/" {
		desc = n.Site.Description
	}
	return Truncate(desc, DescriptionLimit)
}

func (n *Normalizer) editURL(rel string) string {
	if n.Site.RepositoryBlobURL == "" || rel == "" {
		return ""
	}
	return n.Site.RepositoryBlobURL + "/" + strings.TrimPrefix(rel, "/")
}

func (n *Normalizer) excluded(p string) bool {
	for _, pattern := range n.Exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
		// "/drafts/**" should also hide "/drafts/" itself.
		if ok, _ := doublestar.Match(pattern, strings.TrimSuffix(p, "/")); ok {
			return true
		}
	}
	return false
}

// dates resolves modified and published times. Modified prefers front matter
// over the loader's time; published falls back to modified.
func dates(doc content.Document) (modified, published time.Time) {
	fm := doc.FrontMatter
	modified = firstSet(fm.Lastmod.Time, fm.Updated.Time, doc.ModTime)
	published = firstSet(fm.Date.Time, fm.Published.Time, modified)
	return modified, published
}

func firstSet(times ...time.Time) time.Time {
	for _, t := range times {
		if !t.IsZero() {
			return t.UTC()
		}
	}
	return time.Time{}
}

func tags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
