package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/inful/mdfp"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fanout"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/gitinfo"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// fingerprintExcluded front matter keys do not change a document's identity.
var fingerprintExcluded = []string{mdfp.FingerprintField, "lastmod", "updated"}

// FSLoader loads Markdown documents from a directory tree.
type FSLoader struct {
	// Ignore holds doublestar globs matched against root-relative paths.
	Ignore []string
	// Concurrency bounds the number of files loaded at once.
	Concurrency int
	// GitLastmod enables modification times from git history.
	GitLastmod bool

	converter *markdown.Converter
}

// NewFSLoader returns a loader with the given ignore globs and fan-out limit.
func NewFSLoader(ignore []string, concurrency int, gitLastmod bool) *FSLoader {
	return &FSLoader{
		Ignore:      ignore,
		Concurrency: concurrency,
		GitLastmod:  gitLastmod,
		converter:   markdown.NewConverter(),
	}
}

type sourceFile struct {
	abs string
	rel string
}

// ListDocuments walks root and loads every Markdown file, in lexical path
// order. Any failure aborts the whole load and names the failing file.
func (l *FSLoader) ListDocuments(ctx context.Context, root string) ([]Document, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "resolve content root").
			WithContext("path", root).Fatal().Build()
	}
	if info, statErr := os.Stat(absRoot); statErr != nil || !info.IsDir() {
		return nil, ferrors.WrapError(ErrRootNotFound, ferrors.CategoryContent, "content root not found").
			WithContext("path", root).Fatal().Build()
	}

	files, err := l.discover(absRoot)
	if err != nil {
		return nil, ferrors.WrapError(fmt.Errorf("%w: %w", ErrWalkFailed, err), ferrors.CategoryContent, "walk content root").
			WithContext("path", root).Fatal().Build()
	}
	slog.Info("Content discovered", logfields.Path(root), logfields.Count(len(files)))

	var history *gitinfo.History
	if l.GitLastmod {
		history, err = gitinfo.Open(absRoot)
		switch {
		case errors.Is(err, gitinfo.ErrNotRepository):
			slog.Debug("Content root is not in a git repository; using file modification times", logfields.Path(root))
		case err != nil:
			slog.Warn("Failed to open git history; using file modification times", logfields.Path(root), logfields.Error(err))
		}
	}

	converter := l.converter
	if converter == nil {
		converter = markdown.NewConverter()
	}

	docs, err := fanout.Run(ctx, files, l.Concurrency, func(ctx context.Context, _ int, f sourceFile) (Document, error) {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		return loadFile(f, converter, history)
	})
	if err != nil {
		var te *fanout.TaskError
		if errors.As(err, &te) {
			return nil, te.Err
		}
		return nil, err
	}
	return docs, nil
}

// discover returns Markdown files below root in lexical order, skipping
// hidden entries and ignored paths.
func (l *FSLoader) discover(root string) ([]sourceFile, error) {
	var files []sourceFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if l.ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			slog.Debug("Ignoring content file", logfields.File(rel))
			return nil
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}
		files = append(files, sourceFile{abs: p, rel: rel})
		return nil
	})
	return files, err
}

func (l *FSLoader) ignored(rel string) bool {
	for _, pattern := range l.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

func loadFile(f sourceFile, converter *markdown.Converter, history *gitinfo.History) (Document, error) {
	fail := func(sentinel error, cause error, msg string) error {
		return ferrors.ContentError(msg).
			WithCause(fmt.Errorf("%w: %w", sentinel, cause)).
			WithContext("file", f.rel).
			Build()
	}

	info, err := os.Stat(f.abs)
	if err != nil {
		return Document{}, fail(ErrReadFailed, err, "stat document")
	}
	raw, err := os.ReadFile(f.abs)
	if err != nil {
		return Document{}, fail(ErrReadFailed, err, "read document")
	}

	block, err := frontmatter.Split(raw)
	if err != nil {
		return Document{}, fail(ErrFrontMatter, err, "split front matter")
	}
	params, err := frontmatter.ParseYAML(block.Raw)
	if err != nil {
		return Document{}, fail(ErrFrontMatter, err, "parse front matter")
	}
	var fm FrontMatter
	if err := frontmatter.Decode(block.Raw, &fm); err != nil {
		return Document{}, fail(ErrFrontMatter, err, "decode front matter")
	}

	rendered, err := converter.Convert(block.Body)
	if err != nil {
		return Document{}, fail(ErrRenderFailed, err, "render markdown")
	}

	canonicalFM, err := frontmatter.Canonical(params, fingerprintExcluded...)
	if err != nil {
		return Document{}, fail(ErrFrontMatter, err, "canonicalize front matter")
	}

	doc := Document{
		Path:         ApplyOverrides(CanonicalPath(f.rel), fm),
		SourcePath:   f.abs,
		RelPath:      f.rel,
		FrontMatter:  fm,
		Params:       params,
		HTML:         rendered.HTML,
		TOC:          rendered.TOC,
		FirstHeading: rendered.Title,
		Fingerprint:  mdfp.CalculateFingerprintFromParts(canonicalFM, string(block.Body)),
		ModTime:      info.ModTime().UTC(),
	}

	if history != nil {
		when, ok, herr := history.LastModified(f.abs)
		switch {
		case herr != nil:
			slog.Debug("Git history lookup failed", logfields.File(f.rel), logfields.Error(herr))
		case ok:
			doc.ModTime = when
		}
	}

	slog.Debug("Loaded document", logfields.File(f.rel), logfields.Path(doc.Path))
	return doc, nil
}
