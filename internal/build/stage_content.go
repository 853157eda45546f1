package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/meta"
	"git.home.luguber.info/inful/sitebuilder/internal/navtree"
)

// ErrDuplicatePaths is reported as a warning when documents share a path.
var ErrDuplicatePaths = errors.New("duplicate document paths")

func stageLoadContent(ctx context.Context, st *State) error {
	cfg := st.Config
	st.Recorder.SetFanoutLimit("load", cfg.Build.LoadConcurrency)

	docs, err := st.Loader.ListDocuments(ctx, cfg.Content.Root)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := navtree.ValidatePath(doc.Path); err != nil {
			return ferrors.ValidationError("invalid document path").
				WithCause(err).
				WithContext("document", doc.Path).
				WithContext("file", doc.RelPath).
				Build()
		}
	}

	st.Documents = docs
	st.Report.Documents = len(docs)
	st.Recorder.AddDocuments(len(docs))
	slog.Info("Content loaded", logfields.Count(len(docs)), logfields.Path(cfg.Content.Root))
	return nil
}

func stageNormalizeMeta(ctx context.Context, st *State) error {
	normalizer := meta.NewNormalizer(st.Config)
	includeDrafts := st.Config.Build.IncludeDrafts

	st.Pages = make([]meta.Page, len(st.Documents))
	st.Publish = make([]bool, len(st.Documents))
	for i, doc := range st.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := normalizer.Normalize(doc)
		if err != nil {
			return err
		}
		st.Pages[i] = page
		st.Publish[i] = !page.Draft || includeDrafts
		if page.Excluded {
			st.Report.Excluded++
		}
		if page.Draft {
			st.Report.Drafts++
		}
	}
	return nil
}

func stageBuildNavigation(_ context.Context, st *State) error {
	entries := make([]navtree.Entry, len(st.Pages))
	for i := range st.Pages {
		entries[i] = navtree.Entry{
			Path:     st.Pages[i].Path,
			Meta:     &st.Pages[i],
			Excluded: st.Pages[i].Excluded,
		}
	}

	st.Tree = navtree.Build(entries)
	st.Report.NavNodes = st.Tree.Count()
	slog.Debug("Navigation tree built", logfields.Count(st.Report.NavNodes))

	if dups := navtree.Duplicates(entries); len(dups) > 0 {
		for _, p := range dups {
			slog.Warn("Multiple documents share a path; the last one wins", logfields.Document(p))
		}
		return newWarnStageError(StageBuildNavigation, fmt.Errorf("%w: %v", ErrDuplicatePaths, dups))
	}
	return nil
}
