package build

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fanout"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/sitemap"
)

// pageFile maps a site path to a file below the output root.
func pageFile(sitePath, name string) string {
	return path.Join(strings.Trim(sitePath, "/"), name)
}

func fsError(err error, msg, rel string) error {
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, msg).
		WithContext("path", rel).Fatal().Build()
}

func stagePrepareOutput(_ context.Context, st *State) error {
	if err := st.Writer.Begin(); err != nil {
		return fsError(err, "prepare output directory", st.Writer.Dir())
	}
	return nil
}

func stageEmitSitemap(_ context.Context, st *State) error {
	entries := make([]sitemap.Entry, 0, len(st.Pages))
	for _, i := range st.published() {
		p := st.Pages[i]
		entries = append(entries, sitemap.Entry{URL: p.CanonicalURL, LastModified: p.Modified, Lang: p.Language})
	}
	data, err := sitemap.Serialize(entries)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "serialize sitemap").Fatal().Build()
	}
	rel := st.Config.Output.SitemapPath
	if err := st.Writer.WriteFile(rel, data); err != nil {
		return fsError(err, "write sitemap", rel)
	}
	st.Report.SitemapEntries = len(entries)
	slog.Info("Sitemap written", logfields.Path(rel), logfields.Count(len(entries)))
	return nil
}

func stageWriteMetadata(ctx context.Context, st *State) error {
	published := st.published()
	_, err := fanout.Run(ctx, published, st.Config.Build.RenderConcurrency, func(_ context.Context, _ int, i int) (struct{}, error) {
		rel := pageFile(st.Pages[i].Path, "index.json")
		if err := st.Writer.WriteJSON(rel, &st.Pages[i]); err != nil {
			if errors.Is(err, output.ErrEncode) {
				return struct{}{}, ferrors.ContentError("page metadata is not JSON-encodable").
					WithCause(err).
					WithContext("document", st.Pages[i].Path).
					WithContext("file", st.Documents[i].RelPath).
					Build()
			}
			return struct{}{}, fsError(err, "write page metadata", rel)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return unwrapTask(err)
	}
	st.Report.MetadataFiles = len(published)
	return nil
}

func stageRenderPages(ctx context.Context, st *State) error {
	renderer, err := render.New(st.Config)
	if err != nil {
		return err
	}
	st.Recorder.SetFanoutLimit("render", st.Config.Build.RenderConcurrency)

	published := st.published()
	_, err = fanout.Run(ctx, published, st.Config.Build.RenderConcurrency, func(ctx context.Context, _ int, i int) (struct{}, error) {
		page := &st.Pages[i]
		out, err := renderer.Render(ctx, render.Input{Page: page, Body: st.Documents[i].HTML, Tree: st.Tree})
		if err != nil {
			return struct{}{}, err
		}
		rel := pageFile(page.Path, "index.html")
		if err := st.Writer.WriteFile(rel, out); err != nil {
			return struct{}{}, fsError(err, "write page", rel)
		}
		st.Recorder.IncPagesRendered()
		return struct{}{}, nil
	})
	if err != nil {
		return unwrapTask(err)
	}
	st.Report.RenderedPages = len(published)
	slog.Info("Pages rendered", logfields.Count(len(published)), logfields.Limit(st.Config.Build.RenderConcurrency))
	return nil
}

func stageCopyStatic(_ context.Context, st *State) error {
	dir := st.Config.Content.StaticDir
	if dir == "" {
		return nil
	}

	var transform func(rel string, data []byte) ([]byte, error)
	if st.Config.Output.MinifyEnabled() {
		m := render.NewMinifier()
		transform = func(rel string, data []byte) ([]byte, error) {
			switch strings.ToLower(path.Ext(rel)) {
			case ".css":
				return m.CSS(data)
			case ".js":
				if strings.HasSuffix(strings.ToLower(rel), ".min.js") {
					return data, nil
				}
				return m.JS(data)
			default:
				return data, nil
			}
		}
	}

	n, err := st.Writer.CopyDir(dir, transform)
	if err != nil {
		return fsError(err, "copy static files", dir)
	}
	st.Report.StaticFiles = n
	slog.Info("Static files copied", logfields.Path(dir), logfields.Count(n))
	return nil
}

func stageFinalizeOutput(_ context.Context, st *State) error {
	st.Report.OutputFiles = st.Writer.Files()
	st.Report.OutputBytes = st.Writer.Bytes()
	if err := st.Writer.Commit(); err != nil {
		return fsError(err, "promote output", st.Writer.Dir())
	}
	st.committed = true
	st.Report.OutputDir = st.Writer.Dir()
	return nil
}

// unwrapTask drops the fan-out index wrapper so the classified error that
// names the document surfaces unchanged.
func unwrapTask(err error) error {
	var te *fanout.TaskError
	if errors.As(err, &te) {
		return te.Err
	}
	return err
}
