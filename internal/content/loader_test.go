package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o600))
}

func TestFSLoader_ListDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "---\ntitle: Home\n---\n# Welcome\n")
	writeFile(t, root, "blog/index.md", "# Blog\n")
	writeFile(t, root, "blog/first.md", "---\nslug: hello-world\ntags: [go]\ndraft: true\n---\nBody text.\n")
	writeFile(t, root, "blog/_partial.md", "# ignored by glob\n")
	writeFile(t, root, ".hidden/secret.md", "# hidden\n")
	writeFile(t, root, "notes.txt", "not markdown")

	loader := NewFSLoader([]string{"**/_*.md"}, 2, false)
	docs, err := loader.ListDocuments(context.Background(), root)
	require.NoError(t, err)

	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"/blog/hello-world/", "/blog/", "/"}, paths)

	first := docs[0]
	assert.Equal(t, "blog/first.md", first.RelPath)
	assert.True(t, first.FrontMatter.Draft)
	assert.Equal(t, []string{"go"}, []string(first.FrontMatter.Tags))
	assert.Equal(t, true, first.Params["draft"])
	assert.Contains(t, string(first.HTML), "<p>Body text.</p>")
	assert.NotEmpty(t, first.Fingerprint)
	assert.False(t, first.ModTime.IsZero())

	home := docs[2]
	assert.Equal(t, "Home", home.FrontMatter.Title)
	assert.Equal(t, "Welcome", home.FirstHeading)
	require.Len(t, home.TOC, 1)
}

func TestFSLoader_FingerprintIgnoresLastmod(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "---\ntitle: A\nlastmod: 2024-01-01\n---\nSame\n")
	writeFile(t, root, "b.md", "---\ntitle: A\nlastmod: 2025-01-01\n---\nSame\n")
	writeFile(t, root, "c.md", "---\ntitle: C\n---\nSame\n")

	docs, err := NewFSLoader(nil, 1, false).ListDocuments(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, docs[0].Fingerprint, docs[1].Fingerprint)
	assert.NotEqual(t, docs[0].Fingerprint, docs[2].Fingerprint)
}

func TestFSLoader_FrontMatterErrorNamesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.md", "# fine\n")
	writeFile(t, root, "broken/page.md", "---\ntitle: [unterminated\n---\nx\n")

	_, err := NewFSLoader(nil, 4, false).ListDocuments(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrontMatter)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	file, _ := ce.Context().GetString("file")
	assert.Equal(t, "broken/page.md", file)
}

func TestFSLoader_MissingClosingDelimiter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "page.md", "---\ntitle: x\nno close\n")

	_, err := NewFSLoader(nil, 1, false).ListDocuments(context.Background(), root)
	require.ErrorIs(t, err, ErrFrontMatter)
}

func TestFSLoader_MissingRoot(t *testing.T) {
	_, err := NewFSLoader(nil, 1, false).ListDocuments(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestStaticLoader(t *testing.T) {
	l := StaticLoader{Documents: []Document{{Path: "/a/"}, {Path: "/"}}}
	docs, err := l.ListDocuments(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "/a/", docs[0].Path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.ListDocuments(ctx, "")
	require.ErrorIs(t, err, context.Canceled)
}
