package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, rel, body string, when time.Time) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(rel)
	require.NoError(t, err)
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: when}
	_, err = wt.Commit("update "+rel, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestLastModified(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	second := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	commitFile(t, repo, dir, "content/a.md", "# A\n", first)
	commitFile(t, repo, dir, "content/b.md", "# B\n", second)

	h, err := Open(filepath.Join(dir, "content"))
	require.NoError(t, err)

	got, ok, err := h.LastModified(filepath.Join(dir, "content", "a.md"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(first), "got %s", got)

	got, ok, err = h.LastModified(filepath.Join(dir, "content", "b.md"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(second), "got %s", got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "new.md"), []byte("x"), 0o600))
	_, ok, err = h.LastModified(filepath.Join(dir, "content", "new.md"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLastModified_NewestCommitWins(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	commitFile(t, repo, dir, "docs/a.md", "v1", base)
	commitFile(t, repo, dir, "docs/b.md", "v1", base.Add(time.Hour))
	commitFile(t, repo, dir, "docs/a.md", "v2", base.Add(2*time.Hour))
	commitFile(t, repo, dir, "other/c.md", "v1", base.Add(3*time.Hour))

	h, err := Open(dir)
	require.NoError(t, err)

	want := map[string]time.Time{
		"docs/a.md":  base.Add(2 * time.Hour),
		"docs/b.md":  base.Add(time.Hour),
		"other/c.md": base.Add(3 * time.Hour),
	}
	for rel, when := range want {
		got, ok, err := h.LastModified(filepath.Join(dir, filepath.FromSlash(rel)))
		require.NoError(t, err)
		require.True(t, ok, rel)
		assert.True(t, got.Equal(when), "%s: got %s want %s", rel, got, when)
	}
}

func TestLastModified_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	h, err := Open(dir)
	require.NoError(t, err)
	_, ok, err := h.LastModified(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_NotRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}
