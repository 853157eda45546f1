// Package gitinfo answers "when was this file last committed" for content
// that lives inside a git working tree.
package gitinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned by Open when dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// History looks up last-commit times. The first lookup walks the whole
// history once and indexes every path by its newest commit; later lookups
// are map reads.
type History struct {
	repo *git.Repository
	root string

	once  sync.Once
	times map[string]time.Time
	err   error
}

// Open finds the repository containing dir, searching parent directories.
func Open(dir string) (*History, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository at %s: %w", abs, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		root = wt.Filesystem.Root()
	}
	return &History{repo: repo, root: root}, nil
}

// Root returns the work tree root.
func (h *History) Root() string { return h.root }

// LastModified returns the committer time of the newest commit touching path.
// ok is false when the file has no history (untracked or new).
func (h *History) LastModified(path string) (t time.Time, ok bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, false, err
	}
	if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(h.root, abs)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("relative path for %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)

	times, err := h.index()
	if err != nil {
		return time.Time{}, false, err
	}
	t, ok = times[rel]
	return t, ok, nil
}

func (h *History) index() (map[string]time.Time, error) {
	h.once.Do(func() {
		h.times, h.err = walk(h.repo)
	})
	return h.times, h.err
}

// walk visits commits newest first and records, for each path a commit
// changes relative to its first parent, the time of the first visit.
func walk(repo *git.Repository) (map[string]time.Time, error) {
	times := make(map[string]time.Time)
	iter, err := repo.Log(&git.LogOptions{Order: git.LogOrderCommitterTime})
	if err != nil {
		// An empty repository has no HEAD yet.
		return times, nil
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		changes, err := changed(c)
		if err != nil {
			return fmt.Errorf("diff commit %s: %w", c.Hash, err)
		}
		when := committed(c)
		for _, ch := range changes {
			for _, name := range [...]string{ch.From.Name, ch.To.Name} {
				if _, seen := times[name]; name != "" && !seen {
					times[name] = when
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	return times, nil
}

func changed(c *object.Commit) (object.Changes, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	}
	return object.DiffTree(parentTree, tree)
}

func committed(c *object.Commit) time.Time {
	return c.Committer.When.UTC()
}
