package orcadocs

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
	"github.com/nasa/orca-docs/internal"
)

// LastUpdate describes the newest commit that touched a document.
type LastUpdate struct {
	Author string
	Time   time.Time
	Commit string
}

// docHistory walks the git log of the repository that contains docsDir and
// returns the last update of every given document.
func docHistory(docsDir string, docs map[DocRef]*Document) (map[DocRef]LastUpdate, error) {
	repo, err := git.PlainOpenWithOptions(docsDir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	tree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get work tree: %w", err)
	}

	prefix, err := relativeToRoot(tree.Filesystem.Root(), docsDir)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]DocRef, len(docs))

	for ref, doc := range docs {
		wanted[path.Join(prefix, doc.Path)] = ref
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	log, err := repo.Log(&git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("get git log: %w", err)
	}

	updates := make(map[DocRef]LastUpdate, len(docs))

	filtered := internal.NewChangedPathsIter(
		func(c *object.Commit, names []string) bool {
			var matched bool

			for _, name := range names {
				ref, ok := wanted[name]
				if !ok {
					continue
				}

				if _, seen := updates[ref]; seen {
					continue
				}

				updates[ref] = LastUpdate{
					Author: c.Author.Name,
					Time:   c.Author.When,
					Commit: c.Hash.String(),
				}

				matched = true
			}

			return matched
		}, log)

	defer filtered.Close()

	err = filtered.ForEach(func(_ *object.Commit) error {
		if len(updates) == len(wanted) {
			return storer.ErrStop
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read git log: %w", err)
	}

	return updates, nil
}

// relativeToRoot returns dir as a slash separated path relative to the
// repository root.
func relativeToRoot(root string, dir string) (string, error) {
	absRoot, err := resolvePath(root)
	if err != nil {
		return "", fmt.Errorf("resolve repository root: %w", err)
	}

	absDir, err := resolvePath(dir)
	if err != nil {
		return "", fmt.Errorf("resolve docs directory: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil {
		return "", fmt.Errorf("docs directory is outside of the repository: %w", err)
	}

	if rel == "." {
		return "", nil
	}

	return filepath.ToSlash(rel), nil
}

func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}

	return resolved, nil
}

func isMissingRepository(err error) bool {
	return errors.Is(err, git.ErrRepositoryNotExists)
}
