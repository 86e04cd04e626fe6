package internal

import (
	"errors"
	"io"

	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
)

// Adapted from github.com/go-git/go-git/v6/object commitPathIter to allow for
// filtering by all the paths in the diff and the commit.
type changedPathsIter struct {
	filter  func(*object.Commit, []string) bool
	source  object.CommitIter
	current *object.Commit
}

// NewChangedPathsIter wraps a commit iterator and diffs each commit against
// the next one from the source. Only commits for which filter returns true
// are emitted. The filter receives the paths (relative to the repository
// root) that the commit changed.
func NewChangedPathsIter(
	filter func(*object.Commit, []string) bool,
	source object.CommitIter,
) object.CommitIter {
	return &changedPathsIter{
		filter: filter,
		source: source,
	}
}

func (c *changedPathsIter) Next() (*object.Commit, error) {
	if c.current == nil {
		commit, err := c.source.Next()
		if err != nil {
			return nil, err
		}

		c.current = commit
	}

	commit, err := c.nextMatch()
	if err != nil {
		c.current = nil
	}

	return commit, err
}

func (c *changedPathsIter) nextMatch() (*object.Commit, error) {
	var parentTree *object.Tree

	for {
		// The parent is nil when the current commit is the root commit.
		parent, err := c.source.Next()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		currentTree := parentTree
		if currentTree == nil {
			currentTree, err = c.current.Tree()
			if err != nil {
				return nil, err
			}
		}

		parentTree = nil

		if parent != nil {
			parentTree, err = parent.Tree()
			if err != nil {
				return nil, err
			}
		}

		changes, err := object.DiffTree(currentTree, parentTree)
		if err != nil {
			return nil, err
		}

		matched := c.filter(c.current, changedPaths(changes))

		commit := c.current
		c.current = parent

		if matched {
			return commit, nil
		}

		if parent == nil {
			return nil, io.EOF
		}
	}
}

func changedPaths(changes object.Changes) []string {
	names := make([]string, 0, len(changes))

	for _, change := range changes {
		name := change.From.Name
		if name == "" {
			name = change.To.Name
		}

		names = append(names, name)
	}

	return names
}

func (c *changedPathsIter) ForEach(cb func(*object.Commit) error) error {
	for {
		commit, err := c.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		err = cb(commit)
		if errors.Is(err, storer.ErrStop) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func (c *changedPathsIter) Close() {
	c.source.Close()
}
