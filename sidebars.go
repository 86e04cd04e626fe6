package orcadocs

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrSidebarNotFound is returned when a sidebar ID isn't part of a
// SidebarSet.
var ErrSidebarNotFound = errors.New("sidebar not found")

// DocRef identifies a content document, f.ex. "about/tips". Resolving it to
// an actual file is up to the consumer.
type DocRef string

type EntryKind int

const (
	EntryDoc EntryKind = iota
	EntrySubCategory
)

func (k EntryKind) String() string {
	switch k {
	case EntryDoc:
		return "doc"
	case EntrySubCategory:
		return "subcategory"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one item in a category body, either a document reference or a
// sub-category.
type Entry struct {
	Kind EntryKind
	Doc  DocRef
	Sub  SubCategory
}

// SubCategory groups documents one level below a category.
type SubCategory struct {
	Label string
	Docs  []DocRef
}

type Category struct {
	Label   string
	Entries []Entry
}

type Sidebar struct {
	ID         string
	Categories []Category
}

// Doc creates a document entry.
func Doc(ref DocRef) Entry {
	return Entry{
		Kind: EntryDoc,
		Doc:  ref,
	}
}

// Group creates a sub-category entry.
func Group(label string, docs ...DocRef) Entry {
	return Entry{
		Kind: EntrySubCategory,
		Sub: SubCategory{
			Label: label,
			Docs:  docs,
		},
	}
}

// Docs returns the document references of the entry in display order.
func (e Entry) Docs() []DocRef {
	if e.Kind == EntrySubCategory {
		return slices.Clone(e.Sub.Docs)
	}

	return []DocRef{e.Doc}
}

func (e Entry) clone() Entry {
	e.Sub.Docs = slices.Clone(e.Sub.Docs)

	return e
}

func (c Category) clone() Category {
	entries := make([]Entry, len(c.Entries))

	for i := range c.Entries {
		entries[i] = c.Entries[i].clone()
	}

	c.Entries = entries

	return c
}

// Clone returns a deep copy of the sidebar.
func (s Sidebar) Clone() Sidebar {
	cats := make([]Category, len(s.Categories))

	for i := range s.Categories {
		cats[i] = s.Categories[i].clone()
	}

	s.Categories = cats

	return s
}

// Category returns the category with the given label.
func (s Sidebar) Category(label string) (Category, bool) {
	for _, c := range s.Categories {
		if c.Label == label {
			return c.clone(), true
		}
	}

	return Category{}, false
}

// Docs returns all document references of the sidebar in display order,
// with sub-categories flattened in place.
func (s Sidebar) Docs() []DocRef {
	var refs []DocRef

	for _, c := range s.Categories {
		for _, e := range c.Entries {
			refs = append(refs, e.Docs()...)
		}
	}

	return refs
}

// SidebarSet is the immutable top level of a navigation manifest. Sidebars
// keep the order they were declared in.
type SidebarSet struct {
	sidebars []Sidebar
	index    map[string]int
}

// NewSidebarSet creates a set from the given sidebars. A repeated ID
// replaces the earlier definition but keeps its position, the same way a
// repeated key behaves in an object literal.
func NewSidebarSet(sidebars ...Sidebar) *SidebarSet {
	set := SidebarSet{
		index: make(map[string]int, len(sidebars)),
	}

	for _, s := range sidebars {
		s = s.Clone()

		idx, ok := set.index[s.ID]
		if ok {
			set.sidebars[idx] = s

			continue
		}

		set.index[s.ID] = len(set.sidebars)
		set.sidebars = append(set.sidebars, s)
	}

	return &set
}

func (set *SidebarSet) Len() int {
	return len(set.sidebars)
}

// IDs returns the sidebar IDs in declared order.
func (set *SidebarSet) IDs() []string {
	ids := make([]string, len(set.sidebars))

	for i := range set.sidebars {
		ids[i] = set.sidebars[i].ID
	}

	return ids
}

// Lookup returns a copy of the sidebar with the given ID.
func (set *SidebarSet) Lookup(id string) (Sidebar, bool) {
	idx, ok := set.index[id]
	if !ok {
		return Sidebar{}, false
	}

	return set.sidebars[idx].Clone(), true
}

// Sidebar returns a copy of the sidebar with the given ID, or an error
// wrapping ErrSidebarNotFound.
func (set *SidebarSet) Sidebar(id string) (Sidebar, error) {
	s, ok := set.Lookup(id)
	if !ok {
		return Sidebar{}, fmt.Errorf("%w: %q", ErrSidebarNotFound, id)
	}

	return s, nil
}

// All iterates over copies of the sidebars in declared order.
func (set *SidebarSet) All() iter.Seq2[string, Sidebar] {
	return func(yield func(string, Sidebar) bool) {
		for _, s := range set.sidebars {
			if !yield(s.ID, s.Clone()) {
				return
			}
		}
	}
}

// Docs iterates over every document reference in the set together with the
// ID of the sidebar it appears in.
func (set *SidebarSet) Docs() iter.Seq2[string, DocRef] {
	return func(yield func(string, DocRef) bool) {
		for _, s := range set.sidebars {
			for _, ref := range s.Docs() {
				if !yield(s.ID, ref) {
					return
				}
			}
		}
	}
}
