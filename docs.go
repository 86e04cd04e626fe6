package orcadocs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDocNotFound is returned when a document reference can't be resolved
// to a file in the docs directory.
var ErrDocNotFound = errors.New("document not found")

// Document extensions in the order they are tried.
var docExtensions = []string{".md", ".mdx"}

// Document is a resolved document reference.
type Document struct {
	Ref DocRef
	// Path is the slash separated path of the file relative to the docs
	// directory.
	Path         string
	Title        string
	SidebarLabel string
	Description  string
	Body         []byte
}

// Label returns the text used for the document in sidebars.
func (d *Document) Label() string {
	if d.SidebarLabel != "" {
		return d.SidebarLabel
	}

	return d.Title
}

type frontMatter struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	SidebarLabel string `yaml:"sidebar_label"`
	Description  string `yaml:"description"`
}

// LoadDocument resolves a document reference against docs.
func LoadDocument(docs fs.FS, ref DocRef) (*Document, error) {
	name := string(ref)

	if name == "" || !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid document ID %q", ref)
	}

	for _, ext := range docExtensions {
		data, err := fs.ReadFile(docs, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("read %s: %w", name+ext, err)
		}

		doc, err := parseDocument(ref, name+ext, data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name+ext, err)
		}

		return doc, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrDocNotFound, ref)
}

func parseDocument(ref DocRef, file string, data []byte) (*Document, error) {
	doc := Document{
		Ref:  ref,
		Path: file,
		Body: data,
	}

	fmData, body, ok := splitFrontMatter(data)
	if ok {
		var fm frontMatter

		err := yaml.Unmarshal(fmData, &fm)
		if err != nil {
			return nil, fmt.Errorf("invalid front matter: %w", err)
		}

		doc.Title = fm.Title
		doc.SidebarLabel = fm.SidebarLabel
		doc.Description = fm.Description
		doc.Body = body
	}

	if doc.Title == "" {
		doc.Title = firstHeading(doc.Body)
	}

	if doc.Title == "" {
		doc.Title = path.Base(string(ref))
	}

	return &doc, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body.
func splitFrontMatter(data []byte) ([]byte, []byte, bool) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	rest, ok := cutLine(data, "---")
	if !ok {
		return nil, data, false
	}

	var offset int

	for offset < len(rest) {
		line, next, _ := bytes.Cut(rest[offset:], []byte("\n"))

		if strings.TrimRight(string(line), "\r \t") == "---" {
			return rest[:offset], next, true
		}

		offset += len(line) + 1
	}

	return nil, data, false
}

func cutLine(data []byte, want string) ([]byte, bool) {
	line, rest, found := bytes.Cut(data, []byte("\n"))
	if !found || strings.TrimRight(string(line), "\r \t") != want {
		return nil, false
	}

	return rest, true
}

func firstHeading(body []byte) string {
	for line := range strings.Lines(string(body)) {
		title, ok := strings.CutPrefix(strings.TrimSpace(line), "# ")
		if ok {
			return strings.TrimSpace(title)
		}
	}

	return ""
}
