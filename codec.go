package orcadocs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a manifest serialisation format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name, accepting "yml" as an alias for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown manifest format %q", name)
	}
}

// FormatFromPath picks a format based on the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("no file extension in %q", path)
	}

	return ParseFormat(ext)
}

// LoadManifest reads a JSON or YAML manifest file.
func LoadManifest(path string) (*SidebarSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	set, err := DecodeManifest(data, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return set, nil
}

func DecodeManifest(data []byte, format Format) (*SidebarSet, error) {
	var set SidebarSet

	switch format {
	case FormatJSON:
		err := json.Unmarshal(data, &set)
		if err != nil {
			return nil, fmt.Errorf("unmarshal JSON: %w", err)
		}
	case FormatYAML:
		err := yaml.Unmarshal(data, &set)
		if err != nil {
			return nil, fmt.Errorf("unmarshal YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format %q", format)
	}

	return &set, nil
}

// EncodeManifest writes v, a *SidebarSet or a Sidebar, in the given format.
// JSON output is indented.
func EncodeManifest(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("flush YAML: %w", err)
		}
	default:
		return fmt.Errorf("unknown manifest format %q", format)
	}

	return nil
}

// MarshalJSON writes the category bodies as an object keyed by label.
func (s Sidebar) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, c := range s.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}

		writeJSONString(&buf, c.Label)
		buf.WriteString(":[")

		for j, e := range c.Entries {
			if j > 0 {
				buf.WriteByte(',')
			}

			switch e.Kind {
			case EntryDoc:
				writeJSONString(&buf, string(e.Doc))
			case EntrySubCategory:
				buf.WriteByte('{')
				writeJSONString(&buf, e.Sub.Label)
				buf.WriteString(":[")

				for k, ref := range e.Sub.Docs {
					if k > 0 {
						buf.WriteByte(',')
					}

					writeJSONString(&buf, string(ref))
				}

				buf.WriteString("]}")
			default:
				return nil, fmt.Errorf("category %q: unknown entry kind %v",
					c.Label, e.Kind)
			}
		}

		buf.WriteByte(']')
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON writes the set as an object keyed by sidebar ID.
func (set *SidebarSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, s := range set.sidebars {
		if i > 0 {
			buf.WriteByte(',')
		}

		body, err := s.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("sidebar %q: %w", s.ID, err)
		}

		writeJSONString(&buf, s.ID)
		buf.WriteByte(':')
		buf.Write(body)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	// Marshalling a string can't fail.
	b, _ := json.Marshal(s)

	buf.Write(b)
}

// UnmarshalJSON decodes a set while keeping the declared order of sidebars,
// categories and entries.
func (set *SidebarSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	var sidebars []Sidebar

	err := readJSONObject(dec, func(id string) error {
		s := Sidebar{ID: id}

		err := readJSONObject(dec, func(label string) error {
			entries, err := readJSONEntries(dec)
			if err != nil {
				return fmt.Errorf("category %q: %w", label, err)
			}

			s.Categories = putCategory(s.Categories, Category{
				Label:   label,
				Entries: entries,
			})

			return nil
		})
		if err != nil {
			return fmt.Errorf("sidebar %q: %w", id, err)
		}

		sidebars = append(sidebars, s)

		return nil
	})
	if err != nil {
		return err
	}

	_, err = dec.Token()
	if !errors.Is(err, io.EOF) {
		return errors.New("trailing data after manifest")
	}

	*set = *NewSidebarSet(sidebars...)

	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}

	return nil
}

func readJSONObject(dec *json.Decoder, fn func(key string) error) error {
	err := expectDelim(dec, '{')
	if err != nil {
		return err
	}

	return readJSONObjectBody(dec, fn)
}

// readJSONObjectBody reads the members of an object whose opening brace has
// already been consumed.
func readJSONObjectBody(dec *json.Decoder, fn func(key string) error) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read object key: %w", err)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		err = fn(key)
		if err != nil {
			return err
		}
	}

	return expectDelim(dec, '}')
}

func readJSONEntries(dec *json.Decoder) ([]Entry, error) {
	err := expectDelim(dec, '[')
	if err != nil {
		return nil, err
	}

	entries := []Entry{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read entry: %w", err)
		}

		switch t := tok.(type) {
		case string:
			entries = append(entries, Doc(DocRef(t)))
		case json.Delim:
			if t != '{' {
				return nil, fmt.Errorf("entry %d: unexpected %q", len(entries), t)
			}

			var subs []Entry

			err := readJSONObjectBody(dec, func(label string) error {
				docs, err := readJSONDocList(dec)
				if err != nil {
					return fmt.Errorf("sub-category %q: %w", label, err)
				}

				subs = putSubCategory(subs, Group(label, docs...))

				return nil
			})
			if err != nil {
				return nil, err
			}

			if len(subs) == 0 {
				return nil, fmt.Errorf("entry %d: sub-category object has no labels",
					len(entries))
			}

			entries = append(entries, subs...)
		default:
			return nil, fmt.Errorf("entry %d: expected a document ID or a sub-category, got %v",
				len(entries), tok)
		}
	}

	err = expectDelim(dec, ']')
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func readJSONDocList(dec *json.Decoder) ([]DocRef, error) {
	err := expectDelim(dec, '[')
	if err != nil {
		return nil, err
	}

	docs := []DocRef{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read document ID: %w", err)
		}

		ref, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a document ID, got %v",
				len(docs), tok)
		}

		docs = append(docs, DocRef(ref))
	}

	err = expectDelim(dec, ']')
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// putCategory appends c, or replaces an earlier category with the same
// label in place.
func putCategory(cats []Category, c Category) []Category {
	for i := range cats {
		if cats[i].Label == c.Label {
			cats[i] = c

			return cats
		}
	}

	return append(cats, c)
}

func putSubCategory(subs []Entry, e Entry) []Entry {
	for i := range subs {
		if subs[i].Sub.Label == e.Sub.Label {
			subs[i] = e

			return subs
		}
	}

	return append(subs, e)
}

// MarshalYAML returns a mapping node so that the category order survives
// encoding.
func (s Sidebar) MarshalYAML() (any, error) {
	node := mappingNode()

	for _, c := range s.Categories {
		body := &yaml.Node{Kind: yaml.SequenceNode}

		for _, e := range c.Entries {
			switch e.Kind {
			case EntryDoc:
				body.Content = append(body.Content, stringNode(string(e.Doc)))
			case EntrySubCategory:
				docs := &yaml.Node{Kind: yaml.SequenceNode}

				for _, ref := range e.Sub.Docs {
					docs.Content = append(docs.Content, stringNode(string(ref)))
				}

				sub := mappingNode()
				sub.Content = append(sub.Content, stringNode(e.Sub.Label), docs)

				body.Content = append(body.Content, sub)
			default:
				return nil, fmt.Errorf("category %q: unknown entry kind %v",
					c.Label, e.Kind)
			}
		}

		node.Content = append(node.Content, stringNode(c.Label), body)
	}

	return node, nil
}

func (set *SidebarSet) MarshalYAML() (any, error) {
	node := mappingNode()

	for _, s := range set.sidebars {
		body, err := s.MarshalYAML()
		if err != nil {
			return nil, fmt.Errorf("sidebar %q: %w", s.ID, err)
		}

		node.Content = append(node.Content, stringNode(s.ID), body.(*yaml.Node))
	}

	return node, nil
}

func mappingNode() *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}
}

func stringNode(v string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: v,
	}
}

// UnmarshalYAML decodes a set from a YAML mapping, keeping declared order.
func (set *SidebarSet) UnmarshalYAML(node *yaml.Node) error {
	var sidebars []Sidebar

	err := eachYAMLPair(node, func(id string, value *yaml.Node) error {
		s := Sidebar{ID: id}

		err := eachYAMLPair(value, func(label string, body *yaml.Node) error {
			entries, err := yamlEntries(body)
			if err != nil {
				return fmt.Errorf("category %q: %w", label, err)
			}

			s.Categories = putCategory(s.Categories, Category{
				Label:   label,
				Entries: entries,
			})

			return nil
		})
		if err != nil {
			return fmt.Errorf("sidebar %q: %w", id, err)
		}

		sidebars = append(sidebars, s)

		return nil
	})
	if err != nil {
		return err
	}

	*set = *NewSidebarSet(sidebars...)

	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	return node
}

func eachYAMLPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	node = resolveAlias(node)

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := resolveAlias(node.Content[i])
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected a scalar key", key.Line)
		}

		err := fn(key.Value, node.Content[i+1])
		if err != nil {
			return err
		}
	}

	return nil
}

func yamlEntries(node *yaml.Node) ([]Entry, error) {
	node = resolveAlias(node)

	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of entries", node.Line)
	}

	entries := []Entry{}

	for _, item := range node.Content {
		item = resolveAlias(item)

		switch item.Kind {
		case yaml.ScalarNode:
			ref, err := yamlDocRef(item)
			if err != nil {
				return nil, err
			}

			entries = append(entries, Doc(ref))
		case yaml.MappingNode:
			var subs []Entry

			err := eachYAMLPair(item, func(label string, value *yaml.Node) error {
				docs, err := yamlDocList(value)
				if err != nil {
					return fmt.Errorf("sub-category %q: %w", label, err)
				}

				subs = putSubCategory(subs, Group(label, docs...))

				return nil
			})
			if err != nil {
				return nil, err
			}

			if len(subs) == 0 {
				return nil, fmt.Errorf(
					"line %d: sub-category object has no labels", item.Line)
			}

			entries = append(entries, subs...)
		default:
			return nil, fmt.Errorf(
				"line %d: expected a document ID or a sub-category", item.Line)
		}
	}

	return entries, nil
}

func yamlDocList(node *yaml.Node) ([]DocRef, error) {
	node = resolveAlias(node)

	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of document IDs", node.Line)
	}

	docs := []DocRef{}

	for _, item := range node.Content {
		item = resolveAlias(item)

		ref, err := yamlDocRef(item)
		if err != nil {
			return nil, err
		}

		docs = append(docs, ref)
	}

	return docs, nil
}

// yamlDocRef only accepts string scalars, so that numbers, booleans and
// nulls are rejected the same way the JSON decoder rejects them.
func yamlDocRef(node *yaml.Node) (DocRef, error) {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		return "", fmt.Errorf("line %d: expected a document ID, got %q",
			node.Line, node.Value)
	}

	return DocRef(node.Value), nil
}
