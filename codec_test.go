package orcadocs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func collectSidebars(set *SidebarSet) []Sidebar {
	var sidebars []Sidebar

	for _, s := range set.All() {
		sidebars = append(sidebars, s)
	}

	return sidebars
}

func TestLoadManifestJSON(t *testing.T) {
	set, err := LoadManifest(filepath.Join("testdata", "sidebars.json"))
	require.NoError(t, err)

	assert.Equal(t, collectSidebars(ORCA()), collectSidebars(set),
		"the multi-key sub-category object must become two consecutive sub-categories")
}

func TestManifestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer

			err := EncodeManifest(&buf, ORCA(), format)
			require.NoError(t, err)

			decoded, err := DecodeManifest(buf.Bytes(), format)
			require.NoError(t, err)

			assert.Equal(t, ORCA().IDs(), decoded.IDs())
			assert.Equal(t, collectSidebars(ORCA()), collectSidebars(decoded))

			var again bytes.Buffer

			err = EncodeManifest(&again, decoded, format)
			require.NoError(t, err)

			assert.Equal(t, buf.String(), again.String())
		})
	}
}

func TestMarshalJSONShape(t *testing.T) {
	set := NewSidebarSet(Sidebar{
		ID: "zeta",
		Categories: []Category{
			{
				Label: "Second",
				Entries: []Entry{
					Doc("b"),
					Group("Nested", "c", "d"),
				},
			},
			{
				Label:   "First",
				Entries: []Entry{Doc("a")},
			},
		},
	}, Sidebar{
		ID:         "alpha",
		Categories: []Category{{Label: "Empty", Entries: []Entry{}}},
	})

	data, err := json.Marshal(set)
	require.NoError(t, err)

	assert.Equal(t,
		`{"zeta":{"Second":["b",{"Nested":["c","d"]}],"First":["a"]},"alpha":{"Empty":[]}}`,
		string(data))
}

func TestYAMLKeepsStringsThatLookLikeOtherTypes(t *testing.T) {
	sidebar := Sidebar{
		ID: "s",
		Categories: []Category{
			{
				Label:   "true",
				Entries: []Entry{Doc("null"), Group("Sub", "1.5")},
			},
		},
	}

	var buf bytes.Buffer

	err := EncodeManifest(&buf, sidebar, FormatYAML)
	require.NoError(t, err)

	var generic map[string]any

	err = yaml.Unmarshal(buf.Bytes(), &generic)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"true": []any{
			"null",
			map[string]any{"Sub": []any{"1.5"}},
		},
	}, generic)

	buf.Reset()

	err = EncodeManifest(&buf, NewSidebarSet(sidebar), FormatYAML)
	require.NoError(t, err)

	set, err := DecodeManifest(buf.Bytes(), FormatYAML)
	require.NoError(t, err)

	got, err := set.Sidebar("s")
	require.NoError(t, err)
	assert.Equal(t, sidebar, got)
}

func TestDecodeYAMLKeepsOrder(t *testing.T) {
	doc := `
zulu:
  Later: [z/one]
  Earlier:
    - z/two
    - Group:
        - z/three
      Other:
        - z/four
alpha:
  Only: [a/one]
`

	set, err := DecodeManifest([]byte(doc), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"zulu", "alpha"}, set.IDs())

	zulu, err := set.Sidebar("zulu")
	require.NoError(t, err)

	assert.Equal(t, Sidebar{
		ID: "zulu",
		Categories: []Category{
			{Label: "Later", Entries: []Entry{Doc("z/one")}},
			{Label: "Earlier", Entries: []Entry{
				Doc("z/two"),
				Group("Group", "z/three"),
				Group("Other", "z/four"),
			}},
		},
	}, zulu)
}

func TestDecodeDuplicateCategory(t *testing.T) {
	set, err := DecodeManifest(
		[]byte(`{"a": {"c": ["x"], "d": ["y"], "c": ["z"]}}`), FormatJSON)
	require.NoError(t, err)

	a, err := set.Sidebar("a")
	require.NoError(t, err)

	assert.Equal(t, []Category{
		{Label: "c", Entries: []Entry{Doc("z")}},
		{Label: "d", Entries: []Entry{Doc("y")}},
	}, a.Categories)
}

func TestDecodeManifestErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{
			name:   "top level list",
			format: FormatJSON,
			data:   `["a"]`,
		},
		{
			name:   "number entry",
			format: FormatJSON,
			data:   `{"a": {"c": [1]}}`,
		},
		{
			name:   "nested too deep",
			format: FormatJSON,
			data:   `{"a": {"c": [{"s": [{"x": ["y"]}]}]}}`,
		},
		{
			name:   "category body is an object",
			format: FormatJSON,
			data:   `{"a": {"c": {"x": ["y"]}}}`,
		},
		{
			name:   "yaml sidebar is a list",
			format: FormatYAML,
			data:   "a:\n  - x\n",
		},
		{
			name:   "yaml nested too deep",
			format: FormatYAML,
			data:   "a:\n  c:\n    - s:\n        - x: [y]\n",
		},
		{
			name:   "empty sub-category object",
			format: FormatJSON,
			data:   `{"a": {"c": ["x", {}, "y"]}}`,
		},
		{
			name:   "yaml number entry",
			format: FormatYAML,
			data:   "a:\n  c:\n    - 1\n",
		},
		{
			name:   "yaml null entry",
			format: FormatYAML,
			data:   "a:\n  c:\n    - ~\n",
		},
		{
			name:   "yaml empty entry",
			format: FormatYAML,
			data:   "a:\n  c:\n    -\n",
		},
		{
			name:   "yaml boolean entry",
			format: FormatYAML,
			data:   "a:\n  c:\n    - true\n",
		},
		{
			name:   "yaml number in sub-category",
			format: FormatYAML,
			data:   "a:\n  c:\n    - s: [x, 2.5]\n",
		},
		{
			name:   "yaml empty sub-category object",
			format: FormatYAML,
			data:   "a:\n  c:\n    - x\n    - {}\n    - y\n",
		},
		{
			name:   "unknown format",
			format: Format("toml"),
			data:   `a = 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeManifest([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestDecodeYAMLQuotedDocumentIDs(t *testing.T) {
	set, err := DecodeManifest([]byte("a:\n  c:\n    - \"1\"\n    - 'true'\n    - s: [\"~\"]\n"), FormatYAML)
	require.NoError(t, err)

	got, err := set.Sidebar("a")
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		Doc("1"), Doc("true"), Group("s", "~"),
	}, got.Categories[0].Entries)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "sidebars.json", want: FormatJSON},
		{path: "dir/sidebars.yaml", want: FormatYAML},
		{path: "sidebars.YML", want: FormatYAML},
		{path: "sidebars.js", wantErr: true},
		{path: "sidebars", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadManifestYAML(t *testing.T) {
	data, err := yaml.Marshal(ORCA())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sidebars.yml")

	err = os.WriteFile(path, data, 0o600)
	require.NoError(t, err)

	set, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, collectSidebars(ORCA()), collectSidebars(set))
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
