package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	orcadocs "github.com/nasa/orca-docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"orca-docs"}, args...))

	return out.String(), err
}

func TestSidebarsCommand(t *testing.T) {
	out, err := runApp(t, "sidebars")
	require.NoError(t, err)

	assert.Equal(t, "about_orca\ndev_guide\ncookbook\nops_guide\n", out)
}

func TestShowUnknownSidebar(t *testing.T) {
	_, err := runApp(t, "show", "release_notes")
	require.ErrorIs(t, err, orcadocs.ErrSidebarNotFound)
}

func TestShowRequiresOneID(t *testing.T) {
	_, err := runApp(t, "show")
	assert.Error(t, err)
}

func TestShowYAML(t *testing.T) {
	out, err := runApp(t, "show", "--format", "yaml", "about_orca")
	require.NoError(t, err)

	var doc yaml.Node

	err = yaml.Unmarshal([]byte(out), &doc)
	require.NoError(t, err)
	require.Len(t, doc.Content, 1)

	var labels []string

	categories := doc.Content[0]
	for i := 0; i < len(categories.Content); i += 2 {
		labels = append(labels, categories.Content[i].Value)
	}

	want, err := orcadocs.ORCA().Sidebar("about_orca")
	require.NoError(t, err)
	require.Len(t, labels, len(want.Categories))

	for i, c := range want.Categories {
		assert.Equal(t, c.Label, labels[i])
	}
}

func TestExportRoundTrip(t *testing.T) {
	out, err := runApp(t, "export", "--format", "yaml")
	require.NoError(t, err)

	manifestPath := filepath.Join(t.TempDir(), "sidebars.yaml")

	err = os.WriteFile(manifestPath, []byte(out), 0o600)
	require.NoError(t, err)

	reexported, err := runApp(t, "--manifest", manifestPath, "export", "--format", "yaml")
	require.NoError(t, err)

	assert.Equal(t, out, reexported)
}

func TestShowUnknownFormat(t *testing.T) {
	_, err := runApp(t, "show", "--format", "toml", "about_orca")
	assert.Error(t, err)
}
