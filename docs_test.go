package orcadocs

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocument(t *testing.T) {
	docsFS := fstest.MapFS{
		"about/tips.md": {Data: []byte(`---
id: tips
title: Helpful Tips
sidebar_label: Tips
description: Things worth knowing.
---

Some tips.
`)},
		"about/team.mdx": {Data: []byte("# The ORCA Team\n\nWho we are.\n")},
		"cookbook/cookbook-intro.md": {Data: []byte("No heading here.\n")},
		"broken.md":                  {Data: []byte("---\ntitle: [unclosed\n---\n")},
	}

	tests := []struct {
		name    string
		ref     DocRef
		want    Document
		wantErr error
	}{
		{
			name: "front matter",
			ref:  "about/tips",
			want: Document{
				Ref:          "about/tips",
				Path:         "about/tips.md",
				Title:        "Helpful Tips",
				SidebarLabel: "Tips",
				Description:  "Things worth knowing.",
				Body:         []byte("\nSome tips.\n"),
			},
		},
		{
			name: "mdx with heading",
			ref:  "about/team",
			want: Document{
				Ref:   "about/team",
				Path:  "about/team.mdx",
				Title: "The ORCA Team",
				Body:  []byte("# The ORCA Team\n\nWho we are.\n"),
			},
		},
		{
			name: "title from file name",
			ref:  "cookbook/cookbook-intro",
			want: Document{
				Ref:   "cookbook/cookbook-intro",
				Path:  "cookbook/cookbook-intro.md",
				Title: "cookbook-intro",
				Body:  []byte("No heading here.\n"),
			},
		},
		{
			name:    "missing",
			ref:     "operator/operator-intro",
			wantErr: ErrDocNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := LoadDocument(docsFS, tt.ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, *doc)
		})
	}

	_, err := LoadDocument(docsFS, "broken")
	assert.Error(t, err, "invalid front matter")

	_, err = LoadDocument(docsFS, "../outside")
	assert.Error(t, err)

	_, err = LoadDocument(docsFS, "")
	assert.Error(t, err)
}

func TestDocumentLabel(t *testing.T) {
	assert.Equal(t, "Tips", (&Document{Title: "Helpful Tips", SidebarLabel: "Tips"}).Label())
	assert.Equal(t, "Helpful Tips", (&Document{Title: "Helpful Tips"}).Label())
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantFM   string
		wantBody string
		wantOK   bool
	}{
		{
			name:     "none",
			data:     "# Title\n",
			wantBody: "# Title\n",
		},
		{
			name:     "crlf",
			data:     "---\r\ntitle: x\r\n---\r\nbody",
			wantFM:   "title: x\r\n",
			wantBody: "body",
			wantOK:   true,
		},
		{
			name:     "unterminated",
			data:     "---\ntitle: x\n",
			wantBody: "---\ntitle: x\n",
		},
		{
			name:     "empty body",
			data:     "---\ntitle: x\n---",
			wantFM:   "title: x\n",
			wantBody: "",
			wantOK:   true,
		},
		{
			name:     "thematic break later in the file",
			data:     "text\n---\nmore",
			wantBody: "text\n---\nmore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, ok := splitFrontMatter([]byte(tt.data))

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFM, string(fm))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestDocLinkHRef(t *testing.T) {
	tests := []struct {
		href   string
		want   string
		wantOK bool
	}{
		{href: "intro-glossary.md", want: "/docs/about/introduction/intro-glossary/", wantOK: true},
		{href: "../tips.md#aws", want: "/docs/about/tips/#aws", wantOK: true},
		{href: "/developer/quickstart/developer-intro.mdx", want: "/docs/developer/quickstart/developer-intro/", wantOK: true},
		{href: "https://nasa.github.io/cumulus-orca/docs.md"},
		{href: "#anchor"},
		{href: "image.png"},
		{href: "../../../../outside.md"},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, ok := docLinkHRef("about/introduction/orca-intro.md", tt.href)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
