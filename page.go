package orcadocs

import "html/template"

type Page struct {
	MetaTags   []map[string]string
	Title      string
	SiteTitle  string
	Language   string
	Navbar     []MenuItem
	Menu       []MenuItem
	Breadcrumb []MenuItem
	Version    *VersionBadge
	Contents   any
}

// MenuItem is a link in a navigation menu. Items without a HRef are
// category headings.
type MenuItem struct {
	Title    string
	HRef     string
	Active   bool
	Children []MenuItem
}

func (m MenuItem) HasActive() bool {
	for i := range m.Children {
		if m.Children[i].Active || m.Children[i].HasActive() {
			return true
		}
	}

	return false
}

type VersionBadge struct {
	Version    string
	Unreleased bool
}

type DocPage struct {
	Ref         DocRef
	Sidebar     string
	Title       string
	Description string
	HTML        template.HTML `json:"-"`
	EditURL     string        `json:",omitempty"`
	LastUpdate  *LastUpdate   `json:",omitempty"`
	Previous    *MenuItem     `json:",omitempty"`
	Next        *MenuItem     `json:",omitempty"`
}

type SidebarLandingPage struct {
	Sidebar          string
	RedirectLocation string
}

type HomePage struct {
	Sidebars []MenuItem
}
