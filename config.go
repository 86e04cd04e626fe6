package orcadocs

type Config struct {
	Title string `json:"title"`
	// DocsDir is the directory that document references are resolved
	// against. Defaults to "docs".
	DocsDir  string       `json:"docs_dir"`
	BasePath string       `json:"base_path"`
	Navbar   []NavbarItem `json:"navbar"`
	// EditURL is prefixed to the document path to create "Edit this page"
	// links.
	EditURL        string `json:"edit_url,omitempty"`
	Version        string `json:"version,omitempty"`
	ShowLastUpdate bool   `json:"show_last_update,omitempty"`
}

type NavbarItem struct {
	Label   string `json:"label"`
	Sidebar string `json:"sidebar"`
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = "ORCA"
	}

	if c.DocsDir == "" {
		c.DocsDir = "docs"
	}

	return c
}
