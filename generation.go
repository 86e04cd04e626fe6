package orcadocs

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/nasa/orca-docs/internal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

//go:embed templates
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

const renderWorkers = 16

type site struct {
	Conf     Config
	RootURL  *url.URL
	Manifest *SidebarSet
	Docs     map[DocRef]*Document
	History  map[DocRef]LastUpdate
	Version  *VersionBadge
	Markdown goldmark.Markdown
}

type docJob struct {
	Sidebar string
	Ref     DocRef
}

// Generate renders the documentation site described by the manifest into
// outDir. Every document reference must resolve to a file in the docs
// directory, otherwise nothing is rendered.
func Generate(
	ctx context.Context, outDir string, conf Config, manifest *SidebarSet,
	uiPrintln func(format string, a ...any),
) error {
	conf = conf.withDefaults()

	rootPath := conf.BasePath
	if rootPath == "" {
		rootPath = "/"
	}

	if !strings.HasSuffix(rootPath, "/") {
		rootPath += "/"
	}

	rootURL, err := url.Parse(rootPath)
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}

	err = checkNavigation(manifest, conf.Navbar)
	if err != nil {
		return fmt.Errorf("check sidebars: %w", err)
	}

	docs, err := resolveDocuments(os.DirFS(conf.DocsDir), manifest)
	if err != nil {
		return fmt.Errorf("resolve documents: %w", err)
	}

	badge, err := versionBadge(conf.Version)
	if err != nil {
		return err
	}

	s := site{
		Conf:     conf,
		RootURL:  rootURL,
		Manifest: manifest,
		Docs:     docs,
		Version:  badge,
		Markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}

	if conf.ShowLastUpdate {
		history, err := docHistory(conf.DocsDir, docs)

		switch {
		case isMissingRepository(err):
			slog.Warn("docs directory is not in a git repository, skipping last update times",
				"dir", conf.DocsDir)
		case err != nil:
			return fmt.Errorf("read document history: %w", err)
		default:
			s.History = history
		}
	}

	tpl, err := s.templates()
	if err != nil {
		return err
	}

	uiPrintln("Rendering %d documents from %d sidebars", len(docs), manifest.Len())

	jobs := make(chan docJob)

	grp, gCtx := errgroup.WithContext(ctx)

	// Copy all assets.
	grp.Go(func() error {
		err := os.CopyFS(outDir, assetFS)
		if err != nil {
			return fmt.Errorf("write assets directory: %w", err)
		}

		return nil
	})

	grp.Go(func() error {
		localTpl, err := tpl.Clone()
		if err != nil {
			return fmt.Errorf("clone templates: %w", err)
		}

		err = renderHomePage(outDir, localTpl, &s)
		if err != nil {
			return fmt.Errorf("render home page: %w", err)
		}

		return nil
	})

	// Queue the rendering of each document.
	grp.Go(func() error {
		defer close(jobs)

		for id, ref := range manifest.Docs() {
			select {
			case jobs <- docJob{Sidebar: id, Ref: ref}:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}

		return nil
	})

	// Start workers that will render the document pages.
	for range renderWorkers {
		grp.Go(func() error {
			localTpl, err := tpl.Clone()
			if err != nil {
				return fmt.Errorf("clone templates: %w", err)
			}

			for job := range jobs {
				err := renderDocPage(outDir, localTpl, &s, job)
				if err != nil {
					return fmt.Errorf("render %q: %w", job.Ref, err)
				}
			}

			return nil
		})
	}

	// Render the landing pages that redirect to the first document of
	// each sidebar.
	grp.Go(func() error {
		localTpl, err := tpl.Clone()
		if err != nil {
			return fmt.Errorf("clone templates: %w", err)
		}

		for id, sidebar := range manifest.All() {
			err := renderSidebarLandingPage(outDir, localTpl, &s, sidebar)
			if err != nil {
				return fmt.Errorf("render %s landing page: %w", id, err)
			}
		}

		return nil
	})

	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("render documentation: %w", err)
	}

	return nil
}

func (s *site) templates() (*template.Template, error) {
	tpl := template.New("templates")

	tpl.Funcs(template.FuncMap{
		"abs_url": s.absURL,
		"base_path": func() string {
			return s.Conf.BasePath
		},
		"attr": func(name string) template.HTMLAttr {
			return template.HTMLAttr(name)
		},
		"format_date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	})

	tpl, err := tpl.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return tpl, nil
}

// checkNavigation fails the build for sidebars that can't be rendered
// unambiguously. All problems are reported at once.
func checkNavigation(manifest *SidebarSet, navbar []NavbarItem) error {
	var problems []error

	claimed := make(map[DocRef]string)

	for id, sidebar := range manifest.All() {
		if id == "" || !fs.ValidPath(id) || strings.Contains(id, "/") {
			problems = append(problems, fmt.Errorf(
				"sidebar ID %q can't be used as a path segment", id))
		}

		if len(sidebar.Categories) == 0 {
			problems = append(problems, fmt.Errorf(
				"sidebar %q has no categories", id))
		}

		labels := make(map[string]bool, len(sidebar.Categories))

		for _, c := range sidebar.Categories {
			if labels[c.Label] {
				problems = append(problems, fmt.Errorf(
					"sidebar %q: duplicate category %q", id, c.Label))
			}

			labels[c.Label] = true

			for _, e := range c.Entries {
				if e.Kind == EntrySubCategory && len(e.Sub.Docs) == 0 {
					problems = append(problems, fmt.Errorf(
						"sidebar %q: sub-category %q in %q is empty",
						id, e.Sub.Label, c.Label))
				}
			}
		}

		for _, ref := range sidebar.Docs() {
			if ref == "" {
				problems = append(problems, fmt.Errorf(
					"sidebar %q: empty document ID", id))

				continue
			}

			owner, dup := claimed[ref]
			if dup {
				problems = append(problems, fmt.Errorf(
					"document %q is listed in both %q and %q", ref, owner, id))

				continue
			}

			claimed[ref] = id
		}
	}

	for _, item := range navbar {
		_, ok := manifest.Lookup(item.Sidebar)
		if !ok {
			problems = append(problems, fmt.Errorf(
				"navbar item %q: %w: %q", item.Label, ErrSidebarNotFound, item.Sidebar))
		}
	}

	return errors.Join(problems...)
}

func resolveDocuments(docsFS fs.FS, manifest *SidebarSet) (map[DocRef]*Document, error) {
	var problems []error

	docs := make(map[DocRef]*Document)

	for id, ref := range manifest.Docs() {
		if _, done := docs[ref]; done {
			continue
		}

		doc, err := LoadDocument(docsFS, ref)
		if err != nil {
			problems = append(problems, fmt.Errorf("sidebar %q: %w", id, err))

			continue
		}

		docs[ref] = doc
	}

	err := errors.Join(problems...)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func versionBadge(version string) (*VersionBadge, error) {
	if version == "" {
		return nil, nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid site version %q: %w", version, err)
	}

	return &VersionBadge{
		Version:    v.Original(),
		Unreleased: v.Prerelease() != "",
	}, nil
}

func (s *site) absURL(targetURL string) string {
	target, err := url.Parse(targetURL)
	if err != nil {
		panic("bad URL: " + targetURL)
	}

	if target.Scheme != "" {
		return targetURL
	}

	u := s.RootURL.JoinPath(target.Path)
	u.Fragment = target.Fragment

	return u.String()
}

func docHRef(ref DocRef) string {
	return "/docs/" + string(ref) + "/"
}

func sidebarHRef(id string) string {
	return "/sidebars/" + id + "/"
}

func (s *site) docTitle(ref DocRef) string {
	doc, ok := s.Docs[ref]
	if !ok {
		return string(ref)
	}

	return doc.Label()
}

func (s *site) navbar(active string) []MenuItem {
	var items []MenuItem

	if len(s.Conf.Navbar) == 0 {
		for _, id := range s.Manifest.IDs() {
			items = append(items, MenuItem{
				Title:  id,
				HRef:   sidebarHRef(id),
				Active: id == active,
			})
		}

		return items
	}

	for _, n := range s.Conf.Navbar {
		items = append(items, MenuItem{
			Title:  n.Label,
			HRef:   sidebarHRef(n.Sidebar),
			Active: n.Sidebar == active,
		})
	}

	return items
}

func (s *site) sidebarTitle(id string) string {
	for _, n := range s.Conf.Navbar {
		if n.Sidebar == id {
			return n.Label
		}
	}

	return id
}

// sidebarMenu builds the menu for a sidebar in declared order with the
// active document marked.
func (s *site) sidebarMenu(sidebar Sidebar, active DocRef) []MenuItem {
	docItem := func(ref DocRef) MenuItem {
		return MenuItem{
			Title:  s.docTitle(ref),
			HRef:   docHRef(ref),
			Active: ref == active,
		}
	}

	menu := make([]MenuItem, 0, len(sidebar.Categories))

	for _, c := range sidebar.Categories {
		item := MenuItem{Title: c.Label}

		for _, e := range c.Entries {
			switch e.Kind {
			case EntryDoc:
				item.Children = append(item.Children, docItem(e.Doc))
			case EntrySubCategory:
				sub := MenuItem{Title: e.Sub.Label}

				for _, ref := range e.Sub.Docs {
					sub.Children = append(sub.Children, docItem(ref))
				}

				item.Children = append(item.Children, sub)
			}
		}

		menu = append(menu, item)
	}

	return menu
}

// breadcrumb returns the trail from the home page to the document.
func (s *site) breadcrumb(sidebar Sidebar, ref DocRef) []MenuItem {
	crumbs := []MenuItem{
		{Title: "Home", HRef: "/"},
		{Title: s.sidebarTitle(sidebar.ID), HRef: sidebarHRef(sidebar.ID)},
	}

	for _, c := range sidebar.Categories {
		for _, e := range c.Entries {
			switch {
			case e.Kind == EntryDoc && e.Doc == ref:
				return append(crumbs,
					MenuItem{Title: c.Label},
					MenuItem{Title: s.docTitle(ref)},
				)
			case e.Kind == EntrySubCategory:
				for _, r := range e.Sub.Docs {
					if r != ref {
						continue
					}

					return append(crumbs,
						MenuItem{Title: c.Label},
						MenuItem{Title: e.Sub.Label},
						MenuItem{Title: s.docTitle(ref)},
					)
				}
			}
		}
	}

	return append(crumbs, MenuItem{Title: s.docTitle(ref)})
}

// neighbours returns the documents before and after ref in the flattened
// display order of the sidebar.
func (s *site) neighbours(sidebar Sidebar, ref DocRef) (*MenuItem, *MenuItem) {
	var prev, next *MenuItem

	refs := sidebar.Docs()

	for i := range refs {
		if refs[i] != ref {
			continue
		}

		if i > 0 {
			prev = &MenuItem{
				Title: s.docTitle(refs[i-1]),
				HRef:  docHRef(refs[i-1]),
			}
		}

		if i < len(refs)-1 {
			next = &MenuItem{
				Title: s.docTitle(refs[i+1]),
				HRef:  docHRef(refs[i+1]),
			}
		}

		break
	}

	return prev, next
}

func renderDocPage(outDir string, tpl *template.Template, s *site, job docJob) error {
	doc, ok := s.Docs[job.Ref]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDocNotFound, job.Ref)
	}

	sidebar, err := s.Manifest.Sidebar(job.Sidebar)
	if err != nil {
		return err
	}

	var htmlBuf bytes.Buffer

	err = s.Markdown.Convert(doc.Body, &htmlBuf)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	body, err := decorateHTML(&htmlBuf, doc.Path, s.absURL)
	if err != nil {
		return fmt.Errorf("post-process HTML: %w", err)
	}

	prev, next := s.neighbours(sidebar, job.Ref)

	contents := DocPage{
		Ref:         job.Ref,
		Sidebar:     job.Sidebar,
		Title:       doc.Title,
		Description: doc.Description,
		HTML:        body,
		Previous:    prev,
		Next:        next,
	}

	if s.Conf.EditURL != "" {
		contents.EditURL = strings.TrimSuffix(s.Conf.EditURL, "/") + "/" + doc.Path
	}

	if update, ok := s.History[job.Ref]; ok {
		contents.LastUpdate = &update
	}

	page := Page{
		Title:      doc.Title,
		SiteTitle:  s.Conf.Title,
		Navbar:     s.navbar(job.Sidebar),
		Menu:       s.sidebarMenu(sidebar, job.Ref),
		Breadcrumb: s.breadcrumb(sidebar, job.Ref),
		Version:    s.Version,
		Contents:   contents,
	}

	if doc.Description != "" {
		page.MetaTags = append(page.MetaTags, map[string]string{
			"name":    "description",
			"content": doc.Description,
		})
	}

	return renderPage(
		filepath.Join(outDir, "docs", filepath.FromSlash(string(job.Ref))),
		tpl, "doc_page.html", page)
}

func renderSidebarLandingPage(
	outDir string, tpl *template.Template, s *site, sidebar Sidebar,
) error {
	contents := SidebarLandingPage{
		Sidebar: sidebar.ID,
	}

	page := Page{
		Title:     s.sidebarTitle(sidebar.ID),
		SiteTitle: s.Conf.Title,
		Navbar:    s.navbar(sidebar.ID),
		Menu:      s.sidebarMenu(sidebar, ""),
		Version:   s.Version,
		Breadcrumb: []MenuItem{
			{Title: "Home", HRef: "/"},
			{Title: s.sidebarTitle(sidebar.ID)},
		},
	}

	refs := sidebar.Docs()
	if len(refs) > 0 {
		contents.RedirectLocation = s.absURL(docHRef(refs[0]))

		page.MetaTags = append(page.MetaTags, map[string]string{
			"http-equiv": "refresh",
			"content":    fmt.Sprintf("0; url=%s", contents.RedirectLocation),
		})
	}

	page.Contents = contents

	return renderPage(
		filepath.Join(outDir, "sidebars", sidebar.ID),
		tpl, "sidebar_redirect.html", page)
}

func renderHomePage(outDir string, tpl *template.Template, s *site) error {
	navbar := s.navbar("")

	page := Page{
		Title:     s.Conf.Title,
		SiteTitle: s.Conf.Title,
		Navbar:    navbar,
		Version:   s.Version,
		Contents: HomePage{
			Sidebars: navbar,
		},
	}

	return renderPage(outDir, tpl, "home.html", page)
}

// decorateHTML adds CSS classes to the rendered markdown and points links to
// other markdown documents at their rendered pages.
func decorateHTML(
	buf io.Reader, docPath string, absURL func(string) string,
) (template.HTML, error) {
	parent := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}

	nodes, err := html.ParseFragment(buf, parent)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	classes := map[string]string{
		"h1":    "doc-title",
		"h2":    "doc-heading",
		"h3":    "doc-heading",
		"table": "doc-table",
		"pre":   "doc-code",
		"a":     "doc-link",
	}

	var out bytes.Buffer

	for _, root := range nodes {
		for n := range root.Descendants() {
			decorateNode(n, classes, docPath, absURL)
		}

		decorateNode(root, classes, docPath, absURL)

		err = html.Render(&out, root)
		if err != nil {
			return "", fmt.Errorf("render modified HTML: %w", err)
		}
	}

	return template.HTML(out.String()), nil
}

func decorateNode(
	n *html.Node, classes map[string]string,
	docPath string, absURL func(string) string,
) {
	if n.Type != html.ElementNode {
		return
	}

	class, ok := classes[n.Data]
	if ok {
		addClass(n, class)
	}

	if n.DataAtom != atom.A {
		return
	}

	for i := range n.Attr {
		if n.Attr[i].Key != "href" {
			continue
		}

		href, ok := docLinkHRef(docPath, n.Attr[i].Val)
		if ok {
			n.Attr[i].Val = absURL(href)
		}
	}
}

func addClass(n *html.Node, class string) {
	for i := range n.Attr {
		if n.Attr[i].Key != "class" {
			continue
		}

		if slices.Contains(strings.Fields(n.Attr[i].Val), class) {
			return
		}

		n.Attr[i].Val = strings.TrimSpace(n.Attr[i].Val + " " + class)

		return
	}

	n.Attr = append(n.Attr, html.Attribute{
		Key: "class",
		Val: class,
	})
}

// docLinkHRef rewrites a relative link to a markdown file into a link to
// the rendered document.
func docLinkHRef(docPath string, href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}

	ext := path.Ext(u.Path)
	if ext != ".md" && ext != ".mdx" {
		return "", false
	}

	target := u.Path
	if strings.HasPrefix(target, "/") {
		target = strings.TrimPrefix(target, "/")
	} else {
		target = path.Join(path.Dir(docPath), target)
	}

	if !fs.ValidPath(target) {
		return "", false
	}

	result := docHRef(DocRef(strings.TrimSuffix(target, ext)))

	if u.Fragment != "" {
		result += "#" + u.Fragment
	}

	return result, true
}

func renderPage(
	outDir string,
	tpl *template.Template,
	templateName string,
	page Page,
) error {
	err := os.MkdirAll(outDir, 0o700)
	if err != nil {
		return fmt.Errorf("create %q: %w", outDir, err)
	}

	err = internal.MarshalFile(
		filepath.Join(outDir, "index.json"), page.Contents)
	if err != nil {
		return fmt.Errorf("write page data: %w", err)
	}

	err = internal.WriteFile(
		filepath.Join(outDir, "index.html"),
		func(w io.Writer) error {
			return tpl.ExecuteTemplate(w, templateName, page)
		})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	return nil
}
