// Package render generates the output HTML pages: one logical page per
// invocation, rendered through the shared layout template and written below
// the output directory.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/linkmap"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// pageTemplates enumerates the page-content templates layered over the
// layout.
var pageTemplates = []string{"container", "globals", "source", "tutorial", "mainpage"}

// SiteData is the per-run view state shared by every page render.
type SiteData struct {
	Title       string
	Nav         template.HTML
	PrismTheme  string
	Version     string
	GeneratedAt string
	Repository  string
}

// TutorialChild is a rendered link to a tutorial's sub-tutorial.
type TutorialChild struct {
	Title string
	URL   string
}

// Engine renders pages for one run. One Generate call produces exactly one
// output file and is otherwise side-effect free.
type Engine struct {
	templates map[string]*template.Template
	links     *linkmap.Registry
	store     *doclet.Store
	writer    FileWriter
	enc       encoding.Encoding
	Site      *SiteData
}

// NewEngine parses the layout (the embedded default, or layoutFile when set)
// together with each page template. encodingName selects the source-file
// read encoding (default utf-8).
func NewEngine(store *doclet.Store, links *linkmap.Registry, writer FileWriter, layoutFile, encodingName string, site *SiteData) (*Engine, error) {
	e := &Engine{
		templates: make(map[string]*template.Template),
		links:     links,
		store:     store,
		writer:    writer,
		Site:      site,
	}

	if encodingName == "" {
		encodingName = "utf-8"
	}
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encodingName, err)
	}
	e.enc = enc

	layoutSrc, err := layoutSource(layoutFile)
	if err != nil {
		return nil, err
	}
	base, err := template.New("layout").Funcs(e.funcMap()).Parse(layoutSrc)
	if err != nil {
		return nil, fmt.Errorf("parse layout template: %w", err)
	}
	// Shared partials are never overridable; a custom layout still renders
	// symbol details through them.
	partials, err := builtinTemplates.ReadFile("templates/partials.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read partials template: %w", err)
	}
	if _, err := base.Parse(string(partials)); err != nil {
		return nil, fmt.Errorf("parse partials template: %w", err)
	}
	for _, name := range pageTemplates {
		src, err := builtinTemplates.ReadFile("templates/" + name + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("read %s template: %w", name, err)
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		e.templates[name] = t
	}
	return e, nil
}

func layoutSource(layoutFile string) (string, error) {
	if layoutFile == "" {
		data, err := builtinTemplates.ReadFile("templates/layout.tmpl")
		if err != nil {
			return "", fmt.Errorf("read layout template: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(layoutFile)
	if err != nil {
		return "", fmt.Errorf("read layout override: %w", err)
	}
	return string(data), nil
}

// funcMap exposes the registry and store to templates.
func (e *Engine) funcMap() template.FuncMap {
	return template.FuncMap{
		"raw":      func(s string) template.HTML { return template.HTML(s) },
		"htmlsafe": linkmap.HTMLSafe,
		"deref":    func(b *bool) bool { return b != nil && *b },
		"linkto": func(longname, text string) template.HTML {
			return template.HTML(e.links.LinkTo(longname, linkmap.HTMLSafe(text)))
		},
		"members": func(parent string) []*doclet.Doclet {
			return e.store.MembersOfKind(parent, doclet.KindMember)
		},
		"methods": func(parent string) []*doclet.Doclet {
			return e.store.MembersOfKind(parent, doclet.KindFunction)
		},
		"typedefs": func(parent string) []*doclet.Doclet {
			return e.store.MembersOfKind(parent, doclet.KindTypedef)
		},
		"events": func(parent string) []*doclet.Doclet {
			return e.store.MembersOfKind(parent, doclet.KindEvent)
		},
		"ofKind": func(kind string, ds []*doclet.Doclet) []*doclet.Doclet {
			var out []*doclet.Doclet
			for _, d := range ds {
				if string(d.Kind) == kind {
					out = append(out, d)
				}
			}
			return out
		},
		"sourcelink": func(d *doclet.Doclet) template.HTML {
			return template.HTML(e.sourceLink(d))
		},
	}
}

// sourceLink renders the "file, line N" link into a source listing page, or
// nothing when the doclet carries no source metadata.
func (e *Engine) sourceLink(d *doclet.Doclet) string {
	if d.Meta == nil || d.Meta.Shortpath == "" {
		return ""
	}
	url, ok := e.links.URL(d.Meta.Shortpath)
	if !ok {
		return linkmap.HTMLSafe(fmt.Sprintf("%s, line %d", d.Meta.Shortpath, d.Meta.LineNo))
	}
	return fmt.Sprintf(`<a href="%s#line%d">%s, line %d</a>`,
		url, d.Meta.LineNo, linkmap.HTMLSafe(d.Meta.Shortpath), d.Meta.LineNo)
}

// execute renders the named page template and writes filename, optionally
// resolving {@link} markers first. It reports whether the file was written
// (an incremental writer may skip unchanged content).
func (e *Engine) execute(page string, data any, filename string, resolveLinks bool) (bool, error) {
	t, ok := e.templates[page]
	if !ok {
		return false, fmt.Errorf("unknown page template %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return false, fmt.Errorf("render %s: %w", filename, err)
	}
	out := buf.Bytes()
	if resolveLinks {
		out = []byte(e.links.ResolveLinks(buf.String()))
	}
	written, err := e.writer.WriteFile(filename, out)
	if err != nil {
		return false, fmt.Errorf("write %s: %w", filename, err)
	}
	return written, nil
}

// containerData feeds the container and globals templates.
type containerData struct {
	Site  *SiteData
	Title string
	Kind  string
	Docs  []*doclet.Doclet
}

// Generate renders one symbol page (one or more doclets sharing a longname)
// to filename.
func (e *Engine) Generate(title, kind string, docs []*doclet.Doclet, filename string, resolveLinks bool) (bool, error) {
	return e.execute("container", containerData{Site: e.Site, Title: title, Kind: kind, Docs: docs}, filename, resolveLinks)
}

// GenerateGlobals renders the globals page.
func (e *Engine) GenerateGlobals(globals []*doclet.Doclet, filename string) (bool, error) {
	return e.execute("globals", containerData{Site: e.Site, Title: "Global", Kind: "globalobj", Docs: globals}, filename, true)
}

type mainPageData struct {
	Site     *SiteData
	Title    string
	Packages []*doclet.Doclet
	Readme   template.HTML
	Files    []*doclet.Doclet
}

// GenerateMainPage renders the index page combining package metadata, the
// optional readme body, and the physical source file list.
func (e *Engine) GenerateMainPage(title string, packages []*doclet.Doclet, readme template.HTML, files []*doclet.Doclet, filename string) (bool, error) {
	return e.execute("mainpage", mainPageData{
		Site:     e.Site,
		Title:    title,
		Packages: packages,
		Readme:   readme,
		Files:    files,
	}, filename, true)
}

type sourceData struct {
	Site  *SiteData
	Title string
	Code  template.HTML
}

// GenerateSource renders one source listing page from already-read code.
func (e *Engine) GenerateSource(shortpath, code, filename string) (bool, error) {
	return e.execute("source", sourceData{
		Site:  e.Site,
		Title: "Source: " + shortpath,
		Code:  lineAnchoredCode(code),
	}, filename, false)
}

type tutorialData struct {
	Site     *SiteData
	Title    string
	Header   string
	Body     template.HTML
	Children []TutorialChild
}

// GenerateTutorial renders one tutorial page with links to its children.
func (e *Engine) GenerateTutorial(title, header string, body template.HTML, children []TutorialChild, filename string) (bool, error) {
	return e.execute("tutorial", tutorialData{
		Site:     e.Site,
		Title:    title,
		Header:   header,
		Body:     body,
		Children: children,
	}, filename, true)
}

// ReadSource reads a source file and decodes it from the configured
// encoding.
func (e *Engine) ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if e.enc == unicode.UTF8 || e.enc == nil {
		return string(data), nil
	}
	decoded, err := e.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return string(decoded), nil
}

// lineAnchoredCode escapes source text and prefixes each line with an anchor
// span so symbol pages can link to "file.html#lineN".
func lineAnchoredCode(src string) template.HTML {
	lines := strings.Split(src, "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "<span id=\"line%d\"></span>%s\n", i+1, linkmap.HTMLSafe(line))
	}
	return template.HTML(sb.String())
}
