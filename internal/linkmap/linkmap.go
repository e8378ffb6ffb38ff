// Package linkmap owns the mapping from symbol longnames to output URLs and
// the helpers that turn those mappings into hyperlinks: unique output
// filenames, unique in-page fragment ids, and resolution of {@link} markers
// embedded in rendered HTML.
package linkmap

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/doclet"
)

// Registry assigns exactly one URL per longname and guarantees output
// filename and fragment-id uniqueness across the whole run. It is built once
// by the orchestrator and consumed read-only by every later stage.
type Registry struct {
	longnameToURL map[string]string
	fileNames     map[string]int            // lowercased basename -> allocations
	fileForLong   map[string]string         // longname -> bare filename (no fragment)
	ids           map[string]map[string]int // filename -> id -> allocations
	tutorials     map[string]string         // tutorial name -> url
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		longnameToURL: make(map[string]string),
		fileNames:     make(map[string]int),
		fileForLong:   make(map[string]string),
		ids:           make(map[string]map[string]int),
		tutorials:     make(map[string]string),
	}
}

var (
	kindPrefixRe   = regexp.MustCompile(`^(module|external|event|package):`)
	badFileCharsRe = regexp.MustCompile(`[^$a-zA-Z0-9._\-]`)
	urlSchemeRe    = regexp.MustCompile(`^(https?|ftp|file)://`)
)

// sanitizeFilename converts a longname into a filesystem-safe basename.
func sanitizeFilename(base string) string {
	name := kindPrefixRe.ReplaceAllString(base, "$1-")
	name = strings.ReplaceAll(name, `"`, "")
	name = badFileCharsRe.ReplaceAllString(name, "_")
	if name == "" {
		name = "_"
	}
	return name
}

// ReserveFilename allocates a unique ".html" filename for base. Repeated
// collisions get a numeric suffix; lookups are case-insensitive so the output
// remains safe on case-preserving filesystems.
func (r *Registry) ReserveFilename(base string) string {
	name := sanitizeFilename(base)
	key := strings.ToLower(name)
	n := r.fileNames[key]
	r.fileNames[key] = n + 1
	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	return name + ".html"
}

// UniqueID allocates a fragment id unique within filename.
func (r *Registry) UniqueID(filename, id string) string {
	id = badFileCharsRe.ReplaceAllString(id, "_")
	if id == "" {
		id = "_"
	}
	m := r.ids[filename]
	if m == nil {
		m = make(map[string]int)
		r.ids[filename] = m
	}
	n := m[strings.ToLower(id)]
	m[strings.ToLower(id)] = n + 1
	if n > 0 {
		id = fmt.Sprintf("%s_%d", id, n)
	}
	return id
}

// Register records a URL for longname. The first registration wins; the
// invariant that all doclets sharing a longname share one URL follows from
// registering per distinct longname.
func (r *Registry) Register(longname, url string) {
	if _, ok := r.longnameToURL[longname]; ok {
		return
	}
	r.longnameToURL[longname] = url
	if i := strings.IndexByte(url, '#'); i >= 0 {
		r.fileForLong[longname] = url[:i]
	} else {
		r.fileForLong[longname] = url
	}
}

// URL returns the registered URL for longname.
func (r *Registry) URL(longname string) (string, bool) {
	u, ok := r.longnameToURL[longname]
	return u, ok
}

// FileFor returns the bare output filename (fragment stripped) that the
// longname's page lives in, or "" when unregistered.
func (r *Registry) FileFor(longname string) string {
	return r.fileForLong[longname]
}

// RegisterDoclet computes and registers the permanent URL for a doclet:
// container kinds claim their own file, global-scope symbols anchor into the
// globals page, and everything else anchors into its parent's file.
func (r *Registry) RegisterDoclet(d *doclet.Doclet) string {
	if u, ok := r.longnameToURL[d.Longname]; ok {
		return u
	}
	var url string
	switch {
	case d.Kind.IsContainer() || d.Longname == "module.exports":
		url = r.ReserveFilename(d.Longname)
	case d.Memberof == "":
		url = "global.html#" + r.UniqueID("global.html", d.Name)
	default:
		filename := r.fileForLong[d.Memberof]
		if filename == "" {
			// Parent not registered yet (dangling memberof): derive a file
			// for it so the child still gets a stable anchor.
			filename = r.ReserveFilename(d.Memberof)
			r.Register(d.Memberof, filename)
		}
		url = filename + "#" + r.UniqueID(filename, d.Name)
	}
	r.Register(d.Longname, url)
	return url
}

// RegisterTutorial allocates a URL for the named tutorial.
func (r *Registry) RegisterTutorial(name string) string {
	if u, ok := r.tutorials[name]; ok {
		return u
	}
	u := "tutorial-" + sanitizeFilename(name) + ".html"
	r.tutorials[name] = u
	return u
}

// TutorialURL returns the registered URL for a tutorial name.
func (r *Registry) TutorialURL(name string) (string, bool) {
	u, ok := r.tutorials[name]
	return u, ok
}

// TutorialLink renders an anchor to the named tutorial, falling back to the
// escaped text when the tutorial is unknown.
func (r *Registry) TutorialLink(name, text string) string {
	if text == "" {
		text = name
	}
	u, ok := r.tutorials[name]
	if !ok {
		return HTMLSafe(text)
	}
	return fmt.Sprintf("<a href=%q>%s</a>", u, HTMLSafe(text))
}

// LinkTo renders an anchor to the longname's registered URL. Text is emitted
// verbatim (callers escape literal identifier tokens; pre-escaped markup must
// pass through untouched). Unregistered non-URL targets degrade to the text.
func (r *Registry) LinkTo(longname, text string) string {
	if text == "" {
		text = longname
	}
	url, ok := r.longnameToURL[longname]
	if !ok {
		if urlSchemeRe.MatchString(longname) {
			url = longname
		} else {
			return text
		}
	}
	return fmt.Sprintf("<a href=%q>%s</a>", url, text)
}

// HTMLSafe escapes literal text for embedding in HTML markup.
func HTMLSafe(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

var (
	labeledLinkRe = regexp.MustCompile(`\[([^\[\]]+)\]\{@link(?:code|plain)?\s+([^}]+)\}`)
	inlineLinkRe  = regexp.MustCompile(`\{@link(?:code|plain)?\s+([^}]+)\}`)
)

// ResolveLinks replaces {@link} markers in rendered HTML with real anchors.
// Supported forms: {@link target}, {@link target text}, {@link target|text},
// and [text]{@link target}. Unresolvable non-URL targets degrade to plain
// text.
func (r *Registry) ResolveLinks(html string) string {
	html = labeledLinkRe.ReplaceAllStringFunc(html, func(m string) string {
		parts := labeledLinkRe.FindStringSubmatch(m)
		return r.LinkTo(strings.TrimSpace(parts[2]), strings.TrimSpace(parts[1]))
	})
	return inlineLinkRe.ReplaceAllStringFunc(html, func(m string) string {
		body := strings.TrimSpace(inlineLinkRe.FindStringSubmatch(m)[1])
		target, text := body, ""
		if i := strings.IndexByte(body, '|'); i >= 0 {
			target, text = strings.TrimSpace(body[:i]), strings.TrimSpace(body[i+1:])
		} else if i := strings.IndexAny(body, " \t"); i >= 0 {
			target, text = body[:i], strings.TrimSpace(body[i+1:])
		}
		return r.LinkTo(target, text)
	})
}
