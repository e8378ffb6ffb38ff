// Package nav assembles the sidebar navigation fragment: one nested HTML
// list covering custom menu links, tutorials, every symbol group, and
// global-scope items.
//
// Duplicate suppression uses explicit seen trackers. Classes, namespaces,
// mixins, interfaces, externals, and the globals pass share one tracker;
// modules and tutorials each carry their own. The asymmetry is deliberate: a
// symbol may legitimately appear once as a namespace entry and again as a
// module entry.
package nav

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/linkmap"
	"git.home.luguber.info/inful/docpublish/internal/tutorial"
	"git.home.luguber.info/inful/docpublish/internal/util/sets"
)

// Options control sidebar rendering.
type Options struct {
	UseLongname   bool // display full longnames instead of short names
	Truncate      int  // keep only the last N dot-segments of a longname (0 = all)
	ShowInherited bool // include inherited members/methods/events
	ShowTypedefs  bool // include typedef entries
}

// MenuItem is one user-configured link rendered before any symbol group.
type MenuItem struct {
	Title  string
	Link   string
	Target string
}

// Builder renders the navigation fragment for one run.
type Builder struct {
	store *doclet.Store
	links *linkmap.Registry
	opts  Options
}

// tracker carries the seen-set across sibling group walks.
type tracker struct {
	seen sets.Set[string]
}

func newTracker() *tracker { return &tracker{seen: sets.New[string]()} }

// NewBuilder creates a navigation builder over the indexed store.
func NewBuilder(store *doclet.Store, links *linkmap.Registry, opts Options) *Builder {
	return &Builder{store: store, links: links, opts: opts}
}

// Build produces the complete sidebar fragment. Assembly order is a direct
// contract for the rendered grouping: menu, Tutorials, Classes, Modules,
// Externals, Namespaces, Mixins, Interfaces, Globals.
func (b *Builder) Build(groups *doclet.Groups, tutorials *tutorial.Node, menu []MenuItem) string {
	var sb strings.Builder

	for _, m := range menu {
		if m.Target != "" {
			fmt.Fprintf(&sb, `<li class="nav-menu-item"><a href=%q target=%q>%s</a></li>`,
				m.Link, m.Target, linkmap.HTMLSafe(m.Title))
		} else {
			fmt.Fprintf(&sb, `<li class="nav-menu-item"><a href=%q>%s</a></li>`,
				m.Link, linkmap.HTMLSafe(m.Title))
		}
	}

	if tutorials != nil {
		sb.WriteString(b.buildTutorialNav(tutorials.Children, newTracker()))
	}

	shared := newTracker()
	sb.WriteString(b.buildMemberNav(groups.Classes, "Classes", shared))
	sb.WriteString(b.buildMemberNav(groups.Modules, "Modules", newTracker()))
	sb.WriteString(b.buildMemberNav(groups.Externals, "Externals", shared))
	sb.WriteString(b.buildMemberNav(groups.Namespaces, "Namespaces", shared))
	sb.WriteString(b.buildMemberNav(groups.Mixins, "Mixins", shared))
	sb.WriteString(b.buildMemberNav(groups.Interfaces, "Interfaces", shared))
	sb.WriteString(b.buildGlobalNav(groups.Globals, shared))

	return fmt.Sprintf(`<ul class="nav-list">%s</ul>`, sb.String())
}

// buildMemberNav renders one symbol group: a heading item followed by one
// item per unseen top-level symbol, each with its direct children nested.
// Empty groups emit nothing, not even the heading.
func (b *Builder) buildMemberNav(items []*doclet.Doclet, heading string, tc *tracker) string {
	var sb strings.Builder
	for _, d := range items {
		if d.Longname == "" {
			// Anonymous placeholder: plain item, never marked seen, no
			// recursion into children.
			fmt.Fprintf(&sb, `<li class="nav-item">%s</li>`, linkmap.HTMLSafe(d.Name))
			continue
		}
		if tc.seen.Has(d.Longname) {
			continue
		}
		fmt.Fprintf(&sb, `<li class="nav-item">%s%s%s</li>`,
			kindBadge(d.Kind), b.itemLink(d), b.buildChildren(d))
		tc.seen.Add(d.Longname)
	}
	if sb.Len() == 0 {
		return ""
	}
	return fmt.Sprintf(`<li class="nav-heading">%s</li>%s`, heading, sb.String())
}

// buildChildren renders the nested list of a symbol's direct members,
// methods, typedefs (when enabled), and events, in that fixed order.
func (b *Builder) buildChildren(parent *doclet.Doclet) string {
	kinds := []doclet.Kind{doclet.KindMember, doclet.KindFunction}
	if b.opts.ShowTypedefs {
		kinds = append(kinds, doclet.KindTypedef)
	}
	kinds = append(kinds, doclet.KindEvent)

	var sb strings.Builder
	for _, kind := range kinds {
		for _, child := range b.store.MembersOfKind(parent.Longname, kind) {
			if child.Inherited && !b.opts.ShowInherited {
				continue
			}
			fmt.Fprintf(&sb, `<li class="nav-child">%s%s</li>`,
				kindBadge(child.Kind),
				b.links.LinkTo(child.Longname, linkmap.HTMLSafe(stripPrefixTokens(child.Name))))
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return fmt.Sprintf(`<ul class="nav-children">%s</ul>`, sb.String())
}

// buildTutorialNav renders the top-level tutorials as plain items under a
// Tutorials heading, with its own seen tracker.
func (b *Builder) buildTutorialNav(tutorials []*tutorial.Node, tc *tracker) string {
	var sb strings.Builder
	for _, t := range tutorials {
		if tc.seen.Has(t.Name) {
			continue
		}
		fmt.Fprintf(&sb, `<li class="nav-item">%s</li>`, b.links.TutorialLink(t.Name, t.Title))
		tc.seen.Add(t.Name)
	}
	if sb.Len() == 0 {
		return ""
	}
	return fmt.Sprintf(`<li class="nav-heading">Tutorials</li>%s`, sb.String())
}

// buildGlobalNav renders every unseen global-scope item. Typedef globals are
// suppressed unless typedef display is enabled, but still count as seen.
func (b *Builder) buildGlobalNav(globals []*doclet.Doclet, tc *tracker) string {
	var sb strings.Builder
	for _, d := range globals {
		if d.Kind == doclet.KindTypedef && !b.opts.ShowTypedefs {
			tc.seen.Add(d.Longname)
			continue
		}
		if !tc.seen.Has(d.Longname) {
			fmt.Fprintf(&sb, `<li class="nav-item">%s%s</li>`,
				kindBadge(d.Kind), b.links.LinkTo(d.Longname, linkmap.HTMLSafe(d.Name)))
		}
		tc.seen.Add(d.Longname)
	}
	if sb.Len() == 0 {
		return ""
	}
	return fmt.Sprintf(`<li class="nav-heading">%s</li>%s`,
		b.links.LinkTo("global", "Global"), sb.String())
}

var prefixTokenRe = regexp.MustCompile(`\b(module|event):`)

// stripPrefixTokens removes module-namespace prefix tokens from a display
// name.
func stripPrefixTokens(name string) string {
	return prefixTokenRe.ReplaceAllString(name, "")
}

// itemLink builds the hyperlinked display name for a top-level item,
// honoring the longname/truncation display mode.
func (b *Builder) itemLink(d *doclet.Doclet) string {
	name := d.Name
	truncated := false
	if b.opts.UseLongname {
		name = d.Longname
		if n := b.opts.Truncate; n > 0 {
			parts := strings.Split(d.Longname, ".")
			if len(parts) > n {
				short := strings.Join(parts[len(parts)-n:], ".")
				if len(short) < len(d.Longname) {
					name = short
					truncated = true
				}
			}
		}
	}
	name = stripPrefixTokens(name)
	if d.Kind == doclet.KindExternal {
		name = strings.ReplaceAll(name, `"`, "")
	}
	text := linkmap.HTMLSafe(name)
	if truncated {
		text = "&hellip;" + text
	}
	return b.links.LinkTo(d.Longname, text)
}

// kindBadge renders the kind tag shown before an entry's link.
func kindBadge(k doclet.Kind) string {
	letter := strings.ToUpper(string(k[0]))
	return fmt.Sprintf(`<span class="nav-kind nav-kind-%s">%s</span>`, k, letter)
}
