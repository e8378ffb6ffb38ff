package publish

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/linkmap"
	"git.home.luguber.info/inful/docpublish/internal/signature"
)

// exampleCaptionRe splits an optional leading <caption> block from an example
// body. The caption must be followed by a line break.
var exampleCaptionRe = regexp.MustCompile(`(?s)^\s*<caption>(.+?)</caption>\s*[\n\r](.+)$`)

// stageNormalizeExamples splits example captions from their code and resolves
// same-page hash-only @see references into in-page anchor links.
func stageNormalizeExamples(ctx context.Context, rs *runState) error {
	for _, d := range rs.doclets {
		for _, raw := range d.Examples {
			ex := doclet.Example{Code: raw}
			if m := exampleCaptionRe.FindStringSubmatch(raw); m != nil {
				ex.Caption = m[1]
				ex.Code = m[2]
			}
			d.ParsedExamples = append(d.ParsedExamples, ex)
		}
		for i, see := range d.See {
			if strings.HasPrefix(see, "#") {
				d.See[i] = rs.hashToLink(d, see)
			}
		}
	}
	return nil
}

// hashToLink turns a "#fragment" reference into an anchor within the owning
// doclet's own page.
func (rs *runState) hashToLink(d *doclet.Doclet, hash string) string {
	url := rs.links.RegisterDoclet(d)
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	return fmt.Sprintf("<a href=%q>%s</a>", url+hash, linkmap.HTMLSafe(hash))
}

// stageFormatDoclets derives each doclet's stable id, attaches formatted
// signatures and ancestor breadcrumbs, and reclassifies constants as members
// for display. Reclassification happens after formatting so constants keep
// their constant badge.
func stageFormatDoclets(ctx context.Context, rs *runState) error {
	for _, d := range rs.doclets {
		d.ID = docletID(d, rs.links)
		signature.Build(d, rs.links)
		d.Ancestors = rs.ancestorLinks(d)
		if d.Kind == doclet.KindConstant {
			d.Kind = doclet.KindMember
		}
	}
	return nil
}

// docletID is the URL fragment after '#', or the doclet's name when its URL
// has no fragment.
func docletID(d *doclet.Doclet, links *linkmap.Registry) string {
	url, ok := links.URL(d.Longname)
	if !ok {
		return d.Name
	}
	if i := strings.IndexByte(url, '#'); i >= 0 {
		return url[i+1:]
	}
	return d.Name
}

// scopePunc maps a doclet scope to the punctuation shown between breadcrumb
// segments.
var scopePunc = map[string]string{
	"static":   ".",
	"instance": "#",
	"inner":    "~",
}

// ancestorLinks renders the breadcrumb trail for a doclet: one link per
// ancestor along the memberof chain, each prefixed with its own scope
// punctuation, with the doclet's own scope punctuation appended to the last.
func (rs *runState) ancestorLinks(d *doclet.Doclet) []string {
	var chain []*doclet.Doclet
	cur := d.Memberof
	for cur != "" && len(chain) < 32 {
		parents := rs.store.ByLongname(cur)
		if len(parents) == 0 {
			break
		}
		chain = append([]*doclet.Doclet{parents[0]}, chain...)
		cur = parents[0].Memberof
	}

	links := make([]string, 0, len(chain))
	for _, a := range chain {
		text := scopePunc[a.Scope] + a.Name
		links = append(links, rs.links.LinkTo(a.Longname, linkmap.HTMLSafe(text)))
	}
	if len(links) > 0 {
		links[len(links)-1] += scopePunc[d.Scope]
	}
	return links
}

// stageAttachModuleSymbols attaches symbols exported under a module's own
// longname onto that module for rendering. Only symbols with a description
// are attached; classes are exempt because their signature heading always
// renders. Class and function names are rewritten to require(...)-call form.
func stageAttachModuleSymbols(ctx context.Context, rs *runState) error {
	for _, m := range rs.store.ByKind(doclet.KindModule) {
		for _, s := range rs.store.ByLongname(m.Longname) {
			if s == m || s.Kind == doclet.KindModule {
				continue
			}
			if s.Kind != doclet.KindClass && s.Description == "" {
				continue
			}
			attached := *s
			if attached.Kind == doclet.KindClass || attached.Kind == doclet.KindFunction {
				attached.Name = strings.Replace(attached.Name, "module:", `(require("`, 1) + `"))`
			}
			m.AttachedModules = append(m.AttachedModules, &attached)
		}
	}
	return nil
}
