// Package signature formats parameter lists, return types, and attribute
// badges into the display strings attached to each doclet. All assembly is
// pure string building over the link registry; the only side effects are the
// Signature and Attribs fields set on the doclet itself.
package signature

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/linkmap"
)

// Needs reports whether the doclet requires a call/type signature: functions
// and classes always do; typedefs only when their type union includes
// "function" (case-insensitive).
func Needs(d *doclet.Doclet) bool {
	switch d.Kind {
	case doclet.KindFunction, doclet.KindClass:
		return true
	case doclet.KindTypedef:
		if d.Type == nil {
			return false
		}
		for _, name := range d.Type.Names {
			if strings.EqualFold(name, "function") {
				return true
			}
		}
	}
	return false
}

// Build attaches Signature and Attribs to the doclet. Rebuilding from the
// doclet's original (unformatted) fields yields the same strings.
func Build(d *doclet.Doclet, links *linkmap.Registry) {
	switch {
	case Needs(d):
		d.Signature = fmt.Sprintf(`<span class="signature">(%s)</span>%s`,
			ParamList(d.Params), returnsClause(d.Returns, links))
	case d.Kind == doclet.KindMember || d.Kind == doclet.KindConstant:
		d.Signature = typeClause(d.Type, links)
	default:
		d.Signature = ""
	}
	d.Attribs = attribsMarkup(attribs(d))
}

// paramAttributes collects the bracketed attribute suffix tags for one
// parameter, in fixed order.
func paramAttributes(p doclet.Param) []string {
	var attrs []string
	if p.Optional {
		attrs = append(attrs, "opt")
	}
	if p.Nullable != nil {
		if *p.Nullable {
			attrs = append(attrs, "nullable")
		} else {
			attrs = append(attrs, "non-null")
		}
	}
	return attrs
}

// ParamList formats the display parameter list: dotted sub-properties are
// dropped, variadic parameters get an ellipsis prefix, and per-parameter
// attributes render as a signature-attributes suffix.
func ParamList(params []doclet.Param) string {
	var items []string
	for _, p := range params {
		if p.Name == "" || strings.Contains(p.Name, ".") {
			continue
		}
		name := linkmap.HTMLSafe(p.Name)
		if p.Variable {
			name = "&hellip;" + name
		}
		if attrs := paramAttributes(p); len(attrs) > 0 {
			name = fmt.Sprintf(`%s<span class="signature-attributes">%s</span>`,
				name, strings.Join(attrs, ", "))
		}
		items = append(items, name)
	}
	return strings.Join(items, ", ")
}

// returnAttributes collects the attribute tags of one return entry.
func returnAttributes(r doclet.Return) []string {
	var attrs []string
	if r.Optional {
		attrs = append(attrs, "opt")
	}
	if r.Nullable != nil {
		if *r.Nullable {
			attrs = append(attrs, "nullable")
		} else {
			attrs = append(attrs, "non-null")
		}
	}
	return attrs
}

// linkedTypeNames hyperlinks and escapes each type name.
func linkedTypeNames(t *doclet.Type, links *linkmap.Registry) []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.Names))
	for _, name := range t.Names {
		out = append(out, links.LinkTo(name, linkmap.HTMLSafe(name)))
	}
	return out
}

// returnsClause builds the arrow-prefixed return clause: the deduplicated
// union of return attributes (insertion order) followed by the brace-wrapped
// type union. Empty when no return types are declared.
func returnsClause(returns []doclet.Return, links *linkmap.Registry) string {
	var (
		attrs     []string
		attrsSeen = map[string]bool{}
		types     []string
	)
	for _, r := range returns {
		for _, a := range returnAttributes(r) {
			if !attrsSeen[a] {
				attrsSeen[a] = true
				attrs = append(attrs, a)
			}
		}
		types = append(types, linkedTypeNames(r.Type, links)...)
	}
	if len(types) == 0 {
		return `<span class="type-signature"></span>`
	}
	attrsString := ""
	if len(attrs) > 0 {
		attrsString = linkmap.HTMLSafe(fmt.Sprintf("(%s) ", strings.Join(attrs, ", ")))
	}
	return fmt.Sprintf(`<span class="type-signature returnType"> &rarr; %s{%s}</span>`,
		attrsString, strings.Join(types, "|"))
}

// typeClause builds the type-only signature for plain members and constants.
func typeClause(t *doclet.Type, links *linkmap.Registry) string {
	types := linkedTypeNames(t, links)
	if len(types) == 0 {
		return `<span class="type-signature"></span>`
	}
	return fmt.Sprintf(`<span class="type-signature"> :%s</span>`, strings.Join(types, "|"))
}

// attribs collects the badge tags shown before a doclet's name.
func attribs(d *doclet.Doclet) []string {
	var out []string
	if d.Async {
		out = append(out, "async")
	}
	if d.Generator {
		out = append(out, "generator")
	}
	if d.Virtual {
		out = append(out, "abstract")
	}
	if d.Access != "" && d.Access != "public" {
		out = append(out, d.Access)
	}
	if d.Scope != "" && d.Scope != "instance" && d.Scope != "global" {
		switch d.Kind {
		case doclet.KindFunction, doclet.KindMember, doclet.KindConstant:
			out = append(out, d.Scope)
		}
	}
	if d.Readonly && d.Kind == doclet.KindMember {
		out = append(out, "readonly")
	}
	if d.Kind == doclet.KindConstant {
		out = append(out, "constant")
	}
	if d.Nullable != nil {
		if *d.Nullable {
			out = append(out, "nullable")
		} else {
			out = append(out, "non-null")
		}
	}
	return out
}

// attribsMarkup wraps badges in type-signature markup; empty badge lists
// still produce the wrapper span so templates can emit it unconditionally.
func attribsMarkup(attrs []string) string {
	if len(attrs) == 0 {
		return `<span class="type-signature"></span>`
	}
	return fmt.Sprintf(`<span class="type-signature">%s</span>`,
		linkmap.HTMLSafe(fmt.Sprintf("(%s) ", strings.Join(attrs, ", "))))
}
