package nav

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/linkmap"
)

func registryFor(ds []*doclet.Doclet) *linkmap.Registry {
	r := linkmap.NewRegistry()
	r.ReserveFilename("index")
	r.ReserveFilename("global")
	r.Register("global", "global.html")
	for _, d := range ds {
		r.RegisterDoclet(d)
	}
	return r
}

func TestBuildGroupOrdering(t *testing.T) {
	ds := []*doclet.Doclet{
		{Longname: "Widget", Name: "Widget", Kind: doclet.KindClass},
		{Longname: "module:app", Name: "app", Kind: doclet.KindModule},
		{Longname: "ns", Name: "ns", Kind: doclet.KindNamespace},
	}
	store := doclet.NewStore(ds)
	b := NewBuilder(store, registryFor(ds), Options{ShowInherited: true})
	out := b.Build(store.Groups(), nil, []MenuItem{{Title: "Home", Link: "https://example.com"}})

	menuIdx := strings.Index(out, "Home")
	classIdx := strings.Index(out, "Classes")
	moduleIdx := strings.Index(out, "Modules")
	nsIdx := strings.Index(out, "Namespaces")
	require.True(t, menuIdx >= 0 && classIdx >= 0 && moduleIdx >= 0 && nsIdx >= 0)
	assert.Less(t, menuIdx, classIdx)
	assert.Less(t, classIdx, moduleIdx)
	assert.Less(t, moduleIdx, nsIdx)
}

func TestEmptyGroupEmitsNothing(t *testing.T) {
	ds := []*doclet.Doclet{{Longname: "Widget", Name: "Widget", Kind: doclet.KindClass}}
	store := doclet.NewStore(ds)
	b := NewBuilder(store, registryFor(ds), Options{})
	out := b.Build(store.Groups(), nil, nil)

	assert.Contains(t, out, "Classes")
	assert.NotContains(t, out, "Mixins")
	assert.NotContains(t, out, "Namespaces")
}

func TestSharedTrackerSuppressesDuplicates(t *testing.T) {
	// The same longname appears as both a class and a namespace; the shared
	// tracker must render it once.
	ds := []*doclet.Doclet{
		{Longname: "Thing", Name: "Thing", Kind: doclet.KindClass},
		{Longname: "Thing", Name: "Thing", Kind: doclet.KindNamespace},
	}
	store := doclet.NewStore(ds)
	b := NewBuilder(store, registryFor(ds), Options{})
	out := b.Build(store.Groups(), nil, nil)

	assert.Equal(t, 1, strings.Count(out, `>Thing</a>`))
	assert.NotContains(t, out, "Namespaces")
}

func TestModulesUseIndependentTracker(t *testing.T) {
	// A symbol may appear once as a namespace and again as a module.
	ds := []*doclet.Doclet{
		{Longname: "module:dual", Name: "dual", Kind: doclet.KindNamespace},
		{Longname: "module:dual", Name: "dual", Kind: doclet.KindModule},
	}
	store := doclet.NewStore(ds)
	b := NewBuilder(store, registryFor(ds), Options{})
	out := b.Build(store.Groups(), nil, nil)

	assert.Contains(t, out, "Namespaces")
	assert.Contains(t, out, "Modules")
	assert.Equal(t, 2, strings.Count(out, `>dual</a>`))
}

func TestInheritedChildrenFiltered(t *testing.T) {
	// End-to-end: one class with two methods, one inherited, and inherited
	// display disabled lists the class and exactly one method.
	ds := []*doclet.Doclet{
		{Longname: "Widget", Name: "Widget", Kind: doclet.KindClass},
		{Longname: "Widget#own", Name: "own", Kind: doclet.KindFunction, Memberof: "Widget"},
		{Longname: "Widget#inherited", Name: "inherited", Kind: doclet.KindFunction, Memberof: "Widget", Inherited: true},
	}
	store := doclet.NewStore(ds)
	b := NewBuilder(store, registryFor(ds), Options{ShowInherited: false})
	out := b.Build(store.Groups(), nil, nil)

	assert.Contains(t, out, ">own</a>")
	assert.NotContains(t, out, ">inherited</a>")
	assert.Equal(t, 1, strings.Count(out, "nav-child"))
}

func TestChildOrderingAndTypedefFlag(t *testing.T) {
	ds := []*doclet.Doclet{
		{Longname: "Widget", Name: "Widget", Kind: doclet.KindClass},
		{Longname: "Widget#event:change", Name: "event:change", Kind: doclet.KindEvent, Memberof: "Widget"},
		{Longname: "Widget#render", Name: "render", Kind: doclet.KindFunction, Memberof: "Widget"},
		{Longname: "Widget#size", Name: "size", Kind: doclet.KindMember, Memberof: "Widget"},
		{Longname: "Widget~Options", Name: "Options", Kind: doclet.KindTypedef, Memberof: "Widget"},
	}
	store := doclet.NewStore(ds)

	noTypedefs := NewBuilder(store, registryFor(ds), Options{ShowInherited: true}).Build(store.Groups(), nil, nil)
	assert.NotContains(t, noTypedefs, ">Options</a>")

	b := NewBuilder(store, registryFor(ds), Options{ShowInherited: true, ShowTypedefs: true})
	out := b.Build(store.Groups(), nil, nil)
	// Fixed child order: members, methods, typedefs, events.
	sizeIdx := strings.Index(out, ">size</a>")
	renderIdx := strings.Index(out, ">render</a>")
	optionsIdx := strings.Index(out, ">Options</a>")
	changeIdx := strings.Index(out, ">change</a>")
	require.True(t, sizeIdx >= 0 && renderIdx >= 0 && optionsIdx >= 0 && changeIdx >= 0)
	assert.Less(t, sizeIdx, renderIdx)
	assert.Less(t, renderIdx, optionsIdx)
	assert.Less(t, optionsIdx, changeIdx)
}

func TestGlobalsSkipSeenAndTypedefs(t *testing.T) {
	ds := []*doclet.Doclet{
		{Longname: "Dual", Name: "Dual", Kind: doclet.KindClass},
		{Longname: "helper", Name: "helper", Kind: doclet.KindFunction, Scope: "global"},
		{Longname: "Shape", Name: "Shape", Kind: doclet.KindTypedef, Scope: "global"},
	}
	store := doclet.NewStore(ds)
	b := NewBuilder(store, registryFor(ds), Options{})
	out := b.Build(store.Groups(), nil, nil)

	assert.Contains(t, out, ">Global</a>")
	assert.Contains(t, out, ">helper</a>")
	assert.NotContains(t, out, ">Shape</a>")
}

func TestAnonymousItemPlainAndUnseen(t *testing.T) {
	ds := []*doclet.Doclet{
		{Longname: "", Name: "anonymous", Kind: doclet.KindClass},
		{Longname: "", Name: "anonymous", Kind: doclet.KindClass},
	}
	store := doclet.NewStore(ds)
	b := NewBuilder(store, registryFor(nil), Options{})
	out := b.buildMemberNav(store.ByKind(doclet.KindClass), "Classes", newTracker())

	// Anonymous items are never marked seen, so both render, without links.
	assert.Equal(t, 2, strings.Count(out, ">anonymous</li>"))
	assert.NotContains(t, out, "<a href")
}

func TestLongnameDisplayModes(t *testing.T) {
	d := &doclet.Doclet{Longname: "a.b.c.d", Name: "d", Kind: doclet.KindNamespace}
	ds := []*doclet.Doclet{d}
	store := doclet.NewStore(ds)
	reg := registryFor(ds)

	full := NewBuilder(store, reg, Options{UseLongname: true})
	assert.Contains(t, full.itemLink(d), ">a.b.c.d</a>")

	truncated := NewBuilder(store, reg, Options{UseLongname: true, Truncate: 2})
	assert.Contains(t, truncated.itemLink(d), ">&hellip;c.d</a>")

	// Truncation that does not shorten gets no ellipsis.
	wide := NewBuilder(store, reg, Options{UseLongname: true, Truncate: 9})
	assert.Contains(t, wide.itemLink(d), ">a.b.c.d</a>")
	assert.NotContains(t, wide.itemLink(d), "&hellip;")

	short := NewBuilder(store, reg, Options{})
	assert.Contains(t, short.itemLink(d), ">d</a>")
}

func TestModulePrefixStripped(t *testing.T) {
	d := &doclet.Doclet{Longname: "module:fs", Name: "module:fs", Kind: doclet.KindModule}
	ds := []*doclet.Doclet{d}
	b := NewBuilder(doclet.NewStore(ds), registryFor(ds), Options{})
	assert.Contains(t, b.itemLink(d), ">fs</a>")
}

func TestExternalQuotesStripped(t *testing.T) {
	d := &doclet.Doclet{Longname: `external:"jquery"`, Name: `"jquery"`, Kind: doclet.KindExternal}
	ds := []*doclet.Doclet{d}
	b := NewBuilder(doclet.NewStore(ds), registryFor(ds), Options{})
	assert.Contains(t, b.itemLink(d), ">jquery</a>")
}
