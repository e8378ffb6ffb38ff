package doclet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupsPartition(t *testing.T) {
	s := NewStore([]*Doclet{
		{Longname: "Widget", Kind: KindClass},
		{Longname: "module:app", Kind: KindModule},
		{Longname: "ns", Kind: KindNamespace},
		{Longname: "Mixable", Kind: KindMixin},
		{Longname: "Closeable", Kind: KindInterface},
		{Longname: `external:"jquery"`, Kind: KindExternal},
		{Longname: "globalFn", Kind: KindFunction, Scope: "global"},
		{Longname: "Widget#render", Kind: KindFunction, Memberof: "Widget"},
		{Longname: "pkg", Kind: KindPackage},
	})
	g := s.Groups()

	assert.Len(t, g.Classes, 1)
	assert.Len(t, g.Modules, 1)
	assert.Len(t, g.Namespaces, 1)
	assert.Len(t, g.Mixins, 1)
	assert.Len(t, g.Interfaces, 1)
	assert.Len(t, g.Externals, 1)
	assert.Len(t, g.Globals, 1)
	assert.Equal(t, "globalFn", g.Globals[0].Longname)
}

func TestGroupsExcludesModuleLandingClass(t *testing.T) {
	s := NewStore([]*Doclet{
		{Longname: "module:app", Kind: KindModule},
		// Class redocumenting its own module: not a standalone class entry.
		{Longname: "module:app", Kind: KindClass, Memberof: "module:app"},
		{Longname: "module:app.Widget", Kind: KindClass, Memberof: "module:app"},
	})
	g := s.Groups()
	assert.Len(t, g.Classes, 1)
	assert.Equal(t, "module:app.Widget", g.Classes[0].Longname)
}

func TestGlobalsExcludeMemberedDoclets(t *testing.T) {
	s := NewStore([]*Doclet{
		{Longname: "Widget#id", Kind: KindMember, Memberof: "Widget"},
		{Longname: "VERSION", Kind: KindConstant, Scope: "global"},
	})
	g := s.Groups()
	assert.Len(t, g.Globals, 1)
	assert.Equal(t, "VERSION", g.Globals[0].Longname)
}
