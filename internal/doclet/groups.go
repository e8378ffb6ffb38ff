package doclet

// Groups is the partition of doclets into named navigation buckets. It is
// derived from the store, recomputed once per run, and never owns records.
type Groups struct {
	Classes    []*Doclet
	Modules    []*Doclet
	Namespaces []*Doclet
	Mixins     []*Doclet
	Interfaces []*Doclet
	Externals  []*Doclet
	Globals    []*Doclet
}

// globalKinds are the kinds eligible for the Globals bucket when they live
// in global scope.
var globalKinds = map[Kind]bool{
	KindFunction: true,
	KindMember:   true,
	KindConstant: true,
	KindTypedef:  true,
	KindEvent:    true,
}

// Groups partitions the store into member groups. Bucket order mirrors store
// order, which the orchestrator has already sorted.
func (s *Store) Groups() *Groups {
	g := &Groups{}
	for _, d := range s.all {
		switch d.Kind {
		case KindClass:
			// Class doclets that merely redocument their module (longname ==
			// memberof) are module landing pages, not standalone classes.
			if d.Longname != d.Memberof {
				g.Classes = append(g.Classes, d)
			}
		case KindModule:
			g.Modules = append(g.Modules, d)
		case KindNamespace:
			g.Namespaces = append(g.Namespaces, d)
		case KindMixin:
			g.Mixins = append(g.Mixins, d)
		case KindInterface:
			g.Interfaces = append(g.Interfaces, d)
		case KindExternal:
			g.Externals = append(g.Externals, d)
		default:
			if globalKinds[d.Kind] && d.IsGlobal() {
				g.Globals = append(g.Globals, d)
			}
		}
	}
	return g
}
