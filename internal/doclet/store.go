package doclet

import (
	"sort"
	"strings"
)

// Store is an indexed lookup structure built once from the input collection.
// It replaces predicate-matching dynamic queries with typed methods backed by
// maps keyed by kind, longname, and memberof. The store does not own the
// doclets; mutations on records remain visible through every index.
type Store struct {
	all        []*Doclet
	byLongname map[string][]*Doclet
	byKind     map[Kind][]*Doclet
	byMemberof map[string][]*Doclet
}

// NewStore indexes the provided doclets. Callers should prune and sort first;
// index order mirrors slice order.
func NewStore(ds []*Doclet) *Store {
	s := &Store{
		all:        ds,
		byLongname: make(map[string][]*Doclet),
		byKind:     make(map[Kind][]*Doclet),
		byMemberof: make(map[string][]*Doclet),
	}
	for _, d := range ds {
		s.byLongname[d.Longname] = append(s.byLongname[d.Longname], d)
		s.byKind[d.Kind] = append(s.byKind[d.Kind], d)
		if d.Memberof != "" {
			s.byMemberof[d.Memberof] = append(s.byMemberof[d.Memberof], d)
		}
	}
	return s
}

// All returns every indexed doclet in input order.
func (s *Store) All() []*Doclet { return s.all }

// ByLongname returns every doclet registered under the longname.
func (s *Store) ByLongname(longname string) []*Doclet {
	return s.byLongname[longname]
}

// ByKind returns every doclet of the given kind in input order.
func (s *Store) ByKind(kind Kind) []*Doclet {
	return s.byKind[kind]
}

// ByKindAndLongname returns doclets matching both keys.
func (s *Store) ByKindAndLongname(kind Kind, longname string) []*Doclet {
	var out []*Doclet
	for _, d := range s.byLongname[longname] {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Members returns the direct members of the parent longname.
func (s *Store) Members(parent string) []*Doclet {
	return s.byMemberof[parent]
}

// MembersOfKind returns the parent's direct members of one kind.
func (s *Store) MembersOfKind(parent string, kind Kind) []*Doclet {
	var out []*Doclet
	for _, d := range s.byMemberof[parent] {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// LongnamePrefix returns every doclet whose longname starts with prefix.
func (s *Store) LongnamePrefix(prefix string) []*Doclet {
	var out []*Doclet
	for _, d := range s.all {
		if strings.HasPrefix(d.Longname, prefix) {
			out = append(out, d)
		}
	}
	return out
}

// Longnames returns the distinct longnames in first-seen order.
func (s *Store) Longnames() []string {
	seen := make(map[string]struct{}, len(s.byLongname))
	out := make([]string, 0, len(s.byLongname))
	for _, d := range s.all {
		if _, ok := seen[d.Longname]; ok {
			continue
		}
		seen[d.Longname] = struct{}{}
		out = append(out, d.Longname)
	}
	return out
}

// Prune discards records excluded by visibility rules: explicitly ignored
// doclets, undocumented ones, members of anonymous scopes, and (unless
// includePrivate) private symbols.
func Prune(ds []*Doclet, includePrivate bool) []*Doclet {
	out := make([]*Doclet, 0, len(ds))
	for _, d := range ds {
		if d.Ignore || d.Undocumented {
			continue
		}
		if strings.Contains(d.Memberof, "<anonymous>") {
			continue
		}
		if !includePrivate && d.Access == "private" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Sort orders doclets by (longname, version, since) ascending, case-sensitive.
func Sort(ds []*Doclet) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Longname != b.Longname {
			return a.Longname < b.Longname
		}
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.Since < b.Since
	})
}
