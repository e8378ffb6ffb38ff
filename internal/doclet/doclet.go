// Package doclet defines the documentation record model consumed by the
// publisher and an indexed, queryable store built once from the host-supplied
// record collection.
//
// Doclets arrive as a JSON array. Field names follow the host contract
// (lowercase keys such as "longname", "memberof", "defaultvalue").
package doclet

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind is a doclet's taxonomy tag.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindMember    Kind = "member"
	KindConstant  Kind = "constant"
	KindTypedef   Kind = "typedef"
	KindEvent     Kind = "event"
	KindNamespace Kind = "namespace"
	KindMixin     Kind = "mixin"
	KindInterface Kind = "interface"
	KindExternal  Kind = "external"
	KindModule    Kind = "module"
	KindPackage   Kind = "package"
	KindFile      Kind = "file"
)

// ContainerKinds are the kinds that get their own output page and filename.
var ContainerKinds = []Kind{KindModule, KindClass, KindNamespace, KindMixin, KindExternal, KindInterface}

// IsContainer reports whether the kind maps to its own output file.
func (k Kind) IsContainer() bool {
	for _, c := range ContainerKinds {
		if k == c {
			return true
		}
	}
	return false
}

// Type holds the type name union of a parameter, return value, or member.
type Type struct {
	Names []string `json:"names"`
}

// Param describes one declared parameter.
type Param struct {
	Name         string `json:"name"`
	Type         *Type  `json:"type,omitempty"`
	Optional     bool   `json:"optional,omitempty"`
	Nullable     *bool  `json:"nullable,omitempty"`
	Variable     bool   `json:"variable,omitempty"`
	DefaultValue any    `json:"defaultvalue,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Return describes one declared return value.
type Return struct {
	Type        *Type  `json:"type,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Nullable    *bool  `json:"nullable,omitempty"`
	Description string `json:"description,omitempty"`
}

// Meta carries source position information for a doclet.
type Meta struct {
	Filename string `json:"filename,omitempty"`
	Path     string `json:"path,omitempty"`
	LineNo   int    `json:"lineno,omitempty"`

	// Shortpath is the common-prefix-stripped display path, computed by the
	// publisher; it never appears in host input.
	Shortpath string `json:"-"`
}

// Resolved returns the full source path (path + separator + filename) or an
// empty string when no usable source metadata exists.
func (m *Meta) Resolved() string {
	if m == nil || m.Filename == "" {
		return ""
	}
	if m.Path == "" {
		return m.Filename
	}
	return m.Path + "/" + m.Filename
}

// Example is a normalized code example with an optional caption split from
// the raw example body.
type Example struct {
	Caption string
	Code    string
}

// Doclet is one documented symbol record. Host-supplied fields are mutated
// in place by the signature builder and the orchestrator (Signature, Attribs,
// ID, Ancestors, Meta.Shortpath); records are never deleted after pruning.
type Doclet struct {
	Longname     string   `json:"longname"`
	Name         string   `json:"name"`
	Kind         Kind     `json:"kind"`
	Memberof     string   `json:"memberof,omitempty"`
	Scope        string   `json:"scope,omitempty"`
	Access       string   `json:"access,omitempty"`
	Description  string   `json:"description,omitempty"`
	Classdesc    string   `json:"classdesc,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Version      string   `json:"version,omitempty"`
	Since        string   `json:"since,omitempty"`
	Deprecated   any      `json:"deprecated,omitempty"`
	Ignore       bool     `json:"ignore,omitempty"`
	Undocumented bool     `json:"undocumented,omitempty"`
	Inherited    bool     `json:"inherited,omitempty"`
	InheritsFrom string   `json:"inherits,omitempty"`
	Virtual      bool     `json:"virtual,omitempty"`
	Async        bool     `json:"async,omitempty"`
	Generator    bool     `json:"generator,omitempty"`
	Readonly     bool     `json:"readonly,omitempty"`
	Nullable     *bool    `json:"nullable,omitempty"`
	Params       []Param  `json:"params,omitempty"`
	Returns      []Return `json:"returns,omitempty"`
	Type         *Type    `json:"type,omitempty"`
	Meta         *Meta    `json:"meta,omitempty"`
	Examples     []string `json:"examples,omitempty"`
	See          []string `json:"see,omitempty"`
	Augments     []string `json:"augments,omitempty"`
	Files        []string `json:"files,omitempty"` // package doclets list their source files

	// Computed presentation fields, attached during publishing.
	Signature       string    `json:"-"`
	Attribs         string    `json:"-"`
	ID              string    `json:"-"`
	Ancestors       []string  `json:"-"` // rendered breadcrumb links
	ParsedExamples  []Example `json:"-"`
	AttachedModules []*Doclet `json:"-"` // symbols exported under the owning module's name
}

// IsGlobal reports whether the doclet lives in global scope.
func (d *Doclet) IsGlobal() bool {
	return d.Memberof == "" && (d.Scope == "global" || d.Scope == "")
}

// Load reads a JSON doclet collection from path.
func Load(path string) ([]*Doclet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read doclets: %w", err)
	}
	var ds []*Doclet
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("unmarshal doclets: %w", err)
	}
	return ds, nil
}
