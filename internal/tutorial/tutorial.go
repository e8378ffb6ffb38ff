// Package tutorial loads the tutorial tree from a directory of Markdown or
// HTML files plus an optional YAML manifest describing titles and hierarchy.
package tutorial

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Node is one tutorial in the tree. The root node carries no content of its
// own; it exists only to hold the top-level children.
type Node struct {
	Name     string // identifier, derived from the file basename
	Title    string
	Children []*Node

	path string // source file; empty on the root
}

// manifestEntry is one tutorial's metadata in tutorials.yaml.
type manifestEntry struct {
	Title    string   `yaml:"title,omitempty"`
	Children []string `yaml:"children,omitempty"`
}

// Load reads the tutorial directory and returns the tree root. A missing or
// empty dir yields a root with no children. Hierarchy comes from the optional
// tutorials.yaml manifest; tutorials not claimed as children stay top-level,
// ordered by name.
func Load(dir string) (*Node, error) {
	root := &Node{Name: ""}
	if dir == "" {
		return root, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return root, nil
		}
		return nil, fmt.Errorf("read tutorials dir: %w", err)
	}

	nodes := make(map[string]*Node)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".md" && ext != ".markdown" && ext != ".html" && ext != ".htm" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		nodes[name] = &Node{
			Name:  name,
			Title: name,
			path:  filepath.Join(dir, e.Name()),
		}
		names = append(names, name)
	}
	sort.Strings(names)

	claimed, err := applyManifest(dir, nodes)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if !claimed[name] {
			root.Children = append(root.Children, nodes[name])
		}
	}
	return root, nil
}

// applyManifest reads tutorials.yaml (when present), assigns titles, and
// wires children. It returns the set of names claimed as someone's child.
func applyManifest(dir string, nodes map[string]*Node) (map[string]bool, error) {
	claimed := make(map[string]bool)
	data, err := os.ReadFile(filepath.Join(dir, "tutorials.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return claimed, nil
		}
		return nil, fmt.Errorf("read tutorials manifest: %w", err)
	}
	var manifest map[string]manifestEntry
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshal tutorials manifest: %w", err)
	}
	for name, entry := range manifest {
		node, ok := nodes[name]
		if !ok {
			return nil, fmt.Errorf("tutorials manifest references unknown tutorial %q", name)
		}
		if entry.Title != "" {
			node.Title = entry.Title
		}
		for _, child := range entry.Children {
			childNode, ok := nodes[child]
			if !ok {
				return nil, fmt.Errorf("tutorial %q references unknown child %q", name, child)
			}
			node.Children = append(node.Children, childNode)
			claimed[child] = true
		}
	}
	return claimed, nil
}

// Parse renders the tutorial body to HTML: Markdown through goldmark, HTML
// files verbatim. The root node parses to an empty body.
func (n *Node) Parse() (string, error) {
	if n.path == "" {
		return "", nil
	}
	data, err := os.ReadFile(n.path)
	if err != nil {
		return "", fmt.Errorf("read tutorial %s: %w", n.Name, err)
	}
	ext := strings.ToLower(filepath.Ext(n.path))
	if ext == ".html" || ext == ".htm" {
		return string(data), nil
	}
	var buf bytes.Buffer
	if err := goldmark.New().Convert(data, &buf); err != nil {
		return "", fmt.Errorf("render tutorial %s: %w", n.Name, err)
	}
	return buf.String(), nil
}

// Walk visits every node below the root depth-first, parent before children.
func (n *Node) Walk(fn func(*Node) error) error {
	for _, c := range n.Children {
		if err := fn(c); err != nil {
			return err
		}
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}
