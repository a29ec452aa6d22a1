package manifest

import (
	"path"
	"strings"
)

// NodeType distinguishes files from folders
type NodeType string

const (
	TypeFile   NodeType = "file"
	TypeFolder NodeType = "folder"
)

// FileNode is one entry of the virtual tree. Files never have children.
type FileNode struct {
	Name     string     `json:"name"`
	Type     NodeType   `json:"type"`
	Path     string     `json:"path"`
	Children []FileNode `json:"children,omitempty"`
}

// IsFile reports whether the node is a leaf
func (n FileNode) IsFile() bool { return n.Type == TypeFile }

func file(dir, name string) FileNode {
	return FileNode{Name: name, Type: TypeFile, Path: join(dir, name)}
}

func folder(dir, name string, children ...FileNode) FileNode {
	if children == nil {
		children = []FileNode{}
	}
	return FileNode{Name: name, Type: TypeFolder, Path: join(dir, name), Children: children}
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// ContentKind says how a tab should present content
type ContentKind string

const (
	// KindText is plain editable source
	KindText ContentKind = "text"
	// KindRenderable is sanitised HTML, read-only
	KindRenderable ContentKind = "renderable"
)

// Content is the body of one virtual file
type Content struct {
	Kind ContentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	HTML string      `json:"html,omitempty"`
}

// Text builds plain text content
func Text(s string) Content { return Content{Kind: KindText, Text: s} }

// IsText reports whether the content is editable text
func (c Content) IsText() bool { return c.Kind == KindText }

// Equal compares two contents by kind and body
func (c Content) Equal(o Content) bool {
	return c.Kind == o.Kind && c.Text == o.Text && c.HTML == o.HTML
}

// ContentTable maps a file path to its content
type ContentTable map[string]Content

// Placeholder is the content synthesized for a path with no table entry
func Placeholder(p string) Content {
	return Text("// Content for " + path.Base(p))
}

// Lookup returns the content for p, or a placeholder when p has no entry.
func (t ContentTable) Lookup(p string) Content {
	if c, ok := t[p]; ok {
		return c
	}
	return Placeholder(p)
}

// Manifest is the file tree plus its content table
type Manifest struct {
	Files        []FileNode   `json:"files"`
	ContentTable ContentTable `json:"contentTable"`
	// Group is the matched grouping key, empty when the flat layout was built
	Group string `json:"group,omitempty"`
}

// Lookup resolves the content for a path
func (m *Manifest) Lookup(p string) Content {
	return m.ContentTable.Lookup(p)
}

// Find returns the node at path p
func (m *Manifest) Find(p string) (FileNode, bool) {
	var found FileNode
	ok := false
	m.Walk(func(n FileNode) bool {
		if n.Path == p {
			found, ok = n, true
			return false
		}
		return true
	})
	return found, ok
}

// Walk visits every node depth-first in tree order until fn returns false.
func (m *Manifest) Walk(fn func(FileNode) bool) {
	var walk func([]FileNode) bool
	walk = func(nodes []FileNode) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !walk(n.Children) {
				return false
			}
		}
		return true
	}
	walk(m.Files)
}

// FilePaths lists every leaf path in tree order
func (m *Manifest) FilePaths() []string {
	var paths []string
	m.Walk(func(n FileNode) bool {
		if n.IsFile() {
			paths = append(paths, n.Path)
		}
		return true
	})
	return paths
}

// Children returns the child names of the folder at p
func (m *Manifest) Children(p string) []string {
	n, ok := m.Find(p)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

// Slugify turns a display name into a path-safe identifier: runs of
// non-alphanumerics collapse to one "-", edges are trimmed, case is folded.
func Slugify(name string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}
