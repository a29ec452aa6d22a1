package editor

import (
	"errors"
	"path"
	"strings"

	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

var (
	ErrTabNotFound = errors.New("tab not found")
	ErrNotEditable = errors.New("tab content is not editable")
)

// Tab is one open view of a file
type Tab struct {
	ID       id.TabID         `json:"id"`
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Content  manifest.Content `json:"content"`
	Language string           `json:"language"`
	IsDirty  bool             `json:"isDirty"`
}

// ContentSource resolves the baseline content of a path
type ContentSource interface {
	Lookup(path string) manifest.Content
}

// LanguageFromPath maps a file extension to the editor language label
func LanguageFromPath(p string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "js", "jsx":
		return "javascript"
	case "ts", "tsx":
		return "typescript"
	case "css":
		return "css"
	case "html":
		return "html"
	case "json":
		return "json"
	case "md":
		return "markdown"
	default:
		return "text"
	}
}
