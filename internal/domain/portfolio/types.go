package portfolio

import "strings"

// Project is one entry of the projects dataset
type Project struct {
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Description  string   `json:"description" yaml:"description" toml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies" toml:"technologies"`
	RepoLink     *string  `json:"repo_link,omitempty" yaml:"repo_link,omitempty" toml:"repo_link,omitempty"`
	ProjectLink  *string  `json:"project_link,omitempty" yaml:"project_link,omitempty" toml:"project_link,omitempty"`
	YearCreated  int      `json:"year_created" yaml:"year_created" toml:"year_created"`
}

// Company is a grouping context: the projects to feature for one audience
type Company struct {
	ID           string   `json:"id" yaml:"id" toml:"id"`
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Technologies string   `json:"technologies" yaml:"technologies" toml:"technologies"`
	Projects     []string `json:"projects" yaml:"projects" toml:"projects"`
}

// LanguageUsage maps a period to per-language line counts
type LanguageUsage map[string]map[string]int

// Dataset bundles everything the manifest builder reads
type Dataset struct {
	Projects  []Project
	Companies []Company
	Languages LanguageUsage
}

// Company looks up a grouping by identity key
func (d *Dataset) Company(id string) (*Company, bool) {
	if d == nil || id == "" {
		return nil, false
	}
	for i := range d.Companies {
		if d.Companies[i].ID == id {
			return &d.Companies[i], true
		}
	}
	return nil, false
}

// Project looks up a project by exact display name
func (d *Dataset) Project(name string) (*Project, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Projects {
		if d.Projects[i].Name == name {
			return &d.Projects[i], true
		}
	}
	return nil, false
}

var techIcons = map[string]string{
	"c":          "c.png",
	"cpp":        "cpp.png",
	"css":        "css.png",
	"html":       "html.png",
	"java":       "java.png",
	"javascript": "js.png",
	"js":         "js.png",
	"python":     "python.png",
	"pandas":     "pandas.png",
	"rn":         "rn.png",
	"tailwind":   "tailwind.png",
	"typescript": "ts.png",
	"ts":         "ts.png",
	"vue":        "vue.png",
	"vscode":     "vscode.png",
}

// NormalizeTech reduces a technology name to its icon key: alphanumerics only, lowercase.
func NormalizeTech(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TechIcon returns the icon asset for a technology, or "" when none exists.
func TechIcon(name string) string {
	return techIcons[NormalizeTech(name)]
}
