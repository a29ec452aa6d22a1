package manifest

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/portfolio"
)

const (
	// ProjectsDir holds one <slug>.json file per project
	ProjectsDir = "public/projects"
	// SummaryPath is the rendered overview of the projects dataset
	SummaryPath = "public/projects.json"
	// ReadmePath is opened in the first tab of every session
	ReadmePath = "README.md"
	// OtherFolder collects projects not featured for the matched company
	OtherFolder = "other"
	// TopLanguageCount bounds the language table on the summary page
	TopLanguageCount = 15
)

// Filter selects a grouping context for one viewer audience
type Filter struct {
	CompanyID string
}

// Option customises a Build call
type Option func(*builder)

// WithLogger sets the diagnostic channel for non-fatal conditions
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRenderer overrides the markdown renderer
func WithRenderer(r *Renderer) Option {
	return func(b *builder) {
		if r != nil {
			b.renderer = r
		}
	}
}

type builder struct {
	logger   *zap.Logger
	renderer *Renderer
	table    ContentTable
}

// Build assembles the manifest for a dataset. filter may be nil.
//
// With a filter matching a company, public/projects holds a folder of that
// company's projects in declared order and an "other" folder with the rest.
// Otherwise public/projects is flat. Project names the company lists but the
// dataset lacks are reported as warnings and skipped. Output depends only on
// the inputs.
func Build(ds *portfolio.Dataset, filter *Filter, opts ...Option) *Manifest {
	b := &builder{
		logger: zap.NewNop(),
		table:  make(ContentTable),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		b.renderer = NewRenderer()
	}
	if ds == nil {
		ds = &portfolio.Dataset{}
	}

	var company *portfolio.Company
	if filter != nil {
		company, _ = ds.Company(filter.CompanyID)
	}

	slugs := assignSlugs(ds.Projects)

	var projectNodes []FileNode
	if company != nil {
		projectNodes = b.groupedProjects(ds, company, slugs)
	} else {
		projectNodes = b.projectFiles(ProjectsDir, ds.Projects, rankByYear(ds.Projects), slugs)
	}

	files := []FileNode{
		folder("", "src",
			folder("src", "components",
				file("src/components", "Header.tsx"),
				file("src/components", "Footer.tsx"),
				file("src/components", "Button.tsx"),
			),
			file("src", "App.tsx"),
			file("src", "window.js"),
		),
		folder("", "public",
			file("public", "projects.json"),
			folder("public", "projects", projectNodes...),
		),
		file("", "tsconfig.json"),
		file("", ReadmePath),
	}

	b.table["tsconfig.json"] = Text(pageText("tsconfig.json"))
	b.table["src/App.tsx"] = Text(pageText("App.tsx"))
	b.table["src/window.js"] = Text(pageText("window.js"))
	b.renderInto(ReadmePath, pageText("README.md"))
	b.renderInto(SummaryPath, summaryMarkdown(company, portfolio.TopLanguages(ds.Languages, TopLanguageCount)))

	m := &Manifest{Files: files, ContentTable: b.table}
	if company != nil {
		m.Group = company.ID
	}
	return m
}

// groupedProjects splits projects into the company folder and the rest
func (b *builder) groupedProjects(ds *portfolio.Dataset, company *portfolio.Company, slugs []string) []FileNode {
	index := make(map[string]int, len(ds.Projects))
	for i, p := range ds.Projects {
		if _, dup := index[p.Name]; !dup {
			index[p.Name] = i
		}
	}

	featured := make([]int, 0, len(company.Projects))
	taken := make(map[int]bool, len(company.Projects))
	for _, name := range company.Projects {
		i, ok := index[name]
		if !ok {
			b.logger.Warn("company lists unknown project",
				zap.String("company", company.ID),
				zap.String("project", name),
			)
			continue
		}
		if taken[i] {
			continue
		}
		taken[i] = true
		featured = append(featured, i)
	}

	var rest []int
	for _, i := range rankByYear(ds.Projects) {
		if !taken[i] {
			rest = append(rest, i)
		}
	}

	groupName := company.Name
	if groupName == "" {
		groupName = company.ID
	}
	groupDir := join(ProjectsDir, groupName)
	otherDir := join(ProjectsDir, OtherFolder)

	return []FileNode{
		folder(ProjectsDir, groupName, b.projectFiles(groupDir, ds.Projects, featured, slugs)...),
		folder(ProjectsDir, OtherFolder, b.projectFiles(otherDir, ds.Projects, rest, slugs)...),
	}
}

// projectFiles emits one file node per index and its rendered page
func (b *builder) projectFiles(dir string, projects []portfolio.Project, order []int, slugs []string) []FileNode {
	nodes := make([]FileNode, 0, len(order))
	for _, i := range order {
		n := file(dir, slugs[i]+".json")
		b.renderInto(n.Path, projectMarkdown(projects[i]))
		nodes = append(nodes, n)
	}
	return nodes
}

func (b *builder) renderInto(p, src string) {
	c, err := b.renderer.Markdown(src)
	if err != nil {
		b.logger.Warn("render failed, using source text", zap.String("path", p), zap.Error(err))
		c = Text(src)
	}
	b.table[p] = c
}

// rankByYear returns project indices ordered by descending creation year,
// keeping declaration order among equal years.
func rankByYear(projects []portfolio.Project) []int {
	order := make([]int, len(projects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return projects[order[a]].YearCreated > projects[order[b]].YearCreated
	})
	return order
}

// assignSlugs gives every project a unique slug in declaration order;
// repeats get -2, -3, ... appended.
func assignSlugs(projects []portfolio.Project) []string {
	slugs := make([]string, len(projects))
	used := make(map[string]bool, len(projects))
	for i, p := range projects {
		base := Slugify(p.Name)
		if base == "" {
			base = "project"
		}
		s := base
		for n := 2; used[s]; n++ {
			s = base + "-" + strconv.Itoa(n)
		}
		used[s] = true
		slugs[i] = s
	}
	return slugs
}
