package manifest

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/dmrgn/portfolio/backend/internal/domain/portfolio"
)

//go:embed pages
var pages embed.FS

// Renderer turns markdown into sanitised HTML renderables
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewRenderer creates a renderer with GitHub-flavoured tables and a UGC sanitising policy
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Markdown renders src into renderable content
func (r *Renderer) Markdown(src string) (Content, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return Content{}, fmt.Errorf("render markdown: %w", err)
	}
	return Content{Kind: KindRenderable, HTML: r.sanitizer.Sanitize(buf.String())}, nil
}

func pageText(name string) string {
	data, err := pages.ReadFile("pages/" + name)
	if err != nil {
		return ""
	}
	return string(data)
}

// projectMarkdown lays out one project page
func projectMarkdown(p portfolio.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\nYear: %d\n\n", p.Name, p.YearCreated)

	var links []string
	if p.RepoLink != nil && *p.RepoLink != "" {
		links = append(links, fmt.Sprintf("[Repository](%s)", *p.RepoLink))
	}
	if p.ProjectLink != nil && *p.ProjectLink != "" {
		links = append(links, fmt.Sprintf("[Live](%s)", *p.ProjectLink))
	}
	if len(links) > 0 {
		b.WriteString(strings.Join(links, " · "))
		b.WriteString("\n\n")
	}

	desc := p.Description
	if desc == "" {
		desc = "No description provided"
	}
	b.WriteString(desc)
	b.WriteString("\n\n### Technologies\n\n")

	if len(p.Technologies) == 0 {
		b.WriteString("No technologies listed\n")
		return b.String()
	}
	for _, tech := range p.Technologies {
		if icon := portfolio.TechIcon(tech); icon != "" {
			fmt.Fprintf(&b, "- ![%s](/assets/logo/%s) %s\n", tech, icon, tech)
		} else {
			fmt.Fprintf(&b, "- %s\n", tech)
		}
	}
	return b.String()
}

// summaryMarkdown lays out public/projects.json: what the file holds, the
// audience line for a matched company and the language usage table.
func summaryMarkdown(company *portfolio.Company, top []portfolio.LanguageTotal) string {
	var b strings.Builder
	b.WriteString("## Summary of this JSON file:\n\n")
	b.WriteString("It contains information about projects Daniel has completed, and the programming languages & technologies he has used.\n\n")

	if company != nil && company.Technologies != "" {
		b.WriteString(boldWord(company.Technologies, company.Name))
		b.WriteString("\n\n")
	}

	if len(top) > 0 {
		b.WriteString("| Language | Lines of Code |\n|---|---:|\n")
		for _, row := range top {
			fmt.Fprintf(&b, "| %s | %d |\n", row.Language, row.LinesOfCode)
		}
	}
	return b.String()
}

// boldWord emphasises every occurrence of word in text
func boldWord(text, word string) string {
	if word == "" {
		return text
	}
	return strings.ReplaceAll(text, word, "**"+word+"**")
}
