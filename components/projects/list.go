package projects

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/projects.yaml
var dataFS embed.FS

const defaultListPath = "data/projects.yaml"

// Project is one reference project.
type Project struct {
	Slug     string `yaml:"slug" json:"slug"`
	Title    string `yaml:"title" json:"title"`
	Category string `yaml:"category" json:"category"`
	Location string `yaml:"location" json:"location,omitempty"`
	Year     int    `yaml:"year" json:"year,omitempty"`
	Summary  string `yaml:"summary" json:"summary,omitempty"`
	Image    string `yaml:"image" json:"image,omitempty"`
}

var (
	defaultOnce     sync.Once
	defaultProjects []Project
	defaultErr      error
)

func DefaultProjects() ([]Project, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		projects, err := LoadProjects(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultProjects = projects
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]Project{}, defaultProjects...), nil
}

// LoadProjects decodes a YAML list of projects, keeping document order.
// Entries without a slug or category are rejected, and duplicate slugs keep
// the first entry.
func LoadProjects(r io.Reader) ([]Project, error) {
	if r == nil {
		return nil, fmt.Errorf("projects: missing reader")
	}

	var raw []Project
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return []Project{}, nil
		}
		return nil, fmt.Errorf("projects: decode: %w", err)
	}

	out := make([]Project, 0, len(raw))
	seen := map[string]struct{}{}
	for i, p := range raw {
		p.Slug = strings.TrimSpace(p.Slug)
		p.Category = strings.ToLower(strings.TrimSpace(p.Category))
		if p.Slug == "" || p.Category == "" {
			return nil, fmt.Errorf("projects: entry %d: slug and category are required", i)
		}
		if p.Category == CategoryAll {
			return nil, fmt.Errorf("projects: entry %d: category %q is reserved", i, CategoryAll)
		}
		if _, ok := seen[p.Slug]; ok {
			continue
		}
		seen[p.Slug] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// Categories lists the distinct categories in first-seen order.
func Categories(projects []Project) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range projects {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// NormalizeCategory maps an empty selection to CategoryAll.
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return CategoryAll
	}
	return category
}

// Filter returns the projects in category. CategoryAll (or an empty value)
// returns every project; an unknown category returns none.
func Filter(projects []Project, category string) []Project {
	category = NormalizeCategory(category)
	if category == CategoryAll {
		return append([]Project{}, projects...)
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
