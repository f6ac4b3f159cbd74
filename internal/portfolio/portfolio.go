// Package portfolio loads the curated project list shown on the site.
package portfolio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Project is one portfolio entry.
type Project struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Image       string   `yaml:"image,omitempty" json:"image,omitempty"`
	Link        string   `yaml:"link,omitempty" json:"link,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Featured    bool     `yaml:"featured,omitempty" json:"featured"`
}

// File is the root of the projects YAML document.
type File struct {
	Projects []Project `yaml:"projects"`
}

// Load reads the project list at path. A missing file yields no projects.
func Load(path string) ([]Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Project{}, nil
		}
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	projects, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return projects, nil
}

// Parse decodes a projects document. Every project needs a title.
func Parse(data []byte) ([]Project, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	for i, p := range f.Projects {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("project at index %d is missing a title", i)
		}
	}
	if f.Projects == nil {
		f.Projects = []Project{}
	}
	return f.Projects, nil
}
