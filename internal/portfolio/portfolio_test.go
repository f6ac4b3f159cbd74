package portfolio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/internal/portfolio"
)

const projectsYAML = `
projects:
  - title: JSON-CRUD Framework
    description: No-code framework that generates endpoints from a schema.
    image: /images/json-crud.png
    link: https://github.com/example/json-crud
    tags: [go, codegen]
    featured: true
  - title: Tiny-ML Gesture Classification
    description: Lightweight gesture model on the edge.
`

func TestParse(t *testing.T) {
	projects, err := portfolio.Parse([]byte(projectsYAML))
	require.NoError(t, err)
	require.Len(t, projects, 2)

	assert.Equal(t, "JSON-CRUD Framework", projects[0].Title)
	assert.Equal(t, []string{"go", "codegen"}, projects[0].Tags)
	assert.True(t, projects[0].Featured)
	assert.False(t, projects[1].Featured)
	assert.Empty(t, projects[1].Link)
}

func TestParseMissingTitle(t *testing.T) {
	_, err := portfolio.Parse([]byte("projects:\n  - description: nameless\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 0")
}

func TestParseMalformed(t *testing.T) {
	_, err := portfolio.Parse([]byte("projects: [unclosed"))
	assert.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	projects, err := portfolio.Parse([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(projectsYAML), 0o644))

	projects, err := portfolio.Load(path)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestLoadMissingFile(t *testing.T) {
	projects, err := portfolio.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestLoadBundledProjects(t *testing.T) {
	projects, err := portfolio.Load(filepath.Join("..", "..", "data", "projects.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, projects)
}
