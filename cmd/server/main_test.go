package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/internal/config"
	"github.com/portfolio-site/backend/internal/politeness"
)

const sourceJSON = `[
  {"id": "edu_srm_overview", "content": "BTech in Computer Science from SRM University, 2021–2025."},
  {"id": "edu_columbia_ta", "content": "Teaching assistant for Cloud Computing at Columbia University."},
  {"id": "skills_cloud", "content": "Cloud and DevOps: AWS, Docker, Kubernetes, Terraform."}
]`

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resumeChunks.source.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "ask-resume version test-version-1.0.0")
}

func TestEmbedCmd(t *testing.T) {
	source := writeSource(t, sourceJSON)
	output := filepath.Join(t.TempDir(), "out", "resumeChunks.json")

	out, err := execute(t, "embed", "--source", source, "--output", output, "--provider", "local")
	require.NoError(t, err)

	assert.Contains(t, out, "Embedding chunk 1/3: edu_srm_overview...\n")
	assert.Contains(t, out, "Embedding chunk 3/3: skills_cloud...\n")
	assert.Contains(t, out, "Wrote 3 embedded resume chunks to "+output+".")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var written []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &written))
	require.Len(t, written, 3)
	assert.Equal(t, "skills_cloud", written[2]["id"])
	assert.Len(t, written[2]["embedding"], 384)
}

func TestEmbedCmdInvalidChunk(t *testing.T) {
	source := writeSource(t, `[{"id": "a", "content": "fine"}, {"id": "b", "content": "  "}]`)
	output := filepath.Join(t.TempDir(), "out.json")

	_, err := execute(t, "embed", "--source", source, "--output", output, "--provider", "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `chunk "b" is missing content`)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSimilarCmd(t *testing.T) {
	source := writeSource(t, sourceJSON)
	output := filepath.Join(t.TempDir(), "resumeChunks.json")
	_, err := execute(t, "embed", "--source", source, "--output", output, "--provider", "local")
	require.NoError(t, err)

	out, err := execute(t, "similar", "Do you use Kubernetes or Docker?", "--input", output, "--provider", "local", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] skills_cloud (")
	assert.NotContains(t, out, "[2]")
}

func TestSimilarCmdMissingInput(t *testing.T) {
	_, err := execute(t, "similar", "cloud", "--input", filepath.Join(t.TempDir(), "none.json"), "--provider", "local")
	assert.Error(t, err)
}

func TestServeCmdFailsOnBadCorpus(t *testing.T) {
	t.Setenv("RESUME_CORPUS_PATH", writeSource(t, `[{"id": "", "content": "x"}]`))

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk at index 0 is missing an id")
}

func TestNewLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	entry := newLogger(config.LogConfig{Level: "debug", Format: "json"}, buf)

	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())
	entry.Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ask-resume", line["service"])
	assert.Equal(t, "hello", line["msg"])

	entry = newLogger(config.LogConfig{Level: "chatty"}, buf)
	assert.Equal(t, logrus.InfoLevel, entry.Logger.GetLevel())
}

func TestNewProviderMissingCredential(t *testing.T) {
	entry := newLogger(config.LogConfig{Level: "error"}, new(bytes.Buffer))

	llm, err := newProvider(config.LLMConfig{Provider: "gemini"}, entry)
	assert.NoError(t, err)
	assert.Nil(t, llm)

	_, err = newProvider(config.LLMConfig{Provider: "claude-on-a-toaster"}, entry)
	assert.Error(t, err)

	llm, err = newProvider(config.LLMConfig{Provider: "ollama"}, entry)
	require.NoError(t, err)
	assert.Equal(t, "ollama", llm.Name())
}

func TestLoadRobots(t *testing.T) {
	policy, err := loadRobots(filepath.Join(t.TempDir(), "robots.txt"))
	require.NoError(t, err)
	assert.Equal(t, politeness.DefaultRobots, policy.Text())

	path := filepath.Join(t.TempDir(), "robots.txt")
	require.NoError(t, os.WriteFile(path, []byte("User-agent: *\nDisallow: /\n"), 0o644))
	policy, err = loadRobots(path)
	require.NoError(t, err)
	assert.False(t, policy.Allows("/", "Googlebot"))
}
