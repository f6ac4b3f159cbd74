package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the ask-resume service
type Config struct {
	Server    ServerConfig
	Resume    ResumeConfig
	LLM       LLMConfig
	RateLimit RateLimitConfig
	Embedding EmbeddingConfig
	Log       LogConfig
}

// ServerConfig holds HTTP transport configuration
type ServerConfig struct {
	Addr           string
	MaxConnections int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxBodyBytes   int64
	ShutdownGrace  time.Duration
	ProjectsPath   string
	RobotsPath     string
}

// ResumeConfig describes the resume corpus and the chunks the special-case answerers look up
type ResumeConfig struct {
	CorpusPath         string
	OwnerName          string
	EducationChunkID   string
	TeachingChunkID    string
	CloudSkillsChunkID string
}

type LLMConfig struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// RateLimitConfig holds per-client throttling configuration
type RateLimitConfig struct {
	Enabled         bool
	RequestsPerSec  float64
	Burst           int
	ClientExpiry    time.Duration
	CleanupInterval time.Duration
}

// EmbeddingConfig configures the offline embedding job
type EmbeddingConfig struct {
	Provider   string
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	OutputPath string
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           GetStringEnv("SERVER_ADDR", ":8080"),
			MaxConnections: GetIntEnv("SERVER_MAX_CONNECTIONS", 256),
			ReadTimeout:    GetDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   GetDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			MaxBodyBytes:   int64(GetIntEnv("SERVER_MAX_BODY_BYTES", 16<<10)),
			ShutdownGrace:  GetDurationEnv("SERVER_SHUTDOWN_GRACE", 15*time.Second),
			ProjectsPath:   GetStringEnv("PROJECTS_PATH", "data/projects.yaml"),
			RobotsPath:     GetStringEnv("ROBOTS_PATH", "data/robots.txt"),
		},
		Resume: ResumeConfig{
			CorpusPath:         GetStringEnv("RESUME_CORPUS_PATH", "data/resumeChunks.source.json"),
			OwnerName:          GetStringEnv("RESUME_OWNER_NAME", "Sahasra Kokkula"),
			EducationChunkID:   GetStringEnv("RESUME_EDUCATION_CHUNK_ID", "edu_srm_overview"),
			TeachingChunkID:    GetStringEnv("RESUME_TA_CHUNK_ID", "edu_columbia_ta"),
			CloudSkillsChunkID: GetStringEnv("RESUME_SKILLS_CHUNK_ID", "skills_cloud"),
		},
		LLM: loadLLM(),
		RateLimit: RateLimitConfig{
			Enabled:         GetBoolEnv("RATE_LIMIT_ENABLED", true),
			RequestsPerSec:  GetFloatEnv("RATE_LIMIT_RPS", 1),
			Burst:           GetIntEnv("RATE_LIMIT_BURST", 10),
			ClientExpiry:    GetDurationEnv("RATE_LIMIT_CLIENT_EXPIRY", 10*time.Minute),
			CleanupInterval: GetDurationEnv("RATE_LIMIT_CLEANUP_INTERVAL", 1*time.Minute),
		},
		Embedding: EmbeddingConfig{
			Provider:   GetStringEnv("EMBEDDING_PROVIDER", "local"),
			BaseURL:    GetStringEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			Model:      GetStringEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			APIKey:     GetStringEnv("EMBEDDING_API_KEY", ""),
			Timeout:    GetDurationEnv("EMBEDDING_TIMEOUT", 30*time.Second),
			OutputPath: GetStringEnv("EMBEDDING_OUTPUT_PATH", "data/resumeChunks.json"),
		},
		Log: LogConfig{
			Level:  GetStringEnv("LOG_LEVEL", "info"),
			Format: GetStringEnv("LOG_FORMAT", "text"),
		},
	}
}

func loadLLM() LLMConfig {
	provider := GetStringEnv("LLM_PROVIDER", "gemini")

	var model, apiKey string
	switch provider {
	case "openai":
		model = "gpt-4o-mini"
	case "ollama":
		model = "qwen3:1.7b"
	default:
		model = GetStringEnv("GEMINI_MODEL", "models/gemini-2.5-flash")
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	return LLMConfig{
		Provider: provider,
		BaseURL:  GetStringEnv("LLM_BASE_URL", ""),
		Model:    GetStringEnv("LLM_MODEL", model),
		APIKey:   GetStringEnv("LLM_API_KEY", apiKey),
		Timeout:  GetDurationEnv("LLM_TIMEOUT", 20*time.Second),
	}
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
