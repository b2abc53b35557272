package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Generation configuration (OpenAI-compatible protocol).
	// The direct model answers birthday/weather/holiday requests, the
	// reasoning model answers product match requests.
	AIAPIKey           string // API key shared by generation and embedding calls
	AIBaseURL          string // OpenAI-compatible base URL
	AIDirectModel      string // model for the direct generation profile
	AIReasoningModel   string // model for the reasoning generation profile
	AITimeout          int    // generation request timeout in seconds (default: 300)
	AIEmbeddingModel   string // embedding model for similarity search queries
	AIEmbeddingBaseURL string // embedding base URL (defaults to AIBaseURL)

	// Weather provider configuration.
	WeatherBaseURL string // provider base URL
	WeatherToken   string // provider API token

	// Similarity search configuration.
	VectorIndexPath string // flat index file, relative to Data if not absolute
	IDMapPath       string // id map file, relative to Data if not absolute
	RetrievalTopK   int    // nearest neighbors returned per query (default: 10)
	Brand           string // brand line injected into match prompts

	// Server configuration.
	Mode     string
	Addr     string
	Port     int
	UNIXSock string
	Data     string
	Driver   string
	DSN      string
	Version  string

	// Record store pool sizing.
	DBMaxOpenConns int
	DBMaxIdleConns int
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the generation API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.AIAPIKey = getEnvOrDefault("SHOPGUIDE_AI_API_KEY", "")
	p.AIBaseURL = getEnvOrDefault("SHOPGUIDE_AI_BASE_URL", "https://integrate.api.nvidia.com/v1")
	p.AIDirectModel = getEnvOrDefault("SHOPGUIDE_AI_DIRECT_MODEL", "nvidia/llama-3.1-nemotron-ultra-253b-v1")
	p.AIReasoningModel = getEnvOrDefault("SHOPGUIDE_AI_REASONING_MODEL", "deepseek-ai/deepseek-r1")
	p.AITimeout = getEnvOrDefaultInt("SHOPGUIDE_AI_TIMEOUT_SECONDS", 300)
	p.AIEmbeddingModel = getEnvOrDefault("SHOPGUIDE_AI_EMBEDDING_MODEL", "nvidia/nv-embedcode-7b-v1")
	p.AIEmbeddingBaseURL = getEnvOrDefault("SHOPGUIDE_AI_EMBEDDING_BASE_URL", p.AIBaseURL)

	p.WeatherBaseURL = getEnvOrDefault("SHOPGUIDE_WEATHER_BASE_URL", "https://api.caiyunapp.com/v2.6")
	p.WeatherToken = getEnvOrDefault("SHOPGUIDE_WEATHER_TOKEN", "")

	p.VectorIndexPath = getEnvOrDefault("SHOPGUIDE_VECTOR_INDEX", "vector_index.bin")
	p.IDMapPath = getEnvOrDefault("SHOPGUIDE_ID_MAP", "id_map.json")
	p.RetrievalTopK = getEnvOrDefaultInt("SHOPGUIDE_RETRIEVAL_TOP_K", 10)
	p.Brand = getEnvOrDefault("SHOPGUIDE_BRAND", "雅戈尔集团旗下品牌")

	p.DBMaxOpenConns = getEnvOrDefaultInt("SHOPGUIDE_DB_MAX_OPEN_CONNS", 100)
	p.DBMaxIdleConns = getEnvOrDefaultInt("SHOPGUIDE_DB_MAX_IDLE_CONNS", 1)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// resolveDataPath anchors a relative path in the data directory.
func (p *Profile) resolveDataPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Data, path)
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/shopguide"
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			dbFile := fmt.Sprintf("shopguide_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile)
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn required for postgres driver")
		}
	default:
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.AIAPIKey == "" {
		return errors.New("generation api key required (SHOPGUIDE_AI_API_KEY)")
	}
	if p.RetrievalTopK <= 0 {
		p.RetrievalTopK = 10
	}

	p.VectorIndexPath = p.resolveDataPath(p.VectorIndexPath)
	p.IDMapPath = p.resolveDataPath(p.IDMapPath)

	return nil
}
