package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	API     APIConfig
	Search  SearchConfig
	Poll    PollConfig
	Catalog CatalogConfig
	Export  ExportConfig
	Log     LogConfig
	MockAPI MockAPIConfig
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SearchConfig tunes the wizard organism search.
type SearchConfig struct {
	Debounce    time.Duration
	MinQueryLen int
	MaxResults  int
}

// PollConfig governs the running-job poll loop.
type PollConfig struct {
	Interval time.Duration
}

// CatalogConfig tunes the organism/tissue lookup cache.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// ExportConfig controls where QC and inventory exports land.
type ExportConfig struct {
	OutputDir string
}

type LogConfig struct {
	Level  string
	Format string
}

// MockAPIConfig configures the bundled development backend.
type MockAPIConfig struct {
	Port           int
	JWTSecret      string
	SessionTTL     time.Duration
	AllowedOrigins []string
	UploadDir      string
	JobDuration    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 30*time.Second),
	}

	cfg.Search = SearchConfig{
		Debounce:    parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
		MinQueryLen: v.GetInt("SEARCH_MIN_QUERY_LEN"),
		MaxResults:  v.GetInt("SEARCH_MAX_RESULTS"),
	}

	cfg.Poll = PollConfig{
		Interval: parseDuration(v.GetString("POLL_INTERVAL"), 5*time.Second),
	}

	cfg.Catalog = CatalogConfig{
		CacheTTL: parseDuration(v.GetString("CATALOG_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Export = ExportConfig{
		OutputDir: v.GetString("EXPORT_OUTPUT_DIR"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.MockAPI = MockAPIConfig{
		Port:           v.GetInt("MOCK_API_PORT"),
		JWTSecret:      v.GetString("MOCK_API_JWT_SECRET"),
		SessionTTL:     parseDuration(v.GetString("MOCK_API_SESSION_TTL"), 24*time.Hour),
		AllowedOrigins: splitAndTrim(v.GetString("MOCK_API_ALLOWED_ORIGINS")),
		UploadDir:      v.GetString("MOCK_API_UPLOAD_DIR"),
		JobDuration:    parseDuration(v.GetString("MOCK_API_JOB_DURATION"), 8*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:8900/api")
	v.SetDefault("API_TIMEOUT", "30s")

	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("SEARCH_MIN_QUERY_LEN", 2)
	v.SetDefault("SEARCH_MAX_RESULTS", 50)

	v.SetDefault("POLL_INTERVAL", "5s")
	v.SetDefault("CATALOG_CACHE_TTL", "10m")

	v.SetDefault("EXPORT_OUTPUT_DIR", "./exports")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("MOCK_API_PORT", 8900)
	v.SetDefault("MOCK_API_JWT_SECRET", "dev_secret")
	v.SetDefault("MOCK_API_SESSION_TTL", "24h")
	v.SetDefault("MOCK_API_ALLOWED_ORIGINS", "")
	v.SetDefault("MOCK_API_UPLOAD_DIR", "./uploads")
	v.SetDefault("MOCK_API_JOB_DURATION", "8s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
