package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	JWTSecret          string
	SessionCookie      string
	IdentityIssuer     string
	IdentityJWKSURL    string
	IdentityAudience   string
	HFToken            string
	HFBaseURL          string
	HFImageModel       string
	HFTextModel        string
	HFRequestTimeout   time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		SessionCookie:      getEnv("SESSION_COOKIE", "__session"),
		IdentityIssuer:     strings.TrimSpace(os.Getenv("IDENTITY_ISSUER")),
		IdentityJWKSURL:    strings.TrimSpace(os.Getenv("IDENTITY_JWKS_URL")),
		IdentityAudience:   strings.TrimSpace(os.Getenv("IDENTITY_AUDIENCE")),
		HFToken:            strings.TrimSpace(os.Getenv("HF_TOKEN")),
		HFBaseURL:          getEnv("HF_BASE_URL", "https://router.huggingface.co/hf-inference/models"),
		HFImageModel:       getEnv("HF_IMAGE_MODEL", "black-forest-labs/FLUX.1-schnell"),
		HFTextModel:        getEnv("HF_TEXT_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		HFRequestTimeout:   time.Second * time.Duration(getEnvInt("HF_REQUEST_TIMEOUT_SECONDS", 0)),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RateLimitPerMin < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConsoleConfig configures the interactive generation console.
type ConsoleConfig struct {
	AppEnv       string
	APIURL       string
	APIToken     string
	DownloadDir  string
	ExportBucket string
	AWSRegion    string
}

// LoadConsoleConfig reads the console settings. The API token may be empty;
// requests then fail with 401 until one is supplied.
func LoadConsoleConfig() (*ConsoleConfig, error) {
	cfg := &ConsoleConfig{
		AppEnv:       getEnv("APP_ENV", "development"),
		APIURL:       strings.TrimRight(getEnv("NEXUS_API_URL", "http://localhost:8080"), "/"),
		APIToken:     strings.TrimSpace(os.Getenv("NEXUS_API_TOKEN")),
		DownloadDir:  getEnv("NEXUS_DOWNLOAD_DIR", "./downloads"),
		ExportBucket: strings.TrimSpace(os.Getenv("NEXUS_EXPORT_BUCKET")),
		AWSRegion:    strings.TrimSpace(os.Getenv("AWS_REGION")),
	}
	if !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return nil, fmt.Errorf("NEXUS_API_URL must be an http(s) url, got %q", cfg.APIURL)
	}
	return cfg, nil
}
