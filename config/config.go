// Package config loads runtime settings from the environment and .env.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Environment string
	LogLevel    string
	LogFormat   string

	// Remote API roots, without trailing slash.
	EstimationBaseURL string
	ExportBaseURL     string
	APIToken          string

	OutputDir string
	S3        S3Config

	DevStub      bool
	DevStubToken string
}

type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// DevStubPath is where the development stand-in service is mounted.
const DevStubPath = "/stub"

// Load loads configuration from environment variables and a .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Environment:       getenv("ENVIRONMENT", "development"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "json"),
		EstimationBaseURL: strings.TrimRight(getenv("ESTIMATION_API_URL", ""), "/"),
		ExportBaseURL:     strings.TrimRight(getenv("EXPORT_API_URL", ""), "/"),
		APIToken:          strings.TrimSpace(getenv("API_TOKEN", "")),
		OutputDir:         getenv("EXPORT_OUTPUT_DIR", "."),
		S3: S3Config{
			Bucket:          strings.TrimSpace(getenv("S3_BUCKET", "")),
			Prefix:          strings.Trim(getenv("S3_PREFIX", ""), "/"),
			Region:          getenv("S3_REGION", ""),
			Endpoint:        strings.TrimSpace(getenv("S3_ENDPOINT", "")),
			AccessKeyID:     strings.TrimSpace(getenv("S3_ACCESS_KEY_ID", "")),
			SecretAccessKey: strings.TrimSpace(getenv("S3_SECRET_ACCESS_KEY", "")),
		},
		DevStub:      getenvBool("DEV_STUB", false),
		DevStubToken: strings.TrimSpace(getenv("DEV_STUB_TOKEN", "")),
	}

	if cfg.DevStub && cfg.APIToken == "" {
		cfg.APIToken = cfg.DevStubToken
	}
	return cfg
}

// ResolveBaseURLs fills empty API roots. With the dev stub enabled they point
// at the stub mounted on origin, otherwise at origin's /api.
func (c *Config) ResolveBaseURLs(origin string) {
	origin = strings.TrimRight(origin, "/")
	prefix := origin + "/api"
	if c.DevStub {
		prefix = origin + DevStubPath
	}
	if c.EstimationBaseURL == "" {
		c.EstimationBaseURL = prefix + "/estimations"
	}
	if c.ExportBaseURL == "" {
		c.ExportBaseURL = prefix + "/export"
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
