package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Backend selects which catalog implementation serves the tools.
type Backend string

const (
	// BackendDB reads and writes zotero.sqlite directly.
	BackendDB Backend = "db"
	// BackendAPI goes through the Zotero local/web HTTP API.
	BackendAPI Backend = "api"
)

// Config holds all environment-provided settings. It is read once at startup
// and treated as immutable afterwards.
type Config struct {
	Backend Backend

	// Direct-storage backend
	DBPath string // path to zotero.sqlite (ZOTERO_DB_PATH)

	// API-mediated backend
	UserID   string // Zotero user ID (ZOTERO_USER_ID)
	APIKey   string // Zotero API key (ZOTERO_API_KEY)
	LocalAPI bool   // read through the local API at localhost:23119 (ZOTERO_LOCAL_API)

	// Summarization
	OpenAIAPIKey string // OPENAI_API_KEY

	// Conversion service
	ConvertURL  string // base URL of a running pdf-convert-server (PDF_CONVERT_URL)
	ConvertAddr string // listen address for pdf-convert-server (PDF_CONVERT_ADDR)
}

// Load reads configuration from the environment. A .env file in the working
// directory is folded in first, matching how the server is usually launched
// from an MCP client config.
func Load() (*Config, error) {
	// Absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Backend:      Backend(getEnv("ZOTERO_BACKEND", string(BackendDB))),
		DBPath:       os.Getenv("ZOTERO_DB_PATH"),
		UserID:       os.Getenv("ZOTERO_USER_ID"),
		APIKey:       os.Getenv("ZOTERO_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		ConvertURL:   os.Getenv("PDF_CONVERT_URL"),
		ConvertAddr:  getEnv("PDF_CONVERT_ADDR", ":8877"),
	}

	if v := os.Getenv("ZOTERO_LOCAL_API"); v != "" {
		local, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ZOTERO_LOCAL_API value %q: %w", v, err)
		}
		cfg.LocalAPI = local
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that the selected backend has everything it needs.
func (c *Config) validate() error {
	switch c.Backend {
	case BackendDB:
		if c.DBPath == "" {
			return fmt.Errorf("ZOTERO_DB_PATH must be set when ZOTERO_BACKEND is %q (path to zotero.sqlite)", BackendDB)
		}
	case BackendAPI:
		if c.UserID == "" {
			return fmt.Errorf("ZOTERO_USER_ID must be set when ZOTERO_BACKEND is %q", BackendAPI)
		}
		if c.APIKey == "" && !c.LocalAPI {
			return fmt.Errorf("ZOTERO_API_KEY must be set when ZOTERO_BACKEND is %q and the local API is not enabled", BackendAPI)
		}
	default:
		return fmt.Errorf("invalid ZOTERO_BACKEND %q (expected %q or %q)", c.Backend, BackendDB, BackendAPI)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
