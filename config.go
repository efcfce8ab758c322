package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to start the server
type Config struct {
	Addr        string
	ClientDir   string
	DBPath      string
	AdminSecret string
	PublicURL   string
	Origins     []string
	LogLevel    string
	LogFormat   string
}

func defaultConfig() Config {
	return Config{
		Addr:      ":3000",
		ClientDir: ".",
		Origins:   []string{"*"},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// LoadConfig resolves defaults, then .env, then the environment, then flags
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return loadConfig(args, os.Getenv)
}

func loadConfig(args []string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	if port := getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	envString(getenv, "CLIENT_DIR", &cfg.ClientDir)
	envString(getenv, "DB_PATH", &cfg.DBPath)
	envString(getenv, "ADMIN_SECRET", &cfg.AdminSecret)
	envString(getenv, "PUBLIC_URL", &cfg.PublicURL)
	envString(getenv, "LOG_LEVEL", &cfg.LogLevel)
	envString(getenv, "LOG_FORMAT", &cfg.LogFormat)
	origins := strings.Join(cfg.Origins, ",")
	envString(getenv, "ALLOWED_ORIGINS", &origins)

	fset := flag.NewFlagSet("horde-server", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fset.StringVar(&cfg.ClientDir, "client", cfg.ClientDir, "Path to the static client directory")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite file for round history (empty disables recording)")
	fset.StringVar(&cfg.AdminSecret, "admin-secret", cfg.AdminSecret, "HMAC secret for operator tokens (empty disables /api/admin)")
	fset.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Join URL encoded into /qr.png")
	fset.StringVar(&origins, "origins", origins, "Comma separated allowed origins, * for any")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fset.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")
	if err := fset.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg.Origins = splitOrigins(origins)
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

func envString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = v
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// AllowAnyOrigin reports whether the origin list is the wildcard
func (c Config) AllowAnyOrigin() bool {
	for _, o := range c.Origins {
		if o == "*" {
			return true
		}
	}
	return false
}
