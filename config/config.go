package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration
type Config struct {
	Port           string   `toml:"port"`
	CoursesDir     string   `toml:"courses_dir"`
	TitlesDir      string   `toml:"titles_dir"`
	AllowedOrigins []string `toml:"allowed_origins"`

	Logging Logging `toml:"logging"`
	Wistia  Wistia  `toml:"wistia"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "auto", "text" or "json"
}

// Wistia contains configuration for the remote title lookup.
type Wistia struct {
	BaseURL        string `toml:"base_url"`
	Account        string `toml:"account"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

const (
	defaultPort      = "5000"
	defaultBaseURL   = "https://fast.wistia.com"
	defaultAccount   = "apnacollege"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultTimeout   = 10
)

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Port:           defaultPort,
		CoursesDir:     "./courses",
		TitlesDir:      "./titles",
		AllowedOrigins: []string{"*"},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
		Wistia: Wistia{
			BaseURL:        defaultBaseURL,
			Account:        defaultAccount,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeout,
		},
	}
}

// LoadConfig loads the configuration from defaults, an optional TOML file and
// environment variables, in that order of precedence (last wins).
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("COURSES_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.CoursesDir = getEnv("COURSES_DIR", c.CoursesDir)
	c.TitlesDir = getEnv("TITLES_DIR", c.TitlesDir)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Wistia.BaseURL = getEnv("WISTIA_BASE_URL", c.Wistia.BaseURL)
	c.Wistia.Account = getEnv("WISTIA_ACCOUNT", c.Wistia.Account)

	if v := getEnv("TITLE_TIMEOUT_SECONDS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Wistia.TimeoutSeconds = n
		}
	}
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
}

func (c *Config) normalize() {
	c.Port = strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	c.CoursesDir = cleanDir(c.CoursesDir)
	c.TitlesDir = cleanDir(c.TitlesDir)
	c.Wistia.BaseURL = strings.TrimRight(strings.TrimSpace(c.Wistia.BaseURL), "/")
	if c.Wistia.UserAgent == "" {
		c.Wistia.UserAgent = defaultUserAgent
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}

func cleanDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	return filepath.Clean(dir)
}

// Validate reports configuration values the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.CoursesDir == "" {
		return errors.New("courses_dir must be set")
	}
	if c.TitlesDir == "" {
		return errors.New("titles_dir must be set")
	}
	if c.Wistia.BaseURL == "" {
		return errors.New("wistia.base_url must be set")
	}
	if c.Wistia.TimeoutSeconds <= 0 {
		return fmt.Errorf("wistia.timeout_seconds must be positive, got %d", c.Wistia.TimeoutSeconds)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// TitleTimeout returns the per-request timeout for remote title lookups.
func (c *Config) TitleTimeout() time.Duration {
	return time.Duration(c.Wistia.TimeoutSeconds) * time.Second
}

// EnsureDirs creates the courses and titles directories if they don't exist.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.CoursesDir, c.TitlesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
