// Package config loads the lbstats TOML configuration, layering the
// file over repository defaults and the environment over both.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Letterboxd holds the account credentials.
type Letterboxd struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// TMDB holds the enrichment API settings.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
	// GetListRuntimes turns on per-film runtime lookups when
	// rendering lists. One API call per film.
	GetListRuntimes bool `toml:"get_list_runtimes"`
}

// Paths holds filesystem locations.
type Paths struct {
	DataDir string `toml:"data_dir"`
	CacheDB string `toml:"cache_db"`
}

// CLI holds presentation settings.
type CLI struct {
	PosterColumns int  `toml:"poster_columns"`
	Ascending     bool `toml:"ascending"`
	Limit         int  `toml:"limit"`
}

// Config encapsulates all configuration values for lbstats.
type Config struct {
	Letterboxd Letterboxd `toml:"letterboxd"`
	TMDB       TMDB       `toml:"tmdb"`
	Paths      Paths      `toml:"paths"`
	CLI        CLI        `toml:"cli"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lbstats/config.toml")
}

// Load parses the configuration file at path (or the default location
// when path is empty), merges it over the defaults and applies
// environment overrides. A missing file is not an error: defaults and
// environment stand on their own.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var fileCfg Config
		err = toml.Unmarshal(data, &fileCfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
		err = mergo.Merge(&cfg, fileCfg, mergo.WithOverride)
		if err != nil {
			return nil, fmt.Errorf("merge config: %w", err)
		}
	}

	err = cfg.applyEnv()
	if err != nil {
		return nil, err
	}
	err = cfg.normalize()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return expanded, !info.IsDir(), nil
}

// environment variable names recognized by applyEnv
const (
	envUsername      = "LBSTATS_USERNAME"
	envPassword      = "LBSTATS_PASSWORD"
	envTMDBAPIKey    = "LBSTATS_TMDB_API_KEY"
	envPosterColumns = "LBSTATS_CLI_POSTER_COLUMNS"
	envAscending     = "LBSTATS_CLI_ASCENDING"
	envLimit         = "LBSTATS_CLI_LIMIT"
)

func (c *Config) applyEnv() error {
	if value, ok := os.LookupEnv(envUsername); ok {
		c.Letterboxd.Username = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(envPassword); ok {
		c.Letterboxd.Password = value
	}
	if value, ok := os.LookupEnv(envTMDBAPIKey); ok {
		c.TMDB.APIKey = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(envPosterColumns); ok {
		columns, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", envPosterColumns, err)
		}
		c.CLI.PosterColumns = columns
	}
	if value, ok := os.LookupEnv(envAscending); ok {
		ascending, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", envAscending, err)
		}
		c.CLI.Ascending = ascending
	}
	if value, ok := os.LookupEnv(envLimit); ok {
		limit, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", envLimit, err)
		}
		c.CLI.Limit = limit
	}
	return nil
}

func (c *Config) normalize() error {
	c.Letterboxd.Username = strings.TrimSpace(c.Letterboxd.Username)
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}

	dataDir, err := expandPath(c.Paths.DataDir)
	if err != nil {
		return err
	}
	c.Paths.DataDir = dataDir
	if c.Paths.CacheDB == "" {
		c.Paths.CacheDB = filepath.Join(c.Paths.DataDir, "cache.db")
	}
	cacheDB, err := expandPath(c.Paths.CacheDB)
	if err != nil {
		return err
	}
	c.Paths.CacheDB = cacheDB

	if c.CLI.PosterColumns < 0 {
		return fmt.Errorf("cli.poster_columns must not be negative, got %d", c.CLI.PosterColumns)
	}
	if c.CLI.Limit < 0 {
		return fmt.Errorf("cli.limit must not be negative, got %d", c.CLI.Limit)
	}
	return nil
}

// EnsureDirectories creates the data directory tree.
func (c *Config) EnsureDirectories() error {
	err := os.MkdirAll(c.Paths.DataDir, 0o755)
	if err != nil {
		return fmt.Errorf("create data directory %q: %w", c.Paths.DataDir, err)
	}
	return nil
}

// CreateSample writes a commented sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	err := os.WriteFile(path, []byte(sampleConfig), 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
