package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sydlexius/songscape/internal/logging"
)

// Default artifact file names inside DataConfig.Dir.
const (
	DefaultMetadataFile = "top_100_western_artists.json"
	DefaultLyricsFile   = "all_lyrics_analysis_merged.json"
	DefaultGraphFile    = "artist_network_all_features.graphml"
)

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	LastFM    LastFMConfig    `yaml:"lastfm"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Recommend RecommendConfig `yaml:"recommend"`
	Logging   logging.Config  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port" validate:"min=1,max=65535"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
	// ClientRequestsPerMinute limits /api/artist per client IP. Zero disables it.
	ClientRequestsPerMinute int `yaml:"client_requests_per_minute" validate:"gte=0"`
	// ContentSecurityPolicy replaces the built-in policy when set.
	ContentSecurityPolicy string `yaml:"content_security_policy"`
}

// DataConfig locates the three read-only corpus artifacts. Empty paths
// default to the standard file names inside Dir.
type DataConfig struct {
	Dir          string `yaml:"dir"`
	MetadataPath string `yaml:"metadata_path"`
	LyricsPath   string `yaml:"lyrics_path"`
	GraphPath    string `yaml:"graph_path"`
}

// LastFMConfig holds Last.fm API settings.
type LastFMConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
	SimilarLimit      int           `yaml:"similar_limit" validate:"min=1,max=100"`
}

// ResolverConfig tunes artist name resolution.
type ResolverConfig struct {
	FuzzyCutoff float64 `yaml:"fuzzy_cutoff" validate:"gt=0,lte=1"`
}

// RecommendConfig tunes local graph recommendations.
type RecommendConfig struct {
	TopN int `yaml:"top_n" validate:"min=1"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                    5000,
			StaticDir:               "static",
			ClientRequestsPerMinute: 120,
		},
		Data: DataConfig{
			Dir: ".",
		},
		LastFM: LastFMConfig{
			BaseURL:           "https://ws.audioscrobbler.com/2.0",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 5,
			SimilarLimit:      5,
		},
		Resolver: ResolverConfig{
			FuzzyCutoff: 0.6,
		},
		Recommend: RecommendConfig{
			TopN: 5,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("SONGSCAPE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SONGSCAPE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SONGSCAPE_STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("SONGSCAPE_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("SONGSCAPE_CSP"); v != "" {
		c.Server.ContentSecurityPolicy = v
	}
	if v := os.Getenv("SONGSCAPE_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("SONGSCAPE_METADATA_PATH"); v != "" {
		c.Data.MetadataPath = v
	}
	if v := os.Getenv("SONGSCAPE_LYRICS_PATH"); v != "" {
		c.Data.LyricsPath = v
	}
	if v := os.Getenv("SONGSCAPE_GRAPH_PATH"); v != "" {
		c.Data.GraphPath = v
	}
	// LASTFM_API_KEY is honoured for compatibility with existing deployments.
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
	if v := os.Getenv("SONGSCAPE_LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
	if v := os.Getenv("SONGSCAPE_LASTFM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SONGSCAPE_LASTFM_TIMEOUT: %w", err)
		}
		c.LastFM.Timeout = d
	}
	if v := os.Getenv("SONGSCAPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SONGSCAPE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SONGSCAPE_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
	return nil
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	c.LastFM.BaseURL = strings.TrimRight(c.LastFM.BaseURL, "/")
	c.LastFM.APIKey = strings.TrimSpace(c.LastFM.APIKey)

	if c.Data.Dir == "" {
		c.Data.Dir = "."
	}
	if c.Data.MetadataPath == "" {
		c.Data.MetadataPath = filepath.Join(c.Data.Dir, DefaultMetadataFile)
	}
	if c.Data.LyricsPath == "" {
		c.Data.LyricsPath = filepath.Join(c.Data.Dir, DefaultLyricsFile)
	}
	if c.Data.GraphPath == "" {
		c.Data.GraphPath = filepath.Join(c.Data.Dir, DefaultGraphFile)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
