package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

var (
	instance   *Config
	once       sync.Once
	configPath string
)

type Debrid struct {
	Name      string `json:"name,omitempty"`
	Host      string `json:"host,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	RateLimit string `json:"rate_limit,omitempty"` // 250/minute or 10/second
	Proxy     string `json:"proxy,omitempty"`

	// Polling budget for the add -> downloaded pipeline
	MaxPollRetries int    `json:"max_poll_retries,omitempty"`
	PollInterval   string `json:"poll_interval,omitempty"` // 5s, 10s
}

type Jackett struct {
	Host       string `json:"host,omitempty"`
	APIKey     string `json:"api_key,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

type Server struct {
	Port string `json:"port,omitempty"`
}

type Config struct {
	LogLevel     string   `json:"log_level,omitempty"`
	Debrids      []Debrid `json:"debrids,omitempty"`
	Jackett      Jackett  `json:"jackett,omitempty"`
	Server       Server   `json:"server,omitempty"`
	MaxCacheSize int      `json:"max_cache_size,omitempty"`
	AllowedExt   []string `json:"allowed_file_types,omitempty"`
	MinFileSize  string   `json:"min_file_size,omitempty"` // 10MB, 1GB, etc
	MaxFileSize  string   `json:"max_file_size,omitempty"` // 0 means no limit
	Path         string   `json:"-"`                       // Path to the data folder
}

func (c *Config) JsonFile() string {
	return filepath.Join(c.Path, "config.json")
}

func (c *Config) loadConfig() error {
	if configPath == "" {
		return fmt.Errorf("config path not set")
	}
	c.Path = configPath
	file, err := os.ReadFile(c.JsonFile())
	if err != nil {
		return err
	}

	if err := json.Unmarshal(file, &c); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	for i, debrid := range c.Debrids {
		c.Debrids[i] = updateDebrid(debrid)
	}

	if len(c.AllowedExt) == 0 {
		c.AllowedExt = getDefaultExtensions()
	}

	if err := ValidateConfig(c); err != nil {
		return err
	}

	return nil
}

func validateDebrids(debrids []Debrid) error {
	if len(debrids) == 0 {
		return errors.New("no debrids configured")
	}

	for _, debrid := range debrids {
		if debrid.APIKey == "" {
			return errors.New("debrid api key is required")
		}
		if debrid.Host == "" {
			return errors.New("debrid host is required")
		}
	}

	return nil
}

func validateJackett(j *Jackett) error {
	if j.Host == "" {
		return nil // Search is optional
	}
	if j.APIKey == "" {
		return errors.New("jackett api key is required when a host is set")
	}
	return nil
}

func ValidateConfig(config *Config) error {
	if err := validateDebrids(config.Debrids); err != nil {
		return fmt.Errorf("debrids validation error: %w", err)
	}

	if err := validateJackett(&config.Jackett); err != nil {
		return fmt.Errorf("jackett validation error: %w", err)
	}

	return nil
}

func SetConfigPath(path string) {
	configPath = path
}

func Get() *Config {
	once.Do(func() {
		instance = &Config{}
		if err := instance.loadConfig(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "configuration Error: %v\n", err)
			os.Exit(1)
		}
	})
	return instance
}

func updateDebrid(d Debrid) Debrid {
	if d.MaxPollRetries == 0 {
		d.MaxPollRetries = 30
	}
	if d.PollInterval == "" {
		d.PollInterval = "5s"
	}
	return d
}

func (d Debrid) GetPollInterval() time.Duration {
	interval, err := time.ParseDuration(d.PollInterval)
	if err != nil {
		return 5 * time.Second
	}
	return interval
}

func (c *Config) GetMinFileSize() int64 {
	// 0 means no limit
	if c.MinFileSize == "" {
		return 0
	}
	s, err := parseSize(c.MinFileSize)
	if err != nil {
		return 0
	}
	return s
}

func (c *Config) GetMaxFileSize() int64 {
	// 0 means no limit
	if c.MaxFileSize == "" {
		return 0
	}
	s, err := parseSize(c.MaxFileSize)
	if err != nil {
		return 0
	}
	return s
}

func (c *Config) IsSizeAllowed(size int64) bool {
	if size == 0 {
		return true // Maybe the debrid hasn't reported the size yet
	}
	if c.GetMinFileSize() > 0 && size < c.GetMinFileSize() {
		return false
	}
	if c.GetMaxFileSize() > 0 && size > c.GetMaxFileSize() {
		return false
	}
	return true
}

func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.JsonFile(), data, 0644); err != nil {
		return err
	}
	return nil
}

// Reload forces a reload of the configuration from disk
func Reload() {
	instance = nil
	once = sync.Once{}
}
