package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimitPerMin int           `yaml:"rate_limit_per_min"`
		RateLimitBurst  int           `yaml:"rate_limit_burst"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`
	Redis struct {
		Enabled     bool   `yaml:"enabled"`
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		Password    string `yaml:"password"`
		DB          int    `yaml:"db"`
		TLSEnabled  bool   `yaml:"tls_enabled"`
		TLSCertFile string `yaml:"tls_cert_file"`
		TLSKeyFile  string `yaml:"tls_key_file"`
	} `yaml:"redis"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Upstream struct {
		PostcodesURL    string        `yaml:"postcodes_url"`
		LandRegistryURL string        `yaml:"landregistry_url"`
		SearchRadius    int           `yaml:"search_radius"`
		SearchLimit     int           `yaml:"search_limit"`
		Timeout         time.Duration `yaml:"timeout"`
		MaxRetries      int           `yaml:"max_retries"`
	} `yaml:"upstream"`
	Client struct {
		PriceAPIURL string        `yaml:"price_api_url"`
		FloodAPIURL string        `yaml:"flood_api_url"`
		FloodDist   float64       `yaml:"flood_dist"`
		DefaultYear int           `yaml:"default_year"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"client"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadConfig reads the YAML file at path, applies env overrides and defaults, then validates.
// A missing file is not an error: env and defaults alone produce a usable config.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT value: %w", err)
		}
		cfg.Server.Port = n
	}
	if enabled := os.Getenv("REDIS_ENABLED"); enabled != "" {
		cfg.Redis.Enabled = enabled == "true"
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.Redis.Host = host
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid REDIS_PORT value: %w", err)
		}
		cfg.Redis.Port = n
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB value: %w", err)
		}
		cfg.Redis.DB = n
	}
	if tlsEnabled := os.Getenv("REDIS_TLS_ENABLED"); tlsEnabled != "" {
		cfg.Redis.TLSEnabled = tlsEnabled == "true"
	}
	if certFile := os.Getenv("REDIS_TLS_CERT_FILE"); certFile != "" {
		cfg.Redis.TLSCertFile = certFile
	}
	if keyFile := os.Getenv("REDIS_TLS_KEY_FILE"); keyFile != "" {
		cfg.Redis.TLSKeyFile = keyFile
	}
	if u := os.Getenv("POSTCODES_API_URL"); u != "" {
		cfg.Upstream.PostcodesURL = u
	}
	if u := os.Getenv("LANDREGISTRY_URL"); u != "" {
		cfg.Upstream.LandRegistryURL = u
	}
	if u := os.Getenv("PRICE_API_URL"); u != "" {
		cfg.Client.PriceAPIURL = u
	}
	if u := os.Getenv("FLOOD_API_URL"); u != "" {
		cfg.Client.FloodAPIURL = u
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Server.RateLimitPerMin == 0 {
		cfg.Server.RateLimitPerMin = 100
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Upstream.PostcodesURL == "" {
		cfg.Upstream.PostcodesURL = "https://api.postcodes.io"
	}
	if cfg.Upstream.LandRegistryURL == "" {
		cfg.Upstream.LandRegistryURL = "http://landregistry.data.gov.uk/landregistry/query"
	}
	if cfg.Upstream.SearchRadius == 0 {
		cfg.Upstream.SearchRadius = 2000
	}
	if cfg.Upstream.SearchLimit == 0 {
		cfg.Upstream.SearchLimit = 99
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 30 * time.Second
	}
	if cfg.Upstream.MaxRetries == 0 {
		cfg.Upstream.MaxRetries = 3
	}
	if cfg.Client.PriceAPIURL == "" {
		cfg.Client.PriceAPIURL = "http://localhost:8080"
	}
	if cfg.Client.FloodAPIURL == "" {
		cfg.Client.FloodAPIURL = "https://environment.data.gov.uk"
	}
	if cfg.Client.FloodDist == 0 {
		cfg.Client.FloodDist = 1
	}
	if cfg.Client.DefaultYear == 0 {
		cfg.Client.DefaultYear = 2000
	}
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("REDIS_PORT must be between 1 and 65535")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must be non-negative")
	}
	if c.Redis.Enabled && c.Redis.TLSEnabled && c.Redis.TLSCertFile != "" {
		if _, err := os.Stat(c.Redis.TLSCertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file does not exist: %s", c.Redis.TLSCertFile)
		}
	}
	if c.Upstream.SearchLimit < 1 || c.Upstream.SearchLimit > 100 {
		return fmt.Errorf("upstream search_limit must be between 1 and 100")
	}
	if c.Upstream.SearchRadius < 1 || c.Upstream.SearchRadius > 2000 {
		return fmt.Errorf("upstream search_radius must be between 1 and 2000 metres")
	}
	if c.Client.DefaultYear < 1995 || c.Client.DefaultYear > 2020 {
		return fmt.Errorf("client default_year must be between 1995 and 2020")
	}
	return nil
}
