package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "MAUMCARE_CONFIG"

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Providers   map[string]ProviderConfig `json:"providers"`
	Databases   map[string]DBConfig       `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Storage     StorageConfig             `json:"storage"`
	Worker      WorkerConfig              `json:"worker"`
	Retrieval   RetrievalConfig           `json:"retrieval"`
	Admin       AdminConfig               `json:"admin"`
	Events      EventsConfig              `json:"events"`
}

// BasicConfig.Provider selects the entry of Providers used for reply
// generation; empty disables generation.
type BasicConfig struct {
	ServerAddress    string `json:"server_address"`
	DataDir          string `json:"data_dir"`
	Provider         string `json:"provider"`
	GeneratorTimeout int    `json:"generator_timeout_seconds"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

type DBConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	CacheTTL int    `json:"cache_ttl_minutes"`
}

type StorageConfig struct {
	// Driver is one of file, sqlite3, mysql or postgres.
	Driver string `json:"driver"`
}

type WorkerConfig struct {
	Enabled     bool `json:"enabled"`
	MinWorkers  int  `json:"min_workers"`
	MaxWorkers  int  `json:"max_workers"`
	QueueSize   int  `json:"queue_size"`
	IdleSeconds int  `json:"idle_seconds"`
}

type RetrievalConfig struct {
	ManualPath           string `json:"manual_path"`
	Collection           string `json:"collection"`
	TopK                 int    `json:"top_k"`
	WebSearch            bool   `json:"web_search"`
	GoogleAPIKey         string `json:"google_api_key"`
	GoogleSearchEngineID string `json:"google_search_engine_id"`
}

type AdminConfig struct {
	APIKeys []string `json:"api_keys"`
}

type EventsConfig struct {
	URL        string `json:"url"`
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`
}

// Load reads configuration from the provided path (defaults to config.json).
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base := filepath.Dir(absPath)
	cfg.BasicConfig.DataDir = resolve(base, cfg.BasicConfig.DataDir)
	cfg.Retrieval.ManualPath = resolve(base, cfg.Retrieval.ManualPath)
	if db, ok := cfg.Databases["sqlite3"]; ok && db.DSN != "" && !strings.HasPrefix(db.DSN, "file:") {
		db.DSN = resolve(base, db.DSN)
		cfg.Databases["sqlite3"] = db
	}

	return &cfg, nil
}

// Path returns the config path from the environment.
func Path() string {
	return os.Getenv(EnvConfigPath)
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = ":8090"
	}
	if c.BasicConfig.DataDir == "" {
		c.BasicConfig.DataDir = "./data"
	}
	if c.BasicConfig.GeneratorTimeout <= 0 {
		c.BasicConfig.GeneratorTimeout = 20
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Worker.MinWorkers <= 0 {
		c.Worker.MinWorkers = 1
	}
	if c.Worker.MaxWorkers <= 0 {
		c.Worker.MaxWorkers = 4
	}
	if c.Worker.QueueSize <= 0 {
		c.Worker.QueueSize = 64
	}
	if c.Worker.IdleSeconds <= 0 {
		c.Worker.IdleSeconds = 300
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 3
	}
	if c.Retrieval.Collection == "" {
		c.Retrieval.Collection = "counseling_manual"
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 30
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	if c.Databases == nil {
		c.Databases = map[string]DBConfig{}
	}
}

// applyEnv lets MAUMCARE_<PROVIDER>_API_KEY override provider keys and
// GOOGLE_API_KEY / GOOGLE_SEARCH_ENGINE_ID fill the web search credentials.
func (c *Config) applyEnv() {
	for name, p := range c.Providers {
		key := "MAUMCARE_" + strings.ToUpper(name) + "_API_KEY"
		if v := os.Getenv(key); v != "" {
			p.APIKey = v
			c.Providers[name] = p
		}
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.Retrieval.GoogleAPIKey = v
	}
	if v := os.Getenv("GOOGLE_SEARCH_ENGINE_ID"); v != "" {
		c.Retrieval.GoogleSearchEngineID = v
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "file":
	case "sqlite3", "mysql", "postgres":
		if _, ok := c.Databases[c.Storage.Driver]; !ok {
			return fmt.Errorf("database config for %s not found", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	if name := c.BasicConfig.Provider; name != "" {
		if _, ok := c.Providers[name]; !ok {
			return fmt.Errorf("provider %s not configured", name)
		}
	}
	if c.Worker.MinWorkers > c.Worker.MaxWorkers {
		return fmt.Errorf("min_workers %d exceeds max_workers %d", c.Worker.MinWorkers, c.Worker.MaxWorkers)
	}
	return nil
}

// GeneratorTimeout returns the per-request generation timeout.
func (c *Config) GeneratorTimeout() time.Duration {
	return time.Duration(c.BasicConfig.GeneratorTimeout) * time.Second
}

// WorkerIdle returns how long an extra archive worker may stay idle.
func (c *Config) WorkerIdle() time.Duration {
	return time.Duration(c.Worker.IdleSeconds) * time.Second
}

// CacheTTL returns the conversation listing cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTL) * time.Minute
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
