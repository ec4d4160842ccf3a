package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Portal   PortalConfig   `yaml:"portal"`
	Setup    SetupConfig    `yaml:"setup"`
	Log      LogConfig      `yaml:"log"`

	path string
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// RedisConfig enables the shared config cache backend
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PortalConfig locates the files the dashboard is served from.
type PortalConfig struct {
	PublicDir      string `yaml:"public_dir"`       // holds config/ and assets/logo/
	PagesDir       string `yaml:"pages_dir"`        // root that "@/" component paths resolve against
	ConfigCacheTTL int    `yaml:"config_cache_ttl"` // seconds
}

type SetupConfig struct {
	Completed bool `yaml:"completed"`
}

type LogConfig struct {
	Level         string `yaml:"level"`
	RetentionDays int    `yaml:"retention_days"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		fileCfg := DefaultConfig()
		if err := yaml.Unmarshal(data, fileCfg); err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	cfg.path = configPath
	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "jboilerplate.db",
		},
		JWT: JWTConfig{
			Secret:     "jboilerplate-secret-key-change-in-production",
			ExpireHour: 24,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Portal: PortalConfig{
			PublicDir:      "public",
			PagesDir:       ".",
			ConfigCacheTTL: 30,
		},
		Log: LogConfig{
			Level:         "info",
			RetentionDays: 30,
		},
	}
}

// Path returns the file this config was loaded from; Save writes back to it.
func (c *Config) Path() string {
	if c.path == "" {
		return "config.yaml"
	}
	return c.path
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if dir := os.Getenv("PUBLIC_DIR"); dir != "" {
		c.Portal.PublicDir = dir
	}
	if dir := os.Getenv("PAGES_DIR"); dir != "" {
		c.Portal.PagesDir = dir
	}
	if done := os.Getenv("SETUP_COMPLETED"); done != "" {
		c.Setup.Completed = done == "true"
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

// RoutesManifestPath is the generated-routes.json the dashboard fetches at boot.
func (c *Config) RoutesManifestPath() string {
	return filepath.Join(c.Portal.PublicDir, "config", "generated-routes.json")
}

// SystemConfigFilePath is the JSON fallback for system configuration.
func (c *Config) SystemConfigFilePath() string {
	return filepath.Join(c.Portal.PublicDir, "config", "system-config.json")
}

func (c *Config) LogoDir() string {
	return filepath.Join(c.Portal.PublicDir, "assets", "logo")
}

// UploadDir holds images uploaded for page content.
func (c *Config) UploadDir() string {
	return filepath.Join(c.Portal.PublicDir, "uploads")
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = c.Path()
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
