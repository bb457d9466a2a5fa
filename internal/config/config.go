package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

const (
	EnvPrefix      = "MINISHOP_"
	DefaultFile    = "config.yaml"
	DefaultEnvFile = ".env"

	minSecretLen        = 32
	minAdminPasswordLen = 8
)

type Config struct {
	HTTP struct {
		Addr              string        `koanf:"addr"`
		ReadHeaderTimeout time.Duration `koanf:"readHeaderTimeout"`
		ShutdownTimeout   time.Duration `koanf:"shutdownTimeout"`
		Production        bool          `koanf:"production"`
	} `koanf:"http"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Catalog struct {
		Path        string `koanf:"path"`
		ArchivePath string `koanf:"archivePath"`
	} `koanf:"catalog"`

	Auth struct {
		JWTSecret string        `koanf:"jwtSecret"`
		TokenTTL  time.Duration `koanf:"tokenTTL"`

		// AdminEmail and AdminPassword seed the account allowed to edit the catalog.
		AdminEmail    string `koanf:"adminEmail"`
		AdminPassword string `koanf:"adminPassword"`
	} `koanf:"auth"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Metrics struct {
		Enabled bool   `koanf:"enabled"`
		Token   string `koanf:"token"`
	} `koanf:"metrics"`
}

func defaults() map[string]any {
	return map[string]any{
		"http.addr":              ":8080",
		"http.readHeaderTimeout": 5 * time.Second,
		"http.shutdownTimeout":   10 * time.Second,
		"http.production":        false,
		"log.level":              "info",
		"catalog.path":           "data/products.json",
		"catalog.archivePath":    "data/removed_products.json",
		"auth.tokenTTL":          24 * time.Hour,
		"auth.adminEmail":        "",
		"auth.adminPassword":     "",
		"redis.db":               0,
		"metrics.enabled":        true,
	}
}

// Sources names the optional files Load reads. Missing files are skipped.
type Sources struct {
	File    string
	EnvFile string
}

// Load reads the configuration from config.yaml, .env and the environment.
func Load() (Config, error) {
	return LoadFrom(Sources{File: DefaultFile, EnvFile: DefaultEnvFile})
}

// LoadFrom layers, lowest priority first: built-in defaults, the yaml file,
// the env file and MINISHOP_* environment variables.
func LoadFrom(src Sources) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Yaml file
	if src.File != "" {
		if err := k.Load(file.Provider(src.File), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("load %s: %w", src.File, err)
			}
		}
	}

	transform := envTransformer(k.Keys())

	// 3. Env file
	if src.EnvFile != "" {
		if envFileMap, err := godotenv.Read(src.EnvFile); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				if !strings.HasPrefix(strings.ToUpper(key), EnvPrefix) {
					continue
				}
				envMap[transform(key)] = value
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading %s: %v", src.EnvFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: error reading %s: %v", src.EnvFile, err)
		}
	}

	// 4. Environment, the highest priority
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformer turns MINISHOP_AUTH_JWTSECRET into auth.jwtSecret. Keys that
// are already known keep their canonical casing so they override the lower
// layers instead of sitting next to them.
func envTransformer(known []string) func(string) string {
	canon := make(map[string]string, len(known))
	for _, k := range known {
		canon[strings.ToLower(k)] = k
	}
	return func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(EnvPrefix))
		key = strings.ReplaceAll(key, "_", ".")
		if c, ok := canon[key]; ok {
			return c
		}
		return key
	}
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.HTTP.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("invalid http.readHeaderTimeout: %v", c.HTTP.ReadHeaderTimeout)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid http.shutdownTimeout: %v", c.HTTP.ShutdownTimeout)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if c.Catalog.Path == "" || c.Catalog.ArchivePath == "" {
		return errors.New("catalog.path and catalog.archivePath are required")
	}
	if c.Catalog.Path == c.Catalog.ArchivePath {
		return errors.New("catalog.path and catalog.archivePath must differ")
	}
	if len(c.Auth.JWTSecret) < minSecretLen {
		return fmt.Errorf("auth.jwtSecret must be at least %d chars", minSecretLen)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid auth.tokenTTL: %v", c.Auth.TokenTTL)
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return errors.New("auth.adminEmail and auth.adminPassword must be set together")
	}
	if c.Auth.AdminPassword != "" && len(c.Auth.AdminPassword) < minAdminPasswordLen {
		return fmt.Errorf("auth.adminPassword must be at least %d chars", minAdminPasswordLen)
	}
	if c.Database.URL != "" && !isValidPostgresURL(c.Database.URL) {
		return fmt.Errorf("database.url must start with 'postgres://': %s", maskURL(c.Database.URL))
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db: %d", c.Redis.DB)
	}
	return nil
}

func (c Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server ---\n")
	fmt.Fprintf(&b, "  http.addr: %s\n", c.HTTP.Addr)
	fmt.Fprintf(&b, "  http.readHeaderTimeout: %v\n", c.HTTP.ReadHeaderTimeout)
	fmt.Fprintf(&b, "  http.shutdownTimeout: %v\n", c.HTTP.ShutdownTimeout)
	fmt.Fprintf(&b, "  http.production: %t\n", c.HTTP.Production)
	fmt.Fprintf(&b, "  log.level: %s\n", c.Log.Level)

	b.WriteString("\n--- Catalog ---\n")
	fmt.Fprintf(&b, "  catalog.path: %s\n", c.Catalog.Path)
	fmt.Fprintf(&b, "  catalog.archivePath: %s\n", c.Catalog.ArchivePath)

	b.WriteString("\n--- Auth ---\n")
	fmt.Fprintf(&b, "  auth.jwtSecret: %s\n", maskSecret(c.Auth.JWTSecret))
	fmt.Fprintf(&b, "  auth.tokenTTL: %v\n", c.Auth.TokenTTL)
	fmt.Fprintf(&b, "  auth.adminEmail: %s\n", orNotConfigured(c.Auth.AdminEmail))
	fmt.Fprintf(&b, "  auth.adminPassword: %s\n", maskSecret(c.Auth.AdminPassword))

	b.WriteString("\n--- Backends ---\n")
	fmt.Fprintf(&b, "  database.url: %s\n", maskURL(c.Database.URL))
	fmt.Fprintf(&b, "  redis.addr: %s\n", orNotConfigured(c.Redis.Addr))
	fmt.Fprintf(&b, "  redis.db: %d\n", c.Redis.DB)

	b.WriteString("\n--- Metrics ---\n")
	fmt.Fprintf(&b, "  metrics.enabled: %t\n", c.Metrics.Enabled)
	fmt.Fprintf(&b, "  metrics.token: %s\n", maskSecret(c.Metrics.Token))

	return b.String()
}

func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}

func orNotConfigured(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return s
}
