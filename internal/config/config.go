package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env             string        `yaml:"env"`
	HTTPAddr        string        `yaml:"http_addr"`
	SeedPath        string        `yaml:"seed_path"`
	Storage         string        `yaml:"storage"`
	DBDriver        string        `yaml:"db_driver"`
	DBDSN           string        `yaml:"db_dsn"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	RequireName     bool          `yaml:"require_name"`
}

func Default() Config {
	return Config{
		Env:             "dev",
		HTTPAddr:        ":3000",
		SeedPath:        "db/db.json",
		Storage:         "memory",
		DBDriver:        "pgx",
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// LoadFile overlays the YAML document at path onto cfg. Keys missing from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays environment variables onto cfg.
func FromEnv(cfg Config) Config {
	cfg.Env = getenv("APP_ENV", cfg.Env)
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.SeedPath = getenv("SEED_PATH", cfg.SeedPath)
	cfg.Storage = getenv("STORAGE", cfg.Storage)
	cfg.DBDriver = getenv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getenv("DB_DSN", cfg.DBDSN)
	cfg.ShutdownTimeout = getdur("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)
	cfg.RequireName = getbool("REQUIRE_NAME", cfg.RequireName)
	return cfg
}

// Flags holds the command-line overrides. Only flags the user actually set
// are applied.
type Flags struct {
	fs  *pflag.FlagSet
	cfg Config
	// ConfigFile is the optional YAML file, also read from CONFIG_FILE.
	ConfigFile string
}

func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()
	fs.StringVar(&f.ConfigFile, "config", os.Getenv("CONFIG_FILE"), "YAML config file")
	fs.StringVar(&f.cfg.HTTPAddr, "http", d.HTTPAddr, "listen address")
	fs.StringVar(&f.cfg.SeedPath, "seed", d.SeedPath, "seed document path, empty for none")
	fs.StringVar(&f.cfg.Storage, "storage", d.Storage, "storage backend: memory|sql")
	fs.StringVar(&f.cfg.DBDriver, "db-driver", d.DBDriver, "sql driver: pgx|sqlite3")
	fs.StringVar(&f.cfg.DBDSN, "db-dsn", "", "sql data source name")
	fs.StringVar(&f.cfg.Env, "env", d.Env, "environment name")
	fs.DurationVar(&f.cfg.ShutdownTimeout, "shutdown-timeout", d.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&f.cfg.LogLevel, "log-level", d.LogLevel, "debug|info|warn|error")
	fs.StringVar(&f.cfg.LogFormat, "log-format", d.LogFormat, "text|json")
	fs.BoolVar(&f.cfg.RequireName, "require-name", d.RequireName, "reject users without a name")
	return f
}

// Load resolves the configuration: defaults, then the YAML file, then the
// environment, then explicitly set flags.
func (f *Flags) Load() (Config, error) {
	cfg := Default()
	if f.ConfigFile != "" {
		if err := LoadFile(f.ConfigFile, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg = FromEnv(cfg)
	f.fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "http":
			cfg.HTTPAddr = f.cfg.HTTPAddr
		case "seed":
			cfg.SeedPath = f.cfg.SeedPath
		case "storage":
			cfg.Storage = f.cfg.Storage
		case "db-driver":
			cfg.DBDriver = f.cfg.DBDriver
		case "db-dsn":
			cfg.DBDSN = f.cfg.DBDSN
		case "env":
			cfg.Env = f.cfg.Env
		case "shutdown-timeout":
			cfg.ShutdownTimeout = f.cfg.ShutdownTimeout
		case "log-level":
			cfg.LogLevel = f.cfg.LogLevel
		case "log-format":
			cfg.LogFormat = f.cfg.LogFormat
		case "require-name":
			cfg.RequireName = f.cfg.RequireName
		}
	})
	return cfg, nil
}
