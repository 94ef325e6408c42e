package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json / console
}

// SchedulerConfig controls the periodic menu availability rebuild.
type SchedulerConfig struct {
	RecalcCron string `mapstructure:"recalc_cron"` // empty disables the job
	Timezone   string `mapstructure:"timezone"`
}

type AppSubConfig struct {
	PageSize    int   `mapstructure:"page_size"`
	UploadMaxMB int64 `mapstructure:"upload_max_mb"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	App       AppSubConfig    `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/sidaya.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "sidaya")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("scheduler.recalc_cron", "0 3 * * *")
	v.SetDefault("scheduler.timezone", "Asia/Jakarta")
	v.SetDefault("app.page_size", 50)
	v.SetDefault("app.upload_max_mb", 10)
}

// Load loads configuration from the given file path (e.g. "config.yaml").
// A missing file is not an error: defaults plus SIDAYA_* environment
// variables (optionally from a .env file) are used instead.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = load(path)
	})
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. SIDAYA_SERVER_PORT=9000
	v.SetEnvPrefix("SIDAYA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path must be provided")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be provided (SIDAYA_JWT_SECRET)")
	}
	return nil
}
