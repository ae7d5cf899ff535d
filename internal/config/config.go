// Package config handles the XDG configuration directory, file paths and the
// settings file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"vtodo/internal/logging"
	"vtodo/internal/persist"
)

const (
	// AppName is the application directory name.
	AppName = "vtodo"

	// EnvPrefix prefixes environment overrides, e.g. VTODO_STORAGE_DRIVER.
	EnvPrefix = "VTODO"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings is read from config.{yaml,toml,json} in Dir plus VTODO_ env vars.
	Settings Settings
}

// Settings is the contents of the settings file.
type Settings struct {
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Client  ClientConfig  `mapstructure:"client"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is one of file, sqlite, mysql, redis, memory.
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ServerConfig configures the remote procedure front-ends.
type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	AMQP AMQPConfig `mapstructure:"amqp"`
}

// HTTPConfig configures the HTTP procedure endpoint.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	// Tokens are the accepted bearer tokens. Empty disables auth.
	Tokens         []string `mapstructure:"tokens"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
}

// AMQPConfig configures the RabbitMQ request/reply endpoint.
type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClientConfig is used by the call command.
type ClientConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/vtodo or $HOME/.config/vtodo.
// Settings are loaded from that directory.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	settings, err := LoadSettings(dir)
	if err != nil {
		return nil, err
	}
	return &Config{Dir: dir, Settings: settings}, nil
}

// LoadSettings reads config.{yaml,toml,json} from dir. A missing file is not an
// error; defaults and env overrides still apply.
func LoadSettings(dir string) (Settings, error) {
	v := viper.New()

	v.SetDefault("storage.driver", persist.DriverFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "vtodo:")
	v.SetDefault("server.http.addr", "127.0.0.1:8787")
	v.SetDefault("server.http.tokens", []string{})
	v.SetDefault("server.http.rate_limit_rps", 20.0)
	v.SetDefault("server.http.rate_limit_burst", 40)
	v.SetDefault("server.amqp.url", "")
	v.SetDefault("server.amqp.queue", "vtodo.rpc")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("client.url", "http://127.0.0.1:8787")
	v.SetDefault("client.token", "")

	v.AddConfigPath(dir)
	v.SetConfigName("config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultDataDir returns XDG_DATA_HOME/vtodo or $HOME/.local/share/vtodo.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// StorageOptions resolves the storage settings into backend options. An empty
// path means lists.json (file) or vtodo.db (sqlite) in the data directory.
func (c *Config) StorageOptions() persist.Options {
	s := c.Settings.Storage
	path := s.Path
	if path == "" {
		switch strings.ToLower(s.Driver) {
		case persist.DriverSQLite, "sqlite3":
			path = filepath.Join(DefaultDataDir(), "vtodo.db")
		default:
			path = filepath.Join(DefaultDataDir(), "lists.json")
		}
	}
	return persist.Options{
		Driver: s.Driver,
		Path:   path,
		DSN:    s.DSN,
		Redis: persist.RedisConfig{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
			Prefix:   s.Redis.Prefix,
		},
	}
}

// Logger builds the process logger. --debug forces debug level.
func (c *Config) Logger() *slog.Logger {
	level := c.Settings.Log.Level
	if c.Debug {
		level = "debug"
	}
	return logging.New(logging.Config{Level: level, Format: c.Settings.Log.Format})
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
