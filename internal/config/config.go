// Package config loads csvpush settings from config.toml, a .env file,
// CSVPUSH_* environment variables and bound command flags, in viper's
// precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName  = "config"
	configType  = "toml"
	configDir   = ".csvpush"
	secretsDir  = "secrets"
	envPrefix   = "CSVPUSH"
	defaultEnvs = ".env"
)

const (
	KeyAuthURL            = "auth.url"
	KeyAuthUsername       = "auth.username"
	KeyAuthPassword       = "auth.password"
	KeyAuthPasswordSecret = "auth.password_secret"
	KeyAuthClientID       = "auth.client_id"
	KeyAuthGrantType      = "auth.grant_type"
	KeyUploadURL          = "upload.url"
	KeyUploadInsecure     = "upload.insecure_skip_verify"
	KeyHTTPTimeout        = "http.timeout"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
	KeySecretsDir         = "secrets.dir"
)

type Config struct {
	Auth    AuthConfig    `mapstructure:"auth"`
	Upload  UploadConfig  `mapstructure:"upload"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Secrets SecretsConfig `mapstructure:"secrets"`
	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type AuthConfig struct {
	URL            string `mapstructure:"url"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	PasswordSecret string `mapstructure:"password_secret"`
	ClientID       string `mapstructure:"client_id"`
	GrantType      string `mapstructure:"grant_type"`
}

type UploadConfig struct {
	URL                string `mapstructure:"url"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

type HTTPConfig struct {
	// Timeout of zero means requests are not bounded.
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SecretsConfig struct {
	Dir string `mapstructure:"dir"`
}

type Options struct {
	// ConfigFile overrides the search in ~/.csvpush; it must exist.
	ConfigFile string
	// EnvFile defaults to ".env" in the working directory; missing is fine.
	EnvFile string
	HomeDir string
}

// DefaultDir is the directory holding config.toml and the secrets store.
func DefaultDir(homeDir string) string {
	return filepath.Join(homeDir, configDir)
}

func DefaultPath(homeDir string) string {
	return filepath.Join(DefaultDir(homeDir), configName+"."+configType)
}

func Load(v *viper.Viper, opts Options) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir := opts.HomeDir
	if homeDir == "" {
		resolved, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		homeDir = resolved
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	setDefaults(v, homeDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(DefaultDir(homeDir))
		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.HTTP.Timeout < 0 {
		return Config{}, errors.New("http.timeout must not be negative")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault(KeyAuthURL, "")
	v.SetDefault(KeyAuthUsername, "")
	v.SetDefault(KeyAuthPassword, "")
	v.SetDefault(KeyAuthPasswordSecret, "")
	v.SetDefault(KeyAuthClientID, "")
	v.SetDefault(KeyAuthGrantType, "password")
	v.SetDefault(KeyUploadURL, "")
	v.SetDefault(KeyUploadInsecure, true)
	v.SetDefault(KeyHTTPTimeout, "0s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeySecretsDir, filepath.Join(DefaultDir(homeDir), secretsDir))
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvs
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}

func (c Config) ValidateAuth() error {
	var missing []string
	if strings.TrimSpace(c.Auth.URL) == "" {
		missing = append(missing, KeyAuthURL)
	}
	if strings.TrimSpace(c.Auth.Username) == "" {
		missing = append(missing, KeyAuthUsername)
	}
	if c.Auth.Password == "" && strings.TrimSpace(c.Auth.PasswordSecret) == "" {
		missing = append(missing, KeyAuthPassword+" or "+KeyAuthPasswordSecret)
	}
	if strings.TrimSpace(c.Auth.ClientID) == "" {
		missing = append(missing, KeyAuthClientID)
	}

	return missingKeys(missing)
}

func (c Config) ValidateUpload() error {
	if strings.TrimSpace(c.Upload.URL) == "" {
		return missingKeys([]string{KeyUploadURL})
	}
	return nil
}

func missingKeys(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return fmt.Errorf("missing configuration: %s", strings.Join(keys, ", "))
}
