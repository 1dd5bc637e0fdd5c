package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Auth    authSchema    `toml:"auth"`
	Upload  uploadSchema  `toml:"upload"`
	HTTP    httpSchema    `toml:"http"`
	Log     logSchema     `toml:"log"`
	Secrets secretsSchema `toml:"secrets"`
}

type authSchema struct {
	URL            string `toml:"url" comment:"OAuth2 token endpoint"`
	Username       string `toml:"username"`
	Password       string `toml:"password,omitempty"`
	PasswordSecret string `toml:"password_secret" comment:"key under secrets.dir holding the password"`
	ClientID       string `toml:"client_id"`
	GrantType      string `toml:"grant_type"`
}

type uploadSchema struct {
	URL                string `toml:"url" comment:"endpoint receiving the multipart CSV upload"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify" comment:"disable TLS certificate verification for uploads"`
}

type httpSchema struct {
	Timeout string `toml:"timeout" comment:"per-request timeout, 0s disables it"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format" comment:"console or json"`
}

type secretsSchema struct {
	Dir string `toml:"dir"`
}

// Template returns the settings written by `csvpush config init`.
func Template(homeDir string) Config {
	return Config{
		Auth: AuthConfig{
			URL:            "https://auth.example.com/oauth/token",
			Username:       "",
			PasswordSecret: "auth/password",
			ClientID:       "",
			GrantType:      "password",
		},
		Upload:  UploadConfig{URL: "https://api.example.com/reports", InsecureSkipVerify: true},
		Log:     LogConfig{Level: "info", Format: "console"},
		Secrets: SecretsConfig{Dir: filepath.Join(DefaultDir(homeDir), secretsDir)},
	}
}

func Encode(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config file: %w", err)
	}
	return data, nil
}

// Write stores cfg at path via a temp file and rename. An existing file is
// only replaced when force is set.
func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Auth: authSchema{
			URL:            cfg.Auth.URL,
			Username:       cfg.Auth.Username,
			Password:       cfg.Auth.Password,
			PasswordSecret: cfg.Auth.PasswordSecret,
			ClientID:       cfg.Auth.ClientID,
			GrantType:      cfg.Auth.GrantType,
		},
		Upload: uploadSchema{
			URL:                cfg.Upload.URL,
			InsecureSkipVerify: cfg.Upload.InsecureSkipVerify,
		},
		HTTP:    httpSchema{Timeout: cfg.HTTP.Timeout.String()},
		Log:     logSchema{Level: cfg.Log.Level, Format: cfg.Log.Format},
		Secrets: secretsSchema{Dir: cfg.Secrets.Dir},
	}
}
