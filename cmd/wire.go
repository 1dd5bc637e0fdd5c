package cmd

import (
	"fmt"
	"os"

	authadapter "github.com/bnema/csvpush/internal/adapters/auth"
	filestore "github.com/bnema/csvpush/internal/adapters/secrets/file"
	uploadadapter "github.com/bnema/csvpush/internal/adapters/upload"
	"github.com/bnema/csvpush/internal/application"
	"github.com/bnema/csvpush/internal/config"
	"github.com/bnema/csvpush/internal/logging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// flagKeys maps command flags onto config keys. Only flags present on the
// executing command are bound.
var flagKeys = map[string]string{
	"auth-url":             config.KeyAuthURL,
	"username":             config.KeyAuthUsername,
	"password-secret":      config.KeyAuthPasswordSecret,
	"client-id":            config.KeyAuthClientID,
	"grant-type":           config.KeyAuthGrantType,
	"upload-url":           config.KeyUploadURL,
	"insecure-skip-verify": config.KeyUploadInsecure,
	"timeout":              config.KeyHTTPTimeout,
	"log-level":            config.KeyLogLevel,
	"log-format":           config.KeyLogFormat,
	"secrets-dir":          config.KeySecretsDir,
}

type app struct {
	opts    config.Options
	cfg     config.Config
	logger  *zap.Logger
	level   zap.AtomicLevel
	secrets *filestore.Store
	service *application.Service
}

func (a *app) load(cmd *cobra.Command) error {
	v := viper.New()
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}

	cfg, err := config.Load(v, a.opts)
	if err != nil {
		return err
	}

	logger, level, err := logging.NewLeveled(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}
	logger = logger.With(zap.String("run_id", uuid.NewString()))
	if cfg.File != "" {
		logger.Debug("config loaded", zap.String("file", cfg.File))
	}

	secrets := filestore.NewStore(cfg.Secrets.Dir)

	a.cfg = cfg
	a.logger = logger
	a.level = level
	a.secrets = secrets
	a.service = application.NewService(
		authadapter.PasswordGrantAdapter{
			Logger:         logger.Named("auth"),
			RequestTimeout: cfg.HTTP.Timeout,
		},
		uploadadapter.MultipartAdapter{
			Logger:             logger.Named("upload"),
			InsecureSkipVerify: cfg.Upload.InsecureSkipVerify,
			RequestTimeout:     cfg.HTTP.Timeout,
		},
		secrets,
		logger,
	)

	return nil
}

func (a *app) close() {
	logging.Sync(a.logger)
}

func (a *app) homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return home, nil
}

func addAuthFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("auth-url", "", "OAuth2 token endpoint URL")
	flags.String("username", "", "Username for the password grant")
	flags.String("password-secret", "", "Secret-store key holding the password (password itself: CSVPUSH_AUTH_PASSWORD or config)")
	flags.String("client-id", "", "OAuth2 client ID")
	flags.String("grant-type", "password", "OAuth2 grant type")
	flags.Duration("timeout", 0, "Per-request timeout (0 disables)")
}
