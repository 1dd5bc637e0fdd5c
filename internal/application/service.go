package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/csvpush/internal/domain"
	"github.com/bnema/csvpush/internal/ports"
	"go.uber.org/zap"
)

var (
	ErrMissingTokenURL  = errors.New("token url is required")
	ErrMissingUploadURL = errors.New("upload url is required")
	ErrNoSecretStore    = errors.New("password secret requested but no secret store is configured")
)

type Service struct {
	authenticator ports.Authenticator
	uploader      ports.Uploader
	secrets       ports.SecretStore
	logger        *zap.Logger
}

func NewService(authenticator ports.Authenticator, uploader ports.Uploader, secrets ports.SecretStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		authenticator: authenticator,
		uploader:      uploader,
		secrets:       secrets,
		logger:        logger,
	}
}

func (s *Service) Token(ctx context.Context, query TokenQuery) (domain.TokenResponse, error) {
	if strings.TrimSpace(query.URL) == "" {
		return nil, ErrMissingTokenURL
	}

	creds, err := s.resolveCredentials(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.authenticator.Authenticate(ctx, query.URL, creds)
}

// Publish authenticates unless cmd carries an access token, then uploads.
// Adapter errors are returned unwrapped so callers can match them with
// errors.Is and errors.As.
func (s *Service) Publish(ctx context.Context, cmd PublishCommand) (PublishResult, error) {
	if strings.TrimSpace(cmd.UploadURL) == "" {
		return PublishResult{}, ErrMissingUploadURL
	}

	result := PublishResult{Request: cmd.Upload}
	accessToken := strings.TrimSpace(cmd.AccessToken)
	if accessToken == "" {
		token, err := s.Token(ctx, cmd.Auth)
		if err != nil {
			return PublishResult{}, err
		}
		accessToken, err = token.AccessToken()
		if err != nil {
			s.logger.Error("token response rejected", zap.Error(err))
			return PublishResult{}, err
		}
		result.Token = token
	} else {
		s.logger.Debug("using pre-issued access token")
	}

	response, err := s.uploader.Upload(ctx, cmd.UploadURL, accessToken, cmd.Upload)
	if err != nil {
		return PublishResult{}, err
	}
	result.Response = response

	return result, nil
}

func (s *Service) resolveCredentials(ctx context.Context, query TokenQuery) (domain.Credentials, error) {
	creds := query.Credentials.WithDefaults()
	if creds.Password != "" || strings.TrimSpace(query.PasswordSecret) == "" {
		return creds, nil
	}
	if s.secrets == nil {
		return domain.Credentials{}, ErrNoSecretStore
	}

	password, err := s.secrets.Get(ctx, query.PasswordSecret)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load password secret: %w", err)
	}
	creds.Password = password

	return creds, nil
}
