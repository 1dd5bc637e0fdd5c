package application

import "github.com/bnema/csvpush/internal/domain"

type TokenQuery struct {
	URL         string
	Credentials domain.Credentials
	// PasswordSecret names a secret-store key read when Credentials.Password
	// is empty.
	PasswordSecret string
}

type PublishCommand struct {
	Auth TokenQuery
	// AccessToken skips authentication when set.
	AccessToken string
	UploadURL   string
	Upload      domain.UploadRequest
}
