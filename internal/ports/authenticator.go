package ports

import (
	"context"

	"github.com/bnema/csvpush/internal/domain"
)

type Authenticator interface {
	Authenticate(ctx context.Context, url string, creds domain.Credentials) (domain.TokenResponse, error)
}
