package ports

import (
	"context"

	"github.com/bnema/csvpush/internal/domain"
)

type Uploader interface {
	Upload(ctx context.Context, url string, token string, req domain.UploadRequest) (domain.UploadResponse, error)
}
