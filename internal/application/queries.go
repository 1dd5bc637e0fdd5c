package application

import "github.com/bnema/csvpush/internal/domain"

type PublishResult struct {
	// Token is nil when the command carried a pre-issued access token.
	Token    domain.TokenResponse
	Response domain.UploadResponse
	Request  domain.UploadRequest
}
