package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/csvpush/internal/adapters/httpendpoint"
	"github.com/bnema/csvpush/internal/domain"
	"github.com/bnema/csvpush/internal/ports"
	"go.uber.org/zap"
)

const (
	authenticateOp        = "authenticate"
	maxOAuthResponseBytes = 1 << 20
)

// PasswordGrantAdapter exchanges resource-owner credentials for a token with
// a single form-encoded POST. It never retries.
type PasswordGrantAdapter struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
	// RequestTimeout bounds the request when positive. Zero leaves the call
	// unbounded unless ctx carries a deadline.
	RequestTimeout time.Duration
}

var _ ports.Authenticator = PasswordGrantAdapter{}

func (a PasswordGrantAdapter) Authenticate(ctx context.Context, tokenURL string, creds domain.Credentials) (domain.TokenResponse, error) {
	logger := a.logger().With(zap.String("url", tokenURL))
	creds = creds.WithDefaults()

	values := url.Values{}
	values.Set("username", creds.Username)
	values.Set("password", creds.Password)
	values.Set("client_id", creds.ClientID)
	values.Set("grant_type", creds.GrantType)

	logger.Info("attempt to authenticate", zap.String("user", creds.Username))

	endpoint, err := httpendpoint.Parse("token", tokenURL)
	if err != nil {
		logger.Error("invalid token endpoint", zap.Error(err))
		return nil, &domain.TransportError{Op: authenticateOp, Err: err}
	}

	requestCtx, cancel := a.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		logger.Error("create token request", zap.Error(err))
		return nil, &domain.TransportError{Op: authenticateOp, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient().Do(req)
	if err != nil {
		logger.Error("request error during authentication", zap.Error(err))
		return nil, &domain.TransportError{Op: authenticateOp, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxOAuthResponseBytes))
	if err != nil {
		logger.Error("read token response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &domain.TransportError{Op: authenticateOp, Err: fmt.Errorf("read token response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := classifyTokenStatus(resp.StatusCode, string(body))
		logger.Error(statusErr.Error(), zap.Int("status", resp.StatusCode))
		return nil, statusErr
	}

	token, err := decodeTokenResponse(body)
	if err != nil || token == nil {
		if err == nil {
			err = errors.New("token response is not a JSON object")
		}
		logger.Error("decode token response", zap.Error(err))
		return nil, &domain.TransportError{Op: authenticateOp, Err: fmt.Errorf("decode token response: %w", err)}
	}

	logger.Info("authentication complete")
	return token, nil
}

// decodeTokenResponse keeps numbers as json.Number so large integers pass
// through unchanged.
func decodeTokenResponse(body []byte) (domain.TokenResponse, error) {
	var token domain.TokenResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&token); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after token response")
	}
	return token, nil
}

func classifyTokenStatus(statusCode int, body string) *domain.StatusError {
	kind := domain.ErrRequest
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		kind = domain.ErrAuthentication
	}

	return &domain.StatusError{Kind: kind, Op: authenticateOp, StatusCode: statusCode, Body: body}
}

func (a PasswordGrantAdapter) httpClient() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

func (a PasswordGrantAdapter) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func (a PasswordGrantAdapter) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || a.RequestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, a.RequestTimeout)
}
