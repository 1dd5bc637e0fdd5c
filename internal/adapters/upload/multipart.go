// Package upload posts CSV reports as multipart forms.
package upload

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/csvpush/internal/adapters/httpendpoint"
	"github.com/bnema/csvpush/internal/domain"
	"github.com/bnema/csvpush/internal/ports"
	"go.uber.org/zap"
)

const (
	uploadOp         = "upload"
	csvContentType   = "text/csv"
	fileFieldName    = "file"
	maxResponseBytes = 4 << 20
)

// MultipartAdapter sends one multipart POST per upload. It never retries.
type MultipartAdapter struct {
	// HTTPClient overrides the client built from InsecureSkipVerify.
	HTTPClient *http.Client
	Logger     *zap.Logger
	// InsecureSkipVerify disables TLS certificate verification for uploads.
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

var _ ports.Uploader = MultipartAdapter{}

func (a MultipartAdapter) Upload(ctx context.Context, endpoint string, token string, req domain.UploadRequest) (domain.UploadResponse, error) {
	logger := a.logger().With(
		zap.String("url", endpoint),
		zap.String("project", req.Project),
		zap.String("branch", req.Branch),
	)

	if err := req.Validate(); err != nil {
		logger.Error("invalid upload request", zap.Error(err))
		return nil, &domain.FileError{Kind: domain.ErrFileNotFound, Path: req.FilePath, Err: err}
	}
	if _, err := os.Stat(req.FilePath); err != nil {
		fileErr := statError(req.FilePath, err)
		logger.Error(fileErr.Error())
		return nil, fileErr
	}

	if _, err := httpendpoint.Parse("upload", endpoint); err != nil {
		logger.Error("invalid upload endpoint", zap.Error(err))
		return nil, &domain.TransportError{Op: uploadOp, Err: err}
	}

	resp, err := a.send(ctx, logger, endpoint, token, req)
	if err != nil {
		return nil, err
	}

	switch resp.statusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		logger.Info("successfully sent project data", zap.Int("status", resp.statusCode))
		return decodeUploadResponse(resp.body), nil
	}

	statusErr := classifyUploadStatus(resp.statusCode, string(resp.body))
	logger.Error(statusErr.Error(), zap.Int("status", resp.statusCode))
	return nil, statusErr
}

type rawResponse struct {
	statusCode int
	body       []byte
}

// send keeps the CSV open only while the request is built and sent.
func (a MultipartAdapter) send(ctx context.Context, logger *zap.Logger, endpoint string, token string, req domain.UploadRequest) (rawResponse, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		fileErr := statError(req.FilePath, err)
		logger.Error(fileErr.Error())
		return rawResponse{}, fileErr
	}
	defer func() { _ = file.Close() }()

	body, contentType, err := buildForm(req, file)
	if err != nil {
		fileErr := &domain.FileError{Kind: domain.ErrIO, Path: req.FilePath, Err: err}
		logger.Error(fileErr.Error())
		return rawResponse{}, fileErr
	}

	requestCtx, cancel := a.requestContext(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, body)
	if err != nil {
		logger.Error("create upload request", zap.Error(err))
		return rawResponse{}, &domain.TransportError{Op: uploadOp, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", contentType)

	if a.HTTPClient == nil && a.InsecureSkipVerify && strings.HasPrefix(endpoint, "https") {
		logger.Warn("tls certificate verification is disabled for upload")
	}
	logger.Info("attempt to send data", zap.String("file", filepath.Base(req.FilePath)))

	resp, err := a.httpClient().Do(httpReq)
	if err != nil {
		logger.Error("request error during file upload", zap.Error(err))
		return rawResponse{}, &domain.TransportError{Op: uploadOp, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.Error("read upload response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return rawResponse{}, &domain.TransportError{Op: uploadOp, Err: fmt.Errorf("read upload response: %w", err)}
	}

	return rawResponse{statusCode: resp.StatusCode, body: respBody}, nil
}

// buildForm writes the text fields then the CSV part. commit and hash both
// carry the commit hash; the receiving API reads either name.
func buildForm(req domain.UploadRequest, csv io.Reader) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := []struct{ name, value string }{
		{"project", req.Project},
		{"branch", req.Branch},
		{"commit", req.CommitHash},
		{"hash", req.CommitHash},
	}
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", field.name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileFieldName, filepath.Base(req.FilePath)))
	header.Set("Content-Type", csvContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return nil, "", fmt.Errorf("read csv: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func decodeUploadResponse(body []byte) domain.UploadResponse {
	var payload domain.UploadResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || payload == nil || dec.More() {
		return domain.FallbackUploadResponse(string(body))
	}
	return payload
}

func classifyUploadStatus(statusCode int, body string) *domain.StatusError {
	kind := domain.ErrRequest
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.ErrAuthentication
	case http.StatusRequestEntityTooLarge:
		kind = domain.ErrValidation
	}

	return &domain.StatusError{Kind: kind, Op: uploadOp, StatusCode: statusCode, Body: body}
}

func statError(path string, err error) *domain.FileError {
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.FileError{Kind: domain.ErrFileNotFound, Path: path, Err: err}
	}
	return &domain.FileError{Kind: domain.ErrIO, Path: path, Err: err}
}

func (a MultipartAdapter) httpClient() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	if !a.InsecureSkipVerify {
		return http.DefaultClient
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via upload.insecure_skip_verify
	return &http.Client{Transport: transport}
}

func (a MultipartAdapter) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func (a MultipartAdapter) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || a.RequestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, a.RequestTimeout)
}
