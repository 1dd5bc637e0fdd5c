package upload

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/bnema/csvpush/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const csvFixture = "name,score\nalpha,1\nbeta,2\n"

func writeCSV(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvFixture), 0o600))
	return path
}

func uploadRequest(path string) domain.UploadRequest {
	return domain.UploadRequest{Project: "proj1", Branch: "main", CommitHash: "deadbeef", FilePath: path}
}

func TestUploadSendsMultipartForm(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "proj1", r.FormValue("project"))
		assert.Equal(t, "main", r.FormValue("branch"))
		assert.Equal(t, "deadbeef", r.FormValue("commit"))
		assert.Equal(t, "deadbeef", r.FormValue("hash"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "report.csv", header.Filename)
		assert.Equal(t, "text/csv", header.Header.Get("Content-Type"))
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, csvFixture, string(content))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"run-42","rows":2}`))
	}))
	t.Cleanup(server.Close)

	adapter := MultipartAdapter{HTTPClient: server.Client()}

	resp, err := adapter.Upload(context.Background(), server.URL, "abc", uploadRequest(writeCSV(t)))
	require.NoError(t, err)
	assert.Equal(t, domain.UploadResponse{"id": "run-42", "rows": json.Number("2")}, resp)
}

func TestUploadKeepsLargeIntegersExact(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"batch_id":18446744073709551615}`))
	}))
	t.Cleanup(server.Close)

	resp, err := MultipartAdapter{HTTPClient: server.Client()}.Upload(context.Background(), server.URL, "abc", uploadRequest(writeCSV(t)))
	require.NoError(t, err)
	assert.Equal(t, domain.UploadResponse{"batch_id": json.Number("18446744073709551615")}, resp)
}

func TestUploadDuplicatesCommitHashIntoCommitAndHash(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, []string{"cafe1234"}, r.MultipartForm.Value["commit"])
		assert.Equal(t, []string{"cafe1234"}, r.MultipartForm.Value["hash"])
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	req := uploadRequest(writeCSV(t))
	req.CommitHash = "cafe1234"

	_, err := MultipartAdapter{HTTPClient: server.Client()}.Upload(context.Background(), server.URL, "abc", req)
	require.NoError(t, err)
}

func TestUploadFallsBackOnNonJSONSuccessBody(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("queued"))
		}))

		resp, err := MultipartAdapter{HTTPClient: server.Client()}.Upload(context.Background(), server.URL, "abc", uploadRequest(writeCSV(t)))
		server.Close()

		require.NoError(t, err, "status %d", status)
		assert.Equal(t, domain.UploadResponse{"status": "success", "response_text": "queued"}, resp)
	}
}

func TestUploadClassifiesStatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		wantKind    error
		notWantKind error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: domain.ErrAuthentication, notWantKind: domain.ErrRequest},
		{name: "forbidden", status: http.StatusForbidden, wantKind: domain.ErrAuthentication, notWantKind: domain.ErrRequest},
		{name: "payload too large", status: http.StatusRequestEntityTooLarge, wantKind: domain.ErrValidation, notWantKind: domain.ErrRequest},
		{name: "not found", status: http.StatusNotFound, wantKind: domain.ErrRequest, notWantKind: domain.ErrValidation},
		{name: "server error", status: http.StatusBadGateway, wantKind: domain.ErrRequest, notWantKind: domain.ErrAuthentication},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("rejected"))
			}))
			t.Cleanup(server.Close)

			_, err := MultipartAdapter{HTTPClient: server.Client()}.Upload(context.Background(), server.URL, "abc", uploadRequest(writeCSV(t)))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantKind)
			assert.NotErrorIs(t, err, tc.notWantKind)
			assert.Equal(t, tc.status, domain.StatusCode(err))
			assert.Contains(t, err.Error(), "rejected")
			assert.Equal(t, int32(1), calls.Load(), "no retries")
		})
	}
}

func TestUploadMissingFileMakesNoRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	missing := filepath.Join(t.TempDir(), "missing.csv")
	_, err := MultipartAdapter{HTTPClient: server.Client()}.Upload(context.Background(), server.URL, "abc", uploadRequest(missing))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)

	var fileErr *domain.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, missing, fileErr.Path)
	assert.Equal(t, int32(0), calls.Load())
}

func TestUploadReadFailureIsIOError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	// A directory passes the existence check but cannot be read as a file.
	dir := t.TempDir()
	_, err := MultipartAdapter{HTTPClient: server.Client()}.Upload(context.Background(), server.URL, "abc", uploadRequest(dir))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.NotErrorIs(t, err, domain.ErrFileNotFound)
	assert.Contains(t, err.Error(), dir)
	assert.Equal(t, int32(0), calls.Load())
}

func TestUploadWrapsTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	_, err := MultipartAdapter{}.Upload(context.Background(), endpoint, "abc", uploadRequest(writeCSV(t)))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRequest)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestUploadSkipsTLSVerificationWhenInsecure(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.WarnLevel)
	adapter := MultipartAdapter{InsecureSkipVerify: true, Logger: zap.New(core)}

	resp, err := adapter.Upload(context.Background(), server.URL, "abc", uploadRequest(writeCSV(t)))
	require.NoError(t, err)
	assert.Equal(t, domain.UploadResponse{"ok": true}, resp)
	assert.Equal(t, 1, logs.FilterMessage("tls certificate verification is disabled for upload").Len())
}

func TestUploadVerifiesTLSWhenSecure(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	_, err := MultipartAdapter{InsecureSkipVerify: false}.Upload(context.Background(), server.URL, "abc", uploadRequest(writeCSV(t)))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRequest)
}

func TestUploadLogsAttemptAndSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.InfoLevel)
	adapter := MultipartAdapter{HTTPClient: server.Client(), Logger: zap.New(core)}

	_, err := adapter.Upload(context.Background(), server.URL, "abc", uploadRequest(writeCSV(t)))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "attempt to send data", entries[0].Message)
	assert.Equal(t, "report.csv", entries[0].ContextMap()["file"])
	assert.Equal(t, "successfully sent project data", entries[1].Message)
	assert.Equal(t, "proj1", entries[1].ContextMap()["project"])
}
