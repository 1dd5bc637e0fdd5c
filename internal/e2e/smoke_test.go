package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runCSVPush(t, binaryPath, home, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.NotEmpty(t, strings.TrimSpace(stdout))

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))
		_, _ = w.Write([]byte(`{"access_token":"tok-e2e","expires_in":60}`))
	})
	mux.HandleFunc("/reports", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-e2e", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "smoke", r.FormValue("project"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"run-7"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	csvPath := writeCSVFixture(t, home)

	_, stderr, err = runCSVPush(t, binaryPath, home,
		"secret", "set",
		"--key", "auth-password",
		"--value", "s3cret",
	)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err = runCSVPush(t, binaryPath, home,
		"upload",
		"--auth-url", server.URL+"/oauth/token",
		"--username", "alice",
		"--password-secret", "auth-password",
		"--client-id", "cli",
		"--upload-url", server.URL+"/reports",
		"--project", "smoke",
		"--branch", "main",
		"--commit", "abc123",
		"--file", csvPath,
		"--json",
	)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "run-7")
	assert.NotContains(t, stdout, "tok-e2e")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "csvpush-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/csvpush")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build csvpush binary: %s", string(output))
	return binaryPath
}

func runCSVPush(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = home
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writeCSVFixture(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "smoke.csv")
	require.NoError(t, os.WriteFile(path, []byte("metric,value\nlatency,12\n"), 0o600))
	return path
}
