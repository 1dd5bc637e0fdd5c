package httpendpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsHTTPAndHTTPS(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"http://api.local/reports", "https://auth.example/oauth/token"} {
		parsed, err := Parse("upload", raw)
		require.NoError(t, err)
		assert.Equal(t, raw, parsed)
	}
}

func TestParseRejectsInvalidURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "empty", raw: "  ", wantErr: "token url is required"},
		{name: "scheme", raw: "ftp://auth.example/token", wantErr: "token url must use http or https"},
		{name: "host", raw: "https:///token", wantErr: "token url host is required"},
		{name: "malformed", raw: "http://[::1", wantErr: "parse token url"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse("token", tc.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
