// Package httpendpoint validates the endpoint URLs the HTTP adapters call.
package httpendpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Parse requires an absolute http or https URL. name labels the endpoint in
// error messages, e.g. "token" or "upload".
func Parse(name, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%s url is required", name)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %s url: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%s url must use http or https", name)
	}
	if parsed.Host == "" {
		return "", errors.New(name + " url host is required")
	}
	return parsed.String(), nil
}
