// Package result renders publish results for terminals and scripts.
package result

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bnema/csvpush/internal/application"
	"github.com/bnema/csvpush/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	// InsecureTLS adds a warning line that certificate checks were skipped.
	InsecureTLS bool
}

func Render(result application.PublishResult, opts RenderOptions) string {
	return renderView(result, opts, newStyles())
}

// RenderJSON emits the upload response, plus the token metadata without the
// token strings themselves.
func RenderJSON(result application.PublishResult) (string, error) {
	payload := struct {
		Project  string                `json:"project"`
		Branch   string                `json:"branch"`
		Commit   string                `json:"commit"`
		File     string                `json:"file"`
		Token    map[string]any        `json:"token,omitempty"`
		Response domain.UploadResponse `json:"response"`
	}{
		Project:  result.Request.Project,
		Branch:   result.Request.Branch,
		Commit:   result.Request.CommitHash,
		File:     result.Request.FilePath,
		Token:    redactToken(result.Token),
		Response: result.Response,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode publish result: %w", err)
	}
	return string(data), nil
}

func renderView(result application.PublishResult, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Upload complete"),
		field(s, "project", result.Request.Project),
		field(s, "branch", result.Request.Branch),
		field(s, "commit", result.Request.CommitHash),
		field(s, "file", filepath.Base(result.Request.FilePath)),
		field(s, "token", tokenLabel(result.Token)),
	}
	if opts.InsecureTLS {
		lines = append(lines, s.warning.Render("tls verification was disabled for this upload"))
	}

	lines = append(lines, s.section.Render(renderResponse(result.Response, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderResponse(resp domain.UploadResponse, s styles) string {
	if resp.IsFallback() {
		text, _ := resp["response_text"].(string)
		if strings.TrimSpace(text) == "" {
			return s.faint.Render("response: (empty body)")
		}
		return field(s, "response", text)
	}
	if len(resp) == 0 {
		return s.faint.Render("response: {}")
	}

	keys := make([]string, 0, len(resp))
	for key := range resp {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := []string{s.key.Render("response:")}
	for _, key := range keys {
		lines = append(lines, "  "+field(s, key, formatValue(resp[key])))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(s styles, key, value string) string {
	return s.key.Render(key+":") + " " + s.value.Render(value)
}

func tokenLabel(token domain.TokenResponse) string {
	if token == nil {
		return "pre-issued"
	}
	if expiresIn, ok := expiresInSeconds(token["expires_in"]); ok && expiresIn > 0 {
		return fmt.Sprintf("issued (expires in %.0fs)", expiresIn)
	}
	return "issued"
}

func expiresInSeconds(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatValue(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}

var secretTokenFields = map[string]struct{}{
	"access_token":  {},
	"refresh_token": {},
	"id_token":      {},
}

func redactToken(token domain.TokenResponse) map[string]any {
	if token == nil {
		return nil
	}

	redacted := make(map[string]any, len(token))
	for key, value := range token {
		if _, secret := secretTokenFields[key]; secret {
			continue
		}
		redacted[key] = value
	}
	return redacted
}
