package domain

import (
	"errors"
	"strings"
)

type UploadRequest struct {
	Project    string
	Branch     string
	CommitHash string
	FilePath   string
}

func (r UploadRequest) Validate() error {
	if strings.TrimSpace(r.FilePath) == "" {
		return errors.New("csv file path is required")
	}
	return nil
}

// UploadResponse is the API's JSON object, or FallbackUploadResponse when
// the body was not a JSON object.
type UploadResponse map[string]any

func FallbackUploadResponse(body string) UploadResponse {
	return UploadResponse{
		"status":        "success",
		"response_text": body,
	}
}

// IsFallback reports whether the response was synthesized from a
// non-JSON body.
func (r UploadResponse) IsFallback() bool {
	if len(r) != 2 {
		return false
	}
	status, _ := r["status"].(string)
	_, hasText := r["response_text"].(string)
	return status == "success" && hasText
}
