// Package testutil records and replays portal traffic for the scraper
// integration tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
)

// HARLog is the trimmed HAR shape stored under testdata/recordings.
type HARLog struct {
	Entries []HAREntry `json:"entries"`
}

type HAREntry struct {
	Request  HARRequest  `json:"request"`
	Response HARResponse `json:"response"`
}

type HARRequest struct {
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Headers []HARHeader `json:"headers,omitempty"`
	Body    string      `json:"body,omitempty"`
	// PostData is only set by DevTools exports; LoadHAR folds it into Body.
	PostData *HARPostData `json:"postData,omitempty"`
}

type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type HARResponse struct {
	Status  int         `json:"status"`
	Headers []HARHeader `json:"headers,omitempty"`
	Content HARContent  `json:"content"`
}

type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type HARContent struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	Encoding string `json:"encoding,omitempty"` // "base64" for binary bodies
	Size     int    `json:"size,omitempty"`
}

// devtoolsHAR is the HAR 1.2 envelope written by Chrome DevTools.
type devtoolsHAR struct {
	Log HARLog `json:"log"`
}

// LoadHAR reads either a DevTools HAR 1.2 export or the trimmed format.
func LoadHAR(path string) (*HARLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read HAR file: %w", err)
	}

	var devtools devtoolsHAR
	if err := json.Unmarshal(data, &devtools); err == nil && len(devtools.Log.Entries) > 0 {
		return normalize(&devtools.Log), nil
	}

	var har HARLog
	if err := json.Unmarshal(data, &har); err != nil {
		return nil, fmt.Errorf("parse HAR JSON: %w", err)
	}
	return normalize(&har), nil
}

func normalize(har *HARLog) *HARLog {
	for i := range har.Entries {
		req := &har.Entries[i].Request
		if req.PostData != nil {
			if req.Body == "" {
				req.Body = req.PostData.Text
			}
			req.PostData = nil
		}
	}
	return har
}

// SaveHAR writes har as indented JSON.
func SaveHAR(path string, har *HARLog) error {
	data, err := json.MarshalIndent(har, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal HAR: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write HAR file: %w", err)
	}
	return nil
}

// MustLoadHAR loads a recording or fails the test.
func MustLoadHAR(t *testing.T, path string) *HARLog {
	t.Helper()

	har, err := LoadHAR(path)
	if err != nil {
		t.Fatalf("failed to load HAR file %s: %v", path, err)
	}
	return har
}
