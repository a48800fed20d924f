package testutil

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveKey matches query, form and JSON keys whose values must not be
// committed with a recording.
var sensitiveKey = regexp.MustCompile(`(?i)passw(or)?d|clave|contrase|secret|token|session|sess_|auth|jwt|bearer|api_?key|credential|access_key|private_key|cyberark`)

// jsonField captures a JSON key and its scalar value.
var jsonField = regexp.MustCompile(`("([^"]+)")\s*:\s*("[^"]*"|[^",}\]\s]+)`)

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-auth-token":        true,
	"x-api-key":           true,
	"x-access-token":      true,
	"x-session-id":        true,
	"x-csrf-token":        true,
	"x-xsrf-token":        true,
	"proxy-authorization": true,
}

// SanitizeHAR returns a copy of har with credentials, session material and
// sensitive fields replaced by [REDACTED].
func SanitizeHAR(har *HARLog) *HARLog {
	out := &HARLog{Entries: make([]HAREntry, len(har.Entries))}
	for i, e := range har.Entries {
		out.Entries[i] = HAREntry{
			Request: HARRequest{
				Method:  e.Request.Method,
				URL:     sanitizeURL(e.Request.URL),
				Headers: sanitizeHeaders(e.Request.Headers),
				Body:    sanitizeBody(e.Request.Body),
			},
			Response: HARResponse{
				Status:  e.Response.Status,
				Headers: sanitizeHeaders(e.Response.Headers),
				Content: HARContent{
					MimeType: e.Response.Content.MimeType,
					Text:     sanitizeBody(e.Response.Content.Text),
					Encoding: e.Response.Content.Encoding,
					Size:     e.Response.Content.Size,
				},
			},
		}
	}
	return out
}

func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}

	q := u.Query()
	for key := range q {
		if sensitiveKey.MatchString(key) {
			q.Set(key, redacted)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func sanitizeHeaders(headers []HARHeader) []HARHeader {
	if headers == nil {
		return nil
	}
	out := make([]HARHeader, len(headers))
	for i, h := range headers {
		out[i] = h
		if sensitiveHeaders[strings.ToLower(h.Name)] || sensitiveKey.MatchString(h.Name) {
			out[i].Value = redacted
		}
	}
	return out
}

func sanitizeBody(body string) string {
	trimmed := strings.TrimSpace(body)
	switch {
	case trimmed == "":
		return body
	case strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
		return sanitizeJSON(body)
	case strings.Contains(body, "=") && !strings.ContainsAny(trimmed, "<>"):
		return sanitizeForm(body)
	}
	return body
}

func sanitizeForm(body string) string {
	values, err := url.ParseQuery(body)
	if err != nil {
		return body
	}
	for key := range values {
		if sensitiveKey.MatchString(key) {
			values.Set(key, redacted)
		}
	}
	return values.Encode()
}

func sanitizeJSON(body string) string {
	return jsonField.ReplaceAllStringFunc(body, func(field string) string {
		m := jsonField.FindStringSubmatch(field)
		if !sensitiveKey.MatchString(m[2]) {
			return field
		}
		return m[1] + `: "` + redacted + `"`
	})
}
