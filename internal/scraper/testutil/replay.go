package testutil

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const maxRedirects = 10

// Replayer answers hijacked browser requests from a recording.
type Replayer struct {
	byURL  map[string]*HAREntry
	byPath map[string]*HAREntry // first entry per URL without query

	passthrough bool
	logger      *zap.Logger

	served atomic.Int64
	missed atomic.Int64
}

type ReplayerOption func(*Replayer)

// WithPassthrough sends unmatched requests to the network instead of
// answering 404.
func WithPassthrough(enabled bool) ReplayerOption {
	return func(r *Replayer) {
		r.passthrough = enabled
	}
}

func WithLogger(logger *zap.Logger) ReplayerOption {
	return func(r *Replayer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewReplayer(har *HARLog, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		byURL:  make(map[string]*HAREntry),
		byPath: make(map[string]*HAREntry),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i := range har.Entries {
		entry := &har.Entries[i]
		r.byURL[entry.Request.URL] = entry
		if key, ok := pathKey(entry.Request.URL); ok {
			if _, exists := r.byPath[key]; !exists {
				r.byPath[key] = entry
			}
		}
	}
	return r
}

func pathKey(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return u.Scheme + "://" + u.Host + u.Path, true
}

func (r *Replayer) find(raw string) (*HAREntry, bool) {
	if e, ok := r.byURL[raw]; ok {
		return e, true
	}
	if key, ok := pathKey(raw); ok {
		e, found := r.byPath[key]
		return e, found
	}
	return nil, false
}

// Middleware is the hijack handler to install with
// router.Add("*", "", replayer.Middleware()).
func (r *Replayer) Middleware() func(*rod.Hijack) {
	return func(h *rod.Hijack) {
		reqURL := h.Request.URL().String()

		entry, ok := r.find(reqURL)
		if !ok {
			r.missed.Add(1)
			r.logger.Debug("no recording for request", zap.String("url", reqURL))
			if r.passthrough {
				_ = h.LoadResponse(http.DefaultClient, true)
				return
			}
			r.respond(h, http.StatusNotFound, "application/json", []byte(`{"error": "no recording found for URL"}`), nil)
			return
		}

		r.served.Add(1)
		entry = r.followRedirects(entry)
		r.logger.Debug("replaying recording",
			zap.String("url", reqURL), zap.Int("status", entry.Response.Status))
		r.respond(h, entry.Response.Status, entry.Response.Content.MimeType, decodeBody(entry.Response.Content), entry.Response.Headers)
	}
}

func decodeBody(c HARContent) []byte {
	if c.Encoding == "base64" {
		if body, err := base64.StdEncoding.DecodeString(c.Text); err == nil {
			return body
		}
	}
	return []byte(c.Text)
}

func (r *Replayer) respond(h *rod.Hijack, status int, mimeType string, body []byte, headers []HARHeader) {
	out := make([]*proto.FetchHeaderEntry, 0, len(headers)+1)
	hasType := false
	for _, hd := range headers {
		switch strings.ToLower(hd.Name) {
		case "content-encoding", "content-length", "location":
			continue
		case "content-type":
			hasType = true
		}
		out = append(out, &proto.FetchHeaderEntry{Name: hd.Name, Value: hd.Value})
	}
	if !hasType && mimeType != "" {
		out = append(out, &proto.FetchHeaderEntry{Name: "Content-Type", Value: mimeType})
	}

	payload := h.Response.Payload()
	payload.ResponseCode = status
	payload.ResponseHeaders = out
	payload.Body = body
}

// followRedirects resolves a recorded 3xx to the recorded target, if the
// target is in the recording.
func (r *Replayer) followRedirects(entry *HAREntry) *HAREntry {
	current := entry
	for range maxRedirects {
		status := current.Response.Status
		if status < 300 || status >= 400 {
			return current
		}

		location := header(current.Response.Headers, "location")
		if location == "" {
			return current
		}
		target, ok := r.find(location)
		if !ok {
			r.logger.Debug("redirect target not recorded", zap.String("location", location))
			return current
		}
		current = target
	}
	return current
}

func header(headers []HARHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// ReplayStats counts the index size and traffic served so far.
type ReplayStats struct {
	ExactMatches int
	PathMatches  int
	Served       int64
	Missed       int64
}

func (r *Replayer) Stats() ReplayStats {
	return ReplayStats{
		ExactMatches: len(r.byURL),
		PathMatches:  len(r.byPath),
		Served:       r.served.Load(),
		Missed:       r.missed.Load(),
	}
}
