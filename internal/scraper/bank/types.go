package bank

import "time"

type Session struct {
	ID       string
	App      AppCode
	URL      string
	OpenedAt time.Time
	// Internal: browser page reference (not exported)
	page any
}

// NewSession binds a page handle to a new session record.
func NewSession(id string, app AppCode, url string, page any) *Session {
	return &Session{
		ID:       id,
		App:      app,
		URL:      url,
		OpenedAt: time.Now(),
		page:     page,
	}
}

// Page returns the browser page the session was opened on.
func (s *Session) Page() any {
	return s.page
}
