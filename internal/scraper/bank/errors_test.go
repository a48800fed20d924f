package bank

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScraperError(t *testing.T) {
	tests := []struct {
		name string
		err  *ScraperError
		want string
	}{
		{
			name: "with details",
			err:  &ScraperError{App: AppBPM, Operation: "Search", Cause: ErrTimeout, Details: "reference input"},
			want: "[BPM] Search failed: operation timed out - reference input",
		},
		{
			name: "without details",
			err:  &ScraperError{App: AppBPM, Operation: "Open", Cause: ErrNavigationFailed},
			want: "[BPM] Open failed: navigation failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestScraperError_Unwrap(t *testing.T) {
	var err error = &ScraperError{App: AppBPM, Operation: "Open", Cause: ErrNavigationFailed}

	assert.ErrorIs(t, err, ErrNavigationFailed)

	var scraperErr *ScraperError
	assert.True(t, errors.As(err, &scraperErr))
	assert.Equal(t, AppBPM, scraperErr.App)
}

func TestNewSession(t *testing.T) {
	page := struct{ name string }{"grid"}
	s := NewSession("abc", AppBPM, "https://bpm.example", page)

	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, AppBPM, s.App)
	assert.Equal(t, page, s.Page())
	assert.False(t, s.OpenedAt.IsZero())
}
