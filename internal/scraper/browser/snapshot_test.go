package browser

import (
	"os"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPage connects to a local Chromium. These tests drive a real browser
// and only run with SCRAPER_TEST_MODE=live.
func setupPage(t *testing.T) *rod.Page {
	t.Helper()

	if os.Getenv("SCRAPER_TEST_MODE") != "live" {
		t.Skip("Skipping: requires SCRAPER_TEST_MODE=live")
	}

	browser := rod.New().MustConnect()
	t.Cleanup(func() { browser.MustClose() })

	page := browser.MustPage()
	t.Cleanup(func() { page.MustClose() })

	page.MustNavigate("about:blank").MustWaitLoad()
	return page
}

func TestCaptureSnapshot_NoFrames(t *testing.T) {
	page := setupPage(t)
	page.MustEval(`() => {
		document.body.innerHTML = '<div class="mtex-datagrid-tbody"><div class="trow"><div class="tcell" title="TXN1">TXN1</div></div></div>';
	}`)

	snap, err := CaptureSnapshot(page)

	require.NoError(t, err)
	assert.Equal(t, 0, snap.Frames)
	assert.Equal(t, 0, snap.Blocked)
	assert.Contains(t, snap.HTML, `title="TXN1"`)
}

func TestCaptureSnapshot_InlinesFrame(t *testing.T) {
	page := setupPage(t)
	page.MustEval(`() => {
		const frame = document.createElement('iframe');
		frame.name = 'results';
		document.body.appendChild(frame);
		frame.contentDocument.body.innerHTML = '<div class="trow"><div class="tcell">inside</div></div>';
	}`)

	snap, err := CaptureSnapshot(page)

	require.NoError(t, err)
	assert.Equal(t, 1, snap.Frames)
	assert.Contains(t, snap.HTML, `data-captured-iframe="true"`)
	assert.Contains(t, snap.HTML, `data-iframe-name="results"`)
	assert.Contains(t, snap.HTML, "inside")
	assert.NotContains(t, snap.HTML, "<iframe")

	// the live page keeps its iframe
	assert.True(t, page.MustHas("iframe"))
}

func TestCaptureSnapshot_NestedFrames(t *testing.T) {
	page := setupPage(t)
	page.MustEval(`() => {
		const outer = document.createElement('iframe');
		document.body.appendChild(outer);
		const inner = outer.contentDocument.createElement('iframe');
		outer.contentDocument.body.appendChild(inner);
		inner.contentDocument.body.innerHTML = '<span class="deep">Nested grid</span>';
	}`)

	snap, err := CaptureSnapshot(page)

	require.NoError(t, err)
	assert.Equal(t, 2, snap.Frames)
	assert.Contains(t, snap.HTML, "Nested grid")
}

func TestDeepestVisibleFrame(t *testing.T) {
	page := setupPage(t)
	page.MustEval(`() => {
		const frame = document.createElement('iframe');
		document.body.appendChild(frame);
		frame.contentDocument.body.innerHTML = '<p id="leaf">leaf</p>';
	}`)

	frame, err := DeepestVisibleFrame(page)

	require.NoError(t, err)
	assert.True(t, frame.MustHas("#leaf"))
	require.NoError(t, WaitForFrames(page))
}

func TestDeepestVisibleFrame_NoFrames(t *testing.T) {
	page := setupPage(t)

	frame, err := DeepestVisibleFrame(page)

	require.NoError(t, err)
	assert.Same(t, page, frame)
}
