// Package browser provides utilities for browser automation with Rod.
package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// DOMStableWindow is how long the DOM must stay unchanged before a frame is
// considered loaded.
const DOMStableWindow = 300 * time.Millisecond

// WaitForFrames waits for the page, then every visible iframe below it, to
// stop changing. The BPM grid renders inside a nested frame after the
// search is submitted.
func WaitForFrames(page *rod.Page) error {
	if err := page.WaitDOMStable(DOMStableWindow, 0); err != nil {
		return fmt.Errorf("wait for DOM: %w", err)
	}

	for _, frame := range visibleFrames(page) {
		if err := WaitForFrames(frame); err != nil {
			return err
		}
	}
	return nil
}

// DeepestVisibleFrame follows the first visible iframe at every level and
// returns the innermost frame, or page itself when it has none.
func DeepestVisibleFrame(page *rod.Page) (*rod.Page, error) {
	if err := page.WaitDOMStable(DOMStableWindow, 0); err != nil {
		return nil, fmt.Errorf("wait for DOM: %w", err)
	}

	frames := visibleFrames(page)
	if len(frames) == 0 {
		return page, nil
	}
	return DeepestVisibleFrame(frames[0])
}

// FrameBySelector returns the frame of the iframe matching selector.
func FrameBySelector(page *rod.Page, selector string) (*rod.Page, error) {
	el, err := page.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("iframe %q not found: %w", selector, err)
	}

	frame, err := el.Frame()
	if err != nil {
		return nil, fmt.Errorf("iframe %q has no frame context: %w", selector, err)
	}
	return frame, nil
}

// visibleFrames skips iframes that are hidden or not yet attached.
func visibleFrames(page *rod.Page) []*rod.Page {
	iframes, err := page.Elements("iframe")
	if err != nil {
		return nil
	}

	frames := make([]*rod.Page, 0, len(iframes))
	for _, iframe := range iframes {
		if visible, err := iframe.Visible(); err != nil || !visible {
			continue
		}
		frame, err := iframe.Frame()
		if err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	return frames
}
