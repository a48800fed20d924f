package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
)

// snapshotJS serializes the document with every same-origin iframe replaced
// by a <div data-captured-iframe> holding the frame body. Nested frames are
// inlined first: once a frame's body is read as a string its children are
// no longer live. The live DOM is left untouched; the work happens on a
// clone.
const snapshotJS = `() => {
	let frames = 0;
	let blocked = 0;

	function inline(liveDoc, cloneRoot) {
		const live = liveDoc.querySelectorAll('iframe');
		const clones = cloneRoot.querySelectorAll('iframe');
		for (let i = 0; i < live.length && i < clones.length; i++) {
			const holder = liveDoc.createElement('div');
			holder.setAttribute('data-captured-iframe', 'true');
			holder.setAttribute('data-iframe-src', live[i].src || '');
			holder.setAttribute('data-iframe-name', live[i].name || '');
			try {
				const doc = live[i].contentDocument;
				if (!doc || !doc.body) throw new Error('no document');
				const body = doc.body.cloneNode(true);
				inline(doc, body);
				holder.innerHTML = body.innerHTML;
				frames++;
			} catch (e) {
				holder.setAttribute('data-iframe-error', e.message);
				blocked++;
			}
			clones[i].replaceWith(holder);
		}
	}

	const root = document.documentElement.cloneNode(true);
	inline(document, root);
	return JSON.stringify({html: root.outerHTML, frames: frames, blocked: blocked});
}`

// Snapshot is a flattened copy of a page.
type Snapshot struct {
	HTML string `json:"html"`
	// Frames counts the iframes inlined into HTML.
	Frames int `json:"frames"`
	// Blocked counts cross-origin iframes left as error markers.
	Blocked int `json:"blocked"`
}

// CaptureSnapshot returns the page HTML with iframe content inlined, so the
// result grid can be parsed with goquery as a single document. When the
// script cannot run it falls back to the outer document alone.
func CaptureSnapshot(page *rod.Page) (Snapshot, error) {
	res, err := page.Eval(snapshotJS)
	if err == nil {
		var snap Snapshot
		if err := json.Unmarshal([]byte(res.Value.Str()), &snap); err == nil {
			return snap, nil
		}
	}

	html, err := page.HTML()
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture page HTML: %w", err)
	}
	return Snapshot{HTML: html}, nil
}
