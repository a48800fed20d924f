package main

import (
	"bufio"
	"encoding/base64"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	browserutil "github.com/grez-lucas/bank-automation/internal/scraper/browser"
	"github.com/grez-lucas/bank-automation/internal/scraper/testutil"
	"github.com/joho/godotenv"
)

// BPM pages to capture, in the order an operator reaches them.
var capturePages = []PageCapture{
	{Name: "search_form", Instructions: "Log in and open the Search tab (don't submit yet)"},
	{Name: "market_tree", Instructions: "Expand the market tree so the transaction types are visible"},
	{Name: "results_grid", Instructions: "Search a reference that returns at least one row"},
	{Name: "results_duplicates", Instructions: "Search a reference that returns several rows (or skip)"},
	{Name: "results_empty", Instructions: "Search a reference that does not exist"},
}

type PageCapture struct {
	Name         string
	Instructions string
}

func main() {
	_ = godotenv.Load()

	outputDir := flag.String("output", "", "Output directory (default: internal/scraper/bank/bpm/testdata/fixtures)")
	portalURL := flag.String("url", os.Getenv("BPM_URL"), "Portal URL to open (default: $BPM_URL)")
	chromeBin := flag.String("chrome", os.Getenv("BPM_CHROME_BIN"), "Chrome binary (default: rod's managed browser)")
	recordHAR := flag.Bool("har", false, "Also record portal traffic to testdata/recordings/search-success.har.json")
	flag.Parse()

	outDir := *outputDir
	if outDir == "" {
		outDir = filepath.Join("internal", "scraper", "bank", "bpm", "testdata", "fixtures")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║           BPM FIXTURE CAPTURE TOOL                             ║")
	fmt.Println("╠════════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Output: %-52s  ║\n", outDir)
	fmt.Printf("║  HAR:    %-52v  ║\n", *recordHAR)
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	l := launcher.New().
		Headless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("window-size", "1920,1080")
	if *chromeBin != "" {
		l = l.Bin(*chromeBin)
	}

	browser := rod.New().ControlURL(l.MustLaunch()).MustConnect()
	defer browser.MustClose()

	var recorder *harRecorder
	if *recordHAR {
		recorder = &harRecorder{}
		router := browser.HijackRequests()
		router.MustAdd("*", recorder.handle)
		go router.Run()
		defer router.MustStop()
	}

	page := stealth.MustPage(browser)
	if *portalURL != "" {
		page.MustNavigate(*portalURL)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("📋 Instructions:")
	fmt.Println("   - A browser window has opened")
	fmt.Println("   - Follow the prompts below")
	fmt.Println("   - Press ENTER after completing each step")
	fmt.Println("   - Type 'skip' to skip a page")
	fmt.Println("   - Type 'quit' to exit")
	fmt.Println()

	for _, capture := range capturePages {
		fmt.Println("────────────────────────────────────────────────────────────────")
		fmt.Printf("📄 Capturing: %s.html\n", capture.Name)
		fmt.Printf("📝 Instructions: %s\n", capture.Instructions)
		fmt.Print("   Press ENTER when ready (or 'skip'/'quit'): ")

		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))

		if input == "quit" {
			fmt.Println("\n👋 Exiting...")
			break
		}
		if input == "skip" {
			fmt.Printf("   ⏭️  Skipped %s\n\n", capture.Name)
			continue
		}

		if err := browserutil.WaitForFrames(page.Timeout(30 * time.Second)); err != nil {
			fmt.Printf("   ⚠️  Frames did not settle: %v\n", err)
		}

		// Screenshot first; the snapshot script does not touch the live DOM
		// but the grid may still repaint.
		screenshotPath := filepath.Join(outDir, capture.Name+".png")
		if buf, err := page.Screenshot(false, nil); err == nil {
			if err := os.WriteFile(screenshotPath, buf, 0o644); err != nil {
				fmt.Printf("   ⚠️  Error saving screenshot: %v\n", err)
			} else {
				fmt.Printf("   📸 Screenshot: %s\n", screenshotPath)
			}
		} else {
			fmt.Printf("   ⚠️  Screenshot failed: %v\n", err)
		}

		snap, err := browserutil.CaptureSnapshot(page)
		if err != nil {
			fmt.Printf("   ❌ Error capturing HTML: %v\n\n", err)
			continue
		}
		if snap.Frames > 0 {
			fmt.Printf("   🔲 Inlined %d iframe(s) into captured HTML\n", snap.Frames)
		}
		if snap.Blocked > 0 {
			fmt.Printf("   ⚠️  %d cross-origin iframe(s) could not be read\n", snap.Blocked)
		}

		htmlPath := filepath.Join(outDir, capture.Name+".html")
		if err := os.WriteFile(htmlPath, []byte(snap.HTML), 0o644); err != nil {
			fmt.Printf("   ❌ Error saving HTML: %v\n\n", err)
			continue
		}

		fmt.Printf("   ✅ Saved: %s\n", htmlPath)
		fmt.Printf("   🔗 URL: %s\n\n", page.MustInfo().URL)
	}

	saveMetadata(outDir)

	if recorder != nil {
		harDir := filepath.Join(filepath.Dir(outDir), "recordings")
		harPath := filepath.Join(harDir, "search-success.har.json")
		if err := os.MkdirAll(harDir, 0o755); err != nil {
			fmt.Printf("❌ Error creating %s: %v\n", harDir, err)
		} else if har := recorder.log(); testutil.SaveHAR(harPath, testutil.SanitizeHAR(har)) != nil {
			fmt.Printf("❌ Error saving HAR to %s\n", harPath)
		} else {
			fmt.Printf("🎞️  Recorded %d request(s) to %s (sanitized)\n", len(har.Entries), harPath)
		}
	}

	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("✅ Capture complete!")
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Sanitize sensitive data before committing!")
	fmt.Println("   Run: go run ./scripts/sanitize-patterns -app=bpm")
	fmt.Println("════════════════════════════════════════════════════════════════")
}

// harRecorder collects every request the page makes while the router is
// running.
type harRecorder struct {
	mu      sync.Mutex
	entries []testutil.HAREntry
}

func (r *harRecorder) handle(h *rod.Hijack) {
	if err := h.LoadResponse(http.DefaultClient, true); err != nil {
		h.Response.Fail("Failed")
		return
	}

	body := h.Response.Body()
	content := testutil.HARContent{
		MimeType: h.Response.Headers().Get("Content-Type"),
		Text:     body,
		Size:     len(body),
	}
	if !utf8.ValidString(body) {
		content.Text = base64.StdEncoding.EncodeToString([]byte(body))
		content.Encoding = "base64"
	}

	var headers []testutil.HARHeader
	for name, values := range h.Response.Headers() {
		for _, v := range values {
			headers = append(headers, testutil.HARHeader{Name: name, Value: v})
		}
	}

	entry := testutil.HAREntry{
		Request: testutil.HARRequest{
			Method: h.Request.Method(),
			URL:    h.Request.URL().String(),
			Body:   h.Request.Body(),
		},
		Response: testutil.HARResponse{
			Status:  h.Response.Payload().ResponseCode,
			Headers: headers,
			Content: content,
		},
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

func (r *harRecorder) log() *testutil.HARLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &testutil.HARLog{Entries: append([]testutil.HAREntry(nil), r.entries...)}
}

func saveMetadata(outDir string) {
	metadata := fmt.Sprintf(`# Fixture Metadata
app: bpm
captured_at: %s
captured_by: %s

## Files
See .html files in this directory.
Screenshots (.png) provided for visual reference.

## Iframe Handling

BPM renders the search form and the result grid inside nested frames. The
capture inlines them as:

    <div data-captured-iframe="true" data-iframe-src="..." data-iframe-name="...">
      <!-- frame body content -->
    </div>

so bpm.NewHTMLLocator can read the grid as one document:

    bpmlookup parse results_grid.html TXN123

## Notes
- These fixtures should be sanitized before committing
- Update when the portal layout changes
- Re-run capture if tests start failing
`, time.Now().Format(time.RFC3339), os.Getenv("USER"))

	metaPath := filepath.Join(outDir, "README.md")
	os.WriteFile(metaPath, []byte(metadata), 0o644)
}
