// sanitize-har redacts credentials and session material from a recorded
// BPM HAR before it is committed.
//
// Usage:
//
//	go run ./scripts/sanitize-har -scenario=search-success
//	go run ./scripts/sanitize-har -input=recording.har.json -output=sanitized.har.json
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grez-lucas/bank-automation/internal/scraper/testutil"
)

// redaction is one value SanitizeHAR changed.
type redaction struct {
	entry int
	what  string
}

func main() {
	app := flag.String("app", "bpm", "Portal package under internal/scraper/bank")
	scenario := flag.String("scenario", "", "Recording name, e.g. search-success")
	inputPath := flag.String("input", "", "Input HAR file path")
	outputPath := flag.String("output", "", "Output HAR file path (defaults to input path)")
	dryRun := flag.Bool("dry-run", false, "Show what would be redacted without modifying")
	flag.Parse()

	var inPath string
	switch {
	case *inputPath != "":
		inPath = *inputPath
	case *scenario != "":
		inPath = filepath.Join("internal", "scraper", "bank", *app, "testdata", "recordings", *scenario+".har.json")
	default:
		printUsage()
		os.Exit(1)
	}
	outPath := inPath
	if *outputPath != "" {
		outPath = *outputPath
	}

	har, err := testutil.LoadHAR(inPath)
	if err != nil {
		fmt.Printf("Error loading HAR: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d entries from %s\n", len(har.Entries), inPath)

	sanitized := testutil.SanitizeHAR(har)
	found := diff(har, sanitized)
	fmt.Printf("Redacted %d sensitive values\n", len(found))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes written.")
		printSummary(har, found)
		return
	}

	if err := testutil.SaveHAR(outPath, sanitized); err != nil {
		fmt.Printf("Error saving HAR: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sanitized HAR saved to: %s\n", outPath)
}

func printUsage() {
	fmt.Println("sanitize-har - Remove sensitive data from HAR files before committing")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  go run ./scripts/sanitize-har -scenario=search-success")
	fmt.Println("  go run ./scripts/sanitize-har -input=in.har.json -output=out.har.json")
	fmt.Println()
	flag.PrintDefaults()
}

func diff(original, sanitized *testutil.HARLog) []redaction {
	var out []redaction
	for i := range min(len(original.Entries), len(sanitized.Entries)) {
		orig, san := original.Entries[i], sanitized.Entries[i]

		if orig.Request.URL != san.Request.URL {
			out = append(out, redaction{i, "URL query parameters"})
		}
		for j, h := range orig.Request.Headers {
			if j < len(san.Request.Headers) && h.Value != san.Request.Headers[j].Value {
				out = append(out, redaction{i, "request header " + h.Name})
			}
		}
		if orig.Request.Body != san.Request.Body {
			out = append(out, redaction{i, "request body"})
		}
		for j, h := range orig.Response.Headers {
			if j < len(san.Response.Headers) && h.Value != san.Response.Headers[j].Value {
				out = append(out, redaction{i, "response header " + h.Name})
			}
		}
		if orig.Response.Content.Text != san.Response.Content.Text {
			out = append(out, redaction{i, "response body"})
		}
	}
	return out
}

func printSummary(har *testutil.HARLog, found []redaction) {
	fmt.Println("\nRedaction Summary:")
	fmt.Println("==================")

	last := -1
	for _, r := range found {
		if r.entry != last {
			req := har.Entries[r.entry].Request
			fmt.Printf("\nEntry %d: %s %s\n", r.entry+1, req.Method, truncateURL(req.URL))
			last = r.entry
		}
		fmt.Printf("  - %s redacted\n", r.what)
	}
}

func truncateURL(url string) string {
	if len(url) > 80 {
		return url[:77] + "..."
	}
	return url
}
