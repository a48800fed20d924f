package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var sanitizePatterns = []struct {
	Pattern     *regexp.Regexp
	Replacement string
	Description string
}{
	// IBANs shown in the grid detail columns
	{
		regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:\s?[A-Z0-9]{4}){3,7}\b`),
		`XX00XXXXXXXXXXXXXXXX`,
		"IBAN",
	},

	// BIC / SWIFT codes of counterparties
	{
		regexp.MustCompile(`\b[A-Z]{4}(?:US|GB|DE|FR|ES|IT|NL|BE|CH|AU|SG|HK|TW)[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`),
		`XXXXXXXXXXX`,
		"BIC",
	},

	// Operator names in the portal header
	{
		regexp.MustCompile(`(?i)(Welcome|Logged in as|User:)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+`),
		"$1 FIRST LAST",
		"Operator name",
	},

	// Email addresses
	{
		regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		`user@example.com`,
		"Email",
	},

	// Session tokens / CSRF tokens
	{
		regexp.MustCompile(`(?i)(token|csrf|session|jsessionid)["\s:=]+["']?[a-zA-Z0-9_.-]{20,}["']?`),
		`$1="REDACTED"`,
		"Token",
	},

	// Cookies in HTML
	{
		regexp.MustCompile(`(?i)document\.cookie\s*=\s*["'][^"']+["']`),
		`document.cookie="REDACTED"`,
		"Cookie",
	},
}

func main() {
	app := flag.String("app", "bpm", "Portal package under internal/scraper/bank")
	dryRun := flag.Bool("dry-run", false, "Show what would be changed without modifying files")
	flag.Parse()

	fixturesDir := filepath.Join("internal", "scraper", "bank", *app, "testdata", "fixtures")

	files, err := filepath.Glob(filepath.Join(fixturesDir, "*.html"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No HTML files found in %s\n", fixturesDir)
		os.Exit(1)
	}

	fmt.Printf("🔒 Sanitizing fixtures for %s\n", *app)
	if *dryRun {
		fmt.Println("    (DRY RUN - no files will be modified)")
	}
	fmt.Println()

	for _, file := range files {
		sanitizeFile(file, *dryRun)
	}

	fmt.Println()
	fmt.Println("✅ Sanitization complete!")
	if *dryRun {
		fmt.Println("    Run without --dry-run to apply changes")
	}
}

func sanitizeFile(path string, dryRun bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Error reading %s: %v\n", path, err)
		return
	}

	sanitized := string(content)
	var changes []string
	for _, p := range sanitizePatterns {
		if n := len(p.Pattern.FindAllStringIndex(sanitized, -1)); n > 0 {
			sanitized = p.Pattern.ReplaceAllString(sanitized, p.Replacement)
			changes = append(changes, fmt.Sprintf("  - %s: %d matched", p.Description, n))
		}
	}

	filename := filepath.Base(path)
	if len(changes) == 0 {
		fmt.Printf("📄 %s: No sensitive data found\n", filename)
		return
	}

	fmt.Printf("📄 %s: Found sensitive data\n", filename)
	for _, change := range changes {
		fmt.Println(change)
	}

	if dryRun {
		return
	}
	if err := os.WriteFile(path, []byte(sanitized), 0o644); err != nil {
		fmt.Printf("    ❌ Error writing %s: %v\n", path, err)
	} else {
		fmt.Println("    ✅ Sanitized and saved")
	}
}
