// discover-iframes prints the iframe tree of the BPM portal and probes each
// frame for the selectors in internal/scraper/bank/bpm/selectors.go. Use it
// when the portal layout changes and the lookup stops finding the grid.
//
// Usage:
//
//	go run ./scripts/discover-iframes
//	go run ./scripts/discover-iframes -root="iframe#content"
//
// The script opens a visible browser and prompts you to navigate to each
// page manually. After you press ENTER, it inspects the frame tree and
// prints a report.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/grez-lucas/bank-automation/internal/scraper/bank/bpm"
	browserutil "github.com/grez-lucas/bank-automation/internal/scraper/browser"
	"github.com/joho/godotenv"
)

type selectorProbe struct {
	Name     string
	Selector string
}

var probes = []selectorProbe{
	// Search form
	{"Search tab", bpm.SelectorSearchTab},
	{"Search labels", bpm.SelectorSearchLabel},
	{"Submit button", bpm.SelectorSubmitButton},

	// Market tree
	{"Market names", bpm.SelectorMarketName},
	{"Unchecked market", bpm.SelectorUncheckedBox},
	{"Checked market", bpm.SelectorCheckedBox},

	// Results grid
	{"Grid body", bpm.SelectorGridBody},
	{"Grid rows", bpm.SelectorGridBody + " " + bpm.SelectorRow},
	{"Grid action cells", bpm.SelectorTotalColumn},
}

type pageToInspect struct {
	Name         string
	Instructions string
}

var pages = []pageToInspect{
	{"Landing", "Log in and wait for the landing page"},
	{"Search form", "Open the Search tab"},
	{"Results grid", "Search a reference that returns at least one row"},
}

func main() {
	_ = godotenv.Load()

	portalURL := flag.String("url", os.Getenv("BPM_URL"), "Portal URL to open (default: $BPM_URL)")
	root := flag.String("root", "", "Start from the frame of this iframe selector instead of the page")
	flag.Parse()

	fmt.Println("================================================================")
	fmt.Println("  IFRAME DISCOVERY: BPM")
	fmt.Println("================================================================")
	fmt.Println()

	browser := rod.New().ControlURL(launcher.New().
		Headless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", "1920,1080").
		MustLaunch()).MustConnect()
	defer browser.MustClose()

	page := stealth.MustPage(browser)
	if *portalURL != "" {
		page.MustNavigate(*portalURL)
	}

	reader := bufio.NewReader(os.Stdin)

	for _, pg := range pages {
		fmt.Println("----------------------------------------------------------------")
		fmt.Printf("PAGE: %s\n", pg.Name)
		fmt.Printf("  -> %s\n", pg.Instructions)
		fmt.Print("  Press ENTER when ready (or 'skip'/'quit'): ")

		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))
		if input == "quit" {
			break
		}
		if input == "skip" {
			fmt.Printf("  Skipped.\n\n")
			continue
		}

		if err := browserutil.WaitForFrames(page.Timeout(30 * time.Second)); err != nil {
			fmt.Printf("  (frames did not settle: %v)\n", err)
		}
		fmt.Printf("\n  URL: %s\n\n", page.MustInfo().URL)

		start, path := page, "main"
		if *root != "" {
			frame, err := browserutil.FrameBySelector(page.Timeout(5*time.Second), *root)
			if err != nil {
				fmt.Printf("  %v\n\n", err)
				continue
			}
			start, path = frame, *root
		}

		inspectFrame(start, path, 1)

		if deepest, err := browserutil.DeepestVisibleFrame(page.Timeout(10 * time.Second)); err == nil {
			fmt.Printf("\n  Deepest visible frame: %s\n", deepest.MustInfo().URL)
		}
		fmt.Println()
	}

	fmt.Println("================================================================")
	fmt.Println("  Discovery complete.")
	fmt.Println("================================================================")
}

// inspectFrame probes page for the known selectors, then recurses into its
// iframes.
func inspectFrame(page *rod.Page, path string, depth int) {
	indent := strings.Repeat("  ", depth)

	found := 0
	for _, probe := range probes {
		els, err := page.Timeout(500 * time.Millisecond).Elements(probe.Selector)
		if err != nil || len(els) == 0 {
			continue
		}
		visible, _ := els[0].Visible()
		fmt.Printf("%sFOUND  %-20s  %-50s  (count=%d, visible=%v)\n",
			indent, probe.Name, truncate(probe.Selector, 50), len(els), visible)
		found++
	}
	if found == 0 {
		fmt.Printf("%s(no known selectors found)\n", indent)
	}

	iframes, err := page.Elements("iframe")
	if err != nil {
		return
	}

	for i, iframe := range iframes {
		src, _ := iframe.Attribute("src")
		id, _ := iframe.Attribute("id")
		name, _ := iframe.Attribute("name")
		visible, _ := iframe.Visible()

		label := fmt.Sprintf("iframe[%d]", i)
		if v := deref(id); v != "" {
			label = "iframe#" + v
		} else if v := deref(name); v != "" {
			label = fmt.Sprintf("iframe[name=%s]", v)
		}
		childPath := path + " > " + label

		fmt.Printf("\n%sIFRAME %s  visible=%v  src=%s\n", indent, childPath, visible, truncate(deref(src), 80))

		frame, err := iframe.Frame()
		if err != nil {
			fmt.Printf("%s  (cannot access frame: %v)\n", indent, err)
			continue
		}
		inspectFrame(frame, childPath, depth+1)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
