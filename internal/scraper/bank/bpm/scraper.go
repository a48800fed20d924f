package bpm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"
	"github.com/grez-lucas/bank-automation/internal/scraper/bank"
	"github.com/grez-lucas/bank-automation/internal/scraper/browser"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

var errNoPage = errors.New("no portal page open")

// Scraper drives the BPM portal in a stealth Chromium page.
type Scraper struct {
	browser *rod.Browser
	router  *rod.HijackRouter
	page    *rod.Page
	logger  *zap.Logger

	timeout  time.Duration
	headless bool
	bin      string
	human    bool
	hijacker func(*rod.Hijack)
}

var _ bank.PortalScraper = (*Scraper)(nil)

type ScraperOption func(*Scraper)

// WithHijacker routes every browser request through h. Replay tests use it
// to serve recorded traffic.
func WithHijacker(h func(*rod.Hijack)) ScraperOption {
	return func(s *Scraper) {
		s.hijacker = h
	}
}

func WithTimeout(d time.Duration) ScraperOption {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithHeadless(headless bool) ScraperOption {
	return func(s *Scraper) {
		s.headless = headless
	}
}

// WithChromeBin launches the given browser binary instead of the one rod
// downloads.
func WithChromeBin(path string) ScraperOption {
	return func(s *Scraper) {
		s.bin = path
	}
}

// WithHumanTyping types the reference with human-like delays.
func WithHumanTyping(enabled bool) ScraperOption {
	return func(s *Scraper) {
		s.human = enabled
	}
}

func NewScraper(logger *zap.Logger, opts ...ScraperOption) (*Scraper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scraper{
		logger:   logger,
		timeout:  DefaultTimeout,
		headless: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	l := launcher.New().
		Headless(s.headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check")
	if s.bin != "" {
		l = l.Bin(s.bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, s.wrap("Launch", err, "")
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, s.wrap("Connect", err, "")
	}
	s.browser = b

	if s.hijacker != nil {
		router := b.HijackRequests()
		if err := router.Add("*", "", s.hijacker); err != nil {
			_ = b.Close()
			return nil, s.wrap("Hijack", err, "")
		}
		go router.Run()
		s.router = router
	}

	return s, nil
}

func (s *Scraper) wrap(op string, err error, details string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", bank.ErrTimeout, err)
	}
	return &bank.ScraperError{App: bank.AppBPM, Operation: op, Cause: err, Details: details}
}

// Open navigates a fresh stealth page to the portal.
func (s *Scraper) Open(ctx context.Context, url string) (*bank.Session, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, s.wrap("Open", err, "create page")
	}

	p := page.Context(ctx).Timeout(s.timeout)
	if err := p.Navigate(url); err != nil {
		_ = page.Close()
		return nil, s.wrap("Open", fmt.Errorf("%w: %v", bank.ErrNavigationFailed, err), "")
	}
	if err := p.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, s.wrap("Open", err, "wait load")
	}

	if s.page != nil {
		_ = s.page.Close()
	}
	s.page = page

	session := bank.NewSession(uuid.NewString(), bank.AppBPM, url, page)
	s.logger.Info("portal opened", zap.String("session_id", session.ID))
	return session, nil
}

// frame returns the innermost visible frame of the open page, bound to ctx
// and the scraper timeout.
func (s *Scraper) frame(ctx context.Context) (*rod.Page, error) {
	if s.page == nil {
		return nil, errNoPage
	}
	return browser.DeepestVisibleFrame(s.page.Context(ctx).Timeout(s.timeout))
}

// SelectMarkets ticks the given transaction types in the market tree.
func (s *Scraper) SelectMarkets(ctx context.Context, types []TransactionType) error {
	frame, err := s.frame(ctx)
	if err != nil {
		return s.wrap("SelectMarkets", err, "")
	}

	for _, t := range types {
		name, err := frame.ElementR(SelectorMarketName, "^"+regexp.QuoteMeta(string(t))+"$")
		if err != nil {
			return s.wrap("SelectMarkets", err, string(t))
		}
		box, err := name.Element(SelectorUncheckedBox)
		if err != nil {
			return s.wrap("SelectMarkets", err, string(t))
		}
		if err := box.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return s.wrap("SelectMarkets", err, string(t))
		}

		if checked, _, _ := name.Has(SelectorCheckedBox); !checked {
			s.logger.Warn("market does not appear selected", zap.String("market", string(t)))
		}
	}
	return nil
}

// Search opens the search tab, submits the reference and waits for the
// result grid to render.
func (s *Scraper) Search(ctx context.Context, reference string) error {
	frame, err := s.frame(ctx)
	if err != nil {
		return s.wrap("Search", err, "")
	}

	tab, err := frame.Element(SelectorSearchTab)
	if err != nil {
		return s.wrap("Search", err, "search tab")
	}
	if err := tab.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return s.wrap("Search", err, "search tab")
	}

	label, err := frame.ElementR(SelectorSearchLabel, ReferenceLabelPattern)
	if err != nil {
		return s.wrap("Search", err, "reference label")
	}
	input, err := label.Next()
	if err != nil {
		return s.wrap("Search", err, "reference input")
	}
	if err := browser.Fill(input, reference, s.human); err != nil {
		return s.wrap("Search", err, "reference input")
	}

	submit, err := frame.Element(SelectorSubmitButton)
	if err != nil {
		return s.wrap("Search", err, "submit")
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return s.wrap("Search", err, "submit")
	}

	if err := browser.WaitForFrames(s.page.Context(ctx).Timeout(s.timeout)); err != nil {
		return s.wrap("Search", err, "wait results")
	}
	if _, err := frame.Element(SelectorGridBody); err != nil {
		return s.wrap("Search", err, "result grid")
	}

	s.logger.Info("search submitted")
	return nil
}

// Locator returns a row locator over the frame holding the result grid.
func (s *Scraper) Locator(ctx context.Context) (*RodLocator, error) {
	frame, err := s.frame(ctx)
	if err != nil {
		return nil, s.wrap("Locator", err, "")
	}
	return NewRodLocator(frame, s.timeout), nil
}

// Snapshot captures the open page with its frames inlined, in the form
// HTMLLocator reads.
func (s *Scraper) Snapshot(ctx context.Context) (browser.Snapshot, error) {
	if s.page == nil {
		return browser.Snapshot{}, s.wrap("Snapshot", errNoPage, "")
	}
	snap, err := browser.CaptureSnapshot(s.page.Context(ctx).Timeout(s.timeout))
	if err != nil {
		return browser.Snapshot{}, s.wrap("Snapshot", err, "")
	}
	return snap, nil
}

// Lookup searches for reference and reads its row. Only navigation
// failures are returned as errors; a missing row is a not-found result.
func (s *Scraper) Lookup(ctx context.Context, reference string, opts ...Option) (LookupResult, error) {
	if err := s.Search(ctx, reference); err != nil {
		return LookupResult{}, err
	}
	locator, err := s.Locator(ctx)
	if err != nil {
		return LookupResult{}, err
	}

	opts = append([]Option{WithLogger(s.logger)}, opts...)
	return NewLookup(locator, opts...).LookupResult(ctx, reference), nil
}

func (s *Scraper) Close() error {
	if s.router != nil {
		_ = s.router.Stop()
	}
	if s.browser == nil {
		return nil
	}
	return s.browser.Close()
}
