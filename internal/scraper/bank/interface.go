// Package bank defines the common structs and logic shared by the internal
// banking portal automations (BPM, Firco, MTex).
package bank

import "context"

type PortalScraper interface {
	// Open navigates to the portal and returns the session bound to the page.
	Open(ctx context.Context, url string) (*Session, error)
	// Close releases the browser and every page opened by the scraper.
	Close() error
}

type AppCode string

const (
	AppBPM   AppCode = "BPM"
	AppFirco AppCode = "FIRCO"
	AppMTex  AppCode = "MTEX"
)
