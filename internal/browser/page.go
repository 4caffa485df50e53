// Package browser wraps the chromedp-driven browser session behind a small
// Page interface so the engine (and its tests) never touch CDP directly.
package browser

import (
	"context"

	"github.com/jonathan/video-publisher/internal/locator"
)

// Page is the surface the upload engine drives. Queries take a locator
// strategy; existence and visibility come back as booleans rather than
// errors, so polling callers never use failures as control flow.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)

	Visible(ctx context.Context, s locator.Strategy) (bool, error)
	Click(ctx context.Context, s locator.Strategy) error
	Fill(ctx context.Context, s locator.Strategy, text string) error
	Clear(ctx context.Context, s locator.Strategy) error
	Upload(ctx context.Context, s locator.Strategy, path string) error
	Text(ctx context.Context, s locator.Strategy) (string, error)
	Attribute(ctx context.Context, s locator.Strategy, name string) (string, bool, error)

	// TypeText and Press act on the currently focused element.
	TypeText(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error

	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Closed() bool
}

// FirstVisible tries strategies in declared order and returns the first one
// whose element is currently visible. The boolean reports whether any matched.
func FirstVisible(ctx context.Context, p Page, strategies []locator.Strategy) (locator.Strategy, bool) {
	for _, s := range strategies {
		ok, err := p.Visible(ctx, s)
		if err != nil {
			continue
		}
		if ok {
			return s, true
		}
	}
	return locator.Strategy{}, false
}
