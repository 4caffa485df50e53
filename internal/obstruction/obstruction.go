// Package obstruction detects and dismisses the transient overlays, dialogs,
// and banners that can appear at any point in a platform session. The state
// machine calls it before and after every transition that needs a clean
// viewport.
package obstruction

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/locator"
)

// categories lists the known obstruction kinds in dismissal order. Cancel
// affordances go first: confirm-style buttons can submit a dialog we would
// rather reject.
var categories = []locator.Step{
	locator.StepObstructionCancel,
	locator.StepObstructionClose,
	locator.StepConsentBanner,
	locator.StepTipsOverlay,
	locator.StepObstructionConfirm,
}

// Clearer dismisses obstructions for one platform.
type Clearer struct {
	catalog locator.Catalog
	settle  time.Duration
}

// NewClearer builds a Clearer over the platform's catalog. settle is the
// pause after each dismissal, giving the dialog's close animation time to
// release the viewport.
func NewClearer(catalog locator.Catalog, settle time.Duration) *Clearer {
	if settle <= 0 {
		settle = 500 * time.Millisecond
	}
	return &Clearer{catalog: catalog, settle: settle}
}

// Clear runs scan-and-dismiss rounds until a round clears nothing or
// maxRounds is reached. It reports whether anything was dismissed. A clean
// first round issues no click and no key event at all.
func (c *Clearer) Clear(ctx context.Context, page browser.Page, maxRounds int) bool {
	if maxRounds <= 0 {
		maxRounds = 3
	}

	clearedAny := false
	for round := 0; round < maxRounds; round++ {
		cleared := false
		for _, step := range categories {
			strategies := c.catalog.Strategies(step)
			if len(strategies) == 0 {
				continue
			}
			st, found := browser.FirstVisible(ctx, page, strategies)
			if !found {
				continue
			}
			if err := page.Click(ctx, st); err != nil {
				log.Printf("[OBSTRUCT] dismiss %s via %q failed: %v", step, st.Name, err)
				continue
			}
			log.Printf("[OBSTRUCT] dismissed %s via %q", step, st.Name)
			cleared = true
			clearedAny = true
			sleep(ctx, c.settle)
		}
		if !cleared {
			break
		}
		// A cancel-key signal knocks out anything the category table missed.
		_ = page.Press(ctx, "Escape")
		sleep(ctx, c.settle)
	}
	return clearedAny
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
