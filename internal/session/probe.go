package session

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/video-publisher/internal/locator"
)

// htmlShowsLogin inspects a rendered HTML document for the platform's login
// markers. Used as the secondary liveness signal when the live-element probe
// is inconclusive; platforms occasionally render the login prompt inside a
// page whose URL never changes.
func htmlShowsLogin(html string, profile *locator.Profile) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	for _, st := range profile.Catalog.Strategies(locator.StepLoginMarker) {
		switch st.Kind {
		case locator.KindCSS:
			if doc.Find(st.Query).Length() > 0 {
				return true
			}
		case locator.KindText:
			if strings.Contains(doc.Text(), st.Query) {
				return true
			}
		}
	}
	return false
}

// htmlShowsAuthenticated looks for an authenticated-only marker in the
// rendered document.
func htmlShowsAuthenticated(html string, profile *locator.Profile) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	for _, st := range profile.Catalog.Strategies(locator.StepLoggedInMarker) {
		switch st.Kind {
		case locator.KindCSS:
			if doc.Find(st.Query).Length() > 0 {
				return true
			}
		case locator.KindText:
			if strings.Contains(doc.Text(), st.Query) {
				return true
			}
		}
	}
	return false
}
