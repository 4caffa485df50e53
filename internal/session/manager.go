package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/locator"
	"github.com/jonathan/video-publisher/internal/wait"
)

// Browser is the subset of a live browser session the manager drives.
type Browser interface {
	browser.Page
	Restore(ctx context.Context, state *browser.StorageState) error
	Snapshot(ctx context.Context) (*browser.StorageState, error)
}

// Factory opens a fresh browser session. visible requests a headed browser
// for interactive login; the returned func releases the session.
type Factory func(ctx context.Context, visible bool) (Browser, func(), error)

// UnavailableError means no usable login exists and none could be captured.
// Fatal for the run; never retried automatically.
type UnavailableError struct {
	Platform string
	Account  string
	Reason   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("session unavailable for %s/%s: %s", e.Platform, e.Account, e.Reason)
}

// Manager drives the NoSession -> Valid -> Stale -> Valid lifecycle for
// account sessions.
type Manager struct {
	store   Store
	factory Factory

	probeTimeout time.Duration
	loginTimeout time.Duration

	// validated caches pairs that already passed a liveness probe, so
	// repeated EnsureSession calls within one process do not re-probe.
	validated map[string]bool
}

// NewManager wires a manager over a store and a browser factory.
func NewManager(store Store, factory Factory) *Manager {
	return &Manager{
		store:        store,
		factory:      factory,
		probeTimeout: 20 * time.Second,
		loginTimeout: 2 * time.Minute,
		validated:    map[string]bool{},
	}
}

func key(platform, account string) string { return platform + "/" + account }

// EnsureSession returns a live storage snapshot for the account, capturing a
// fresh login interactively when the persisted one is absent or stale and
// interactiveAllowed permits it.
func (m *Manager) EnsureSession(ctx context.Context, profile *locator.Profile, account string, interactiveAllowed bool) (*browser.StorageState, error) {
	state, found, err := m.store.Load(profile.Platform, account)
	if err != nil {
		return nil, err
	}

	if found {
		if m.validated[key(profile.Platform, account)] {
			return state, nil
		}
		log.Printf("[SESSION] probing stored session for %s/%s", profile.Platform, account)
		if m.probe(ctx, profile, state) {
			log.Printf("[SESSION] session for %s/%s is valid", profile.Platform, account)
			m.validated[key(profile.Platform, account)] = true
			return state, nil
		}
		log.Printf("[SESSION] session for %s/%s is stale", profile.Platform, account)
	}

	if !interactiveAllowed {
		reason := "no stored session"
		if found {
			reason = "stored session failed liveness probe"
		}
		return nil, &UnavailableError{Platform: profile.Platform, Account: account, Reason: reason + " and interactive login is not permitted"}
	}

	state, err = m.captureLogin(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(profile.Platform, account, state); err != nil {
		return nil, fmt.Errorf("failed to persist captured session: %w", err)
	}
	log.Printf("[SESSION] captured and persisted new session for %s/%s", profile.Platform, account)
	m.validated[key(profile.Platform, account)] = true
	return state, nil
}

// probe opens a lightweight headless page with the stored state and checks
// for a login prompt versus an authenticated-only element.
func (m *Manager) probe(ctx context.Context, profile *locator.Profile, state *browser.StorageState) bool {
	b, release, err := m.factory(ctx, false)
	if err != nil {
		log.Printf("[SESSION] probe browser failed to start: %v", err)
		return false
	}
	defer release()

	if err := b.Restore(ctx, state); err != nil {
		log.Printf("[SESSION] probe restore failed: %v", err)
		return false
	}
	if err := b.Navigate(ctx, profile.EntryURL); err != nil {
		log.Printf("[SESSION] probe navigation failed: %v", err)
		return false
	}

	// Wait until either marker settles; an expired session redirects or
	// renders the login prompt in place.
	var loggedIn, loggedOut bool
	_ = wait.Until(ctx, "session liveness markers", func(c context.Context) (bool, error) {
		if _, ok := browser.FirstVisible(c, b, profile.Catalog.Strategies(locator.StepLoginMarker)); ok {
			loggedOut = true
			return true, nil
		}
		if _, ok := browser.FirstVisible(c, b, profile.Catalog.Strategies(locator.StepLoggedInMarker)); ok {
			loggedIn = true
			return true, nil
		}
		return false, nil
	}, wait.PollOptions{Timeout: m.probeTimeout, Interval: time.Second})

	if loggedOut {
		return false
	}
	if loggedIn {
		return true
	}

	// Live-element probe inconclusive; fall back to inspecting the rendered
	// document and the landing URL.
	if html, err := b.HTML(ctx); err == nil {
		if htmlShowsLogin(html, profile) {
			return false
		}
		if htmlShowsAuthenticated(html, profile) {
			return true
		}
	}
	loc, err := b.Location(ctx)
	if err != nil {
		return false
	}
	return !strings.Contains(loc, "login") && strings.Contains(loc, urlHost(profile.EntryURL))
}

// captureLogin opens a visible browser at the platform's login entry point and
// polls for a URL-based or element-based completion signal.
func (m *Manager) captureLogin(ctx context.Context, profile *locator.Profile) (*browser.StorageState, error) {
	b, release, err := m.factory(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open login browser: %w", err)
	}
	defer release()

	if err := b.Navigate(ctx, profile.LoginURL); err != nil {
		return nil, fmt.Errorf("failed to open login page: %w", err)
	}
	log.Printf("[SESSION] waiting for interactive login at %s (up to %s)", profile.LoginURL, m.loginTimeout)

	err = wait.Until(ctx, "interactive login", func(c context.Context) (bool, error) {
		if loc, err := b.Location(c); err == nil {
			for _, marker := range profile.PostPublishURLs {
				if strings.Contains(loc, marker) {
					return true, nil
				}
			}
			if loc != profile.LoginURL && strings.Contains(loc, urlHost(profile.EntryURL)) && !strings.Contains(loc, "login") {
				return true, nil
			}
		}
		_, ok := browser.FirstVisible(c, b, profile.Catalog.Strategies(locator.StepLoggedInMarker))
		return ok, nil
	}, wait.PollOptions{Timeout: m.loginTimeout, Interval: time.Second})
	if err != nil {
		return nil, &UnavailableError{Platform: profile.Platform, Reason: "interactive login timed out"}
	}

	// Let post-login redirects land before snapshotting; cookies rotate
	// during the handoff.
	settle(ctx, 3*time.Second)

	state, err := b.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture session after login: %w", err)
	}
	return state, nil
}

// Persist snapshots the browser's current storage and saves it. Best-effort:
// a page or context already closed is not an error, the previous snapshot
// stays valid.
func (m *Manager) Persist(ctx context.Context, b Browser, platform, account string) {
	if b.Closed() {
		log.Printf("[SESSION] page already closed, keeping previous snapshot for %s/%s", platform, account)
		return
	}
	state, err := b.Snapshot(ctx)
	if err != nil {
		log.Printf("[SESSION] snapshot failed for %s/%s (keeping previous): %v", platform, account, err)
		return
	}
	if err := m.store.Save(platform, account, state); err != nil {
		log.Printf("[SESSION] save failed for %s/%s: %v", platform, account, err)
		return
	}
	log.Printf("[SESSION] session updated for %s/%s", platform, account)
}

func urlHost(rawURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func settle(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
