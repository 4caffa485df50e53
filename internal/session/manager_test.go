package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/locator"
)

const (
	qLogin  = "div.login-panel"
	qAvatar = "div.avatar"
)

func sessionProfile() *locator.Profile {
	return &locator.Profile{
		Platform:        "testplat",
		EntryURL:        "https://creator.example.com/upload",
		LoginURL:        "https://example.com/login",
		PostPublishURLs: []string{"creator.example.com/content"},
		Catalog: locator.Catalog{
			locator.StepLoginMarker:    {{Name: "login panel", Kind: locator.KindCSS, Query: qLogin}},
			locator.StepLoggedInMarker: {{Name: "avatar", Kind: locator.KindCSS, Query: qAvatar}},
		},
	}
}

// memStore is an in-memory Store for tests.
type memStore struct {
	mu    sync.Mutex
	data  map[string]*browser.StorageState
	saves int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]*browser.StorageState{}}
}

func (s *memStore) Load(platform, account string) (*browser.StorageState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.data[platform+"/"+account]
	return state, ok, nil
}

func (s *memStore) Save(platform, account string, state *browser.StorageState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[platform+"/"+account] = state
	s.saves++
	return nil
}

// fakeBrowser satisfies Browser with scripted visibility and location.
type fakeBrowser struct {
	mu       sync.Mutex
	visible  map[string]bool
	location string
	html     string
	closed   bool
	snapshot *browser.StorageState
	restored *browser.StorageState
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.location == "" {
		b.location = url
	}
	return nil
}

func (b *fakeBrowser) Location(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location, nil
}

func (b *fakeBrowser) Visible(ctx context.Context, s locator.Strategy) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible[s.Query], nil
}

func (b *fakeBrowser) Click(ctx context.Context, s locator.Strategy) error              { return nil }
func (b *fakeBrowser) Fill(ctx context.Context, s locator.Strategy, text string) error { return nil }
func (b *fakeBrowser) Clear(ctx context.Context, s locator.Strategy) error             { return nil }
func (b *fakeBrowser) Upload(ctx context.Context, s locator.Strategy, path string) error {
	return nil
}
func (b *fakeBrowser) Text(ctx context.Context, s locator.Strategy) (string, error) { return "", nil }
func (b *fakeBrowser) Attribute(ctx context.Context, s locator.Strategy, name string) (string, bool, error) {
	return "", false, nil
}
func (b *fakeBrowser) TypeText(ctx context.Context, text string) error { return nil }
func (b *fakeBrowser) Press(ctx context.Context, key string) error     { return nil }

func (b *fakeBrowser) HTML(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.html, nil
}

func (b *fakeBrowser) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }

func (b *fakeBrowser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *fakeBrowser) Restore(ctx context.Context, state *browser.StorageState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restored = state
	return nil
}

func (b *fakeBrowser) Snapshot(ctx context.Context) (*browser.StorageState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot, nil
}

// countingFactory hands out the prepared browser and counts invocations.
type countingFactory struct {
	browser *fakeBrowser
	calls   int
	visible []bool
}

func (f *countingFactory) factory(ctx context.Context, visible bool) (Browser, func(), error) {
	f.calls++
	f.visible = append(f.visible, visible)
	return f.browser, func() {}, nil
}

func fastManager(store Store, factory Factory) *Manager {
	m := NewManager(store, factory)
	m.probeTimeout = 100 * time.Millisecond
	m.loginTimeout = 500 * time.Millisecond
	return m
}

func TestEnsureSession_ValidStoredSession(t *testing.T) {
	store := newMemStore()
	stored := sampleState()
	store.data["testplat/creator"] = stored

	f := &countingFactory{browser: &fakeBrowser{visible: map[string]bool{qAvatar: true}}}
	m := fastManager(store, f.factory)

	state, err := m.EnsureSession(context.Background(), sessionProfile(), "creator", false)
	require.NoError(t, err)
	assert.Equal(t, stored, state)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, stored, f.browser.restored)
}

// A pair that already passed its probe is not re-probed within the process.
func TestEnsureSession_Idempotent(t *testing.T) {
	store := newMemStore()
	store.data["testplat/creator"] = sampleState()

	f := &countingFactory{browser: &fakeBrowser{visible: map[string]bool{qAvatar: true}}}
	m := fastManager(store, f.factory)

	_, err := m.EnsureSession(context.Background(), sessionProfile(), "creator", false)
	require.NoError(t, err)
	_, err = m.EnsureSession(context.Background(), sessionProfile(), "creator", false)
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls, "second call must reuse the cached validation")
}

func TestEnsureSession_MissingWithoutInteractive(t *testing.T) {
	store := newMemStore()
	f := &countingFactory{browser: &fakeBrowser{visible: map[string]bool{}}}
	m := fastManager(store, f.factory)

	state, err := m.EnsureSession(context.Background(), sessionProfile(), "creator", false)
	require.Error(t, err)
	assert.Nil(t, state)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "testplat", unavailable.Platform)
	assert.Equal(t, "creator", unavailable.Account)

	// No browser work at all: the failure is decided before any UI opens.
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, 0, store.saves)
}

func TestEnsureSession_StaleWithoutInteractive(t *testing.T) {
	store := newMemStore()
	store.data["testplat/creator"] = sampleState()

	f := &countingFactory{browser: &fakeBrowser{visible: map[string]bool{qLogin: true}}}
	m := fastManager(store, f.factory)

	_, err := m.EnsureSession(context.Background(), sessionProfile(), "creator", false)
	require.Error(t, err)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Contains(t, unavailable.Reason, "liveness probe")
}

func TestEnsureSession_InteractiveCapture(t *testing.T) {
	store := newMemStore()
	captured := sampleState()
	// The login browser lands on a post-publish URL straight away.
	f := &countingFactory{browser: &fakeBrowser{
		visible:  map[string]bool{},
		location: "https://creator.example.com/content/manage",
		snapshot: captured,
	}}
	m := fastManager(store, f.factory)

	state, err := m.EnsureSession(context.Background(), sessionProfile(), "creator", true)
	require.NoError(t, err)
	assert.Equal(t, captured, state)

	// The capture browser must be headed.
	require.Equal(t, 1, f.calls)
	assert.True(t, f.visible[0])

	saved, found, err := store.Load("testplat", "creator")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, captured, saved)
}

func TestEnsureSession_InteractiveLoginTimesOut(t *testing.T) {
	store := newMemStore()
	f := &countingFactory{browser: &fakeBrowser{visible: map[string]bool{}}}
	m := fastManager(store, f.factory)

	_, err := m.EnsureSession(context.Background(), sessionProfile(), "creator", true)
	require.Error(t, err)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Contains(t, unavailable.Reason, "login timed out")
	assert.Equal(t, 0, store.saves)
}

func TestProbe_HTMLFallbackDetectsLogin(t *testing.T) {
	store := newMemStore()
	store.data["testplat/creator"] = sampleState()

	// No live marker ever resolves; the rendered document carries the login
	// panel the element probe missed.
	f := &countingFactory{browser: &fakeBrowser{
		visible: map[string]bool{},
		html:    `<html><body><div class="login-panel"></div></body></html>`,
	}}
	m := fastManager(store, f.factory)

	_, err := m.EnsureSession(context.Background(), sessionProfile(), "creator", false)
	require.Error(t, err)
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestPersist_SavesSnapshot(t *testing.T) {
	store := newMemStore()
	state := sampleState()
	b := &fakeBrowser{snapshot: state}
	m := fastManager(store, func(ctx context.Context, visible bool) (Browser, func(), error) {
		return b, func() {}, nil
	})

	m.Persist(context.Background(), b, "testplat", "creator")

	saved, found, err := store.Load("testplat", "creator")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, state, saved)
}

func TestPersist_SkipsClosedPage(t *testing.T) {
	store := newMemStore()
	b := &fakeBrowser{closed: true, snapshot: sampleState()}
	m := fastManager(store, func(ctx context.Context, visible bool) (Browser, func(), error) {
		return b, func() {}, nil
	})

	m.Persist(context.Background(), b, "testplat", "creator")

	assert.Equal(t, 0, store.saves)
}
