package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// Cookie is a serialization-stable subset of a browser cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"http_only,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"same_site,omitempty"`
}

// OriginState is one origin's localStorage dump.
type OriginState struct {
	Origin       string            `json:"origin"`
	LocalStorage map[string]string `json:"local_storage"`
}

// StorageState is the persisted login snapshot for one account: cookies plus
// per-origin localStorage. Callers treat it as opaque.
type StorageState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins,omitempty"`
}

// CookieValue returns the value of the first cookie with the given name.
func (st *StorageState) CookieValue(name string) string {
	for _, c := range st.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Snapshot captures all browser cookies and the current origin's localStorage.
func (s *Session) Snapshot(ctx context.Context) (*StorageState, error) {
	var cookies []*network.Cookie
	var dump struct {
		Origin string            `json:"origin"`
		Items  map[string]string `json:"items"`
	}

	err := s.run(ctx,
		chromedp.ActionFunc(func(c context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(c)
			return err
		}),
		chromedp.Evaluate(`({origin: location.origin, items: Object.assign({}, window.localStorage)})`, &dump),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot storage state: %w", err)
	}

	state := &StorageState{Cookies: make([]Cookie, 0, len(cookies))}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	if len(dump.Items) > 0 {
		state.Origins = append(state.Origins, OriginState{Origin: dump.Origin, LocalStorage: dump.Items})
	}
	return state, nil
}

// Restore installs a snapshot's cookies immediately and stashes its
// localStorage entries; those apply on the next navigation to each origin,
// since localStorage is only writable from a page on that origin.
func (s *Session) Restore(ctx context.Context, state *StorageState) error {
	if state == nil {
		return nil
	}

	params := make([]*network.CookieParam, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != "" {
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		if c.Expires > 0 {
			e := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &e
		}
		params = append(params, p)
	}

	err := s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return storage.SetCookies(params).Do(c)
	}))
	if err != nil {
		return fmt.Errorf("restore cookies: %w", err)
	}

	for _, o := range state.Origins {
		if len(o.LocalStorage) > 0 {
			s.pendingLocal[o.Origin] = o.LocalStorage
		}
	}
	return nil
}

// applyPendingLocal writes stashed localStorage entries if the tab is now on
// an origin we hold entries for.
func (s *Session) applyPendingLocal(ctx context.Context) error {
	if len(s.pendingLocal) == 0 {
		return nil
	}

	var origin string
	if err := s.run(ctx, chromedp.Evaluate(`location.origin`, &origin)); err != nil {
		return nil
	}
	items, ok := s.pendingLocal[origin]
	if !ok {
		return nil
	}

	script := "(() => {"
	for k, v := range items {
		script += fmt.Sprintf("localStorage.setItem(%s, %s);", strconv.Quote(k), strconv.Quote(v))
	}
	script += "return true;})()"

	var done bool
	if err := s.run(ctx, chromedp.Evaluate(script, &done)); err != nil {
		return fmt.Errorf("restore localStorage for %s: %w", origin, err)
	}
	delete(s.pendingLocal, origin)
	return nil
}
