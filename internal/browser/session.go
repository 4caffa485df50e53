package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/jonathan/video-publisher/internal/locator"
)

// Options configure a browser session. Constructed once from the process
// configuration and passed in; there are no package-level settings.
type Options struct {
	ExecPath  string
	Headless  bool
	UserAgent string
	Locale    string
	// OpTimeout bounds every individual page operation.
	OpTimeout time.Duration
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Session owns one browser tab for the duration of a run. It implements Page.
type Session struct {
	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	ctx         context.Context
	opTimeout   time.Duration

	// pendingLocal holds origin-keyed localStorage entries restored from a
	// persisted snapshot, applied lazily after navigating to each origin.
	pendingLocal map[string]map[string]string
}

// NewSession launches a browser and opens one tab.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	lang := opts.Locale
	if lang == "" {
		lang = "en-US"
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		// Automation fingerprint suppression; login pages refuse obviously
		// automated browsers.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(ua),
		chromedp.Flag("lang", lang),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so failures surface here, not on the
	// first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	opTimeout := opts.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 15 * time.Second
	}

	return &Session{
		allocCancel:  allocCancel,
		tabCancel:    tabCancel,
		ctx:          tabCtx,
		opTimeout:    opTimeout,
		pendingLocal: map[string]map[string]string{},
	}, nil
}

// Close releases the tab and the browser process. Safe on every exit path.
func (s *Session) Close() {
	s.tabCancel()
	s.allocCancel()
}

// Closed reports whether the tab is gone (closed by the page itself or by us).
func (s *Session) Closed() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// run executes actions against the tab with a bounded per-operation timeout.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.Closed() {
		return context.Canceled
	}
	opCtx, cancel := context.WithTimeout(s.ctx, s.opTimeout)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-opCtx.Done():
		}
	}()
	return chromedp.Run(opCtx, actions...)
}

// Navigate loads url and applies any restored localStorage for its origin.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return s.applyPendingLocal(ctx)
}

// Location returns the tab's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Visible evaluates an existence-plus-visibility query for the strategy.
// It never waits: the result reflects the page as it is right now.
func (s *Session) Visible(ctx context.Context, st locator.Strategy) (bool, error) {
	var visible bool
	if err := s.run(ctx, chromedp.Evaluate(visibilityScript(st), &visible)); err != nil {
		return false, err
	}
	return visible, nil
}

// Click dispatches a real mouse click on the strategy's first match.
func (s *Session) Click(ctx context.Context, st locator.Strategy) error {
	sel, opt := queryFor(st)
	return s.run(ctx, chromedp.Click(sel, opt, chromedp.NodeVisible))
}

// Fill clears the matched field and types text into it.
func (s *Session) Fill(ctx context.Context, st locator.Strategy, text string) error {
	sel, opt := queryFor(st)
	return s.run(ctx,
		chromedp.Click(sel, opt, chromedp.NodeVisible),
		chromedp.Clear(sel, opt),
		chromedp.SendKeys(sel, text, opt),
	)
}

// Clear empties the matched field's pre-filled content. Works for inputs,
// textareas, and contenteditable regions, and fires an input event so
// framework-bound editors notice the change.
func (s *Session) Clear(ctx context.Context, st locator.Strategy) error {
	script := elementScript(st, `
		el.focus();
		if ('value' in el) { el.value = ''; } else { el.textContent = ''; }
		el.dispatchEvent(new Event('input', {bubbles: true}));
		return true;`)
	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("clear: no element matched %q", st.Name)
	}
	return nil
}

// Upload attaches a local file to the matched file input.
func (s *Session) Upload(ctx context.Context, st locator.Strategy, path string) error {
	sel, opt := queryFor(st)
	return s.run(ctx, chromedp.SetUploadFiles(sel, []string{path}, opt))
}

// Text returns the trimmed visible text of the first match.
func (s *Session) Text(ctx context.Context, st locator.Strategy) (string, error) {
	sel, opt := queryFor(st)
	var text string
	if err := s.run(ctx, chromedp.Text(sel, &text, opt)); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Attribute reads an attribute of the first match; ok is false when the
// attribute is absent.
func (s *Session) Attribute(ctx context.Context, st locator.Strategy, name string) (string, bool, error) {
	sel, opt := queryFor(st)
	var value string
	var ok bool
	if err := s.run(ctx, chromedp.AttributeValue(sel, name, &value, &ok, opt)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

// TypeText inserts text at the current focus, character stream style, which
// keeps rich-text editors (Draft.js and friends) on their normal input path.
func (s *Session) TypeText(ctx context.Context, text string) error {
	return s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return input.InsertText(text).Do(c)
	}))
}

// Press sends a named key to the focused element.
func (s *Session) Press(ctx context.Context, key string) error {
	return s.run(ctx, chromedp.KeyEvent(keyFor(key)))
}

// HTML returns the full serialized document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Screenshot captures the current viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func keyFor(key string) string {
	switch key {
	case "Enter":
		return kb.Enter
	case "Escape":
		return kb.Escape
	case "Backspace":
		return kb.Backspace
	case "Tab":
		return kb.Tab
	case "End":
		return kb.End
	default:
		return key
	}
}

// queryFor maps a strategy to a chromedp selector and query option. Text
// strategies become XPath containment queries.
func queryFor(st locator.Strategy) (string, chromedp.QueryOption) {
	switch st.Kind {
	case locator.KindCSS:
		return st.Query, chromedp.ByQuery
	case locator.KindXPath:
		return st.Query, chromedp.BySearch
	case locator.KindText:
		return textXPath(st.Query), chromedp.BySearch
	default:
		return st.Query, chromedp.ByQuery
	}
}

func textXPath(text string) string {
	return fmt.Sprintf(`//*[contains(text(),%s)]`, xpathLiteral(text))
}

// xpathLiteral quotes a string for embedding in an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}

// elementScript wraps body in a resolver that binds el to the strategy's
// first match; the script evaluates to false when nothing matches.
func elementScript(st locator.Strategy, body string) string {
	var finder string
	switch st.Kind {
	case locator.KindCSS:
		finder = fmt.Sprintf(`document.querySelector(%s)`, strconv.Quote(st.Query))
	case locator.KindXPath:
		finder = fmt.Sprintf(`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`, strconv.Quote(st.Query))
	case locator.KindText:
		finder = fmt.Sprintf(`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`, strconv.Quote(textXPath(st.Query)))
	default:
		finder = "null"
	}
	return fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return false;
		%s
	})()`, finder, body)
}

// visibilityScript builds a boolean JS probe for the strategy.
func visibilityScript(st locator.Strategy) string {
	const check = `
		function visible(el) {
			if (!(el instanceof Element)) return false;
			const r = el.getBoundingClientRect();
			if (r.width <= 0 || r.height <= 0) return false;
			const cs = getComputedStyle(el);
			return cs.visibility !== 'hidden' && cs.display !== 'none';
		}`

	switch st.Kind {
	case locator.KindCSS:
		return fmt.Sprintf(`(() => {%s
			for (const el of document.querySelectorAll(%s)) {
				if (visible(el)) return true;
			}
			return false;
		})()`, check, strconv.Quote(st.Query))
	case locator.KindXPath:
		return xpathVisibilityScript(check, st.Query)
	case locator.KindText:
		return xpathVisibilityScript(check, textXPath(st.Query))
	default:
		return "false"
	}
}

func xpathVisibilityScript(check, expr string) string {
	return fmt.Sprintf(`(() => {%s
		const it = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		for (let i = 0; i < it.snapshotLength; i++) {
			if (visible(it.snapshotItem(i))) return true;
		}
		return false;
	})()`, check, strconv.Quote(expr))
}
