package uploader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/locator"
	"github.com/jonathan/video-publisher/internal/types"
	"github.com/jonathan/video-publisher/internal/wait"
)

var errSurfaceFound = errors.New("upload surface found")

// toPageReady navigates to the upload entry point and polls the known surface
// signals in parallel. Platforms serve structurally different variants of the
// same page; any one signal is enough.
func (m *Machine) toPageReady(ctx context.Context, r *run) error {
	if err := m.page.Navigate(ctx, m.profile.EntryURL); err != nil {
		return fatal(types.KindTransientUIFailure, err)
	}

	strategies := m.profile.Catalog.Strategies(locator.StepUploadSurface)
	if len(strategies) == 0 {
		return fatal(types.KindTransientUIFailure, fmt.Errorf("no upload surface strategies for %s", m.profile.Platform))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, st := range strategies {
		g.Go(func() error {
			err := wait.Until(gctx, "upload surface: "+st.Name, func(c context.Context) (bool, error) {
				return m.page.Visible(c, st)
			}, wait.PollOptions{Timeout: m.timeouts.Surface, Interval: 500 * time.Millisecond})
			if err == nil {
				// Sentinel cancels the sibling polls.
				return errSurfaceFound
			}
			return nil
		})
	}

	if err := g.Wait(); !errors.Is(err, errSurfaceFound) {
		browser.SaveDebugArtifacts(ctx, m.page, m.artifactDir, "upload-surface-"+m.profile.Platform)
		return fatal(types.KindTransientUIFailure,
			fmt.Errorf("upload surface not detected within %s", m.timeouts.Surface))
	}
	return nil
}

// submitFile hands the video file to the upload control. Fatal on failure:
// nothing downstream can recover if the file never attaches.
func (m *Machine) submitFile(ctx context.Context, r *run) error {
	strategies := m.profile.Catalog.Strategies(locator.StepFileInput)
	var lastErr error
	for _, st := range strategies {
		if err := m.page.Upload(ctx, st, r.job.FilePath); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no file input strategies for %s", m.profile.Platform)
	}
	return fatal(types.KindTransientUIFailure, fmt.Errorf("file submission failed: %w", lastErr))
}

// enterMetadata fills the title field and the tag editor. Best-effort: a
// missing editor falls back to the first free-text region, and a run never
// fails on metadata alone.
func (m *Machine) enterMetadata(ctx context.Context, r *run) error {
	m.clearObstructions(ctx)

	caps := m.profile.Capabilities
	title := r.job.TitleForUpload(caps.MaxTitle)

	if st, ok := m.find(ctx, locator.StepTitleField); ok {
		if err := m.page.Fill(ctx, st, title); err != nil {
			m.logf("title fill via %q failed: %v", st.Name, err)
		}
	}

	editor, ok := m.find(ctx, locator.StepDescEditor)
	if !ok {
		// Fall back to any free-text editable region rather than failing.
		editor, ok = m.find(ctx, locator.StepFallbackEditor)
		if !ok {
			m.logf("no description editor found, skipping tags")
			return nil
		}
		m.logf("description editor missing, using fallback editor %q", editor.Name)
	}

	if err := m.page.Click(ctx, editor); err != nil {
		m.logf("editor focus failed: %v", err)
		return nil
	}
	if err := m.page.Clear(ctx, editor); err != nil {
		m.logf("editor clear failed: %v", err)
	}

	body := r.job.Description
	if body == "" {
		body = title
	}
	if err := m.page.TypeText(ctx, body); err != nil {
		m.logf("description entry failed: %v", err)
		return nil
	}
	_ = m.page.Press(ctx, "Enter")

	// Tag editors on these platforms drop rapid sequential input; the settle
	// delay between insertions is a hard pacing requirement.
	tags := r.job.TagsForUpload(caps.MaxTags)
	for i, tag := range tags {
		if err := m.page.TypeText(ctx, hashtag(tag)); err != nil {
			m.logf("tag %d/%d entry failed: %v", i+1, len(tags), err)
			continue
		}
		settle(ctx, m.profile.Pacing.TagSettle)
	}
	if len(tags) > 0 {
		m.logf("entered %d tags", len(tags))
	}
	return nil
}

// hashtag formats one tag as a hashtag token with a trailing separator.
func hashtag(tag string) string {
	return "#" + strings.TrimPrefix(strings.TrimSpace(tag), "#") + " "
}

// confirmUpload waits for the platform's own file-accepted indicator,
// distinguishing it from the upload-failed indicator. A detected failure
// triggers exactly one re-submission before the run gives up.
func (m *Machine) confirmUpload(ctx context.Context, r *run) error {
	var rejected bool
	err := wait.Until(ctx, "upload processed", func(c context.Context) (bool, error) {
		if _, ok := m.find(c, locator.StepUploadComplete); ok {
			return true, nil
		}
		if _, ok := m.find(c, locator.StepUploadFailed); ok {
			if r.resubmitted {
				rejected = true
				return true, nil
			}
			m.logf("upload failure indicator detected, re-submitting once")
			r.resubmitted = true
			if st, found := browser.FirstVisible(c, m.page, m.profile.Catalog.Strategies(locator.StepReuploadInput)); found {
				if err := m.page.Upload(c, st, r.job.FilePath); err != nil {
					m.logf("re-submission failed: %v", err)
				}
			}
		}
		return false, nil
	}, wait.PollOptions{Timeout: m.timeouts.UploadProcess, Interval: 2 * time.Second})

	if rejected {
		return fatal(types.KindUploadRejected, fmt.Errorf("platform rejected the file after re-submission"))
	}
	if err != nil {
		return fmt.Errorf("upload processing: %w", err)
	}
	return nil
}

// clickPublish clears the viewport, signs the request when the platform
// demands it, and clicks the publish control only once it is enabled. A
// control that never enables is not an error here; the confirmation state
// decides what that means.
func (m *Machine) clickPublish(ctx context.Context, r *run) error {
	m.clearObstructions(ctx)

	if m.profile.RequiresSigning {
		if err := m.signRequest(ctx, r); err != nil {
			return err
		}
	}

	var button locator.Strategy
	err := wait.Until(ctx, "publish control enabled", func(c context.Context) (bool, error) {
		st, ok := m.find(c, locator.StepPublishButton)
		if !ok {
			return false, nil
		}
		if _, disabled, err := m.page.Attribute(c, st, "disabled"); err != nil || disabled {
			return false, nil
		}
		button = st
		return true, nil
	}, wait.PollOptions{Timeout: m.timeouts.PublishEnable, Interval: time.Second})
	if err != nil {
		m.logf("publish control never became clickable")
		return nil
	}

	if err := m.page.Click(ctx, button); err != nil {
		return fmt.Errorf("publish click: %w", err)
	}
	r.publishClicked = true
	m.logf("publish click issued")
	settle(ctx, m.profile.Pacing.DialogSettle)
	m.clearObstructions(ctx)
	return nil
}

// signRequest obtains a signature for the content-creation request using the
// session token pair. Exhausted retries are fatal for this run.
func (m *Machine) signRequest(ctx context.Context, r *run) error {
	if m.signer == nil {
		return fatal(types.KindSigningFailure, fmt.Errorf("platform %s requires signing but no signer is configured", m.profile.Platform))
	}
	var a1, webSession string
	if m.session != nil {
		a1 = m.session.CookieValue("a1")
		webSession = m.session.CookieValue("web_session")
	}
	payload := map[string]any{
		"title": r.job.Title,
		"tags":  r.job.Tags,
	}
	sig, err := m.signer.Sign(ctx, m.profile.SigningURI, payload, a1, webSession)
	if err != nil {
		return fatal(types.KindSigningFailure, err)
	}
	m.logf("request signed (x-t %s)", sig.XT)
	return nil
}

// confirmPublish polls the independent completion signals until one fires or
// the bounded window closes. Any single signal is sufficient evidence.
func (m *Machine) confirmPublish(ctx context.Context, r *run) error {
	err := wait.Until(ctx, "publish confirmation", func(c context.Context) (bool, error) {
		// (a) the tab closed on its own
		if m.page.Closed() {
			return true, nil
		}
		// (b) navigation to a known post-publish URL
		if loc, err := m.page.Location(c); err == nil {
			for _, marker := range m.profile.PostPublishURLs {
				if strings.Contains(loc, marker) {
					return true, nil
				}
			}
		}
		// (c) an explicit success indicator
		if _, ok := m.find(c, locator.StepSuccessMarker); ok {
			return true, nil
		}
		// (d) no error dialog plus a fresh entry in the content list
		if m.profile.Catalog.Has(locator.StepContentList) {
			_, errShown := m.find(c, locator.StepErrorDialog)
			if _, listed := m.find(c, locator.StepContentList); listed && !errShown {
				return true, nil
			}
		}
		// The publish control can lag behind an obstruction; keep trying the
		// click while the window is open.
		if !r.publishClicked {
			if st, ok := m.find(c, locator.StepPublishButton); ok {
				if _, disabled, err := m.page.Attribute(c, st, "disabled"); err == nil && !disabled {
					if err := m.page.Click(c, st); err == nil {
						r.publishClicked = true
						m.logf("publish click issued (late)")
					}
				}
			}
		}
		return false, nil
	}, wait.PollOptions{Timeout: m.timeouts.PublishWindow, Interval: time.Second})

	if err != nil {
		return &notConfirmedError{clicked: r.publishClicked}
	}
	return nil
}

func (m *Machine) logf(format string, args ...any) {
	log.Printf("[UPLOAD:%s] "+format, append([]any{m.profile.Platform}, args...)...)
}
