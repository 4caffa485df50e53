// Package uploader implements the per-video upload workflow as a finite-state
// machine parameterized by a platform profile. One machine drives one browser
// tab from navigation through publish confirmation; every platform runs the
// same control flow and differs only in its locator catalog, capabilities,
// and pacing.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/locator"
	"github.com/jonathan/video-publisher/internal/obstruction"
	"github.com/jonathan/video-publisher/internal/signing"
	"github.com/jonathan/video-publisher/internal/types"
	"github.com/jonathan/video-publisher/internal/wait"
)

// Signer abstracts the external signature service; nil when the platform does
// not require signing.
type Signer interface {
	Sign(ctx context.Context, uri string, payload any, tokenA, webSession string) (signing.Signature, error)
}

// Timeouts names the bounded windows of one run. Zero fields take defaults.
type Timeouts struct {
	Surface       time.Duration // upload surface detection
	UploadProcess time.Duration // platform-side file processing
	PublishEnable time.Duration // publish control becoming clickable
	PublishWindow time.Duration // publish confirmation signals
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Surface <= 0 {
		t.Surface = 30 * time.Second
	}
	if t.UploadProcess <= 0 {
		t.UploadProcess = 5 * time.Minute
	}
	if t.PublishEnable <= 0 {
		t.PublishEnable = 60 * time.Second
	}
	if t.PublishWindow <= 0 {
		t.PublishWindow = 90 * time.Second
	}
	return t
}

// stateAttempts bounds the retries at each state boundary (states after file
// navigation). There is no global unwind: a state that keeps failing demotes
// the run to Failed from right where it stands.
const stateAttempts = 3

// Machine drives one upload run. Construct one per job.
type Machine struct {
	page        browser.Page
	profile     *locator.Profile
	clearer     *obstruction.Clearer
	signer      Signer
	session     *browser.StorageState
	timeouts    Timeouts
	artifactDir string
	now         func() time.Time
}

// Options wires a machine's collaborators.
type Options struct {
	Page        browser.Page
	Profile     *locator.Profile
	Signer      Signer
	Session     *browser.StorageState
	Timeouts    Timeouts
	ArtifactDir string
	// Now is the clock used for schedule math; nil means time.Now.
	Now func() time.Time
}

// New builds a machine for one run.
func New(opts Options) *Machine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		page:        opts.Page,
		profile:     opts.Profile,
		clearer:     obstruction.NewClearer(opts.Profile.Catalog, opts.Profile.Pacing.DialogSettle),
		signer:      opts.Signer,
		session:     opts.Session,
		timeouts:    opts.Timeouts.withDefaults(),
		artifactDir: opts.ArtifactDir,
		now:         now,
	}
}

// run carries the mutable state of one execution.
type run struct {
	job            *types.VideoJob
	publishClicked bool
	resubmitted    bool
}

type state struct {
	name string
	// skip reports whether the state does not apply to this job/profile.
	skip func(r *run) bool
	exec func(ctx context.Context, r *run) error
	// attempts overrides stateAttempts when nonzero.
	attempts int
}

// Run executes the workflow for one job and always produces a RunResult.
// The caller owns the page and closes it afterwards on every path.
func (m *Machine) Run(ctx context.Context, job *types.VideoJob) types.RunResult {
	started := m.now()
	result := types.RunResult{
		RunID:    uuid.New().String(),
		Platform: m.profile.Platform,
		Title:    job.Title,
	}

	r := &run{job: job}
	states := []state{
		{name: "PageReady", exec: m.toPageReady, attempts: 1},
		{name: "FileSubmitted", exec: m.submitFile},
		{name: "MetadataEntered", exec: m.enterMetadata},
		{name: "OptionsConfigured", skip: m.skipOptions, exec: m.configureOptions},
		{name: "UploadConfirmed", exec: m.confirmUpload},
		{name: "ScheduleSet", skip: m.skipSchedule, exec: m.setSchedule},
		{name: "PublishAttempted", exec: m.clickPublish},
		{name: "Success", exec: m.confirmPublish},
	}

	for _, st := range states {
		if st.skip != nil && st.skip(r) {
			continue
		}

		attempts := st.attempts
		if attempts == 0 {
			attempts = stateAttempts
		}

		err := wait.Do(ctx, st.name, func(c context.Context) error {
			err := st.exec(c, r)
			if err != nil {
				log.Printf("[UPLOAD:%s] state %s: %v", m.profile.Platform, st.name, err)
			}
			return err
		}, wait.RetryOptions{
			Attempts:  attempts,
			Backoff:   time.Second,
			Retryable: retryableAtState,
		})
		if err != nil {
			result.Status, result.Kind = classify(err, r)
			result.Err = err
			result.FinalState = st.name
			result.Elapsed = m.now().Sub(started)
			return result
		}
		log.Printf("[UPLOAD:%s] -> %s", m.profile.Platform, st.name)
	}

	result.Status = types.StatusSuccess
	result.FinalState = "Success"
	result.Elapsed = m.now().Sub(started)
	return result
}

func (m *Machine) skipOptions(r *run) bool {
	return !m.wantsThumbnail(r.job) && !m.wantsProduct(r.job) && !m.wantsAIFlag(r.job) && !m.wantsGeo(r.job)
}

func (m *Machine) skipSchedule(r *run) bool {
	return !r.job.Scheduled() || m.profile.Capabilities.Schedule == locator.ScheduleNone
}

// fatalError marks failures that must not be retried at the state boundary.
type fatalError struct {
	kind types.ErrorKind
	err  error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func fatal(kind types.ErrorKind, err error) error {
	return &fatalError{kind: kind, err: err}
}

// notConfirmedError terminates the confirmation wait without a signal.
type notConfirmedError struct {
	clicked bool
}

func (e *notConfirmedError) Error() string {
	if e.clicked {
		return "publish clicked but no confirmation signal observed"
	}
	return "publish control never became clickable"
}

func retryableAtState(err error) bool {
	var f *fatalError
	var nc *notConfirmedError
	return !errors.As(err, &f) && !errors.As(err, &nc)
}

func classify(err error, r *run) (types.Status, types.ErrorKind) {
	var f *fatalError
	if errors.As(err, &f) {
		return types.StatusFailed, f.kind
	}
	var nc *notConfirmedError
	if errors.As(err, &nc) {
		if nc.clicked {
			// Probably succeeded but unverified; distinct from both Success
			// and a hard failure.
			return types.StatusTimedOut, types.KindPublishNotConfirmed
		}
		return types.StatusFailed, types.KindPublishNotConfirmed
	}
	var se *signing.SigningError
	if errors.As(err, &se) {
		return types.StatusFailed, types.KindSigningFailure
	}
	return types.StatusFailed, types.KindTransientUIFailure
}

// find returns the first visible strategy for a step.
func (m *Machine) find(ctx context.Context, step locator.Step) (locator.Strategy, bool) {
	return browser.FirstVisible(ctx, m.page, m.profile.Catalog.Strategies(step))
}

// settle pauses for a declared UI pacing delay.
func settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (m *Machine) clearObstructions(ctx context.Context) {
	m.clearer.Clear(ctx, m.page, 3)
}

// templated fills a step's template strategies with a runtime value.
func templated(strategies []locator.Strategy, value string) []locator.Strategy {
	out := make([]locator.Strategy, len(strategies))
	for i, st := range strategies {
		out[i] = st
		out[i].Query = fmt.Sprintf(st.Query, value)
	}
	return out
}
