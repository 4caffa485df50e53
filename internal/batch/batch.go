// Package batch runs a sequence of upload jobs one at a time, isolating each
// job's browser session and collecting every outcome into a summary.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/locator"
	"github.com/jonathan/video-publisher/internal/session"
	"github.com/jonathan/video-publisher/internal/types"
	"github.com/jonathan/video-publisher/internal/uploader"
)

// Sessions is the slice of the session manager the orchestrator needs.
type Sessions interface {
	EnsureSession(ctx context.Context, profile *locator.Profile, account string, interactiveAllowed bool) (*browser.StorageState, error)
	Persist(ctx context.Context, b session.Browser, platform, account string)
}

// Options wires an orchestrator's collaborators.
type Options struct {
	Sessions Sessions
	Factory  session.Factory
	// Signer is used by platforms that require request signing; nil is
	// acceptable when no such platform appears in the batch.
	Signer      uploader.Signer
	Timeouts    uploader.Timeouts
	ArtifactDir string
	// InteractiveLogin permits a headed login capture when a stored
	// session is missing or stale.
	InteractiveLogin bool
}

// Orchestrator executes jobs strictly sequentially. One job's failure never
// stops the batch.
type Orchestrator struct {
	opts Options

	// runJob is swapped out in tests.
	runJob func(ctx context.Context, page browser.Page, profile *locator.Profile, state *browser.StorageState, job *types.VideoJob) types.RunResult
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{opts: opts}
	o.runJob = o.runMachine
	return o
}

// Failure records one non-confirmed job for the batch report.
type Failure struct {
	Index    int
	Platform string
	Title    string
	Status   types.Status
	Kind     types.ErrorKind
	Err      error
}

// Summary aggregates a batch. Unconfirmed runs clicked publish but never saw
// an acknowledgement; they need manual verification, not automatic retry.
type Summary struct {
	Total       int
	Confirmed   int
	Unconfirmed int
	Failed      int
	Results     []types.RunResult
	Failures    []Failure
	Elapsed     time.Duration
}

// Run executes every job in order and always returns a complete summary.
// The context cancels the batch between and within jobs.
func (o *Orchestrator) Run(ctx context.Context, jobs []*types.VideoJob) Summary {
	started := time.Now()
	summary := Summary{Total: len(jobs)}

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			summary.record(i, failedResult(job, types.KindTransientUIFailure, err))
			continue
		}
		log.Printf("[BATCH] job %d/%d: %s %q", i+1, len(jobs), job.Platform, job.Title)
		summary.record(i, o.runOne(ctx, job))
	}

	summary.Elapsed = time.Since(started)
	return summary
}

// runOne isolates a single job: validation, session, browser, and the state
// machine, with session persistence and browser teardown on every path.
func (o *Orchestrator) runOne(ctx context.Context, job *types.VideoJob) types.RunResult {
	if err := job.Validate(); err != nil {
		return failedResult(job, types.KindValidation, err)
	}
	profile, err := locator.LookupProfile(job.Platform)
	if err != nil {
		return failedResult(job, types.KindValidation, err)
	}

	state, err := o.opts.Sessions.EnsureSession(ctx, profile, job.Account, o.opts.InteractiveLogin)
	if err != nil {
		var unavailable *session.UnavailableError
		if errors.As(err, &unavailable) {
			return failedResult(job, types.KindSessionUnavailable, err)
		}
		return failedResult(job, types.KindSessionUnavailable, fmt.Errorf("session for %s/%s: %w", job.Platform, job.Account, err))
	}

	b, release, err := o.opts.Factory(ctx, false)
	if err != nil {
		return failedResult(job, types.KindTransientUIFailure, fmt.Errorf("open browser: %w", err))
	}
	defer release()

	if err := b.Restore(ctx, state); err != nil {
		return failedResult(job, types.KindSessionUnavailable, fmt.Errorf("restore session: %w", err))
	}

	result := o.runJob(ctx, b, profile, state, job)

	// Persist whatever cookies the run rotated, even after a failure.
	o.opts.Sessions.Persist(ctx, b, job.Platform, job.Account)
	return result
}

func (o *Orchestrator) runMachine(ctx context.Context, page browser.Page, profile *locator.Profile, state *browser.StorageState, job *types.VideoJob) types.RunResult {
	var signer uploader.Signer
	if profile.RequiresSigning {
		signer = o.opts.Signer
	}
	m := uploader.New(uploader.Options{
		Page:        page,
		Profile:     profile,
		Signer:      signer,
		Session:     state,
		Timeouts:    o.opts.Timeouts,
		ArtifactDir: o.opts.ArtifactDir,
	})
	return m.Run(ctx, job)
}

func (s *Summary) record(index int, r types.RunResult) {
	s.Results = append(s.Results, r)
	switch {
	case r.Confirmed():
		s.Confirmed++
	case r.Unconfirmed():
		s.Unconfirmed++
	default:
		s.Failed++
	}
	if !r.Confirmed() {
		s.Failures = append(s.Failures, Failure{
			Index:    index,
			Platform: r.Platform,
			Title:    r.Title,
			Status:   r.Status,
			Kind:     r.Kind,
			Err:      r.Err,
		})
	}
}

func failedResult(job *types.VideoJob, kind types.ErrorKind, err error) types.RunResult {
	return types.RunResult{
		RunID:      uuid.NewString(),
		Platform:   job.Platform,
		Title:      job.Title,
		Status:     types.StatusFailed,
		Kind:       kind,
		Err:        err,
		FinalState: "",
	}
}
