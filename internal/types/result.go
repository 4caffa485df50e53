package types

import "time"

// Status is the terminal outcome of one upload run.
type Status string

const (
	// StatusSuccess means a publish-confirmation signal was observed.
	StatusSuccess Status = "success"
	// StatusFailed means the run hit a fatal error before or during publish.
	StatusFailed Status = "failed"
	// StatusTimedOut means the publish click was issued but no confirmation
	// signal appeared within the bounded window; the post likely went out but
	// needs manual verification.
	StatusTimedOut Status = "timed_out"
)

// ErrorKind classifies run failures so callers can distinguish hard failures
// from unverified-but-likely successes.
type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindSessionUnavailable   ErrorKind = "session_unavailable"
	KindTransientUIFailure   ErrorKind = "transient_ui_failure"
	KindUploadRejected       ErrorKind = "upload_rejected"
	KindOptionalFeature      ErrorKind = "optional_feature_unavailable"
	KindPublishNotConfirmed  ErrorKind = "publish_not_confirmed"
	KindSigningFailure       ErrorKind = "signing_failure"
	KindValidation           ErrorKind = "validation"
)

// RunResult is produced by exactly one state-machine run.
type RunResult struct {
	RunID      string        `json:"run_id"`
	Platform   string        `json:"platform"`
	Title      string        `json:"title"`
	Status     Status        `json:"status"`
	Kind       ErrorKind     `json:"error_kind,omitempty"`
	Err        error         `json:"-"`
	FinalState string        `json:"final_state"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Confirmed reports whether the platform positively acknowledged the publish.
func (r RunResult) Confirmed() bool { return r.Status == StatusSuccess }

// Unconfirmed reports whether the publish was issued but never acknowledged.
func (r RunResult) Unconfirmed() bool {
	return r.Status == StatusTimedOut && r.Kind == KindPublishNotConfirmed
}
