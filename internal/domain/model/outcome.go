package model

import "errors"

// errUnknownFailure stands in for a nil reason passed to FetchFailed.
var errUnknownFailure = errors.New("fetch failed")

// FetchOutcome is the result of one feed request: either a counted Score or
// a failure. The reason is informational only.
type FetchOutcome struct {
	score Score
	err   error
}

// Fetched wraps a successful count.
func Fetched(s Score) FetchOutcome { return FetchOutcome{score: s} }

// FetchFailed wraps a failure reason.
func FetchFailed(reason error) FetchOutcome {
	if reason == nil {
		reason = errUnknownFailure
	}
	return FetchOutcome{err: reason}
}

// OK reports whether the fetch succeeded.
func (o FetchOutcome) OK() bool { return o.err == nil }

// Score returns the counted score; zero on failure.
func (o FetchOutcome) Score() Score { return o.score }

// Err returns the failure reason, nil on success.
func (o FetchOutcome) Err() error { return o.err }
