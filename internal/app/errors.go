package service

import "errors"

// Sentinel errors for this package.
var (
	ErrNoFetcher = errors.New("no feed fetcher configured")
)
