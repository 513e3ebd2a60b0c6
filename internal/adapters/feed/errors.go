package feed

import "errors"

// Failure kinds. The engine treats every one of them as a failed fetch.
var (
	ErrRequest = errors.New("feed request failed")
	ErrStatus  = errors.New("feed returned non-success status")
	ErrDecode  = errors.New("feed body is not valid JSON")
	ErrShape   = errors.New("feed body has unexpected shape")
)
