package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable indicates the agency backend rejected or dropped a call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMatchNotFound occurs when a derived ledger entry cannot be located for deletion.
	ErrMatchNotFound = errors.New("derived ledger entry match not found")
	// ErrIdempotencyConflict indicates a duplicate submission key.
	ErrIdempotencyConflict = errors.New("idempotent request already processed")
)
