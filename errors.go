package arrowdoc

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Mutation failures wrap one of these with fmt.Errorf
// so callers can still errors.Is against the kind while getting a
// descriptive message.
var (
	// ErrType is returned when an argument has the wrong shape or type.
	ErrType = errors.New("type error")

	// ErrState is returned when a document is missing a required $id, already
	// carries one where it shouldn't, or a target document cannot be found.
	ErrState = errors.New("state error")

	// ErrConstraint is returned on a unique-index collision.
	ErrConstraint = errors.New("constraint error")

	// ErrConfig is returned for mutually exclusive constructor options.
	ErrConfig = errors.New("config error")
)

// Sentinels for specific, frequently-checked conditions. ErrDocumentNotFound
// wraps ErrState, so errors.Is matches either; the others are standalone
// (NewCollection wraps ErrTTLDisabled in ErrConfig where it returns it).
var (
	ErrDocumentNotFound = fmt.Errorf("%w: document not found", ErrState)
	ErrIndexNotFound    = errors.New("index not found")
	ErrIndexExists      = errors.New("index already exists")
	ErrCollectionClosed = errors.New("collection closed")
	ErrTransactionClosed = errors.New("transaction closed")
	ErrTTLDisabled      = errors.New("ttl is disabled when metadata is disabled")
)
