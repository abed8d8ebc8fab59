package privsum

import (
	"errors"

	"github.com/privsum/privsum-go/pkg/privsum/field"
	"github.com/privsum/privsum-go/pkg/privsum/sharing"
)

// Sentinel errors for the summation engine. Every failure aborts the owning
// session and surfaces to the caller: a partial or silently-wrong output in
// an MPC protocol is a security problem, not merely a correctness one, so
// nothing here is swallowed or retried inside the library.
var (
	// ErrTransportTimeout reports that a blocking receive outlived the
	// session's receive timeout. It is fatal per session: a half-completed
	// share exchange cannot be resumed without risking replayed shares, so
	// any retry must be a fresh session with fresh randomness.
	ErrTransportTimeout = errors.New("privsum: transport receive timed out")

	// ErrMalformedPayload reports a protocol violation in a received frame:
	// wrong kind, count, index, width, or an out-of-range field element.
	ErrMalformedPayload = errors.New("privsum: malformed protocol payload")

	// ErrParameterMismatch reports that the two parties disagree on the
	// pre-established session parameters (modulus or list length).
	ErrParameterMismatch = errors.New("privsum: session parameters differ between parties")

	// ErrValueOutOfRange reports a private input whose magnitude exceeds
	// (p-1)/2 and therefore cannot be represented exactly in the field.
	ErrValueOutOfRange = errors.New("privsum: private value outside representable range")

	// ErrBadLength reports a non-positive list length or a private list
	// whose length differs from the session's agreed N.
	ErrBadLength = errors.New("privsum: bad private list length")

	// ErrBadRole reports a role outside {initiator, responder}.
	ErrBadRole = errors.New("privsum: invalid role")

	// ErrNilTransport reports session construction without a transport.
	ErrNilTransport = errors.New("privsum: transport must not be nil")

	// ErrSessionClosed reports use of a session after Close.
	ErrSessionClosed = errors.New("privsum: session has been closed")
)

// Re-exported subpackage sentinels, so callers can match every failure mode
// of a computation against this one package.
var (
	// ErrInvalidModulus reports a session modulus that is not an odd prime
	// greater than 1. Fatal at startup, never retryable.
	ErrInvalidModulus = field.ErrInvalidModulus

	// ErrInsecureRandomness reports a non-cryptographic randomness source
	// selected outside the explicit insecure test mode.
	ErrInsecureRandomness = sharing.ErrInsecureRandomness
)
