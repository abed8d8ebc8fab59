package privsum

import "context"

// RoleID identifies a participant on the wire. The two-party protocol only
// ever uses the values 0 and 1, but transports address peers by RoleID so an
// implementation can be shared with future multi-party work.
type RoleID uint32

// Role enumerates the two fixed positions in a summation session. The
// initiator sends first during every exchange and the responder receives
// first, which keeps the protocol deadlock-free over unbuffered transports.
type Role uint8

const (
	RoleInitiator Role = iota
	RoleResponder
)

// RoleID returns the wire identifier for the role.
func (r Role) RoleID() RoleID { return RoleID(r) }

// Valid reports whether the role is one of the two defined positions.
func (r Role) Valid() bool { return r == RoleInitiator || r == RoleResponder }

// Peer returns the wire identifier of the other party.
func (r Role) Peer() RoleID {
	if r == RoleInitiator {
		return RoleID(RoleResponder)
	}
	return RoleID(RoleInitiator)
}

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return "invalid"
	}
}

// Transport is the point-to-point messaging contract between exactly two
// participants. Delivery must be reliable and in order per (sender, receiver)
// pair, with no broadcast: a message sent to a peer is observed by that peer
// alone. Confidentiality against third parties is the transport's concern;
// the engine hands it share material in cleartext frames and assumes an
// underlying secure channel (see examples/tlsnet) or an in-process pipe
// (mocknet).
//
// Receive blocks until the matching Send from the peer is delivered or ctx is
// done. Implementations must be safe for concurrent use by multiple
// goroutines.
type Transport interface {
	Send(ctx context.Context, to RoleID, msg []byte) error
	Receive(ctx context.Context, from RoleID) ([]byte, error)
}
