package privsum

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/privsum/privsum-go/pkg/privsum/field"
	"github.com/privsum/privsum-go/pkg/privsum/logging"
)

// DefaultReceiveTimeout bounds how long a blocking receive may wait for the
// peer before the session fails with ErrTransportTimeout.
const DefaultReceiveTimeout = 30 * time.Second

// Session binds one role to one modulus, one list length, and one transport
// for the duration of a single sum computation. All parameters are immutable
// after construction; the session is created before the protocol runs and
// closed afterwards or on failure. Closing cancels any in-flight blocking
// receive.
type Session struct {
	transport Transport
	role      Role
	modulus   *field.Modulus
	listLen   int

	id          string
	logger      logging.Logger
	recvTimeout time.Duration
	paramCheck  bool

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// SessionOption adjusts session construction.
type SessionOption func(*Session)

// WithReceiveTimeout overrides DefaultReceiveTimeout. Non-positive values are
// ignored.
func WithReceiveTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.recvTimeout = d
		}
	}
}

// WithLogger attaches a logger for protocol diagnostics. The default discards
// everything; share and input values are never logged regardless.
func WithLogger(l logging.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionID overrides the generated correlation id. The id only labels
// log lines and errors; it carries no protocol meaning.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithoutParamCheck disables the parameter-consistency exchange at the start
// of a computation, for harnesses that account for every transport operation.
func WithoutParamCheck() SessionOption {
	return func(s *Session) { s.paramCheck = false }
}

// NewSession validates the pre-agreed parameters and binds them to a
// transport. This variant uses a background context; see
// NewSessionWithContext to bound the session's lifetime externally.
func NewSession(t Transport, self Role, m *field.Modulus, n int, opts ...SessionOption) (*Session, error) {
	return NewSessionWithContext(context.Background(), t, self, m, n, opts...)
}

// NewSessionWithContext constructs a session whose internal context derives
// from ctx. Cancelling ctx, like calling Close, promptly unblocks any pending
// receive and fails further use with ErrSessionClosed.
func NewSessionWithContext(ctx context.Context, t Transport, self Role, m *field.Modulus, n int, opts ...SessionOption) (*Session, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	if !self.Valid() {
		return nil, fmt.Errorf("%w: role %d", ErrBadRole, self)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: nil modulus", ErrInvalidModulus)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: list length %d", ErrBadLength, n)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		transport:   t,
		role:        self,
		modulus:     m,
		listLen:     n,
		id:          xid.New().String(),
		logger:      logging.Nop(),
		recvTimeout: DefaultReceiveTimeout,
		paramCheck:  true,
		ctx:         sessCtx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id, "role", s.role.String())
	return s, nil
}

// Role returns the party's position in the protocol.
func (s *Session) Role() Role { return s.role }

// Modulus returns the session field.
func (s *Session) Modulus() *field.Modulus { return s.modulus }

// ListLen returns the agreed private list length N.
func (s *Session) ListLen() int { return s.listLen }

// ID returns the correlation id used in logs and errors.
func (s *Session) ID() string { return s.id }

// Logger returns the session logger, already tagged with the session id and
// role.
func (s *Session) Logger() logging.Logger { return s.logger }

// ReceiveTimeout returns the bound applied to each blocking receive.
func (s *Session) ReceiveTimeout() time.Duration { return s.recvTimeout }

// ParamCheckEnabled reports whether the computation starts with the
// parameter-consistency exchange.
func (s *Session) ParamCheckEnabled() bool { return s.paramCheck }

// Close releases the session. It is idempotent; any blocked receive unwinds
// with ErrSessionClosed and further use of the session fails the same way.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(s.cancel)
	return nil
}

// Send delivers one frame to the peer. It fails with ErrSessionClosed once
// the session is closed and otherwise honors ctx for cancellation. Sends are
// not bounded by the receive timeout; only receives can wait on a silent
// peer.
func (s *Session) Send(ctx context.Context, msg []byte) error {
	if s.ctx.Err() != nil {
		return ErrSessionClosed
	}
	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	if err := s.transport.Send(sendCtx, s.role.Peer(), msg); err != nil {
		return s.mapTransportErr(ctx, err, false)
	}
	return nil
}

// Receive blocks until the peer's matching frame is delivered, the session's
// receive timeout elapses (ErrTransportTimeout), ctx is done, or the session
// is closed (ErrSessionClosed).
func (s *Session) Receive(ctx context.Context) ([]byte, error) {
	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}
	recvCtx, cancel := context.WithTimeout(ctx, s.recvTimeout)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	msg, err := s.transport.Receive(recvCtx, s.role.Peer())
	if err != nil {
		return nil, s.mapTransportErr(ctx, err, true)
	}
	return msg, nil
}

// mapTransportErr attributes a transport failure to its cause: session
// closure, caller cancellation, or (for receives) the session timeout.
func (s *Session) mapTransportErr(callerCtx context.Context, err error, timed bool) error {
	switch {
	case s.ctx.Err() != nil:
		return ErrSessionClosed
	case callerCtx.Err() != nil:
		return callerCtx.Err()
	case timed && errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrTransportTimeout, s.recvTimeout)
	default:
		return err
	}
}
