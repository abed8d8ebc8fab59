package sum2p

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/privsum/privsum-go/pkg/privsum"
	"github.com/privsum/privsum-go/pkg/privsum/field"
	"github.com/privsum/privsum-go/pkg/privsum/logging"
	"github.com/privsum/privsum-go/pkg/privsum/sharing"
)

// PrivateList is one party's private input: an ordered sequence of signed
// integers, owned exclusively by that party and never transmitted in
// plaintext.
type PrivateList []int64

// State identifies the engine's position in the protocol. The zero value is
// StateInit; StateReconstructed is terminal; StateFailed is reachable from
// every non-terminal state.
type State uint8

const (
	StateInit State = iota
	StateLocalShareGeneration
	StateShareExchange
	StateLocalAccumulation
	StateResultExchange
	StateReconstructed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLocalShareGeneration:
		return "local-share-generation"
	case StateShareExchange:
		return "share-exchange"
	case StateLocalAccumulation:
		return "local-accumulation"
	case StateResultExchange:
		return "result-exchange"
	case StateReconstructed:
		return "reconstructed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Result is the public outcome of a computation, identical on both sides.
type Result struct {
	// Sum is the canonical residue of the joint total in [0, p).
	Sum *big.Int

	mod *field.Modulus
}

// SignedSum lifts the total to its centered representative in
// [-(p-1)/2, (p-1)/2]. It equals the true signed total whenever the caller
// respected the modulus rule p > 2·N·max|element|.
func (r *Result) SignedSum() *big.Int {
	return r.mod.Centered(r.Sum)
}

// Engine runs one party's side of the secure summation. An engine executes a
// single computation on a single goroutine: the state machine is strictly
// sequential, suspending only inside blocking receives. It never releases a
// partial result; on any failure the caller sees a nil result, StateFailed,
// and an error naming the failing state.
type Engine struct {
	sess   *privsum.Session
	scheme *sharing.Scheme
	state  State
	done   bool
}

// NewEngine builds an engine for the session using a cryptographically secure
// sharing scheme.
func NewEngine(sess *privsum.Session) (*Engine, error) {
	if sess == nil {
		return nil, errors.New("sum2p: nil session")
	}
	scheme, err := sharing.NewScheme(sess.Modulus(), nil)
	if err != nil {
		return nil, err
	}
	return &Engine{sess: sess, scheme: scheme}, nil
}

// NewEngineWithScheme builds an engine with a caller-supplied sharing scheme,
// which is how a test harness injects the deterministic insecure source. The
// scheme must share over the session's field.
func NewEngineWithScheme(sess *privsum.Session, scheme *sharing.Scheme) (*Engine, error) {
	if sess == nil {
		return nil, errors.New("sum2p: nil session")
	}
	if scheme == nil {
		return NewEngine(sess)
	}
	if !scheme.Modulus().Equal(sess.Modulus()) {
		return nil, fmt.Errorf("%w: scheme field %s differs from session field %s",
			privsum.ErrInvalidModulus, scheme.Modulus(), sess.Modulus())
	}
	return &Engine{sess: sess, scheme: scheme}, nil
}

// State returns the engine's current protocol state.
func (e *Engine) State() State { return e.state }

// Compute runs the whole protocol for one session and returns the plaintext
// total. It is single-shot: a failed computation poisons the session (the
// peer may already hold shares that must not be replayed), so a retry needs a
// fresh session and a fresh engine.
func Compute(ctx context.Context, sess *privsum.Session, list PrivateList) (*Result, error) {
	e, err := NewEngine(sess)
	if err != nil {
		return nil, err
	}
	return e.Compute(ctx, list)
}

// Compute runs the engine's single computation over its session.
func (e *Engine) Compute(ctx context.Context, list PrivateList) (*Result, error) {
	if e.done {
		return nil, errors.New("sum2p: engine already ran; use a fresh session and engine")
	}
	e.done = true

	res, err := e.run(ctx, list)
	if err != nil {
		failed := e.state
		e.state = StateFailed
		e.sess.Logger().Error(ctx, "summation aborted", "state", failed.String(), "err", err.Error())
		return nil, fmt.Errorf("sum2p: %s: %w", failed, err)
	}
	return res, nil
}

func (e *Engine) run(ctx context.Context, list PrivateList) (*Result, error) {
	mod := e.sess.Modulus()
	n := e.sess.ListLen()
	log := e.sess.Logger()

	// Nothing has been sent yet; a cancelled context here is a clean abort.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.enter(ctx, StateInit, log)
	if len(list) != n {
		return nil, fmt.Errorf("%w: %d elements, session agreed on %d", privsum.ErrBadLength, len(list), n)
	}
	maxMag := mod.MaxMagnitude()
	for i := range list {
		if new(big.Int).Abs(big.NewInt(list[i])).Cmp(maxMag) > 0 {
			return nil, fmt.Errorf("%w: element %d exceeds (p-1)/2", privsum.ErrValueOutOfRange, i)
		}
	}
	if e.sess.ParamCheckEnabled() {
		if err := e.verifyParams(ctx); err != nil {
			return nil, err
		}
	}

	e.enter(ctx, StateLocalShareGeneration, log)
	ownShares := make([]*big.Int, n)
	outbox := make([]*big.Int, n)
	for i, v := range list {
		own, peer, err := e.scheme.ShareInt64(v)
		if err != nil {
			return nil, err
		}
		ownShares[i] = own
		outbox[i] = peer
	}

	e.enter(ctx, StateShareExchange, log)
	peerShares := make([]*big.Int, n)
	if e.sess.Role() == privsum.RoleInitiator {
		for i := 0; i < n; i++ {
			if err := e.sendShare(ctx, i, n, outbox[i]); err != nil {
				return nil, err
			}
		}
		for i := 0; i < n; i++ {
			el, err := e.receiveShare(ctx, i, n)
			if err != nil {
				return nil, err
			}
			peerShares[i] = el
		}
	} else {
		for i := 0; i < n; i++ {
			el, err := e.receiveShare(ctx, i, n)
			if err != nil {
				return nil, err
			}
			peerShares[i] = el
		}
		for i := 0; i < n; i++ {
			if err := e.sendShare(ctx, i, n, outbox[i]); err != nil {
				return nil, err
			}
		}
	}
	log.Debug(ctx, "share exchange complete", "sent", n, "received", n)

	e.enter(ctx, StateLocalAccumulation, log)
	partial := big.NewInt(0)
	for i := 0; i < n; i++ {
		partial = mod.Add(partial, ownShares[i])
		partial = mod.Add(partial, peerShares[i])
	}

	e.enter(ctx, StateResultExchange, log)
	frame, err := encodeResultMsg(mod, partial)
	if err != nil {
		return nil, err
	}
	remote, err := e.exchange(ctx, frame)
	privsum.ZeroizeBytes(frame)
	if err != nil {
		return nil, err
	}
	theirs, err := decodeResultMsg(mod, remote)
	privsum.ZeroizeBytes(remote)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "partial sums exchanged", logging.Redacted("partial_sum"))

	total := e.scheme.Reconstruct(partial, theirs)
	e.enter(ctx, StateReconstructed, log)
	log.Info(ctx, "summation complete", "n", n)
	return &Result{Sum: total, mod: mod}, nil
}

func (e *Engine) enter(ctx context.Context, next State, log logging.Logger) {
	e.state = next
	log.Debug(ctx, "state transition", "state", next.String())
}

// verifyParams exchanges digests of the pre-agreed (p, N). It verifies, never
// negotiates: parameter agreement happens before Init, this only catches the
// two sides having been configured differently.
func (e *Engine) verifyParams(ctx context.Context) error {
	local := encodeParamsMsg(e.sess.Modulus(), e.sess.ListLen())
	remote, err := e.exchange(ctx, local)
	if err != nil {
		return err
	}
	theirs, err := decodeParamsMsg(remote)
	if err != nil {
		return err
	}
	if !bytes.Equal(paramsDigest(e.sess.Modulus(), e.sess.ListLen()), theirs) {
		return privsum.ErrParameterMismatch
	}
	return nil
}

func (e *Engine) sendShare(ctx context.Context, i, n int, el *big.Int) error {
	frame, err := encodeShareMsg(e.sess.Modulus(), uint32(i), uint32(n), el)
	if err != nil {
		return err
	}
	err = e.sess.Send(ctx, frame)
	privsum.ZeroizeBytes(frame)
	return err
}

func (e *Engine) receiveShare(ctx context.Context, i, n int) (*big.Int, error) {
	frame, err := e.sess.Receive(ctx)
	if err != nil {
		return nil, err
	}
	idx, total, el, err := decodeShareMsg(e.sess.Modulus(), frame)
	privsum.ZeroizeBytes(frame)
	if err != nil {
		return nil, err
	}
	if total != uint32(n) {
		return nil, fmt.Errorf("%w: share batch advertises %d elements, session agreed on %d",
			privsum.ErrMalformedPayload, total, n)
	}
	if idx != uint32(i) {
		return nil, fmt.Errorf("%w: share index %d out of sequence, want %d",
			privsum.ErrMalformedPayload, idx, i)
	}
	return el, nil
}

// exchange sends our frame and receives the peer's, initiator first, so the
// pattern stays deadlock-free even over an unbuffered transport.
func (e *Engine) exchange(ctx context.Context, out []byte) ([]byte, error) {
	if e.sess.Role() == privsum.RoleInitiator {
		if err := e.sess.Send(ctx, out); err != nil {
			return nil, err
		}
		return e.sess.Receive(ctx)
	}
	in, err := e.sess.Receive(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.sess.Send(ctx, out); err != nil {
		return nil, err
	}
	return in, nil
}
