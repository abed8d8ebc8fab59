package mocknet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/privsum/privsum-go/pkg/privsum"
)

// Net is an in-memory message fabric. Every (sender, receiver, sequence)
// triple gets its own one-shot slot, so delivery is reliable and strictly
// ordered per direction while the two directions stay independent.
type Net struct {
	mu sync.Mutex
	q  map[slotKey]chan []byte
}

// New creates an empty fabric.
func New() *Net { return &Net{q: make(map[slotKey]chan []byte)} }

type slotKey struct {
	from privsum.RoleID
	to   privsum.RoleID
	seq  uint64
}

func (n *Net) slot(key slotKey) chan []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := n.q[key]
	if ch == nil {
		ch = make(chan []byte, 1)
		n.q[key] = ch
	}
	return ch
}

func (n *Net) deliver(ctx context.Context, key slotKey, payload []byte) error {
	ch := n.slot(key)
	msg := append([]byte(nil), payload...)
	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Net) await(ctx context.Context, key slotKey) ([]byte, error) {
	ch := n.slot(key)
	select {
	case msg := <-ch:
		n.mu.Lock()
		delete(n.q, key)
		n.mu.Unlock()
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Endpoint is one party's view of the fabric: a privsum.Transport bound to a
// fixed (self, peer) pair. Send and Receive each keep their own sequence
// counter, so concurrent callers on one endpoint serialize per direction and
// observe FIFO order.
type Endpoint struct {
	net  *Net
	self privsum.RoleID
	peer privsum.RoleID

	sendMu  sync.Mutex
	sendSeq uint64

	recvMu  sync.Mutex
	recvSeq uint64
}

// Endpoint returns self's endpoint for talking to peer.
func (n *Net) Endpoint(self, peer privsum.RoleID) *Endpoint {
	return &Endpoint{net: n, self: self, peer: peer}
}

// Pair returns connected endpoints for the initiator and responder of a fresh
// two-party fabric.
func Pair() (initiator, responder *Endpoint) {
	n := New()
	return n.Endpoint(privsum.RoleInitiator.RoleID(), privsum.RoleResponder.RoleID()),
		n.Endpoint(privsum.RoleResponder.RoleID(), privsum.RoleInitiator.RoleID())
}

// Send delivers msg to the peer's next receive slot. It blocks only when the
// previous message in this direction is still undelivered and the slot ahead
// of it is occupied, or until ctx is done.
func (e *Endpoint) Send(ctx context.Context, to privsum.RoleID, msg []byte) error {
	if to == e.self {
		return errors.New("mocknet: send to self")
	}
	if to != e.peer {
		return fmt.Errorf("mocknet: unknown peer %d", to)
	}
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	key := slotKey{from: e.self, to: to, seq: e.sendSeq}
	if err := e.net.deliver(ctx, key, msg); err != nil {
		return err
	}
	e.sendSeq++
	return nil
}

// Receive blocks until the peer's matching Send arrives or ctx is done.
func (e *Endpoint) Receive(ctx context.Context, from privsum.RoleID) ([]byte, error) {
	if from == e.self {
		return nil, errors.New("mocknet: receive from self")
	}
	if from != e.peer {
		return nil, fmt.Errorf("mocknet: unknown peer %d", from)
	}
	e.recvMu.Lock()
	defer e.recvMu.Unlock()

	key := slotKey{from: from, to: e.self, seq: e.recvSeq}
	msg, err := e.net.await(ctx, key)
	if err != nil {
		return nil, err
	}
	e.recvSeq++
	return msg, nil
}

var _ privsum.Transport = (*Endpoint)(nil)
