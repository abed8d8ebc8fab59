package sum2p

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/privsum/privsum-go/pkg/privsum"
	"github.com/privsum/privsum-go/pkg/privsum/field"
	"github.com/privsum/privsum-go/pkg/privsum/mocknet"
)

// Runner executes both parties of a summation in one process over an
// in-memory transport. It exists for demos and tests; real deployments run
// one engine per process over a network transport.
type Runner struct {
	mod  *field.Modulus
	n    int
	opts []privsum.SessionOption
}

// NewRunner prepares a two-party harness for lists of length n over m. The
// options are applied to both sessions.
func NewRunner(m *field.Modulus, n int, opts ...privsum.SessionOption) *Runner {
	return &Runner{mod: m, n: n, opts: opts}
}

// Run drives the full protocol for both parties concurrently and returns the
// initiator's and responder's results. Both parties compute the same total;
// returning both lets callers assert that.
func (r *Runner) Run(ctx context.Context, initiatorList, responderList PrivateList) (initiatorRes, responderRes *Result, err error) {
	initiatorEnd, responderEnd := mocknet.Pair()

	initiatorSess, err := privsum.NewSessionWithContext(ctx, initiatorEnd, privsum.RoleInitiator, r.mod, r.n, r.opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("sum2p: initiator session: %w", err)
	}
	defer initiatorSess.Close()
	responderSess, err := privsum.NewSessionWithContext(ctx, responderEnd, privsum.RoleResponder, r.mod, r.n, r.opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("sum2p: responder session: %w", err)
	}
	defer responderSess.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := Compute(gctx, initiatorSess, initiatorList)
		if err != nil {
			return err
		}
		initiatorRes = res
		return nil
	})
	g.Go(func() error {
		res, err := Compute(gctx, responderSess, responderList)
		if err != nil {
			return err
		}
		responderRes = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return initiatorRes, responderRes, nil
}
