// Package mocknet provides an in-memory privsum.Transport for tests and
// examples.
//
// Messages are delivered through per-(sender, receiver, sequence) slots,
// which gives the reliable, in-order, point-to-point semantics the engine
// expects without any real network. Receives block until the matching send
// arrives and honor context cancellation, so timeout and cancellation paths
// can be exercised deterministically.
//
// Mocknet carries frames in the clear and is not suitable for production;
// see examples/tlsnet for a transport with an actual secure channel.
package mocknet
