// Package sum2p implements two-party privacy-preserving summation over a
// prime field using additive secret sharing.
//
// Both parties hold a private list of N signed integers and learn exactly one
// value: the total of all 2N elements. Neither party's individual elements,
// per-element sums, or list total is revealed to the other. The guarantee is
// the semi-honest one: both parties follow the protocol and privacy holds
// against observation of the transcript; there is no protection against a
// party that deviates.
//
// An Engine advances through a fixed state machine (init, local share
// generation, share exchange, local accumulation, result exchange,
// reconstructed) and never releases a partial result: any failure lands in
// the failed state with a nil result and an error naming where the run
// stopped. Engines are single-shot; retries need a fresh session.
//
// Most callers use Compute with a session over their transport, or a Runner
// to drive both parties in-process for tests and demos.
package sum2p
