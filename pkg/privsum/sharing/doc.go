// Package sharing implements two-way additive secret sharing over a prime
// field.
//
// A value v is split into halves (own, peer) with own drawn uniformly from
// [0, p) and peer = v - own mod p; the pair reconstructs to v while either
// half alone is statistically independent of it. Addition is linear over
// shares, which is the whole trick behind private summation: parties add
// shares locally and only ever reveal the final reconstructed total.
//
// Randomness is an injected capability (Source), never an ambient default.
// The cryptographically secure source is the default; a deterministic source
// exists for tests and must be enabled explicitly with AllowInsecure.
package sharing
