// Package privsum is a minimal two-party secure summation engine: each party
// holds a private list of integers, and both learn the combined total without
// either revealing its inputs.
//
// The package defines the pieces a computation is assembled from: the
// Transport contract between the two parties, the Role each party plays, the
// Session that binds role, modulus, list length, and transport together, and
// the error taxonomy shared by every layer. The protocol itself lives in
// sum2p, field arithmetic in field, and additive sharing in sharing; mocknet
// supplies an in-process transport for tests and examples.
//
// The security model is semi-honest: parties follow the protocol but may try
// to learn extra information from what they legitimately see. Transports are
// assumed to provide confidentiality against third parties.
package privsum
