// Package internalcheck enforces source-level policies over the protocol
// packages.
//
// The checks load the privsum packages with go/packages and walk their
// syntax trees: no variable-time comparison of byte material, no hex
// formatting of potentially secret values, and no math/rand where share
// randomness could originate. They run as ordinary tests so a violation
// fails CI with the offending position.
//
// # Internal Use Only
//
// This package exports nothing and should not be imported; it exists solely
// to host the policy tests.
package internalcheck
