package sharing

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/privsum/privsum-go/pkg/privsum/field"
)

// ErrInsecureRandomness reports that a Scheme was asked to hide secrets with
// a randomness source that is not cryptographically secure, without the
// explicit AllowInsecure opt-in. It is fatal at construction: a predictable
// share stream silently breaks privacy while every correctness test keeps
// passing, so it must never be accepted as a default.
var ErrInsecureRandomness = errors.New("sharing: insecure randomness source requires AllowInsecure test mode")

// Scheme splits values over a fixed prime field into two-way additive shares
// and reconstructs sums of shares. A Scheme is immutable after construction;
// its methods are safe for concurrent use exactly when its Source is.
type Scheme struct {
	mod *field.Modulus
	src Source
}

// Option adjusts scheme construction.
type Option func(*schemeConfig)

type schemeConfig struct {
	allowInsecure bool
}

// AllowInsecure permits a Source whose CryptographicallySecure answer is
// false. Tests use it with InsecureDeterministic to pin share values; it has
// no place in production wiring.
func AllowInsecure() Option {
	return func(c *schemeConfig) { c.allowInsecure = true }
}

// NewScheme binds a modulus and a randomness source. A nil source selects
// Crypto(). Insecure sources are rejected with ErrInsecureRandomness unless
// AllowInsecure is supplied.
func NewScheme(m *field.Modulus, src Source, opts ...Option) (*Scheme, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil modulus", field.ErrInvalidModulus)
	}
	var cfg schemeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if src == nil {
		src = Crypto()
	}
	if !src.CryptographicallySecure() && !cfg.allowInsecure {
		return nil, ErrInsecureRandomness
	}
	return &Scheme{mod: m, src: src}, nil
}

// Modulus returns the field the scheme shares over.
func (s *Scheme) Modulus() *field.Modulus { return s.mod }

// Share splits v into additive halves (own, peer) with own + peer = v mod p.
// own is drawn uniformly from [0, p) by rejection sampling, so either half on
// its own is indistinguishable from a random field element and reveals
// nothing about v.
func (s *Scheme) Share(v *big.Int) (own, peer *big.Int, err error) {
	own, err = rand.Int(s.src, s.mod.P())
	if err != nil {
		return nil, nil, fmt.Errorf("sharing: draw share: %w", err)
	}
	peer = s.mod.Sub(v, own)
	return own, peer, nil
}

// ShareInt64 is Share for private list elements.
func (s *Scheme) ShareInt64(v int64) (own, peer *big.Int, err error) {
	return s.Share(big.NewInt(v))
}

// Reconstruct combines the two halves of a shared value: reduce(s0 + s1).
func (s *Scheme) Reconstruct(s0, s1 *big.Int) *big.Int {
	return s.mod.Add(s0, s1)
}
