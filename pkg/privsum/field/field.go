package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ErrInvalidModulus reports a modulus that is nil, too small, even, or not
// prime. It is fatal at construction and never retryable.
var ErrInvalidModulus = errors.New("field: modulus must be an odd prime greater than 1")

// primeRounds is the Miller-Rabin iteration count used to validate a modulus.
const primeRounds = 64

// Modulus is a validated odd prime p together with derived constants. It is
// immutable after construction and safe for concurrent use. All arithmetic
// methods are pure: inputs are never modified and results are fresh values
// canonicalized into [0, p).
type Modulus struct {
	p    *big.Int
	half *big.Int // (p-1)/2, the largest centered representative
	elen int      // fixed byte width of one encoded element
}

// NewModulus validates p and returns the field constant set for it. The prime
// check uses ProbablyPrime(64), which is conclusive for inputs below 2^64 and
// leaves a false-positive probability far below 2^-100 above that.
func NewModulus(p *big.Int) (*Modulus, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidModulus)
	}
	if p.Cmp(big.NewInt(1)) <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidModulus, p)
	}
	if p.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: %s is even", ErrInvalidModulus, p)
	}
	if !p.ProbablyPrime(primeRounds) {
		return nil, fmt.Errorf("%w: %s is composite", ErrInvalidModulus, p)
	}
	cp := new(big.Int).Set(p)
	return &Modulus{
		p:    cp,
		half: new(big.Int).Rsh(new(big.Int).Sub(cp, big.NewInt(1)), 1),
		elen: (cp.BitLen() + 7) / 8,
	}, nil
}

// MustModulus is NewModulus for values known to be valid, such as compile-time
// presets in tests and examples. It panics on invalid input.
func MustModulus(p *big.Int) *Modulus {
	m, err := NewModulus(p)
	if err != nil {
		panic(err)
	}
	return m
}

// MustModulusInt64 is MustModulus for small literal primes.
func MustModulusInt64(p int64) *Modulus {
	return MustModulus(big.NewInt(p))
}

// Secp256k1Order returns the order of the secp256k1 group as a modulus. Shares
// over this field are interop-grade: the same size as curve key-share
// arithmetic, large enough that any realistic sum fits without wraparound.
func Secp256k1Order() *Modulus {
	return MustModulus(new(big.Int).Set(btcec.S256().Params().N))
}

// P returns a copy of the prime.
func (m *Modulus) P() *big.Int { return new(big.Int).Set(m.p) }

// BitLen returns the bit length of the prime.
func (m *Modulus) BitLen() int { return m.p.BitLen() }

// Reduce maps an arbitrary signed integer into [0, p) using true mathematical
// modulo. big.Int.Mod is Euclidean, so negative inputs land in range rather
// than following the dividend's sign the way the % operator would.
func (m *Modulus) Reduce(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, m.p)
}

// ReduceInt64 is Reduce for native signed integers, the element type of a
// private input list.
func (m *Modulus) ReduceInt64(v int64) *big.Int {
	return m.Reduce(big.NewInt(v))
}

// Add returns (a + b) mod p.
func (m *Modulus) Add(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.Mod(sum, m.p)
}

// Negate returns (-a) mod p.
func (m *Modulus) Negate(a *big.Int) *big.Int {
	neg := new(big.Int).Neg(a)
	return neg.Mod(neg, m.p)
}

// Sub returns (a - b) mod p.
func (m *Modulus) Sub(a, b *big.Int) *big.Int {
	dif := new(big.Int).Sub(a, b)
	return dif.Mod(dif, m.p)
}

// Centered lifts a residue to its symmetric representative in
// [-(p-1)/2, (p-1)/2]. Callers use it to recover exact signed totals whose
// magnitude is bounded by (p-1)/2.
func (m *Modulus) Centered(x *big.Int) *big.Int {
	r := m.Reduce(x)
	if r.Cmp(m.half) > 0 {
		r.Sub(r, m.p)
	}
	return r
}

// MaxMagnitude returns (p-1)/2, the largest |v| exactly representable after a
// centered reduction.
func (m *Modulus) MaxMagnitude() *big.Int { return new(big.Int).Set(m.half) }

// InRange reports whether x is a canonical field element in [0, p).
func (m *Modulus) InRange(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(m.p) < 0
}

// ElementLen returns the fixed byte width of one wire-encoded element.
func (m *Modulus) ElementLen() int { return m.elen }

// AppendElement appends the fixed-width big-endian encoding of x to dst and
// returns the extended slice. x must be in [0, p); the encoding is lossless
// over that range.
func (m *Modulus) AppendElement(dst []byte, x *big.Int) ([]byte, error) {
	if !m.InRange(x) {
		return dst, fmt.Errorf("field: element %s outside [0, p)", x)
	}
	out := make([]byte, m.elen)
	x.FillBytes(out)
	return append(dst, out...), nil
}

// ParseElement decodes exactly ElementLen bytes into a canonical element. It
// rejects buffers of the wrong width and values at or above p, so transports
// cannot smuggle non-canonical residues into the protocol.
func (m *Modulus) ParseElement(b []byte) (*big.Int, error) {
	if len(b) != m.elen {
		return nil, fmt.Errorf("field: element must be %d bytes, got %d", m.elen, len(b))
	}
	x := new(big.Int).SetBytes(b)
	if x.Cmp(m.p) >= 0 {
		return nil, fmt.Errorf("field: decoded element not below modulus")
	}
	return x, nil
}

// Equal reports whether two moduli denote the same field.
func (m *Modulus) Equal(o *Modulus) bool {
	return o != nil && m.p.Cmp(o.p) == 0
}

func (m *Modulus) String() string {
	return fmt.Sprintf("GF(%s)", m.p)
}
