package sharing

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20"
)

// Source is the randomness capability consumed by a Scheme. It is an explicit
// dependency rather than a hidden global so that a test harness substituting
// predictable bytes has to say so in the type system.
type Source interface {
	io.Reader

	// CryptographicallySecure reports whether the stream is suitable for
	// hiding secrets. A Scheme refuses a false answer unless it was built
	// with AllowInsecure.
	CryptographicallySecure() bool
}

// Crypto returns the operating system CSPRNG as a Source. It is the default
// for every Scheme and is safe for concurrent use.
func Crypto() Source { return cryptoSource{} }

type cryptoSource struct{}

func (cryptoSource) Read(p []byte) (int, error)    { return rand.Read(p) }
func (cryptoSource) CryptographicallySecure() bool { return true }

// InsecureDeterministic returns a Source that replays the ChaCha20 keystream
// for the given seed. Two sources built from the same seed produce identical
// bytes, which makes share values reproducible.
//
// This is a test-only capability: the source reports itself as not
// cryptographically secure, and NewScheme rejects it unless the caller opts
// in with AllowInsecure. It is not safe for concurrent use; deterministic
// replay only makes sense from a single goroutine anyway.
func InsecureDeterministic(seed []byte) Source {
	var key [chacha20.KeySize]byte
	for i := range key {
		if len(seed) > 0 {
			key[i] = seed[i%len(seed)]
		}
	}
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		// Key and nonce widths are fixed above; NewUnauthenticatedCipher
		// cannot reject them.
		panic(err)
	}
	return &insecureSource{cipher: c}
}

type insecureSource struct {
	cipher *chacha20.Cipher
}

func (s *insecureSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	// XOR of the keystream over zeros yields the keystream itself.
	s.cipher.XORKeyStream(p, p)
	return len(p), nil
}

func (s *insecureSource) CryptographicallySecure() bool { return false }
