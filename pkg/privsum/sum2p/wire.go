package sum2p

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/privsum/privsum-go/pkg/privsum"
	"github.com/privsum/privsum-go/pkg/privsum/field"
)

// Wire format, one message per transport frame:
//
//	byte 0      version (wireVersion)
//	byte 1      kind
//	kindParams  32-byte digest of the agreed (p, N)
//	kindShare   4-byte BE index, 4-byte BE expected total, fixed-width element
//	kindResult  fixed-width element
//
// Elements use the modulus's fixed-width big-endian encoding, which is
// lossless over [0, p) and unambiguous: every frame's length is implied by
// its kind, so short or trailing bytes are protocol violations.
const wireVersion = 0x01

type msgKind byte

const (
	kindParams msgKind = 0x01
	kindShare  msgKind = 0x02
	kindResult msgKind = 0x03
)

func (k msgKind) String() string {
	switch k {
	case kindParams:
		return "params"
	case kindShare:
		return "share"
	case kindResult:
		return "result"
	default:
		return fmt.Sprintf("kind(%#02x)", byte(k))
	}
}

const (
	headerLen      = 2
	shareHeaderLen = headerLen + 8
	digestLen      = sha256.Size
)

func appendHeader(dst []byte, kind msgKind) []byte {
	return append(dst, wireVersion, byte(kind))
}

func checkHeader(frame []byte, want msgKind) ([]byte, error) {
	if len(frame) < headerLen {
		return nil, fmt.Errorf("%w: frame of %d bytes has no header", privsum.ErrMalformedPayload, len(frame))
	}
	if frame[0] != wireVersion {
		return nil, fmt.Errorf("%w: wire version %#02x, want %#02x", privsum.ErrMalformedPayload, frame[0], wireVersion)
	}
	if got := msgKind(frame[1]); got != want {
		return nil, fmt.Errorf("%w: %s message where %s expected", privsum.ErrMalformedPayload, got, want)
	}
	return frame[headerLen:], nil
}

// paramsDigest commits to the session parameters both parties must agree on.
// The label keeps the digest from colliding with any other SHA-256 use, and
// the explicit length prefix keeps (p, N) parsing unambiguous.
func paramsDigest(m *field.Modulus, n int) []byte {
	h := sha256.New()
	h.Write([]byte("privsum/sum2p/params/v1\x00"))
	pBytes := m.P().Bytes()
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(pBytes)))
	h.Write(lenBuf[:])
	h.Write(pBytes)
	var nBuf [8]byte
	binary.BigEndian.PutUint64(nBuf[:], uint64(n))
	h.Write(nBuf[:])
	return h.Sum(nil)
}

func encodeParamsMsg(m *field.Modulus, n int) []byte {
	return append(appendHeader(make([]byte, 0, headerLen+digestLen), kindParams), paramsDigest(m, n)...)
}

func decodeParamsMsg(frame []byte) ([]byte, error) {
	body, err := checkHeader(frame, kindParams)
	if err != nil {
		return nil, err
	}
	if len(body) != digestLen {
		return nil, fmt.Errorf("%w: params digest is %d bytes, want %d", privsum.ErrMalformedPayload, len(body), digestLen)
	}
	return body, nil
}

func encodeShareMsg(m *field.Modulus, index, total uint32, el *big.Int) ([]byte, error) {
	frame := appendHeader(make([]byte, 0, shareHeaderLen+m.ElementLen()), kindShare)
	frame = binary.BigEndian.AppendUint32(frame, index)
	frame = binary.BigEndian.AppendUint32(frame, total)
	frame, err := m.AppendElement(frame, el)
	if err != nil {
		return nil, fmt.Errorf("sum2p: encode share %d: %w", index, err)
	}
	return frame, nil
}

func decodeShareMsg(m *field.Modulus, frame []byte) (index, total uint32, el *big.Int, err error) {
	body, err := checkHeader(frame, kindShare)
	if err != nil {
		return 0, 0, nil, err
	}
	if len(body) != 8+m.ElementLen() {
		return 0, 0, nil, fmt.Errorf("%w: share frame body is %d bytes, want %d", privsum.ErrMalformedPayload, len(body), 8+m.ElementLen())
	}
	index = binary.BigEndian.Uint32(body[0:4])
	total = binary.BigEndian.Uint32(body[4:8])
	el, err = m.ParseElement(body[8:])
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %v", privsum.ErrMalformedPayload, err)
	}
	return index, total, el, nil
}

func encodeResultMsg(m *field.Modulus, el *big.Int) ([]byte, error) {
	frame := appendHeader(make([]byte, 0, headerLen+m.ElementLen()), kindResult)
	frame, err := m.AppendElement(frame, el)
	if err != nil {
		return nil, fmt.Errorf("sum2p: encode result: %w", err)
	}
	return frame, nil
}

func decodeResultMsg(m *field.Modulus, frame []byte) (*big.Int, error) {
	body, err := checkHeader(frame, kindResult)
	if err != nil {
		return nil, err
	}
	if len(body) != m.ElementLen() {
		return nil, fmt.Errorf("%w: result frame body is %d bytes, want %d", privsum.ErrMalformedPayload, len(body), m.ElementLen())
	}
	el, err := m.ParseElement(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", privsum.ErrMalformedPayload, err)
	}
	return el, nil
}
