package sum2p

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privsum/privsum-go/pkg/privsum"
	"github.com/privsum/privsum-go/pkg/privsum/field"
)

func TestParamsDigestCommitsToModulusAndLength(t *testing.T) {
	m1009 := field.MustModulusInt64(1009)
	m97 := field.MustModulusInt64(97)

	base := paramsDigest(m1009, 5)
	require.Len(t, base, digestLen)
	require.Equal(t, base, paramsDigest(m1009, 5), "digest must be deterministic")
	require.NotEqual(t, base, paramsDigest(m97, 5), "different modulus must change the digest")
	require.NotEqual(t, base, paramsDigest(m1009, 6), "different list length must change the digest")
}

func TestParamsMsgRoundTrip(t *testing.T) {
	m := field.MustModulusInt64(1009)

	frame := encodeParamsMsg(m, 5)
	require.Len(t, frame, headerLen+digestLen)
	require.Equal(t, byte(wireVersion), frame[0])
	require.Equal(t, byte(kindParams), frame[1])

	digest, err := decodeParamsMsg(frame)
	require.NoError(t, err)
	require.Equal(t, paramsDigest(m, 5), digest)
}

func TestShareMsgRoundTrip(t *testing.T) {
	m := field.MustModulusInt64(1009)

	frame, err := encodeShareMsg(m, 3, 5, big.NewInt(1008))
	require.NoError(t, err)
	require.Len(t, frame, shareHeaderLen+m.ElementLen())

	index, total, el, err := decodeShareMsg(m, frame)
	require.NoError(t, err)
	require.Equal(t, uint32(3), index)
	require.Equal(t, uint32(5), total)
	require.Equal(t, int64(1008), el.Int64())
}

func TestEncodeShareRejectsNonCanonicalElement(t *testing.T) {
	m := field.MustModulusInt64(1009)

	_, err := encodeShareMsg(m, 0, 1, big.NewInt(1009))
	require.Error(t, err, "element equal to p is not canonical")

	_, err = encodeShareMsg(m, 0, 1, big.NewInt(-1))
	require.Error(t, err, "negative residues never cross the wire")
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	m := field.MustModulusInt64(1009)

	goodShare, err := encodeShareMsg(m, 0, 2, big.NewInt(7))
	require.NoError(t, err)
	goodResult, err := encodeResultMsg(m, big.NewInt(7))
	require.NoError(t, err)

	overModulus := append([]byte(nil), goodShare...)
	overModulus[len(overModulus)-2] = 0x03 // 0x03F1 = 1009, the modulus itself
	overModulus[len(overModulus)-1] = 0xF1

	cases := []struct {
		name  string
		frame []byte
	}{
		{"empty", nil},
		{"header only", goodShare[:headerLen]},
		{"wrong version", append([]byte{0x7f}, goodShare[1:]...)},
		{"params frame where share expected", encodeParamsMsg(m, 2)},
		{"result frame where share expected", goodResult},
		{"truncated body", goodShare[:len(goodShare)-1]},
		{"trailing byte", append(append([]byte(nil), goodShare...), 0x00)},
		{"element at modulus", overModulus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := decodeShareMsg(m, tc.frame)
			require.ErrorIs(t, err, privsum.ErrMalformedPayload)
		})
	}
}

func TestResultMsgRoundTripAndRejects(t *testing.T) {
	m := field.MustModulusInt64(1009)

	frame, err := encodeResultMsg(m, big.NewInt(165))
	require.NoError(t, err)
	require.Len(t, frame, headerLen+m.ElementLen())

	el, err := decodeResultMsg(m, frame)
	require.NoError(t, err)
	require.Equal(t, int64(165), el.Int64())

	_, err = decodeResultMsg(m, frame[:len(frame)-1])
	require.ErrorIs(t, err, privsum.ErrMalformedPayload)

	share, err := encodeShareMsg(m, 0, 1, big.NewInt(165))
	require.NoError(t, err)
	_, err = decodeResultMsg(m, share)
	require.ErrorIs(t, err, privsum.ErrMalformedPayload)
}

func TestDecodeParamsRejectsShortDigest(t *testing.T) {
	m := field.MustModulusInt64(1009)

	frame := encodeParamsMsg(m, 2)
	_, err := decodeParamsMsg(frame[:len(frame)-1])
	require.ErrorIs(t, err, privsum.ErrMalformedPayload)
}

func TestMsgKindString(t *testing.T) {
	require.Equal(t, "params", kindParams.String())
	require.Equal(t, "share", kindShare.String())
	require.Equal(t, "result", kindResult.String())
	require.Equal(t, "kind(0x7f)", msgKind(0x7f).String())
}
