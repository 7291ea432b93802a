package ppv2

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Scenarios(t *testing.T) {
	t.Run("ipv4 dgram happy path", func(t *testing.T) {
		src := netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), 12345)
		dst := netip.AddrPortFrom(netip.MustParseAddr("127.0.0.2"), 443)
		wire := NewBuilder().WithTransport(TransportDGram).WithAddrs(src, dst).Encode()

		h, err := Decode(wire)
		require.NoError(t, err)
		assert.Equal(t, 28, h.HeaderLength())
		got, ok := h.Source()
		require.True(t, ok)
		assert.Equal(t, uint16(12345), got.Port())
		got, ok = h.Dest()
		require.True(t, ok)
		assert.Equal(t, uint16(443), got.Port())
	})

	t.Run("ipv6 dgram plus tlv", func(t *testing.T) {
		src := netip.AddrPortFrom(netip.MustParseAddr("::1"), 1000)
		dst := netip.AddrPortFrom(netip.MustParseAddr("::2"), 2000)
		wire := NewBuilder().
			WithTransport(TransportDGram).
			WithAddrs(src, dst).
			WithTLV(0x01, []byte{0x41, 0x42}).
			Encode()

		h, err := DecodeTLV(wire)
		require.NoError(t, err)
		assert.Equal(t, 52+5, h.HeaderLength())
		require.Len(t, h.TLVs(), 1)
		assert.Equal(t, byte(0x01), h.TLVs()[0].Type)
		assert.Equal(t, []byte{0x41, 0x42}, h.TLVs()[0].Value)
	})

	t.Run("local", func(t *testing.T) {
		wire := NewBuilder().WithCommand(CommandLocal).Encode()
		h, err := Decode(wire)
		require.NoError(t, err)
		assert.Equal(t, 16, h.HeaderLength())
		assert.True(t, h.IsLocal())
		_, ok := h.Source()
		assert.False(t, ok)
		_, ok = h.Dest()
		assert.False(t, ok)
	})

	t.Run("signature corruption", func(t *testing.T) {
		wire := NewBuilder().WithCommand(CommandLocal).Encode()
		wire[0] ^= 0x01
		_, err := Decode(wire)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestDecode_SignatureRejection(t *testing.T) {
	valid := NewBuilder().WithCommand(CommandLocal).Encode()
	for i := 0; i < 12; i++ {
		for x := 0; x < 256; x++ {
			if byte(x) == valid[i] {
				continue
			}
			buf := append([]byte(nil), valid...)
			buf[i] = byte(x)
			_, err := Decode(buf)
			require.ErrorIsf(t, err, ErrInvalidSignature, "byte %d = 0x%02x", i, x)
		}
	}
}

func TestDecode_VersionRejection(t *testing.T) {
	valid := NewBuilder().WithCommand(CommandLocal).Encode()
	for v := 0; v < 16; v++ {
		if v == 2 {
			continue
		}
		buf := append([]byte(nil), valid...)
		buf[12] = byte(v<<4) | (buf[12] & 0x0f)
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrInvalidVersion)
	}
}

func TestDecode_LengthOverrun(t *testing.T) {
	src := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.1"), 1)
	dst := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.2"), 2)
	wire := NewBuilder().WithTransport(TransportStream).WithAddrs(src, dst).Encode()

	t.Run("variable_length greater than window", func(t *testing.T) {
		buf := append([]byte(nil), wire...)
		buf[14], buf[15] = 0xFF, 0xFF
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("variable_length smaller than address block", func(t *testing.T) {
		buf := append([]byte(nil), wire...)
		buf[14], buf[15] = 0, 4 // declares 4 bytes, INET needs 12
		_, err := Decode(buf[:20])
		assert.ErrorIs(t, err, ErrTruncatedAddress)
	})
}

func TestDecode_TLVRegion(t *testing.T) {
	src := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.1"), 1)
	dst := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.2"), 2)
	wire := NewBuilder().
		WithTransport(TransportStream).
		WithAddrs(src, dst).
		WithTLV(0x01, []byte{1, 2, 3, 4, 5}).
		Encode()

	// Truncate the TLV value's last two bytes so the TLV's own declared
	// length (5) runs past the end of the buffer, while fixing up the
	// header-level variable_length to match the shorter buffer so the
	// header-length check itself still passes and TLV parsing is reached.
	buf := append([]byte(nil), wire[:len(wire)-2]...)
	buf[14], buf[15] = 0, byte(len(buf)-16)

	t.Run("strict fails", func(t *testing.T) {
		_, err := DecodeWithOptions(buf, DecodeOptions{ParseTLV: true, StrictTLV: true})
		var decErr *DecodeError
		require.True(t, errors.As(err, &decErr))
		assert.ErrorIs(t, err, ErrTruncatedTLV)
	})

	t.Run("lenient succeeds with partial tlvs", func(t *testing.T) {
		h, err := DecodeWithOptions(buf, DecodeOptions{ParseTLV: true, StrictTLV: false})
		require.NoError(t, err)
		assert.Empty(t, h.TLVs())
	})

	t.Run("tlvs not requested yields empty list regardless", func(t *testing.T) {
		h, err := Decode(buf)
		require.NoError(t, err)
		assert.Empty(t, h.TLVs())
	})
}

func TestDecode_InsufficientDataArgument(t *testing.T) {
	_, err := Decode(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDecode_InvalidCommand(t *testing.T) {
	wire := NewBuilder().WithCommand(CommandLocal).Encode()
	wire[12] = (2 << 4) | 0x3
	_, err := Decode(wire)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestDecode_InvalidFamilyAndTransport(t *testing.T) {
	src := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.1"), 1)
	dst := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.2"), 2)
	wire := NewBuilder().WithTransport(TransportStream).WithAddrs(src, dst).Encode()

	t.Run("invalid family", func(t *testing.T) {
		buf := append([]byte(nil), wire...)
		buf[13] = (0xF << 4) | byte(TransportStream)
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrInvalidFamily)
	})

	t.Run("invalid transport", func(t *testing.T) {
		buf := append([]byte(nil), wire...)
		buf[13] = (byte(AddrFamilyInet) << 4) | 0xF
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrInvalidTransport)
	})
}

func TestPeekLength(t *testing.T) {
	src := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.1"), 1)
	dst := netip.AddrPortFrom(netip.MustParseAddr("10.0.0.2"), 2)
	wire := NewBuilder().WithTransport(TransportStream).WithAddrs(src, dst).Encode()

	var prefix [16]byte
	copy(prefix[:], wire[:16])
	n, err := PeekLength(prefix)
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)

	local := NewBuilder().WithCommand(CommandLocal).Encode()
	copy(prefix[:], local[:16])
	n, err = PeekLength(prefix)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
}
