package ppv2

import (
	"bytes"
	"encoding/binary"
	"net/netip"
)

// signature is the fixed 12-byte PPv2 preamble every header begins with.
var signature = [12]byte{0x0D, 0x0A, 0x0D, 0x0A, 0x00, 0x0D, 0x0A, 0x51, 0x55, 0x49, 0x54, 0x0A}

// DecodeOptions controls the two independent axes the decoder is opt-in on:
// whether TLVs are parsed at all, and whether a truncated TLV region is a
// hard failure or a point to silently stop at.
type DecodeOptions struct {
	// ParseTLV enables decoding of the TLV region. When false (the
	// default), TLVs() on the returned Header is always empty and the
	// region is not inspected at all.
	ParseTLV bool

	// StrictTLV, when ParseTLV is set, makes a TLV whose declared length
	// runs past the end of the variable region a hard ErrTruncatedTLV
	// failure rather than a silent stop.
	StrictTLV bool
}

// Decode parses a PPv2 header from b, decoding addresses but skipping the
// TLV region entirely (Header.TLVs() will be empty).
func Decode(b []byte) (Header, error) {
	return DecodeWithOptions(b, DecodeOptions{})
}

// DecodeTLV parses a PPv2 header from b, decoding both addresses and TLVs.
// A TLV whose declared length overruns the variable region is a hard
// ErrTruncatedTLV failure.
func DecodeTLV(b []byte) (Header, error) {
	return DecodeWithOptions(b, DecodeOptions{ParseTLV: true, StrictTLV: true})
}

// DecodeWithOptions is the general decoder entry point; Decode and
// DecodeTLV are convenience wrappers over it.
//
// The decoder is a pure function over b: it holds no state of its own and
// is safe to call concurrently from any number of goroutines.
func DecodeWithOptions(b []byte, opt DecodeOptions) (Header, error) {
	if len(b) < 16 {
		return Header{}, decodeErr(len(b), ErrInsufficientData)
	}
	if !bytes.Equal(b[:12], signature[:]) {
		return Header{}, decodeErr(0, ErrInvalidSignature)
	}
	verCmd := b[12]
	if verCmd>>4 != 2 {
		return Header{}, decodeErr(12, ErrInvalidVersion)
	}
	cmd := Command(verCmd & 0x0f)
	if cmd > CommandProxy {
		return Header{}, decodeErr(12, ErrInvalidCommand)
	}
	if cmd == CommandLocal {
		// Trailing bytes, if any, belong to the application; the decoder
		// never looks at them.
		return Header{command: CommandLocal, headerLength: 16}, nil
	}

	famProto := b[13]
	family := AddrFamily(famProto >> 4)
	if family > AddrFamilyUnix {
		return Header{}, decodeErr(13, ErrInvalidFamily)
	}
	transport := Transport(famProto & 0x0f)
	if transport > TransportDGram {
		return Header{}, decodeErr(13, ErrInvalidTransport)
	}

	varLen := int(binary.BigEndian.Uint16(b[14:16]))
	if 16+varLen > len(b) {
		return Header{}, decodeErr(14, ErrInsufficientData)
	}
	rest := b[16 : 16+varLen]

	addrBlockLen := addressBlockLen(family, transport)
	if varLen < addrBlockLen {
		return Header{}, decodeErr(16, ErrTruncatedAddress)
	}

	h := Header{command: cmd, family: family, transport: transport, headerLength: 16 + varLen}

	switch {
	case addrBlockLen == 12: // INET
		srcIP, ok1 := netip.AddrFromSlice(rest[0:4])
		dstIP, ok2 := netip.AddrFromSlice(rest[4:8])
		if !ok1 || !ok2 {
			return Header{}, decodeErr(16, ErrInvalidAddress)
		}
		h.hasAddr = true
		h.srcAddr, h.dstAddr = srcIP, dstIP
		h.srcPort = binary.BigEndian.Uint16(rest[8:10])
		h.dstPort = binary.BigEndian.Uint16(rest[10:12])
	case addrBlockLen == 36: // INET6
		srcIP, ok1 := netip.AddrFromSlice(rest[0:16])
		dstIP, ok2 := netip.AddrFromSlice(rest[16:32])
		if !ok1 || !ok2 {
			return Header{}, decodeErr(16, ErrInvalidAddress)
		}
		h.hasAddr = true
		h.srcAddr, h.dstAddr = srcIP, dstIP
		h.srcPort = binary.BigEndian.Uint16(rest[32:34])
		h.dstPort = binary.BigEndian.Uint16(rest[34:36])
	case addrBlockLen == 216: // UNIX; consumed, never decoded
	}

	if opt.ParseTLV {
		tlvs, err := parseTLVs(rest[addrBlockLen:], opt.StrictTLV)
		if err != nil {
			return Header{}, decodeErr(16+addrBlockLen, err)
		}
		h.tlvs = tlvs
	}

	return h, nil
}

// addressBlockLen reports how many bytes of the variable region are the
// address block, for the given (family, transport) pair. AF_UNSPEC never
// carries addresses; neither does AF_INET/AF_INET6 paired with an unspec
// transport (a degenerate combination the wire format allows but assigns
// no address meaning to). AF_UNIX always reserves the block, even though
// its contents are never decoded into Source()/Dest().
func addressBlockLen(family AddrFamily, transport Transport) int {
	switch family {
	case AddrFamilyInet:
		if transport == TransportUnspec {
			return 0
		}
		return 12
	case AddrFamilyInet6:
		if transport == TransportUnspec {
			return 0
		}
		return 36
	case AddrFamilyUnix:
		return 216
	default:
		return 0
	}
}

// PeekLength reports the total number of bytes a PPv2 header occupies on
// the wire, given only the fixed 16-byte prefix (the variable_length field
// lives inside that prefix, at offset 14). Stream-oriented callers -
// ppv2tcp's Conn, notably - use this to know how many more bytes to read
// before calling Decode/DecodeTLV/DecodeWithOptions on the full header.
func PeekLength(prefix [16]byte) (int, error) {
	if !bytes.Equal(prefix[:12], signature[:]) {
		return 0, decodeErr(0, ErrInvalidSignature)
	}
	if prefix[12]>>4 != 2 {
		return 0, decodeErr(12, ErrInvalidVersion)
	}
	cmd := Command(prefix[12] & 0x0f)
	if cmd > CommandProxy {
		return 0, decodeErr(12, ErrInvalidCommand)
	}
	if cmd == CommandLocal {
		// LOCAL headers are always exactly 16 bytes; any variable_length
		// value present is not part of the header (see DecodeWithOptions).
		return 16, nil
	}
	return 16 + int(binary.BigEndian.Uint16(prefix[14:16])), nil
}
