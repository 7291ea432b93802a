package ppv2

import (
	"encoding/binary"
)

// Well-known TLV types, per the HAProxy PROXY Protocol v2 specification.
// TLV interpretation beyond type/value extraction is a non-goal: callers
// that care about e.g. PP2TypeALPN get the raw bytes and decode them
// themselves.
const (
	PP2TypeALPN      byte = 0x01
	PP2TypeAuthority byte = 0x02
	PP2TypeCRC32C    byte = 0x03
	PP2TypeNOOP      byte = 0x04
	PP2TypeUniqueID  byte = 0x05
	PP2TypeSSL       byte = 0x20
	PP2TypeNetNS     byte = 0x30
)

// TLV is a single Type-Length-Value record carried after the address block.
// Value is always a copy; callers may retain or mutate it freely.
type TLV struct {
	Type  byte
	Value []byte
}

// Find returns the value of the first TLV of the given type, if any.
func Find(tlvs []TLV, typ byte) (value []byte, ok bool) {
	for _, t := range tlvs {
		if t.Type == typ {
			return t.Value, true
		}
	}
	return nil, false
}

// parseTLVs parses the TLV region b. In strict mode a TLV whose declared
// length runs past the end of b is reported as ErrTruncatedTLV; in lenient
// mode parsing simply stops and the TLVs decoded so far are returned.
func parseTLVs(b []byte, strict bool) ([]TLV, error) {
	var out []TLV
	for len(b) > 0 {
		if len(b) < 3 {
			if strict {
				return out, ErrTruncatedTLV
			}
			return out, nil
		}
		l := int(binary.BigEndian.Uint16(b[1:3]))
		if len(b) < 3+l {
			if strict {
				return out, ErrTruncatedTLV
			}
			return out, nil
		}
		value := make([]byte, l)
		copy(value, b[3:3+l])
		out = append(out, TLV{Type: b[0], Value: value})
		b = b[3+l:]
	}
	return out, nil
}

// encodedLen returns the number of wire bytes the TLVs occupy.
func encodedLen(tlvs []TLV) int {
	n := 0
	for _, t := range tlvs {
		n += 3 + len(t.Value)
	}
	return n
}

func appendTLVs(buf []byte, tlvs []TLV) []byte {
	for _, t := range tlvs {
		if len(t.Value) > 0xffff {
			panic("ppv2: tlv value exceeds the 16-bit wire length field")
		}
		var hdr [3]byte
		hdr[0] = t.Type
		binary.BigEndian.PutUint16(hdr[1:], uint16(len(t.Value)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, t.Value...)
	}
	return buf
}
