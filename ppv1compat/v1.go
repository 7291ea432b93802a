// Package ppv1compat decodes and encodes the legacy human-readable PROXY
// protocol v1 header, for balancers that have not been upgraded to v2.
// It is a thin compatibility shim: the binary v2 codec in ppv2 is the
// primary format this module targets, and callers that need to accept
// both should sniff the first byte themselves (v1 always starts with 'P',
// v2 with the fixed binary signature) before choosing which parser to use.
package ppv1compat

import (
	"bufio"
	"errors"
	"fmt"
	"net/netip"
)

// Family identifies the address family/transport a v1 header declares.
type Family string

const (
	FamilyUnknown Family = "UNKNOWN"
	FamilyTCP4    Family = "TCP4"
	FamilyTCP6    Family = "TCP6"
)

// ErrInvalidHeader wraps any failure to parse a v1 header, along with the
// raw bytes read so far for diagnostics.
type ErrInvalidHeader struct {
	Read []byte
	Err  error
}

func (e *ErrInvalidHeader) Error() string { return "ppv1compat: " + e.Err.Error() }
func (e *ErrInvalidHeader) Unwrap() error { return e.Err }

// Header is a decoded v1 PROXY header.
type Header struct {
	Family Family
	Source netip.AddrPort
	Dest   netip.AddrPort
}

const maxLineLen = 107 // 107 bytes of content + trailing \n, per the v1 108-byte line cap

// Parse reads one v1 header line from r. r's next byte must be 'P'; callers
// sniffing between v1 and v2 should peek that byte themselves first.
func Parse(r *bufio.Reader) (Header, error) {
	buf := make([]byte, 0, maxLineLen+1)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return Header{}, &ErrInvalidHeader{Read: buf, Err: err}
		}
		buf = append(buf, b)
		if b == '\n' {
			break
		}
		if len(buf) > maxLineLen {
			return Header{}, &ErrInvalidHeader{Read: buf, Err: errors.New("header line too long")}
		}
	}

	var fam Family
	var srcIPStr, dstIPStr string
	var srcPort, dstPort int
	n, err := fmt.Sscanf(string(buf), "PROXY %s %s %s %d %d\r\n", &fam, &srcIPStr, &dstIPStr, &srcPort, &dstPort)
	if n == 0 && err != nil {
		return Header{}, &ErrInvalidHeader{Read: buf, Err: err}
	}

	if fam == FamilyUnknown {
		return Header{Family: fam}, nil
	}
	if fam != FamilyTCP4 && fam != FamilyTCP6 {
		return Header{}, &ErrInvalidHeader{Read: buf, Err: errors.New("unsupported INET family")}
	}
	if err != nil {
		return Header{}, &ErrInvalidHeader{Read: buf, Err: err}
	}

	srcAddr, err := netip.ParseAddr(srcIPStr)
	if err != nil {
		return Header{}, &ErrInvalidHeader{Read: buf, Err: errors.New("invalid source address")}
	}
	dstAddr, err := netip.ParseAddr(dstIPStr)
	if err != nil {
		return Header{}, &ErrInvalidHeader{Read: buf, Err: errors.New("invalid destination address")}
	}

	return Header{
		Family: fam,
		Source: netip.AddrPortFrom(srcAddr, uint16(srcPort)),
		Dest:   netip.AddrPortFrom(dstAddr, uint16(dstPort)),
	}, nil
}

// WriteTo renders h in v1 wire format: "PROXY <family> <src> <dst> <sport> <dport>\r\n".
func WriteTo(h Header) []byte {
	fam := h.Family
	if fam == "" {
		switch {
		case h.Source.Addr().Is4():
			fam = FamilyTCP4
		case h.Source.Addr().IsValid():
			fam = FamilyTCP6
		default:
			fam = FamilyUnknown
		}
	}
	if fam == FamilyUnknown {
		return []byte("PROXY UNKNOWN\r\n")
	}
	return []byte(fmt.Sprintf("PROXY %s %s %s %d %d\r\n",
		fam, h.Source.Addr().String(), h.Dest.Addr().String(), h.Source.Port(), h.Dest.Port()))
}
