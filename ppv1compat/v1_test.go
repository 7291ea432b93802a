package ppv1compat

import (
	"bufio"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TCP4(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("PROXY TCP4 192.168.1.1 192.168.1.2 56324 443\r\n"))
	h, err := Parse(r)
	require.NoError(t, err)
	assert.Equal(t, FamilyTCP4, h.Family)
	assert.Equal(t, netip.MustParseAddrPort("192.168.1.1:56324"), h.Source)
	assert.Equal(t, netip.MustParseAddrPort("192.168.1.2:443"), h.Dest)
}

func TestParse_Unknown(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("PROXY UNKNOWN\r\n"))
	h, err := Parse(r)
	require.NoError(t, err)
	assert.Equal(t, FamilyUnknown, h.Family)
}

func TestParse_TooLong(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(strings.Repeat("x", 200) + "\n"))
	_, err := Parse(r)
	assert.Error(t, err)
}

func TestParse_InvalidAddress(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("PROXY TCP4 not-an-ip 192.168.1.2 1 2\r\n"))
	_, err := Parse(r)
	assert.Error(t, err)
}

func TestWriteTo_RoundTrips(t *testing.T) {
	h := Header{
		Family: FamilyTCP4,
		Source: netip.MustParseAddrPort("192.168.1.1:56324"),
		Dest:   netip.MustParseAddrPort("192.168.1.2:443"),
	}
	wire := WriteTo(h)
	assert.Equal(t, "PROXY TCP4 192.168.1.1 192.168.1.2 56324 443\r\n", string(wire))

	parsed, err := Parse(bufio.NewReader(strings.NewReader(string(wire))))
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestWriteTo_UnknownFamily(t *testing.T) {
	assert.Equal(t, "PROXY UNKNOWN\r\n", string(WriteTo(Header{})))
}
