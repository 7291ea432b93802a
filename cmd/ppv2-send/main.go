// Command ppv2-send emits a single PPv2/DGRAM-framed UDP datagram, for
// manually exercising a ppv2udp.Endpoint or any other PPv2-aware server.
package main

import (
	"flag"
	"log"
	"net"
	"net/netip"

	"github.com/relayproto/ppv2"
)

func main() {
	log.SetFlags(log.Lshortfile)

	dst := flag.String("dst", "127.0.0.1:5000", "Destination address to send the datagram to.")
	src := flag.String("src", "127.0.0.1:12345", "Client address/port to claim in the PPv2 header.")
	realDst := flag.String("proxy-dst", "127.0.0.1:443", "Destination address/port to claim in the PPv2 header.")
	local := flag.Bool("local", false, "Send a LOCAL header instead of PROXY.")
	payload := flag.String("payload", "hello", "Application payload to append after the header.")
	flag.Parse()

	dstAddr, err := netip.ParseAddrPort(*dst)
	if err != nil {
		log.Fatalf("invalid -dst: %v", err)
	}

	b := ppv2.NewBuilder()
	if *local {
		b.WithCommand(ppv2.CommandLocal)
	} else {
		srcAddr, err := netip.ParseAddrPort(*src)
		if err != nil {
			log.Fatalf("invalid -src: %v", err)
		}
		proxyDstAddr, err := netip.ParseAddrPort(*realDst)
		if err != nil {
			log.Fatalf("invalid -proxy-dst: %v", err)
		}
		b.WithCommand(ppv2.CommandProxy).
			WithTransport(ppv2.TransportDGram).
			WithAddrs(srcAddr, proxyDstAddr)
	}

	wire := append(b.Encode(), []byte(*payload)...)

	conn, err := net.Dial("udp", dstAddr.String())
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write(wire); err != nil {
		log.Fatalf("write: %v", err)
	}
	log.Printf("sent %d bytes to %s", len(wire), dstAddr)
}
