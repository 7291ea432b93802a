// Command ppv2-decode reads a PPv2 header from stdin (or a -file) and
// prints its decoded fields, for inspecting captured datagrams or
// debugging a balancer's header framing.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/relayproto/ppv2"
)

func main() {
	log.SetFlags(log.Lshortfile)

	file := flag.String("file", "", "Read the header from this file instead of stdin.")
	tlv := flag.Bool("tlv", false, "Parse and print TLVs.")
	strict := flag.Bool("strict", false, "Treat a truncated TLV region as an error (implies -tlv).")
	flag.Parse()

	var r io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("open: %v", err)
		}
		defer f.Close()
		r = f
	}

	b, err := io.ReadAll(r)
	if err != nil {
		log.Fatalf("read: %v", err)
	}

	opt := ppv2.DecodeOptions{ParseTLV: *tlv || *strict, StrictTLV: *strict}
	h, err := ppv2.DecodeWithOptions(b, opt)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}

	fmt.Printf("command:   %s\n", h.Command())
	fmt.Printf("family:    %s\n", h.Family())
	fmt.Printf("transport: %s\n", h.Transport())
	if src, ok := h.Source(); ok {
		fmt.Printf("source:    %s\n", src)
	}
	if dst, ok := h.Dest(); ok {
		fmt.Printf("dest:      %s\n", dst)
	}
	fmt.Printf("length:    %d\n", h.HeaderLength())
	for _, t := range h.TLVs() {
		fmt.Printf("tlv:       type=0x%02x len=%d\n", t.Type, len(t.Value))
	}
}
