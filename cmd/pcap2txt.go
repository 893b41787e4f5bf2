// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"github.com/ForrestLi/ITCH-OUCH-tool/errs"
	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/log"
	"github.com/ForrestLi/ITCH-OUCH-tool/moldudp64"
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

type cmdPcap2txt struct {
	InputFileName  string   `long:"input" short:"i" required:"y" value-name:"PCAP_FILE" description:"input pcap or pcapng file to read"`
	OutputFileName string   `long:"output" short:"o" value-name:"FILE" default:"/dev/stdout" default-mask:"stdout" description:"output file"`
	MoldPorts      []uint16 `long:"mold-port" value-name:"PORT" default:"19900" description:"UDP port carrying MoldUDP64, repeatable"`
	Glimpse        bool     `long:"glimpse" description:"decode SoupBinTCP sequenced data as ITCH snapshots"`
}

func (c *cmdPcap2txt) Execute(args []string) (err error) {
	defer errs.PassE(&err)
	for _, p := range c.MoldPorts {
		moldudp64.RegisterUDPPort(p)
	}
	inFile, err := os.Open(c.InputFileName)
	errs.CheckE(err)
	defer inFile.Close()
	source, err := openPcap(inFile)
	errs.CheckE(err)
	outFile, err := os.OpenFile(c.OutputFileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	errs.CheckE(err)
	defer func() { errs.CheckE(outFile.Close()) }()

	dialect := sbtcp.OUCH
	if c.Glimpse {
		dialect = sbtcp.Glimpse
	}
	p := newPrinter(outFile, dialect)
	for pkt := range source.Packets() {
		p.HandlePacket(pkt)
	}
	return
}

type linkReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

func openPcap(f io.ReadSeeker) (*gopacket.PacketSource, error) {
	var r linkReader
	r, err := pcapgo.NewReader(f)
	if err != nil {
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, serr
		}
		r, err = pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, errors.Wrap(err, "neither pcap nor pcapng")
		}
	}
	return gopacket.NewPacketSource(r, r.LinkType()), nil
}

type packetPrinter struct {
	w            io.Writer
	dialect      *sbtcp.Dialect
	flows        map[string]*sbtcp.Decoder
	packetNumber int
}

func newPrinter(w io.Writer, d *sbtcp.Dialect) *packetPrinter {
	return &packetPrinter{w: w, dialect: d, flows: make(map[string]*sbtcp.Decoder)}
}

func (p *packetPrinter) printf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(p.w, format, args...)
	errs.CheckE(err)
}

func (p *packetPrinter) HandlePacket(pkt gopacket.Packet) {
	p.packetNumber++
	if l, ok := pkt.Layer(moldudp64.LayerTypeMoldUDP64).(*moldudp64.MoldUDP64); ok {
		p.printMold(l)
		return
	}
	if tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP); ok && len(tcp.Payload) > 0 && pkt.NetworkLayer() != nil {
		p.printStream(pkt.NetworkLayer().NetworkFlow().String()+" "+tcp.TransportFlow().String(), tcp.Payload)
	}
}

func (p *packetPrinter) printMold(l *moldudp64.MoldUDP64) {
	p.printf("%d MoldUDP64 %v\n", p.packetNumber, l.Header)
	for i, b := range l.Blocks {
		p.printRecord(fmt.Sprintf("block %d @%d", i, b.Offset), b.Message, b.Err)
	}
	if err := p.truncation(l); err != nil {
		p.printf("  %v\n", err)
	}
}

func (p *packetPrinter) truncation(l *moldudp64.MoldUDP64) error {
	if l.MessageCount == moldudp64.EndOfSessionCount || len(l.Blocks) == int(l.MessageCount) {
		return nil
	}
	return errors.Errorf("%d of %d blocks decoded", len(l.Blocks), l.MessageCount)
}

func (p *packetPrinter) printRecord(prefix string, r field.Record, err error) {
	if err != nil {
		p.printf("  %s: %v\n", prefix, err)
		return
	}
	p.printf("  %s: %v\n", prefix, r)
}

// printStream feeds one TCP segment into the flow decoder. Segments are
// taken in capture order; retransmissions are not detected.
func (p *packetPrinter) printStream(flow string, payload []byte) {
	dec, seen := p.flows[flow]
	if seen && dec == nil {
		return
	}
	if !seen {
		dec = sbtcp.NewDecoder(p.dialect)
		p.flows[flow] = dec
	}
	dec.Write(payload)
	for {
		m, err := dec.Next()
		switch {
		case errors.Is(err, sbtcp.ErrNeedMore):
			return
		case errors.Is(err, sbtcp.ErrFraming):
			log.Printf("flow %s is not SoupBinTCP, ignored: %v", flow, err)
			p.flows[flow] = nil
			return
		case err != nil:
			p.printf("%d %s: %v\n", p.packetNumber, flow, err)
			continue
		}
		p.printf("%d %s SoupBinTCP %c\n", p.packetNumber, flow, m.Type())
		switch x := m.(type) {
		case *sbtcp.MessageSequencedData:
			p.printRecord("sequenced", x.Data, x.Err)
		case *sbtcp.MessageUnsequencedData:
			p.printRecord("unsequenced", x.Data, x.Err)
		default:
			p.printf("  %s\n", pretty.Sprint(m))
		}
	}
}

func init() {
	Register("pcap2txt", "convert pcap file to human-readable text", "", &cmdPcap2txt{})
}
