// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package cmd

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/jessevdk/go-flags"

	"github.com/ForrestLi/ITCH-OUCH-tool/feed"
	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/ouch"
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

func frame(t *testing.T, transport gopacket.SerializableLayer, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 6},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{Version: 4, TTL: 20, SrcIP: net.IPv4(10, 0, 0, 1), DstIP: net.IPv4(10, 0, 0, 2)}
	switch tl := transport.(type) {
	case *layers.UDP:
		ip.Protocol = layers.IPProtocolUDP
		tl.SetNetworkLayerForChecksum(ip)
	case *layers.TCP:
		ip.Protocol = layers.IPProtocolTCP
		tl.SetNetworkLayerForChecksum(ip)
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, transport, gopacket.Payload(payload)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writePcap(t *testing.T, frames [][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.pcap")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatal(err)
	}
	ts := time.Unix(1700000000, 0)
	for i, b := range frames {
		ci := gopacket.CaptureInfo{Timestamp: ts.Add(time.Duration(i) * time.Millisecond), CaptureLength: len(b), Length: len(b)}
		if err := w.WritePacket(ci, b); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestPcap2txt(t *testing.T) {
	g := feed.NewGenerator()
	pkts, err := g.Demo()
	if err != nil {
		t.Fatal(err)
	}
	var frames [][]byte
	for _, p := range pkts {
		frames = append(frames, frame(t, &layers.UDP{SrcPort: 40000, DstPort: 19900}, p))
	}

	inner, err := ouch.EncodeResponse(field.Record{
		{Name: field.MessageType, Value: byte(ouch.TypeOrderRejected)},
		{Name: ouch.FieldOrderToken, Value: "OUCH0000000001"},
		{Name: ouch.FieldRejectCode, Value: int64(-7)},
	})
	if err != nil {
		t.Fatal(err)
	}
	sd := &sbtcp.MessageSequencedData{}
	sd.SetPayload(inner)
	stream, err := sbtcp.Encode(&sbtcp.MessageLoginAccepted{Session: "S1", SequenceNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	if stream, err = sbtcp.AppendEncode(stream, sd); err != nil {
		t.Fatal(err)
	}
	cut := 20
	frames = append(frames,
		frame(t, &layers.TCP{SrcPort: 21800, DstPort: 45793, Seq: 1, PSH: true, ACK: true, Window: 1024}, stream[:cut]),
		frame(t, &layers.TCP{SrcPort: 21800, DstPort: 45793, Seq: uint32(1 + cut), PSH: true, ACK: true, Window: 1024}, stream[cut:]),
	)

	out := filepath.Join(t.TempDir(), "out.txt")
	c := &cmdPcap2txt{
		InputFileName:  writePcap(t, frames),
		OutputFileName: out,
		MoldPorts:      []uint16{19900},
	}
	if err := c.Execute(nil); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(b)
	for _, want := range []string{
		"1 MoldUDP64",
		"Message Type: 'T'",
		"Message Type: 'A'",
		"Message Type: 'D'",
		"6 10.0.0.1->10.0.0.2 21800->45793 SoupBinTCP A",
		"6 10.0.0.1->10.0.0.2 21800->45793 SoupBinTCP S",
		"OUCH0000000001",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "5 10.0.0.1") {
		t.Errorf("message printed before its last segment:\n%s", text)
	}
}

func TestScenario(t *testing.T) {
	for _, tt := range []struct {
		name string
		pkts int
	}{{"demo", 4}, {"all", 12}} {
		pkts, err := scenario(feed.NewGenerator(), tt.name)
		if err != nil || len(pkts) != tt.pkts {
			t.Errorf("%s: %d packets, %v", tt.name, len(pkts), err)
		}
	}
	if _, err := scenario(feed.NewGenerator(), "nope"); err == nil {
		t.Error("unknown scenario accepted")
	}
}

func TestOrderFlags(t *testing.T) {
	c := &cmdOuch{Price: "10.25", Quantity: 3, Side: "S"}
	o, err := c.order()
	if err != nil || *o.Price != 10.25 || *o.Quantity != 3 || o.Side != 'S' {
		t.Errorf("order %+v, %v", o, err)
	}
	if o, err := (&cmdOuch{Price: "0"}).order(); err != nil || o.Price == nil || *o.Price != 0 || o.Quantity != nil {
		t.Errorf("zero price order %+v, %v", o, err)
	}
	c.Price = "10.255"
	if _, err := c.order(); err == nil {
		t.Error("three decimals accepted")
	}
}

func TestAddCommands(t *testing.T) {
	var opts struct {
		Log string `long:"log"`
	}
	parser := flags.NewParser(&opts, flags.PassDoubleDash)
	if err := AddCommands(parser); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"moldsend", "pcap2txt", "ouch"} {
		if parser.Find(name) == nil {
			t.Errorf("command %s not registered", name)
		}
	}

	var ran flags.Commander
	parser.CommandHandler = func(c flags.Commander, args []string) error {
		ran = c
		return nil
	}
	if _, err := parser.ParseArgs([]string{"--log", "-", "pcap2txt", "-i", "in.pcap"}); err != nil {
		t.Fatal(err)
	}
	c, ok := ran.(*cmdPcap2txt)
	if !ok || c.InputFileName != "in.pcap" || parser.Active.Name != "pcap2txt" || opts.Log != "-" {
		t.Errorf("dispatched %T %+v", ran, ran)
	}
	if _, err := parser.ParseArgs(nil); err == nil {
		t.Error("parse without a command succeeded")
	}
}
