// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/ouch"
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

type gateway struct {
	t     *testing.T
	ln    net.Listener
	conns chan net.Conn
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	g := &gateway{t: t, ln: ln, conns: make(chan net.Conn, 1)}
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			g.conns <- conn
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return g
}

func (g *gateway) accept() net.Conn {
	g.t.Helper()
	select {
	case conn := <-g.conns:
		g.t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		g.t.Fatal("no connection")
	}
	return nil
}

// collect reads client packets until the connection closes.
func collect(conn net.Conn) <-chan []sbtcp.Message {
	out := make(chan []sbtcp.Message, 1)
	go func() {
		var ms []sbtcp.Message
		for {
			m, err := sbtcp.ReadMessage(conn)
			if err != nil {
				out <- ms
				return
			}
			ms = append(ms, m)
		}
	}()
	return out
}

func wait(t *testing.T, ch <-chan []sbtcp.Message) []sbtcp.Message {
	t.Helper()
	select {
	case ms := <-ch:
		return ms
	case <-time.After(2 * time.Second):
		t.Fatal("gateway reader did not finish")
	}
	return nil
}

func count(ms []sbtcp.Message, typ sbtcp.MessageType) int {
	n := 0
	for _, m := range ms {
		if m.Type() == typ {
			n++
		}
	}
	return n
}

func startSession(t *testing.T, g *gateway, mod func(*Config)) (*Session, net.Conn) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RemoteAddr = g.ln.Addr().String()
	cfg.Username = "user"
	cfg.Password = "secret"
	if mod != nil {
		mod(&cfg)
	}
	s := NewSession(cfg)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	conn := g.accept()
	t.Cleanup(func() { s.Stop() })
	return s, conn
}

func TestOutboundSequenceWithHeartbeats(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, func(c *Config) { c.HeartbeatTimeout = 5 * time.Millisecond })
	got := collect(conn)

	for i := 0; i < 5; i++ {
		if _, err := s.SendEnterOrder(Order{}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(8 * time.Millisecond)
	}
	time.Sleep(30 * time.Millisecond)
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	ms := wait(t, got)

	if s.OutboundSequence() != 5 {
		t.Errorf("outbound sequence %d, want 5", s.OutboundSequence())
	}
	if n := count(ms, sbtcp.TypeUnsequencedData); n != 5 {
		t.Errorf("gateway got %d orders, want 5", n)
	}
	if n := count(ms, sbtcp.TypeClientHeartbeat); n == 0 {
		t.Error("no client heartbeats")
	}
	for i, m := range ms {
		if ud, ok := m.(*sbtcp.MessageUnsequencedData); ok && ud.Data.Type() != byte(ouch.TypeEnterOrder) {
			t.Errorf("packet %d: %v", i, ud.Data)
		}
	}
}

func TestNoHeartbeats(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, func(c *Config) { c.HeartbeatTimeout = 0 })
	got := collect(conn)
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	if ms := wait(t, got); len(ms) != 0 {
		t.Errorf("gateway got %d packets, want none", len(ms))
	}
}

func TestStopFlushesQueue(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, nil)
	got := collect(conn)
	for i := 0; i < 3; i++ {
		if err := s.SendCancelOrder("T"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if n := count(wait(t, got), sbtcp.TypeUnsequencedData); n != 3 {
		t.Errorf("gateway got %d cancels, want 3", n)
	}
	if s.State() != StateDisconnected {
		t.Errorf("state %v after stop", s.State())
	}
	if err := s.SendCancelOrder("T"); !errors.Is(err, ErrStopped) {
		t.Errorf("send after stop = %v", err)
	}
}

func sequenced(t *testing.T, r field.Record) sbtcp.Message {
	t.Helper()
	b, err := ouch.EncodeResponse(r)
	if err != nil {
		t.Fatal(err)
	}
	m := &sbtcp.MessageSequencedData{}
	m.SetPayload(b)
	return m
}

func TestReceive(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, nil)
	rejected := field.Record{
		{Name: field.MessageType, Value: byte(ouch.TypeOrderRejected)},
		{Name: ouch.FieldOrderToken, Value: "OUCH0000000001"},
		{Name: ouch.FieldRejectCode, Value: int64(-1)},
	}
	for _, m := range []sbtcp.Message{
		&sbtcp.MessageLoginAccepted{Session: "0000000001", SequenceNumber: 1},
		&sbtcp.MessageHeartbeat{},
		sequenced(t, rejected),
		sequenced(t, rejected),
	} {
		if err := sbtcp.WriteMessage(conn, m); err != nil {
			t.Fatal(err)
		}
	}

	m, err := s.Receive(time.Second)
	if err != nil || m.Type() != sbtcp.TypeLoginAccepted {
		t.Fatalf("first Receive = %v, %v", m, err)
	}
	for i := 0; i < 2; i++ {
		m, err = s.Receive(time.Second)
		if err != nil {
			t.Fatal(err)
		}
		sd, ok := m.(*sbtcp.MessageSequencedData)
		if !ok || sd.Data.Text(ouch.FieldOrderToken) != "OUCH0000000001" {
			t.Errorf("Receive = %v", m)
		}
	}
	if s.InboundSequence() != 2 {
		t.Errorf("inbound sequence %d, want 2", s.InboundSequence())
	}
	if _, err := s.Receive(20 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("idle Receive = %v, want ErrTimeout", err)
	}
}

func TestHandlers(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, func(c *Config) { c.HandleHeartbeats = false })
	claimed := make(chan sbtcp.Message, 1)
	s.AddHandler(HandlerFunc(func(m sbtcp.Message) bool {
		if m.Type() != sbtcp.TypeEnd {
			return false
		}
		claimed <- m
		return true
	}))
	sbtcp.WriteMessage(conn, &sbtcp.MessageEnd{})
	sbtcp.WriteMessage(conn, &sbtcp.MessageHeartbeat{})

	select {
	case <-claimed:
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
	if m, err := s.Receive(time.Second); err != nil || m.Type() != sbtcp.TypeHeartbeat {
		t.Errorf("Receive = %v, %v; want the unfiltered heartbeat", m, err)
	}
}

func TestLoginRequest(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, func(c *Config) {
		c.Session = "SESS"
		c.LastInboundSeq = 41
		c.LastOutboundSeq = 7
	})
	got := collect(conn)
	if err := s.SendLoginRequest(); err != nil {
		t.Fatal(err)
	}
	if err := s.SendLogoutRequest(); err != nil {
		t.Fatal(err)
	}
	s.Stop()
	ms := wait(t, got)
	if len(ms) != 2 {
		t.Fatalf("gateway got %v", ms)
	}
	lr, ok := ms[0].(*sbtcp.MessageLoginRequest)
	if !ok || lr.Username != "user" || lr.Password != "secret" || lr.Session != "SESS" || lr.SequenceNumber != 42 {
		t.Errorf("login request %+v", ms[0])
	}
	if ms[1].Type() != sbtcp.TypeLogout {
		t.Errorf("second packet %v", ms[1].Type())
	}
	if s.OutboundSequence() != 7 {
		t.Errorf("control packets moved the outbound sequence to %d", s.OutboundSequence())
	}
}

func TestConnectionLost(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, nil)
	conn.Close()

	if _, err := s.Receive(2 * time.Second); !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("Receive = %v, want ErrConnectionLost", err)
	}
	if !errors.Is(s.Err(), ErrConnectionLost) {
		t.Errorf("Err = %v", s.Err())
	}
	if _, err := s.SendEnterOrder(Order{}); !errors.Is(err, ErrStopped) {
		t.Errorf("send on a lost connection = %v", err)
	}
}

func TestStartErrors(t *testing.T) {
	s := NewSession(DefaultConfig())
	if err := s.Send(&sbtcp.MessageLogout{}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Send = %v", err)
	}
	if err := s.Stop(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Stop = %v", err)
	}
	if _, err := s.Receive(time.Millisecond); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Receive = %v", err)
	}

	// a refused connection is not retried
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	cfg := DefaultConfig()
	cfg.RemoteAddr = addr
	cfg.ConnectBackoff = time.Hour
	s = NewSession(cfg)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start succeeded without a listener")
	}
	if s.State() != StateDisconnected {
		t.Errorf("state %v after a failed start", s.State())
	}

	g := newGateway(t)
	s, _ = startSession(t, g, nil)
	if err := s.Start(context.Background()); !errors.Is(err, ErrStarted) {
		t.Errorf("second Start = %v", err)
	}
}

func TestContextCancel(t *testing.T) {
	g := newGateway(t)
	cfg := DefaultConfig()
	cfg.RemoteAddr = g.ln.Addr().String()
	s := NewSession(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	g.accept()
	cancel()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on cancel")
	}
	if s.Err() != nil {
		t.Errorf("Err = %v after cancel", s.Err())
	}
}

func TestSendDuringStop(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, func(c *Config) {
		c.HeartbeatTimeout = 0
		c.QueueSize = 4
		c.StopTimeout = 5 * time.Second
	})
	got := collect(conn)

	accepted := make(chan int, 1)
	go func() {
		n := 0
		for {
			if _, err := s.SendEnterOrder(Order{}); err != nil {
				if !errors.Is(err, ErrStopped) {
					t.Errorf("SendEnterOrder = %v", err)
				}
				accepted <- n
				return
			}
			n++
		}
	}()
	time.Sleep(5 * time.Millisecond)
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	var n int
	select {
	case n = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("sender still running after Stop")
	}
	sent := count(wait(t, got), sbtcp.TypeUnsequencedData)
	if n == 0 {
		t.Error("no order accepted before Stop")
	}
	if sent != n || s.OutboundSequence() != uint64(n) {
		t.Errorf("accepted %d, gateway got %d, outbound sequence %d", n, sent, s.OutboundSequence())
	}
}

func TestSkipsBadPackets(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, nil)
	for _, raw := range [][]byte{
		{0, 3, 'Q', 1, 2},
		{0, 6, 'A', '1', '2', '3', '4', '5'},
	} {
		if _, err := conn.Write(raw); err != nil {
			t.Fatal(err)
		}
	}
	sbtcp.WriteMessage(conn, &sbtcp.MessageLoginRejected{Reason: ouch.CodeOf(sbtcp.LoginRejectReason, "Session not available")})
	sbtcp.WriteMessage(conn, &sbtcp.MessageEnd{})

	for _, want := range []sbtcp.MessageType{sbtcp.TypeLoginRejected, sbtcp.TypeEnd} {
		m, err := s.Receive(time.Second)
		if err != nil || m.Type() != want {
			t.Fatalf("Receive = %v, %v; want %c", m, err, want)
		}
	}
	if s.State() != StateConnected {
		t.Errorf("state %v after bad packets", s.State())
	}
}

func TestFramingErrorEndsSession(t *testing.T) {
	g := newGateway(t)
	s, conn := startSession(t, g, nil)
	if _, err := conn.Write([]byte{0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Receive(2 * time.Second); !errors.Is(err, sbtcp.ErrFraming) {
		t.Fatalf("Receive = %v, want ErrFraming", err)
	}
	<-s.Done()
	if !errors.Is(s.Err(), sbtcp.ErrFraming) {
		t.Errorf("Err = %v", s.Err())
	}
	if s.State() != StateDisconnected {
		t.Errorf("state %v after a framing error", s.State())
	}
}
