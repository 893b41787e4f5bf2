// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

// Package client is an OUCH order entry session over SoupBinTCP.
//
// A started Session runs two goroutines. The sender drains the outbound
// queue and writes client heartbeats when nothing was sent for
// HeartbeatTimeout. The receiver reads packets, passes them through the
// handler chain and queues the unclaimed ones for Receive.
package client

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ForrestLi/ITCH-OUCH-tool/field"
	"github.com/ForrestLi/ITCH-OUCH-tool/log"
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

var (
	ErrConnectionLost = errors.New("client: connection lost")
	ErrTimeout        = errors.New("client: receive timeout")
	ErrStopped        = errors.New("client: session stopped")
	ErrNotStarted     = errors.New("client: session not started")
	ErrStarted        = errors.New("client: session already started")
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

type Config struct {
	RemoteAddr string
	// LocalAddr is bound before connecting; empty lets the system choose.
	LocalAddr string

	Username string
	Password string
	Session  string
	// Sequence numbers already used before this connection.
	LastOutboundSeq uint64
	LastInboundSeq  uint64

	// HeartbeatTimeout is the idle time after which a client heartbeat is
	// sent. Zero disables client heartbeats.
	HeartbeatTimeout time.Duration
	// HandleHeartbeats drops server heartbeats instead of queueing them.
	HandleHeartbeats bool

	TokenPrefix string
	Defaults    OrderDefaults

	ConnectAttempts int
	ConnectBackoff  time.Duration
	StopTimeout     time.Duration
	QueueSize       int

	Dialect *sbtcp.Dialect
}

func DefaultConfig() Config {
	return Config{
		HeartbeatTimeout: time.Second,
		HandleHeartbeats: true,
		TokenPrefix:      "OUCH",
		Defaults:         DefaultOrderDefaults(),
		ConnectAttempts:  13,
		ConnectBackoff:   10 * time.Second,
		StopTimeout:      time.Second,
		QueueSize:        1024,
		Dialect:          sbtcp.OUCH,
	}
}

type Session struct {
	cfg Config

	state     atomic.Int32
	outbound  atomic.Uint64
	inbound   atomic.Uint64
	nextToken atomic.Uint64

	handlersMu sync.RWMutex
	handlers   []Handler

	// sendMu orders Send against the stop marker queued by Stop.
	sendMu   sync.Mutex
	stopping atomic.Bool

	mu       sync.Mutex
	conn     net.Conn
	sendq    chan []byte
	recvq    chan sbtcp.Message
	sendDone chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
	err      error
}

func NewSession(cfg Config) *Session {
	def := DefaultConfig()
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = def.ConnectAttempts
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = def.StopTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Dialect == nil {
		cfg.Dialect = def.Dialect
	}
	s := &Session{cfg: cfg}
	s.outbound.Store(cfg.LastOutboundSeq)
	s.inbound.Store(cfg.LastInboundSeq)
	s.nextToken.Store(1)
	s.handlers = []Handler{heartbeatFilter{s}}
	return s
}

func (s *Session) Config() Config {
	return s.cfg
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// OutboundSequence counts the unsequenced data packets queued for sending.
func (s *Session) OutboundSequence() uint64 {
	return s.outbound.Load()
}

// InboundSequence counts the sequenced data packets handed out by Receive.
func (s *Session) InboundSequence() uint64 {
	return s.inbound.Load()
}

// Err returns the error that terminated the session loops, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once both loops have exited.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Start connects to the gateway and launches the sender and receiver.
// Cancelling ctx tears the session down like Stop.
func (s *Session) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrStarted
	}
	log.Printf("starting OUCH client %s -> %s", s.cfg.LocalAddr, s.cfg.RemoteAddr)
	conn, err := s.dial(ctx)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	s.mu.Lock()
	s.conn = conn
	s.sendq = make(chan []byte, s.cfg.QueueSize)
	s.recvq = make(chan sbtcp.Message, s.cfg.QueueSize)
	s.sendDone = make(chan struct{})
	s.done = make(chan struct{})
	s.cancel = cancel
	s.err = nil
	s.stopping.Store(false)
	sendq, recvq, sendDone, done := s.sendq, s.recvq, s.sendDone, s.done
	s.mu.Unlock()
	s.state.Store(int32(StateConnected))

	g.Go(func() error {
		defer close(sendDone)
		return s.sendLoop(gctx, conn, sendq)
	})
	g.Go(func() error {
		defer close(recvq)
		return s.receiveLoop(gctx, conn, recvq)
	})
	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})
	go func() {
		err := g.Wait()
		cancel()
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.state.Store(int32(StateDisconnected))
		if err != nil {
			log.Printf("OUCH client %s -> %s terminated: %v", conn.LocalAddr(), conn.RemoteAddr(), err)
		}
		close(done)
	}()
	return nil
}

// Stop asks the sender to finish the queued packets, closes the connection
// and waits for both loops, each wait bounded by StopTimeout.
func (s *Session) Stop() error {
	s.mu.Lock()
	sendq, sendDone, done, cancel := s.sendq, s.sendDone, s.done, s.cancel
	s.mu.Unlock()
	if done == nil {
		return ErrNotStarted
	}
	log.Printf("stopping OUCH client %s -> %s", s.cfg.LocalAddr, s.cfg.RemoteAddr)
	timeout := s.cfg.StopTimeout

	// nothing is accepted behind the stop marker
	s.sendMu.Lock()
	s.stopping.Store(true)
	s.sendMu.Unlock()

	select {
	case sendq <- nil:
	case <-done:
	case <-time.After(timeout):
	}
	select {
	case <-sendDone:
	case <-time.After(timeout):
	}
	cancel()
	select {
	case <-done:
	case <-time.After(timeout):
		return errors.Errorf("client: loops did not terminate in %s", timeout)
	}
	return nil
}

// Send queues a packet. Unsequenced data advances the outbound sequence.
// Once Stop has begun Send fails with ErrStopped.
func (s *Session) Send(m sbtcp.Message) error {
	b, err := sbtcp.Encode(m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	sendq, done := s.sendq, s.done
	s.mu.Unlock()
	if done == nil {
		return ErrNotStarted
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.stopping.Load() {
		return ErrStopped
	}
	select {
	case <-done:
		return ErrStopped
	default:
	}
	select {
	case sendq <- b:
	case <-done:
		return ErrStopped
	}
	if m.Type() == sbtcp.TypeUnsequencedData {
		s.outbound.Add(1)
	}
	return nil
}

// Receive waits up to timeout for the next packet no handler claimed.
// Once the session is down and the queue drained it returns the error that
// stopped the session, or ErrStopped.
func (s *Session) Receive(timeout time.Duration) (sbtcp.Message, error) {
	s.mu.Lock()
	recvq := s.recvq
	s.mu.Unlock()
	if recvq == nil {
		return nil, ErrNotStarted
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case m, ok := <-recvq:
		if !ok {
			<-s.Done()
			if err := s.Err(); err != nil {
				return nil, err
			}
			return nil, ErrStopped
		}
		if m.Type() == sbtcp.TypeSequencedData {
			s.inbound.Add(1)
		}
		return m, nil
	case <-t.C:
		return nil, ErrTimeout
	}
}

func (s *Session) sendLoop(ctx context.Context, conn net.Conn, sendq chan []byte) error {
	heartbeat, err := sbtcp.Encode(&sbtcp.MessageClientHeartbeat{})
	if err != nil {
		return err
	}
	hbTimeout := s.cfg.HeartbeatTimeout
	timer := time.NewTimer(hbTimeout)
	defer timer.Stop()
	lastSend := time.Now()
	for {
		var tick <-chan time.Time
		if hbTimeout > 0 {
			timer.Reset(time.Until(lastSend.Add(hbTimeout)))
			tick = timer.C
		}
		var b []byte
		select {
		case <-ctx.Done():
			return nil
		case b = <-sendq:
			if b == nil {
				return nil
			}
		case <-tick:
			// queued packets go first, a heartbeat only on an idle queue
			select {
			case b = <-sendq:
				if b == nil {
					return nil
				}
			default:
				b = heartbeat
			}
		}
		if err := writeAll(conn, b); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		lastSend = time.Now()
	}
}

func writeAll(conn net.Conn, b []byte) error {
	for len(b) > 0 {
		n, err := conn.Write(b)
		if err != nil {
			return errors.Wrapf(ErrConnectionLost, "write: %v", err)
		}
		if n == 0 {
			return errors.Wrap(ErrConnectionLost, "socket closed unexpectedly")
		}
		b = b[n:]
	}
	return nil
}

func (s *Session) receiveLoop(ctx context.Context, conn net.Conn, recvq chan sbtcp.Message) error {
	for {
		m, err := s.cfg.Dialect.ReadMessage(conn)
		switch {
		case err == nil:
		case isDiagnostic(err):
			log.Printf("OUCH client: skipping packet: %v", err)
			continue
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, sbtcp.ErrFraming):
			return err
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return errors.Wrap(ErrConnectionLost, "closed by peer")
		default:
			return errors.Wrapf(ErrConnectionLost, "read: %v", err)
		}
		if s.handle(m) {
			continue
		}
		select {
		case recvq <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// isDiagnostic reports errors that concern a single packet whose boundary
// was still known.
func isDiagnostic(err error) bool {
	var ue *sbtcp.UnknownPacketError
	return errors.As(err, &ue) || errors.Is(err, field.ErrMalformed) || errors.Is(err, field.ErrTruncated)
}

func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Control: reuseAddr}
	if s.cfg.LocalAddr != "" {
		laddr, err := net.ResolveTCPAddr("tcp", s.cfg.LocalAddr)
		if err != nil {
			return nil, errors.Wrap(err, "client: local address")
		}
		d.LocalAddr = laddr
	}
	attempt := 0
	conn, err := backoff.Retry(ctx, func() (net.Conn, error) {
		attempt++
		conn, err := d.DialContext(ctx, "tcp", s.cfg.RemoteAddr)
		if err != nil && !addrBusy(err) {
			return nil, backoff.Permanent(err)
		}
		return conn, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.ConnectBackoff)),
		backoff.WithMaxTries(uint(s.cfg.ConnectAttempts)),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Printf("cannot connect: address taken, retrying in %s: %v", d, err)
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "client: connect %s (attempt %d)", s.cfg.RemoteAddr, attempt)
	}
	return conn, nil
}
