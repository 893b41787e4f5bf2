// Copyright (c) Ilia Kravets, 2015. All rights reserved. PROVIDED "AS IS"
// WITHOUT ANY WARRANTY, EXPRESS OR IMPLIED. See LICENSE file for details.

package client

import (
	"github.com/ForrestLi/ITCH-OUCH-tool/sbtcp"
)

// Handler sees every received packet before it is queued for Receive.
// Returning true consumes the packet.
type Handler interface {
	TryHandle(m sbtcp.Message) bool
}

type HandlerFunc func(m sbtcp.Message) bool

func (f HandlerFunc) TryHandle(m sbtcp.Message) bool {
	return f(m)
}

type heartbeatFilter struct {
	s *Session
}

func (h heartbeatFilter) TryHandle(m sbtcp.Message) bool {
	return h.s.cfg.HandleHeartbeats && m.Type() == sbtcp.TypeHeartbeat
}

// AddHandler appends h to the handler chain; handlers run in order.
func (s *Session) AddHandler(h Handler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers = append(s.handlers, h)
}

func (s *Session) handle(m sbtcp.Message) bool {
	s.handlersMu.RLock()
	hs := s.handlers
	s.handlersMu.RUnlock()
	for _, h := range hs {
		if h.TryHandle(m) {
			return true
		}
	}
	return false
}
