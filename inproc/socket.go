// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package inproc

import (
	"bytes"
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/zsock/native"
)

// Socket is an inproc message socket.
type Socket struct {
	ctx    *Context
	kind   native.Kind
	serial uint32
	closed atomix.Uint32

	// sigMu orders signal writes against closing efd so a peer never
	// writes into a recycled descriptor. It is a leaf lock.
	sigMu sync.Mutex
	efd   int

	mu       sync.Mutex
	detached bool
	pipes    []*pipeEnd
	subs     [][]byte
	staged   message
	target   *pipeEnd
	cur      message
	rr       int
	fq       int
}

var (
	_ native.Socket     = (*Socket)(nil)
	_ native.Subscriber = (*Socket)(nil)
)

// Kind returns the socket pattern.
func (s *Socket) Kind() native.Kind { return s.kind }

// Serial returns the socket's context-unique number.
func (s *Socket) Serial() uint32 { return s.serial }

// Fd returns the eventfd raised when readiness may have changed.
func (s *Socket) Fd() int { return s.efd }

func (s *Socket) canSend() bool {
	return s.kind != native.Pull && s.kind != native.Sub
}

func (s *Socket) canRecv() bool {
	return s.kind != native.Push && s.kind != native.Pub
}

func (s *Socket) check() error {
	if s.closed.Load() != 0 {
		return native.ErrInvalidHandle
	}
	if s.ctx.terminated.Load() != 0 {
		return native.ErrTerminated
	}
	return nil
}

// signal raises the socket's eventfd. Safe from any goroutine.
func (s *Socket) signal() {
	s.sigMu.Lock()
	defer s.sigMu.Unlock()
	if s.closed.Load() != 0 {
		return
	}
	raiseFd(s.efd)
}

// TrySend transfers one frame. Frames with more set are staged and the
// whole message is queued on one pipe when its last frame arrives, so a
// receiver never observes part of a message.
func (s *Socket) TrySend(data []byte, more bool) error {
	if err := s.check(); err != nil {
		return err
	}
	if !s.canSend() {
		return fmt.Errorf("%w: send on %s", native.ErrNotSupported, s.kind)
	}
	frame := bytes.Clone(data)
	if frame == nil {
		frame = []byte{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	if s.kind == native.Pub {
		return s.publish(frame, more)
	}
	if s.target == nil {
		t := s.pickOut()
		if t == nil {
			return iox.ErrWouldBlock
		}
		s.target = t
	}
	if more {
		s.staged = append(s.staged, frame)
		return nil
	}
	m := append(s.staged, frame)
	if s.target.isClosed() {
		// peer went away mid-message; the message is lost with the pipe
		s.staged, s.target = nil, nil
		return nil
	}
	if err := s.target.send(m); err != nil {
		return err
	}
	s.staged, s.target = nil, nil
	return nil
}

// publish fans a message out to every subscriber pipe, dropping it for
// pipes at their high-water mark. It never blocks.
func (s *Socket) publish(frame []byte, more bool) error {
	s.staged = append(s.staged, frame)
	if more {
		return nil
	}
	m := s.staged
	s.staged = nil
	for _, e := range s.pipes {
		if e.writable() {
			_ = e.send(m)
		}
	}
	return nil
}

// pickOut selects the next writable pipe round-robin.
func (s *Socket) pickOut() *pipeEnd {
	n := len(s.pipes)
	for i := 0; i < n; i++ {
		idx := (s.rr + i) % n
		if e := s.pipes[idx]; e.writable() {
			s.rr = idx + 1
			return e
		}
	}
	return nil
}

// TryRecv transfers one frame of the current inbound message, pulling the
// next whole message from the pipes fair-queued when none is in progress.
func (s *Socket) TryRecv() ([]byte, bool, error) {
	if err := s.check(); err != nil {
		return nil, false, err
	}
	if !s.canRecv() {
		return nil, false, fmt.Errorf("%w: receive on %s", native.ErrNotSupported, s.kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.cur) == 0 {
		m, ok := s.pickIn()
		if !ok {
			s.prune()
			return nil, false, iox.ErrWouldBlock
		}
		if s.kind == native.Sub && !s.subscribed(m[0]) {
			continue
		}
		s.cur = m
	}
	f := s.cur[0]
	s.cur = s.cur[1:]
	return f, len(s.cur) > 0, nil
}

// pickIn dequeues the next message fair-queued across pipes.
func (s *Socket) pickIn() (message, bool) {
	n := len(s.pipes)
	for i := 0; i < n; i++ {
		idx := (s.fq + i) % n
		if m, ok := s.pipes[idx].recv(); ok {
			s.fq = idx + 1
			return m, true
		}
	}
	return nil, false
}

func (s *Socket) subscribed(topic []byte) bool {
	for _, p := range s.subs {
		if bytes.HasPrefix(topic, p) {
			return true
		}
	}
	return false
}

// prune drops closed pipes that have nothing left to read.
func (s *Socket) prune() {
	kept := s.pipes[:0]
	for _, e := range s.pipes {
		if e.isClosed() && !e.readable() && e != s.target {
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.pipes); i++ {
		s.pipes[i] = nil
	}
	s.pipes = kept
}

// Events drains the eventfd and reports current readiness. The eventfd is
// drained before the termination check so a level-triggered poller stops
// reporting it.
func (s *Socket) Events() (native.Events, error) {
	if s.closed.Load() != 0 {
		return 0, native.ErrInvalidHandle
	}
	drainFd(s.efd)
	if s.ctx.terminated.Load() != 0 {
		return 0, native.ErrTerminated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ev native.Events
	if s.canRecv() {
		if len(s.cur) > 0 {
			ev |= native.PollIn
		} else {
			for _, e := range s.pipes {
				if e.readable() {
					ev |= native.PollIn
					break
				}
			}
		}
	}
	if s.canSend() {
		switch {
		case s.kind == native.Pub:
			ev |= native.PollOut
		case s.target != nil:
			if s.target.writable() || s.target.isClosed() {
				ev |= native.PollOut
			}
		default:
			for _, e := range s.pipes {
				if e.writable() {
					ev |= native.PollOut
					break
				}
			}
		}
	}
	return ev, nil
}

// Bind registers the socket under an inproc endpoint.
func (s *Socket) Bind(endpoint string) error {
	if err := s.check(); err != nil {
		return err
	}
	name, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}
	return s.ctx.bind(name, s)
}

// Connect attaches a pipe to the socket bound at endpoint.
func (s *Socket) Connect(endpoint string) error {
	if err := s.check(); err != nil {
		return err
	}
	name, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}
	peer, ok := s.ctx.lookup(name)
	if !ok || peer.closed.Load() != 0 {
		return fmt.Errorf("%w: %s", native.ErrConnRefused, endpoint)
	}
	if peer == s {
		return fmt.Errorf("%w: %s is bound by this socket", native.ErrConnRefused, endpoint)
	}
	if !compatible(s.kind, peer.kind) {
		return fmt.Errorf("%w: %s cannot connect to %s", native.ErrConnRefused, s.kind, peer.kind)
	}
	connEnd, boundEnd := newPipe(name, s.ctx.opts.hwm, s, peer)
	unlock := lockPair(s, peer)
	if s.detached || peer.detached {
		unlock()
		return fmt.Errorf("%w: %s", native.ErrConnRefused, endpoint)
	}
	if s.kind == native.Pair {
		s.prune()
		peer.prune()
		if len(s.pipes) > 0 || len(peer.pipes) > 0 {
			unlock()
			return fmt.Errorf("%w: PAIR already connected", native.ErrConnRefused)
		}
	}
	peer.pipes = append(peer.pipes, boundEnd)
	s.pipes = append(s.pipes, connEnd)
	unlock()
	peer.signal()
	s.signal()
	return nil
}

// lockPair locks a and b in serial order, so two sockets connecting to
// each other cannot deadlock.
func lockPair(a, b *Socket) (unlock func()) {
	if b.serial < a.serial {
		a, b = b, a
	}
	a.mu.Lock()
	b.mu.Lock()
	return func() {
		b.mu.Unlock()
		a.mu.Unlock()
	}
}

// Disconnect closes the pipes this socket opened to endpoint.
func (s *Socket) Disconnect(endpoint string) error {
	if err := s.check(); err != nil {
		return err
	}
	name, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}
	s.mu.Lock()
	found := false
	for _, e := range s.pipes {
		if e.connector && e.p.endpoint == name && !e.isClosed() {
			e.close()
			found = true
		}
	}
	s.prune()
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("%w: %s", native.ErrNotConnected, endpoint)
	}
	s.signal()
	return nil
}

// Subscribe adds a topic prefix filter. An empty prefix matches everything.
func (s *Socket) Subscribe(prefix []byte) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.kind != native.Sub {
		return fmt.Errorf("%w: subscribe on %s", native.ErrNotSupported, s.kind)
	}
	s.mu.Lock()
	s.subs = append(s.subs, bytes.Clone(prefix))
	s.mu.Unlock()
	return nil
}

// Unsubscribe removes one matching topic prefix filter.
func (s *Socket) Unsubscribe(prefix []byte) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.kind != native.Sub {
		return fmt.Errorf("%w: unsubscribe on %s", native.ErrNotSupported, s.kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.subs {
		if bytes.Equal(p, prefix) {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close releases the socket, its endpoints and its pipes. Messages still
// queued towards a peer remain readable by that peer.
func (s *Socket) Close() error {
	if s.closed.Load() != 0 {
		return native.ErrInvalidHandle
	}
	s.ctx.forget(s)
	s.mu.Lock()
	pipes := s.pipes
	s.pipes, s.staged, s.target, s.cur = nil, nil, nil, nil
	s.detached = true
	s.mu.Unlock()
	for _, e := range pipes {
		e.close()
	}
	s.sigMu.Lock()
	defer s.sigMu.Unlock()
	if s.closed.Add(1) != 1 {
		return native.ErrInvalidHandle
	}
	return closeFd(s.efd)
}
