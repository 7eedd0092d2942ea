// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package inproc is an in-process implementation of the [native] message
// socket capability.
//
// Sockets of one [Context] exchange whole multipart messages over pipes made
// of bounded lock-free SPSC queues ([code.hybscloud.com/lfq]). Each socket
// owns an eventfd that is raised whenever its readiness may have changed, so
// an event loop can wait for it instead of polling.
//
// A socket must be used from one goroutine at a time. Two sockets connected
// through a pipe may live on different goroutines.
package inproc

import (
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/zsock/native"
)

// Context is a registry of inproc endpoints and the sockets opened on it.
type Context struct {
	opts       options
	mu         sync.Mutex
	endpoints  map[string]*Socket
	sockets    map[*Socket]struct{}
	terminated atomix.Uint32
	serial     atomix.Uint32
}

// NewContext creates an inproc context.
func NewContext(opts ...Option) *Context {
	o := options{hwm: DefaultHighWaterMark, maxSockets: DefaultMaxSockets}
	for _, opt := range opts {
		opt(&o)
	}
	return &Context{
		opts:      o,
		endpoints: make(map[string]*Socket),
		sockets:   make(map[*Socket]struct{}),
	}
}

var _ native.Context = (*Context)(nil)

// Open creates a socket. Supported kinds are PAIR, PUSH, PULL, PUB, SUB
// and DEALER.
func (c *Context) Open(kind native.Kind) (native.Socket, error) {
	if c.terminated.Load() != 0 {
		return nil, native.ErrTerminated
	}
	switch kind {
	case native.Pair, native.Push, native.Pull, native.Pub, native.Sub, native.Dealer:
	default:
		return nil, fmt.Errorf("%w: %s", native.ErrKind, kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sockets) >= c.opts.maxSockets {
		return nil, native.ErrTooManySockets
	}
	fd, err := newSignalFd()
	if err != nil {
		return nil, err
	}
	s := &Socket{
		ctx:    c,
		kind:   kind,
		efd:    fd,
		serial: c.serial.Add(1),
	}
	c.sockets[s] = struct{}{}
	return s, nil
}

// Terminate makes every socket of the context fail with
// native.ErrTerminated and wakes anything waiting on them.
func (c *Context) Terminate() error {
	if c.terminated.Add(1) != 1 {
		return nil
	}
	c.mu.Lock()
	sockets := make([]*Socket, 0, len(c.sockets))
	for s := range c.sockets {
		sockets = append(sockets, s)
	}
	c.mu.Unlock()
	for _, s := range sockets {
		s.signal()
	}
	return nil
}

// Close terminates the context. Sockets stay owned by their holders and
// must still be closed.
func (c *Context) Close() error {
	return c.Terminate()
}

// Len returns the number of open sockets.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sockets)
}

func (c *Context) bind(name string, s *Socket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.endpoints[name]; ok {
		return fmt.Errorf("%w: inproc://%s", native.ErrAddrInUse, name)
	}
	c.endpoints[name] = s
	return nil
}

func (c *Context) lookup(name string) (*Socket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.endpoints[name]
	return s, ok
}

// forget drops every endpoint bound by s and s itself.
func (c *Context) forget(s *Socket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, owner := range c.endpoints {
		if owner == s {
			delete(c.endpoints, name)
		}
	}
	delete(c.sockets, s)
}
