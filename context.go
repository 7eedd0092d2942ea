// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"code.hybscloud.com/atomix"
	"go.uber.org/zap"

	"code.hybscloud.com/zsock/loop"
	"code.hybscloud.com/zsock/native"
)

// sharedContext is the native context shared by every clone of a Context
// and every socket opened from one. The native context is closed when the
// last reference is released.
type sharedContext struct {
	native native.Context
	refs   atomix.Uint32
	log    *zap.Logger
}

// Context is a reference to a shared native messaging context.
// Clones share the native context; each clone is released once with Close.
type Context struct {
	shared   *sharedContext
	released atomix.Uint32
}

// NewContext creates a context. Without [WithNative] it is backed by a
// fresh inproc context.
func NewContext(opts ...Option) *Context {
	o := buildOptions(opts)
	sc := &sharedContext{native: o.native, log: o.logger}
	sc.refs.Add(1)
	return &Context{shared: sc}
}

// Clone returns another reference to the same native context.
func (c *Context) Clone() *Context {
	c.shared.refs.Add(1)
	return &Context{shared: c.shared}
}

// Refs returns the number of live references, sockets included.
func (c *Context) Refs() int { return int(c.shared.refs.Load()) }

// Native returns the shared native context.
func (c *Context) Native() native.Context { return c.shared.native }

// Close releases this reference. Releasing the last reference closes the
// native context. Close is idempotent per reference.
func (c *Context) Close() error {
	if c.released.Add(1) != 1 {
		return nil
	}
	if c.shared.refs.Add(^uint32(0)) != 0 {
		return nil
	}
	c.shared.log.Debug("context released")
	return c.shared.native.Close()
}

// Destroy terminates the native context at once, regardless of remaining
// references. Every socket of the context fails its pending and later
// operations with a fatal [TransportError] wrapping [native.ErrTerminated].
func (c *Context) Destroy() error {
	return c.shared.native.Terminate()
}

// Socket opens a socket of the given kind and registers it with l.
// Failures are reported as [*OpenError].
func (c *Context) Socket(kind Kind, l *loop.Loop) (*Socket, error) {
	if c.released.Load() != 0 {
		return nil, &OpenError{Kind: kind, Err: ErrContextClosed}
	}
	h, err := c.shared.native.Open(kind)
	if err != nil {
		return nil, &OpenError{Kind: kind, Err: err}
	}
	serial := nextSerial()
	log := c.shared.log.With(zap.Stringer("kind", kind), zap.Uint32("socket", serial))
	if n, ok := h.(interface{ Serial() uint32 }); ok {
		log = log.With(zap.Uint32("native", n.Serial()))
	}
	s := &Socket{
		ctx:    c.Clone(),
		handle: h,
		kind:   kind,
		loop:   l,
		serial: serial,
		log:    log,
	}
	tok, err := l.Register(h.Fd(), s.onReady)
	if err != nil {
		_ = h.Close()
		_ = s.ctx.Close()
		return nil, &OpenError{Kind: kind, Err: err}
	}
	s.ready.token = tok
	s.log.Debug("socket opened")
	return s, nil
}
