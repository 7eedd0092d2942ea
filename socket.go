// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"code.hybscloud.com/zsock/loop"
	"code.hybscloud.com/zsock/native"
)

// Kind is a messaging socket pattern.
type Kind = native.Kind

const (
	KindPair   = native.Pair
	KindPub    = native.Pub
	KindSub    = native.Sub
	KindReq    = native.Req
	KindRep    = native.Rep
	KindDealer = native.Dealer
	KindRouter = native.Router
	KindPull   = native.Pull
	KindPush   = native.Push
	KindXPub   = native.XPub
	KindXSub   = native.XSub
	KindStream = native.Stream
)

// Socket owns one native socket and drives it from one [loop.Loop].
//
// Operations are constructed by Send, Receive, SendMultipart and
// ReceiveMultipart and run when polled by the loop. Only one operation
// per direction may be in flight; a second one fails with [ErrBusy].
// A Socket must only be used on its loop's goroutine.
type Socket struct {
	ctx    *Context
	handle native.Socket
	kind   Kind
	loop   *loop.Loop
	ready  Readiness
	owners [2]any
	fatal  error
	closed bool
	serial Serial
	log    *zap.Logger
}

// Kind returns the socket pattern.
func (s *Socket) Kind() Kind { return s.kind }

// Serial returns the socket's process-unique number.
func (s *Socket) Serial() Serial { return s.serial }

// Readiness returns the socket's readiness handle.
func (s *Socket) Readiness() *Readiness { return &s.ready }

// Native returns the underlying native socket, for options this package
// does not wrap.
func (s *Socket) Native() native.Socket { return s.handle }

// Bind binds the socket to endpoint.
func (s *Socket) Bind(endpoint string) error {
	return s.address("bind", endpoint, s.handle.Bind)
}

// Connect connects the socket to endpoint.
func (s *Socket) Connect(endpoint string) error {
	return s.address("connect", endpoint, s.handle.Connect)
}

// Disconnect undoes a previous Connect to endpoint.
func (s *Socket) Disconnect(endpoint string) error {
	return s.address("disconnect", endpoint, s.handle.Disconnect)
}

func (s *Socket) address(op, endpoint string, fn func(string) error) error {
	if err := s.usable(op, 0); err != nil {
		return err
	}
	if err := fn(endpoint); err != nil {
		if native.IsFatal(err) {
			return s.transportError(op, 0, err)
		}
		return &AddressError{Op: op, Endpoint: endpoint, Err: err}
	}
	s.log.Debug("endpoint", zap.String("op", op), zap.String("endpoint", endpoint))
	return nil
}

// Subscribe adds a topic prefix filter on a SUB socket.
func (s *Socket) Subscribe(prefix []byte) error {
	sub, err := s.subscriber("subscribe")
	if err != nil {
		return err
	}
	return s.filter("subscribe", sub.Subscribe(prefix))
}

// Unsubscribe removes a topic prefix filter from a SUB socket.
func (s *Socket) Unsubscribe(prefix []byte) error {
	sub, err := s.subscriber("unsubscribe")
	if err != nil {
		return err
	}
	return s.filter("unsubscribe", sub.Unsubscribe(prefix))
}

// filter applies the fatal handle policy to a subscription change.
func (s *Socket) filter(op string, err error) error {
	if err != nil && native.IsFatal(err) {
		return s.transportError(op, 0, err)
	}
	return err
}

func (s *Socket) subscriber(op string) (native.Subscriber, error) {
	if err := s.usable(op, 0); err != nil {
		return nil, err
	}
	sub, ok := s.handle.(native.Subscriber)
	if !ok {
		return nil, fmt.Errorf("zsock: %s: %w", op, native.ErrNotSupported)
	}
	return sub, nil
}

// Send returns a future that sends data as a single-frame message.
func (s *Socket) Send(data []byte) *Future[struct{}] {
	return newFuture(s, "send", dirSend, sendOne(NewFrame(data)))
}

// Receive returns a future that receives the next frame.
func (s *Socket) Receive() *Future[Frame] {
	return newFuture(s, "receive", dirRecv, recvOne())
}

// SendMultipart returns a future that sends parts as one multipart
// message. Frames go out strictly in order; an empty parts list completes
// without touching the transport.
func (s *Socket) SendMultipart(parts [][]byte) *Future[struct{}] {
	return s.SendMessage(NewMessage(parts...))
}

// SendMessage is SendMultipart for an already built message. The more
// markers of m are normalized so that only the last frame ends the message.
func (s *Socket) SendMessage(m Message) *Future[struct{}] {
	frames := make(Message, len(m))
	for i, f := range m {
		frames[i] = Frame{data: f.data, more: i < len(m)-1}
	}
	return newFuture(s, "send_multipart", dirSend, sendAll(frames))
}

// ReceiveMultipart returns a future that receives one whole multipart
// message. A failure discards the frames accumulated so far.
func (s *Socket) ReceiveMultipart() *Future[Message] {
	return newFuture(s, "receive_multipart", dirRecv, recvAll(nil))
}

// Framed returns the sink/stream adapter pair over the socket.
func (s *Socket) Framed() (*Sink, *Stream) {
	return &Sink{sock: s}, &Stream{sock: s}
}

// Close deregisters the socket from its loop, closes the native socket
// and releases the socket's context reference. Pending operations fail
// with [ErrClosed] on their next poll. Close is idempotent.
func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.ready.wakeAll()
	err := multierr.Combine(
		s.loop.Deregister(s.ready.token),
		s.handle.Close(),
		s.ctx.Close(),
	)
	s.log.Debug("socket closed", zap.Error(err))
	return err
}

// acquire makes owner the active operation for d.
func (s *Socket) acquire(d direction, owner any) error {
	if cur := s.owners[d]; cur != nil && cur != owner {
		return fmt.Errorf("zsock: %s: %w", d, ErrBusy)
	}
	s.owners[d] = owner
	return nil
}

// release gives up d if owner holds it, disarming w.
func (s *Socket) release(d direction, owner any, w *loop.Waker) {
	if s.owners[d] == owner {
		s.owners[d] = nil
	}
	s.ready.disarm(d, w)
}

// usable reports why no further operation may run on the socket.
func (s *Socket) usable(op string, frames int) error {
	if s.closed {
		return &TransportError{Op: op, Frame: frames, Fatal: true, Err: ErrClosed}
	}
	if s.fatal != nil {
		return &TransportError{Op: op, Frame: frames, Fatal: true, Err: s.fatal}
	}
	return nil
}

// suspend arms w for d after a WouldBlock, then re-reads the native
// readiness so a change that raced the attempt wakes w at once.
func (s *Socket) suspend(d direction, w *loop.Waker) {
	s.ready.arm(d, w)
	s.log.Debug("suspended", zap.Stringer("dir", d))
	s.refresh()
}

// onReady is the loop's notification callback for the socket's fd.
func (s *Socket) onReady() {
	s.refresh()
}

func (s *Socket) refresh() {
	ev, err := s.handle.Events()
	if err != nil {
		if native.IsFatal(err) {
			s.markFatal(err)
			return
		}
		s.log.Warn("readiness query failed", zap.Error(err))
		s.ready.wakeAll()
		return
	}
	s.ready.update(ev)
}

// transportError wraps a native failure, marking the socket dead when the
// native layer says the handle is unusable.
func (s *Socket) transportError(op string, frames int, err error) error {
	fatal := native.IsFatal(err)
	if fatal {
		s.markFatal(err)
	}
	return &TransportError{Op: op, Frame: frames, Fatal: fatal, Err: err}
}

// markFatal records a dead handle: the fd is withdrawn from the loop and
// every armed operation is woken to observe the failure.
func (s *Socket) markFatal(err error) {
	if s.fatal != nil {
		return
	}
	s.fatal = err
	s.log.Warn("socket handle unusable", zap.Error(err))
	if derr := s.loop.Deregister(s.ready.token); derr != nil {
		s.log.Warn("deregister failed", zap.Error(derr))
	}
	s.ready.wakeAll()
}
