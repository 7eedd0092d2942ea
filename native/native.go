// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package native defines the non-blocking message socket capability that
// zsock drives from an event loop.
//
// Implementations report transient unavailability with
// [code.hybscloud.com/iox.ErrWouldBlock] and never block the caller.
// A socket exposes a pollable file descriptor that becomes readable whenever
// its send or receive readiness may have changed; [Socket.Events] drains that
// signal and reports the current readiness.
package native

import "errors"

// Kind is a messaging socket pattern.
type Kind int

const (
	Pair Kind = iota
	Pub
	Sub
	Req
	Rep
	Dealer
	Router
	Pull
	Push
	XPub
	XSub
	Stream
)

var kindNames = [...]string{
	Pair:   "PAIR",
	Pub:    "PUB",
	Sub:    "SUB",
	Req:    "REQ",
	Rep:    "REP",
	Dealer: "DEALER",
	Router: "ROUTER",
	Pull:   "PULL",
	Push:   "PUSH",
	XPub:   "XPUB",
	XSub:   "XSUB",
	Stream: "STREAM",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Events is a readiness bit set.
type Events uint8

const (
	// PollIn reports that at least one frame can be received.
	PollIn Events = 1 << iota
	// PollOut reports that at least one frame can be sent.
	PollOut
)

// Has reports whether all bits of e2 are set in e.
func (e Events) Has(e2 Events) bool { return e&e2 == e2 }

// Native error conditions.
var (
	ErrInvalidHandle        = errors.New("native: invalid socket handle")
	ErrTerminated           = errors.New("native: context terminated")
	ErrKind                 = errors.New("native: unsupported socket kind")
	ErrTooManySockets       = errors.New("native: too many open sockets")
	ErrBadAddress           = errors.New("native: malformed endpoint")
	ErrUnsupportedTransport = errors.New("native: unsupported transport")
	ErrAddrInUse            = errors.New("native: address in use")
	ErrConnRefused          = errors.New("native: connection refused")
	ErrNotConnected         = errors.New("native: endpoint not connected")
	ErrNotSupported         = errors.New("native: operation not supported by socket kind")
)

// Context opens sockets sharing one messaging context.
type Context interface {
	// Open creates a socket of the given kind.
	Open(kind Kind) (Socket, error)
	// Terminate makes every socket of the context fail with ErrTerminated.
	Terminate() error
	// Close terminates the context and releases its resources.
	Close() error
}

// Socket is a non-blocking message socket.
//
// TrySend and TryRecv transfer one frame. more marks that further frames of
// the same message follow. Both return iox.ErrWouldBlock when the socket
// cannot make progress now.
type Socket interface {
	Kind() Kind
	TrySend(data []byte, more bool) error
	TryRecv() (data []byte, more bool, err error)
	Fd() int
	Events() (Events, error)
	Bind(endpoint string) error
	Connect(endpoint string) error
	Disconnect(endpoint string) error
	Close() error
}

// Subscriber is implemented by sockets that filter inbound messages by prefix.
type Subscriber interface {
	Subscribe(prefix []byte) error
	Unsubscribe(prefix []byte) error
}

// IsFatal reports whether err means the socket handle can no longer be used.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidHandle) || errors.Is(err, ErrTerminated)
}
