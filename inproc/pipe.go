// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package inproc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// message is a whole multipart message. Pipes only ever carry complete
// messages, which is what makes multipart delivery atomic.
type message [][]byte

// msgQueue is one pipe direction: a single-producer single-consumer
// bounded queue plus a depth counter the consumer and producer use to
// detect empty/full transitions without touching the ring.
type msgQueue struct {
	q     lfq.SPSC[message]
	depth atomix.Uint32
}

// pipe connects a bound socket with a connecting one.
// Both directions and the shared closed flag live in a single allocation;
// only the ring buffers are separate heap objects.
type pipe struct {
	endpoint string
	hwm      uint32
	closed   atomix.Uint32
	toBound  msgQueue
	toConn   msgQueue
}

// pipeEnd is one socket's view of a pipe.
type pipeEnd struct {
	p    *pipe
	out  *msgQueue
	in   *msgQueue
	peer *Socket
	// connector is true on the connecting side; only it may disconnect.
	connector bool
}

// newPipe creates a pipe and returns the connecting and bound ends.
func newPipe(endpoint string, hwm int, conn, bound *Socket) (*pipeEnd, *pipeEnd) {
	p := &pipe{endpoint: endpoint, hwm: uint32(hwm)}
	capacity := ringCapacity(hwm)
	p.toBound.q.Init(capacity)
	p.toConn.q.Init(capacity)
	connEnd := &pipeEnd{p: p, out: &p.toBound, in: &p.toConn, peer: bound, connector: true}
	boundEnd := &pipeEnd{p: p, out: &p.toConn, in: &p.toBound, peer: conn}
	return connEnd, boundEnd
}

// ringCapacity rounds hwm up to a power of two, at least 2. The depth
// counter, not the ring size, enforces the high-water mark.
func ringCapacity(hwm int) int {
	c := 2
	for c < hwm {
		c <<= 1
	}
	return c
}

func (e *pipeEnd) isClosed() bool { return e.p.closed.Load() != 0 }

// writable reports whether the outbound direction is below the high-water mark.
func (e *pipeEnd) writable() bool {
	return !e.isClosed() && e.out.depth.Load() < e.p.hwm
}

// readable reports whether an inbound message is queued.
func (e *pipeEnd) readable() bool {
	return e.in.depth.Load() > 0
}

// send enqueues a whole message. The peer is signalled when its inbound
// direction goes from empty to non-empty.
func (e *pipeEnd) send(m message) error {
	if e.out.depth.Load() >= e.p.hwm {
		return iox.ErrWouldBlock
	}
	if err := e.out.q.Enqueue(&m); err != nil {
		return err
	}
	if e.out.depth.Add(1) == 1 {
		e.peer.signal()
	}
	return nil
}

// recv dequeues a whole message. The peer is signalled when the direction
// drops below the high-water mark.
func (e *pipeEnd) recv() (message, bool) {
	m, err := e.in.q.Dequeue()
	if err != nil {
		return nil, false
	}
	if e.in.depth.Add(^uint32(0)) == e.p.hwm-1 {
		e.peer.signal()
	}
	return m, true
}

// close marks the pipe closed and tells the peer.
func (e *pipeEnd) close() {
	if e.p.closed.Add(1) == 1 {
		e.peer.signal()
	}
}
