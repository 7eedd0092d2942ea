// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"fmt"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"code.hybscloud.com/zsock/loop"
)

// Stream is the inbound half of [Socket.Framed]: an unbounded, lazy
// sequence of whole multipart messages. Each message is one
// ReceiveMultipart operation; only one may be outstanding.
type Stream struct {
	sock    *Socket
	pending *Future[Message]
	owner   *streamNext
}

// PollNext drives the receive of the next message, starting one if none
// is in progress.
func (st *Stream) PollNext(w *loop.Waker) loop.Poll[Message] {
	if st.pending == nil {
		st.pending = st.sock.ReceiveMultipart()
	}
	p := st.pending.Poll(w)
	if p.Ready {
		st.pending = nil
	}
	return p
}

// Next returns a future resolving to the next inbound message. A Next
// polled while another one is outstanding fails with [ErrBusy].
func (st *Stream) Next() loop.Future[Message] {
	return &streamNext{st: st}
}

type streamNext struct {
	st     *Stream
	done   bool
	result loop.Poll[Message]
}

func (n *streamNext) Poll(w *loop.Waker) loop.Poll[Message] {
	if n.done {
		return n.result
	}
	st := n.st
	if st.owner != nil && st.owner != n {
		return n.finish(loop.Failed[Message](fmt.Errorf("zsock: stream: %w", ErrBusy)))
	}
	st.owner = n
	p := st.PollNext(w)
	if !p.Ready {
		return p
	}
	st.owner = nil
	return n.finish(p)
}

func (n *streamNext) finish(p loop.Poll[Message]) loop.Poll[Message] {
	n.done = true
	n.result = p
	return p
}

// Cancel abandons the outstanding receive.
func (n *streamNext) Cancel() {
	if n.done {
		return
	}
	n.finish(loop.Failed[Message](ErrCanceled))
	st := n.st
	if st.owner != n {
		return
	}
	st.owner = nil
	if st.pending != nil {
		st.pending.Cancel()
		st.pending = nil
	}
}

// Sink is the outbound half of [Socket.Framed]. It holds at most one
// message in flight and buffers nothing else: a Send submitted while
// another is in flight stays pending until that one resolves.
type Sink struct {
	sock     *Socket
	inflight *Future[struct{}]
	owner    *sinkSend
	waiters  *queue.Queue
	// err is the failure of a StartSend message that a later Send drove
	// to completion, held for the next PollReady.
	err error
}

// PollReady drives the in-flight send and reports whether the sink can
// accept a new message. The in-flight send's failure, if any, is returned
// once.
func (k *Sink) PollReady(w *loop.Waker) loop.Poll[struct{}] {
	if k.inflight == nil {
		if err := k.err; err != nil {
			k.err = nil
			return loop.Failed[struct{}](err)
		}
		return loop.Ready(struct{}{})
	}
	p := k.inflight.Poll(w)
	if !p.Ready {
		return p
	}
	k.inflight = nil
	k.owner = nil
	k.wakeWaiters()
	return p
}

// StartSend begins sending m. It fails with [ErrBusy] unless PollReady
// has reported ready.
func (k *Sink) StartSend(m Message) error {
	if k.inflight != nil {
		return fmt.Errorf("zsock: sink: %w", ErrBusy)
	}
	k.inflight = k.sock.SendMessage(m)
	return nil
}

// PollFlush drives the in-flight send to completion.
func (k *Sink) PollFlush(w *loop.Waker) loop.Poll[struct{}] {
	return k.PollReady(w)
}

// Send returns a future that waits for the sink to be free, sends m and
// resolves when m has been handed to the transport.
func (k *Sink) Send(m Message) loop.Future[struct{}] {
	return &sinkSend{k: k, msg: m}
}

func (k *Sink) wait(w *loop.Waker) {
	if k.waiters == nil {
		k.waiters = queue.New()
	}
	k.waiters.Add(w)
}

func (k *Sink) wakeWaiters() {
	if k.waiters == nil {
		return
	}
	for k.waiters.Length() > 0 {
		k.waiters.Remove().(*loop.Waker).Wake()
	}
}

type sinkSend struct {
	k       *Sink
	msg     Message
	started bool
	done    bool
	result  loop.Poll[struct{}]
}

func (s *sinkSend) Poll(w *loop.Waker) loop.Poll[struct{}] {
	if s.done {
		return s.result
	}
	k := s.k
	if !s.started {
		if k.inflight != nil {
			if k.owner != nil {
				k.wait(w)
				return loop.Pending[struct{}]()
			}
			// a StartSend nobody is flushing; drive it first
			p := k.PollReady(w)
			if !p.Ready {
				return p
			}
			if p.Err != nil {
				k.sock.log.Debug("unflushed sink send failed", zap.Error(p.Err))
				k.err = p.Err
			}
		}
		if err := k.StartSend(s.msg); err != nil {
			return s.finish(loop.Failed[struct{}](err))
		}
		k.owner = s
		s.started = true
	}
	p := k.PollReady(w)
	if !p.Ready {
		return p
	}
	return s.finish(p)
}

func (s *sinkSend) finish(p loop.Poll[struct{}]) loop.Poll[struct{}] {
	s.done = true
	s.result = p
	return p
}

// Cancel withdraws the submission. An in-flight send is canceled; frames
// already handed to the transport stay sent.
func (s *sinkSend) Cancel() {
	if s.done {
		return
	}
	s.finish(loop.Failed[struct{}](ErrCanceled))
	k := s.k
	if k.owner != s {
		return
	}
	k.inflight.Cancel()
	k.inflight = nil
	k.owner = nil
	k.wakeWaiters()
}
