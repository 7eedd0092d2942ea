// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"code.hybscloud.com/kont"
	"go.uber.org/zap"

	"code.hybscloud.com/zsock/loop"
)

// State is the lifecycle position of a [Future].
type State uint8

const (
	StateNotStarted State = iota
	StateAttempting
	StateSuspended
	StateCompleted
	StateFailed
	StateCanceled
)

var stateNames = [...]string{
	StateNotStarted: "NotStarted",
	StateAttempting: "Attempting",
	StateSuspended:  "Suspended",
	StateCompleted:  "Completed",
	StateFailed:     "Failed",
	StateCanceled:   "Canceled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// Future is a pending send or receive on a [Socket].
//
// It holds a frame protocol that is stepped one effect at a time: each
// effect is one non-blocking attempt. On WouldBlock the suspension stays
// unconsumed, the socket's readiness is armed with the polling task's
// waker, and the same effect is attempted again on the next poll. The
// number of frames already transferred is the only progress kept across
// a suspension, so a confirmed frame is never transferred twice.
//
// Nothing touches the transport until the first Poll.
type Future[R any] struct {
	sock     *Socket
	op       string
	dir      direction
	protocol kont.Expr[R]
	susp     *kont.Suspension[R]
	state    State
	waker    *loop.Waker
	frames   int
	result   R
	err      error
}

func newFuture[R any](s *Socket, op string, dir direction, protocol kont.Eff[R]) *Future[R] {
	return &Future[R]{
		sock:     s,
		op:       op,
		dir:      dir,
		protocol: kont.Reify(protocol),
	}
}

// State returns the current lifecycle state.
func (f *Future[R]) State() State { return f.state }

// Frames returns how many frames the operation has transferred so far.
func (f *Future[R]) Frames() int { return f.frames }

// Poll drives the operation. It implements [loop.Future].
func (f *Future[R]) Poll(w *loop.Waker) loop.Poll[R] {
	switch f.state {
	case StateCompleted:
		return loop.Ready(f.result)
	case StateFailed, StateCanceled:
		return loop.Failed[R](f.err)
	case StateNotStarted:
		// an empty protocol never reaches the per-effect check below
		if err := f.sock.usable(f.op, 0); err != nil {
			return f.fail(err)
		}
		if err := f.sock.acquire(f.dir, f); err != nil {
			return f.fail(err)
		}
		f.result, f.susp = kont.StepExpr(f.protocol)
	}
	f.state = StateAttempting
	for f.susp != nil {
		if err := f.sock.usable(f.op, f.frames); err != nil {
			f.susp.Discard()
			f.susp = nil
			return f.fail(err)
		}
		op, ok := f.susp.Op().(frameOp)
		if !ok {
			panic("zsock: unhandled effect in Future")
		}
		a := op.attempt(f.sock.handle)
		switch a.Outcome {
		case Completed:
			f.frames++
			f.result, f.susp = f.susp.Resume(a.Value)
		case WouldBlock:
			f.state = StateSuspended
			f.waker = w
			f.sock.suspend(f.dir, w)
			return loop.Pending[R]()
		default:
			f.susp.Discard()
			f.susp = nil
			return f.fail(f.sock.transportError(f.op, f.frames, a.Err))
		}
	}
	f.state = StateCompleted
	f.detach()
	return loop.Ready(f.result)
}

func (f *Future[R]) fail(err error) loop.Poll[R] {
	f.state = StateFailed
	f.err = err
	f.detach()
	f.sock.log.Debug("operation failed", zap.String("op", f.op), zap.Int("frames", f.frames), zap.Error(err))
	return loop.Failed[R](err)
}

// detach gives up the socket direction and any armed waker.
func (f *Future[R]) detach() {
	f.sock.release(f.dir, f, f.waker)
	f.waker = nil
}

// Cancel drops the operation before completion. Its readiness interest is
// withdrawn and the native socket is not touched: frames already
// transferred stay transferred, frames not yet taken stay queued.
// Canceling a finished future does nothing.
func (f *Future[R]) Cancel() {
	switch f.state {
	case StateCompleted, StateFailed, StateCanceled:
		return
	}
	if f.susp != nil {
		f.susp.Discard()
		f.susp = nil
	}
	if f.state != StateNotStarted {
		f.detach()
	}
	f.state = StateCanceled
	f.err = ErrCanceled
}
