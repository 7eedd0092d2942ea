// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"code.hybscloud.com/zsock/loop"
	"code.hybscloud.com/zsock/native"
)

// direction is the transfer direction an operation waits on.
type direction uint8

const (
	dirRecv direction = iota
	dirSend
)

func (d direction) events() native.Events {
	if d == dirSend {
		return native.PollOut
	}
	return native.PollIn
}

func (d direction) String() string {
	if d == dirSend {
		return "send"
	}
	return "recv"
}

// Readiness is a socket's last known readiness and its loop registration.
//
// The bits reflect the most recent notification, not a live poll: a stale
// bit can make an attempt see WouldBlock, which simply re-arms. At most one
// waker is armed per direction.
type Readiness struct {
	token    loop.Token
	readable bool
	writable bool
	wakers   [2]*loop.Waker
}

// Token returns the loop registration token.
func (r *Readiness) Token() loop.Token { return r.token }

// Readable reports the last notified receive readiness.
func (r *Readiness) Readable() bool { return r.readable }

// Writable reports the last notified send readiness.
func (r *Readiness) Writable() bool { return r.writable }

func (r *Readiness) set(d direction, v bool) {
	if d == dirSend {
		r.writable = v
	} else {
		r.readable = v
	}
}

func (r *Readiness) ready(d direction) bool {
	if d == dirSend {
		return r.writable
	}
	return r.readable
}

// arm records w as the waker for d after an attempt observed WouldBlock.
func (r *Readiness) arm(d direction, w *loop.Waker) {
	r.set(d, false)
	r.wakers[d] = w
}

// disarm drops w if it is still the waker for d.
func (r *Readiness) disarm(d direction, w *loop.Waker) {
	if w != nil && r.wakers[d] == w {
		r.wakers[d] = nil
	}
}

// update applies a notification and wakes the armed wakers whose
// direction became ready. A woken waker is disarmed; the operation
// re-arms if it sees WouldBlock again.
func (r *Readiness) update(ev native.Events) {
	r.readable = ev.Has(native.PollIn)
	r.writable = ev.Has(native.PollOut)
	for _, d := range [...]direction{dirRecv, dirSend} {
		if w := r.wakers[d]; w != nil && r.ready(d) {
			r.wakers[d] = nil
			w.Wake()
		}
	}
}

// wakeAll wakes and disarms every armed waker.
func (r *Readiness) wakeAll() {
	for d, w := range r.wakers {
		if w != nil {
			r.wakers[d] = nil
			w.Wake()
		}
	}
}
