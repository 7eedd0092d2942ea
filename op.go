// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"code.hybscloud.com/kont"

	"code.hybscloud.com/zsock/native"
)

// frameOp is the structural interface for frame effects.
// attempt is non-blocking: it reports WouldBlock at the I/O boundary and
// leaves the suspension that performed the effect unconsumed.
type frameOp interface {
	direction() direction
	attempt(h native.Socket) Attempt[kont.Resumed]
}

// sendFrame is the effect operation for transferring one outbound frame.
// Perform(sendFrame{frame: f}) sends f with its more marker.
type sendFrame struct {
	kont.Phantom[struct{}]
	frame Frame
}

func (sendFrame) direction() direction { return dirSend }

func (op sendFrame) attempt(h native.Socket) Attempt[kont.Resumed] {
	a := attemptSend(h, op.frame)
	return Attempt[kont.Resumed]{Outcome: a.Outcome, Value: a.Value, Err: a.Err}
}

// recvFrame is the effect operation for taking one inbound frame.
// Perform(recvFrame{}) resumes with the received Frame.
type recvFrame struct {
	kont.Phantom[Frame]
}

func (recvFrame) direction() direction { return dirRecv }

func (recvFrame) attempt(h native.Socket) Attempt[kont.Resumed] {
	a := attemptReceive(h)
	return Attempt[kont.Resumed]{Outcome: a.Outcome, Value: a.Value, Err: a.Err}
}

// sendOne sends a single frame.
func sendOne(f Frame) kont.Eff[struct{}] {
	return kont.Perform(sendFrame{frame: f})
}

// recvOne receives a single frame.
func recvOne() kont.Eff[Frame] {
	return kont.Perform(recvFrame{})
}

// sendAll sends frames strictly in order, one effect per frame.
// Fuses Perform(sendFrame) + Bind per frame; an empty message is done at once.
func sendAll(frames Message) kont.Eff[struct{}] {
	if len(frames) == 0 {
		return kont.Pure(struct{}{})
	}
	return kont.Bind(kont.Perform(sendFrame{frame: frames[0]}), func(struct{}) kont.Eff[struct{}] {
		return sendAll(frames[1:])
	})
}

// recvAll receives frames until one without the more marker arrives.
func recvAll(acc Message) kont.Eff[Message] {
	return kont.Bind(kont.Perform(recvFrame{}), func(f Frame) kont.Eff[Message] {
		acc = append(acc, f)
		if f.More() {
			return recvAll(acc)
		}
		return kont.Pure(acc)
	})
}
