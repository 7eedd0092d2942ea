// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"code.hybscloud.com/iox"

	"code.hybscloud.com/zsock/native"
)

// Outcome classifies one non-blocking transport attempt.
type Outcome uint8

const (
	// Completed: the frame was transferred.
	Completed Outcome = iota + 1
	// WouldBlock: the socket is not ready in the requested direction.
	// Not a failure; the attempt may be repeated after a readiness wake.
	WouldBlock
	// Failed: a permanent transport error, terminal for the operation.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "Completed"
	case WouldBlock:
		return "WouldBlock"
	case Failed:
		return "Failed"
	}
	return "Outcome(?)"
}

// Attempt is the result of a single transport attempt.
type Attempt[T any] struct {
	Outcome Outcome
	Value   T
	Err     error
}

func classify[T any](v T, err error) Attempt[T] {
	switch {
	case err == nil:
		return Attempt[T]{Outcome: Completed, Value: v}
	case iox.IsWouldBlock(err):
		return Attempt[T]{Outcome: WouldBlock}
	default:
		return Attempt[T]{Outcome: Failed, Err: err}
	}
}

// attemptSend tries to transfer f once. Never blocks.
func attemptSend(h native.Socket, f Frame) Attempt[struct{}] {
	return classify(struct{}{}, h.TrySend(f.data, f.more))
}

// attemptReceive tries to take one frame once. Never blocks.
func attemptReceive(h native.Socket) Attempt[Frame] {
	data, more, err := h.TryRecv()
	return classify(Frame{data: data, more: more}, err)
}
