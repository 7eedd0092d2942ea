// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

// Poll is the outcome of one drive step of a [Future].
// Ready is false while the future is pending; Err is only meaningful
// once Ready is true.
type Poll[T any] struct {
	Value T
	Err   error
	Ready bool
}

// Pending returns a not-yet-ready outcome.
func Pending[T any]() Poll[T] { return Poll[T]{} }

// Ready returns a successful outcome carrying v.
func Ready[T any](v T) Poll[T] { return Poll[T]{Value: v, Ready: true} }

// Failed returns a terminal error outcome.
func Failed[T any](err error) Poll[T] { return Poll[T]{Err: err, Ready: true} }

// Future is a deferred computation driven by a [Loop].
//
// Poll attempts to make progress without blocking. When it returns a
// pending outcome it must have arranged for w to be woken once progress
// is possible; the loop then polls it again. Spurious polls are allowed.
type Future[T any] interface {
	Poll(w *Waker) Poll[T]
}

// Canceler is implemented by futures that release resources when dropped
// before completion.
type Canceler interface {
	Cancel()
}

// FutureFunc adapts a poll function to [Future].
type FutureFunc[T any] func(w *Waker) Poll[T]

// Poll calls f(w).
func (f FutureFunc[T]) Poll(w *Waker) Poll[T] { return f(w) }
