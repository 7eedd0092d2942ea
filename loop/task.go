// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

// Waker reschedules the task it belongs to.
// It must only be used on the goroutine running the loop.
type Waker struct {
	l *Loop
	t *task
}

// Wake queues the task for another poll. Waking a queued or finished
// task is a no-op.
func (w *Waker) Wake() {
	if w == nil || w.t == nil {
		return
	}
	w.l.schedule(w.t)
}

// task is the type-erased unit the loop schedules.
type task struct {
	poll   func(w *Waker) bool
	cancel func()
	waker  Waker
	queued bool
	done   bool
}

// Task is a future spawned on a loop. It is itself a [Future] that
// resolves with the spawned future's result, so it can be joined.
type Task[T any] struct {
	t       *task
	f       Future[T]
	result  Poll[T]
	joiners []*Waker
}

// Spawn schedules f on l. f is first polled on the next loop turn.
func Spawn[T any](l *Loop, f Future[T]) *Task[T] {
	tk := &Task[T]{f: f}
	tk.t = &task{
		poll:   tk.step,
		cancel: tk.cancel,
	}
	tk.t.waker = Waker{l: l, t: tk.t}
	l.tasks++
	l.schedule(tk.t)
	return tk
}

func (tk *Task[T]) step(w *Waker) bool {
	p := tk.f.Poll(w)
	if !p.Ready {
		return false
	}
	tk.finish(p)
	return true
}

func (tk *Task[T]) finish(p Poll[T]) {
	tk.result = p
	tk.t.done = true
	for _, j := range tk.joiners {
		j.Wake()
	}
	tk.joiners = nil
}

func (tk *Task[T]) cancel() {
	if c, ok := tk.f.(Canceler); ok {
		c.Cancel()
	}
	var zero T
	tk.finish(Poll[T]{Value: zero, Err: ErrCanceled, Ready: true})
}

// Done reports whether the task has finished.
func (tk *Task[T]) Done() bool { return tk.t.done }

// Result returns the task's outcome. It is only meaningful once Done
// reports true.
func (tk *Task[T]) Result() (T, error) {
	return tk.result.Value, tk.result.Err
}

// Cancel drops the spawned future. A finished task is left untouched.
func (tk *Task[T]) Cancel() {
	if tk.t.done {
		return
	}
	tk.t.waker.l.release(tk.t)
}

// Poll implements [Future] by waiting for the task to finish.
func (tk *Task[T]) Poll(w *Waker) Poll[T] {
	if tk.t.done {
		return tk.result
	}
	for _, j := range tk.joiners {
		if j == w {
			return Pending[T]()
		}
	}
	tk.joiners = append(tk.joiners, w)
	return Pending[T]()
}
