// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package loop provides a single-threaded cooperative event loop: a
// readiness reactor over pollable file descriptors plus an executor for
// [Future] tasks.
//
// A Loop belongs to the goroutine that drives it. Futures are polled on that
// goroutine only; a pending future arranges to be woken through its [Waker],
// typically from a readiness callback registered with [Loop.Register].
// No goroutines are spawned.
//
// # Example
//
//	l, _ := loop.New()
//	defer l.Close()
//	v, err := loop.Block(ctx, l, fut)
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/eapache/queue"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrClosed      = errors.New("loop: closed")
	ErrCanceled    = errors.New("loop: task canceled")
	ErrUnsupported = errors.New("loop: platform not supported")
)

// Token identifies a readiness registration.
type Token uint64

type registration struct {
	fd     int
	token  Token
	notify func()
}

// poller is the platform readiness backend.
type poller interface {
	add(fd int) error
	del(fd int) error
	wait(timeout time.Duration, fn func(fd int)) error
	close() error
}

// Loop is a single-threaded event loop.
type Loop struct {
	p      poller
	wakefd int
	regs   map[Token]*registration
	fds    map[int]*registration
	next   Token
	runq   *queue.Queue
	tasks  int
	closed atomix.Uint32
	log    *zap.Logger
}

// New creates a loop backed by the platform poller.
func New(opts ...Option) (*Loop, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p, err := newPoller(o.maxEvents)
	if err != nil {
		return nil, err
	}
	wfd, err := newWakeFd()
	if err != nil {
		_ = p.close()
		return nil, fmt.Errorf("loop: wake fd: %w", err)
	}
	if err := p.add(wfd); err != nil {
		_ = closeFd(wfd)
		_ = p.close()
		return nil, fmt.Errorf("loop: register wake fd: %w", err)
	}
	return &Loop{
		p:      p,
		wakefd: wfd,
		regs:   make(map[Token]*registration),
		fds:    make(map[int]*registration),
		runq:   queue.New(),
		log:    o.logger,
	}, nil
}

// Register watches fd for readability. notify runs on the loop goroutine
// each turn the descriptor is readable; it must drain whatever signal made
// it readable.
func (l *Loop) Register(fd int, notify func()) (Token, error) {
	if l.closed.Load() != 0 {
		return 0, ErrClosed
	}
	if _, ok := l.fds[fd]; ok {
		return 0, fmt.Errorf("loop: fd %d already registered", fd)
	}
	if err := l.p.add(fd); err != nil {
		return 0, fmt.Errorf("loop: register fd %d: %w", fd, err)
	}
	l.next++
	r := &registration{fd: fd, token: l.next, notify: notify}
	l.regs[r.token] = r
	l.fds[fd] = r
	l.log.Debug("fd registered", zap.Int("fd", fd), zap.Uint64("token", uint64(r.token)))
	return r.token, nil
}

// Deregister stops watching the descriptor registered under t.
// Unknown tokens are ignored.
func (l *Loop) Deregister(t Token) error {
	r, ok := l.regs[t]
	if !ok {
		return nil
	}
	delete(l.regs, t)
	delete(l.fds, r.fd)
	if l.closed.Load() != 0 {
		return nil
	}
	if err := l.p.del(r.fd); err != nil {
		return fmt.Errorf("loop: deregister fd %d: %w", r.fd, err)
	}
	return nil
}

// Wakeup interrupts a blocked [Loop.Turn]. It is safe to call from any
// goroutine; after Close it does nothing.
func (l *Loop) Wakeup() error {
	if l.closed.Load() != 0 {
		return nil
	}
	return signalFd(l.wakefd)
}

// Turn runs one loop iteration: it waits up to timeout for readiness
// (not at all when tasks are already queued, forever when timeout is
// negative), dispatches readiness callbacks, then polls every task that was
// queued at that point.
func (l *Loop) Turn(timeout time.Duration) error {
	if l.closed.Load() != 0 {
		return ErrClosed
	}
	if l.runq.Length() > 0 {
		timeout = 0
	}
	if err := l.p.wait(timeout, l.dispatch); err != nil {
		return err
	}
	l.runReady()
	return nil
}

// Run turns the loop until no spawned task remains or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = l.Wakeup() })
	defer stop()
	for l.tasks > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Turn(-1); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns the number of spawned tasks that have not finished.
func (l *Loop) Pending() int { return l.tasks }

// Close releases the poller. Unfinished tasks are abandoned without being
// polled again.
func (l *Loop) Close() error {
	if l.closed.Add(1) != 1 {
		return nil
	}
	err := multierr.Append(closeFd(l.wakefd), l.p.close())
	l.regs = map[Token]*registration{}
	l.fds = map[int]*registration{}
	return err
}

func (l *Loop) dispatch(fd int) {
	if fd == l.wakefd {
		drainFd(fd)
		return
	}
	r, ok := l.fds[fd]
	if !ok {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			l.log.Error("readiness callback panicked", zap.Int("fd", fd), zap.Any("panic", v))
		}
	}()
	r.notify()
}

func (l *Loop) schedule(t *task) {
	if t.done || t.queued {
		return
	}
	t.queued = true
	l.runq.Add(t)
}

// release cancels an unfinished task.
func (l *Loop) release(t *task) {
	t.cancel()
	l.tasks--
}

func (l *Loop) runReady() {
	n := l.runq.Length()
	for i := 0; i < n; i++ {
		t := l.runq.Remove().(*task)
		t.queued = false
		if t.done {
			continue
		}
		if t.poll(&t.waker) {
			l.tasks--
		}
	}
}

// Block spawns f on l and turns the loop until f resolves or ctx is done.
// On ctx expiry f is canceled and ctx.Err() is returned; this is the
// deadline combinator for operations that have no timeout of their own.
func Block[T any](ctx context.Context, l *Loop, f Future[T]) (T, error) {
	var zero T
	tk := Spawn(l, f)
	stop := context.AfterFunc(ctx, func() { _ = l.Wakeup() })
	defer stop()
	for !tk.Done() {
		if err := ctx.Err(); err != nil {
			tk.Cancel()
			return zero, err
		}
		if err := l.Turn(-1); err != nil {
			tk.Cancel()
			return zero, err
		}
	}
	return tk.Result()
}
