// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package loop_test

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sys/unix"

	"code.hybscloud.com/zsock/loop"
)

func newLoop(t *testing.T, opts ...loop.Option) *loop.Loop {
	t.Helper()
	l, err := loop.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// countdown is ready after n polls, waking itself in between.
type countdown struct {
	n        int
	polls    int
	canceled bool
}

func (c *countdown) Poll(w *loop.Waker) loop.Poll[int] {
	c.polls++
	if c.polls >= c.n {
		return loop.Ready(c.polls)
	}
	w.Wake()
	return loop.Pending[int]()
}

func (c *countdown) Cancel() { c.canceled = true }

// never stays pending without arranging a wake.
type never struct{ canceled bool }

func (n *never) Poll(*loop.Waker) loop.Poll[int] { return loop.Pending[int]() }
func (n *never) Cancel()                         { n.canceled = true }

func eventfd(t *testing.T) int {
	t.Helper()
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

func raise(t *testing.T, fd int) {
	t.Helper()
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	_, err := unix.Write(fd, b[:])
	require.NoError(t, err)
}

func drain(fd int) {
	var b [8]byte
	_, _ = unix.Read(fd, b[:])
}

func TestBlockReady(t *testing.T) {
	l := newLoop(t)
	v, err := loop.Block(context.Background(), l, loop.FutureFunc[string](func(*loop.Waker) loop.Poll[string] {
		return loop.Ready("done")
	}))
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.Zero(t, l.Pending())
}

func TestBlockSelfWaking(t *testing.T) {
	l := newLoop(t)
	c := &countdown{n: 5}
	v, err := loop.Block(context.Background(), l, c)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.False(t, c.canceled)
}

func TestBlockDeadlineCancels(t *testing.T) {
	l := newLoop(t)
	n := &never{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := loop.Block(ctx, l, n)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, n.canceled)
	assert.Zero(t, l.Pending())
}

func TestBlockFailed(t *testing.T) {
	l := newLoop(t)
	_, err := loop.Block(context.Background(), l, loop.FutureFunc[int](func(*loop.Waker) loop.Poll[int] {
		return loop.Failed[int](context.Canceled)
	}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSpawnPolledOnNextTurn(t *testing.T) {
	l := newLoop(t)
	c := &countdown{n: 1}
	tk := loop.Spawn(l, c)
	assert.Zero(t, c.polls)
	assert.Equal(t, 1, l.Pending())

	require.NoError(t, l.Turn(0))
	require.True(t, tk.Done())
	v, err := tk.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Zero(t, l.Pending())
}

func TestWakeIsIdempotent(t *testing.T) {
	l := newLoop(t)
	var (
		waker *loop.Waker
		polls int
	)
	loop.Spawn(l, loop.FutureFunc[int](func(w *loop.Waker) loop.Poll[int] {
		waker = w
		polls++
		return loop.Pending[int]()
	}))
	require.NoError(t, l.Turn(0))
	waker.Wake()
	waker.Wake()
	waker.Wake()
	require.NoError(t, l.Turn(0))
	assert.Equal(t, 2, polls)
}

func TestTaskJoin(t *testing.T) {
	l := newLoop(t)
	inner := loop.Spawn(l, &countdown{n: 3})
	v, err := loop.Block(context.Background(), l, loop.Future[int](inner))
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestTaskCancel(t *testing.T) {
	l := newLoop(t)
	n := &never{}
	tk := loop.Spawn(l, n)
	require.NoError(t, l.Turn(0))

	tk.Cancel()
	assert.True(t, n.canceled)
	require.True(t, tk.Done())
	_, err := tk.Result()
	require.ErrorIs(t, err, loop.ErrCanceled)
	assert.Zero(t, l.Pending())

	// Canceling twice leaves the count alone.
	tk.Cancel()
	assert.Zero(t, l.Pending())
}

func TestRunUntilIdle(t *testing.T) {
	l := newLoop(t)
	a := loop.Spawn(l, &countdown{n: 2})
	b := loop.Spawn(l, &countdown{n: 4})
	require.NoError(t, l.Run(context.Background()))
	assert.True(t, a.Done())
	assert.True(t, b.Done())
}

func TestRunContextDone(t *testing.T) {
	l := newLoop(t)
	loop.Spawn(l, &never{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, l.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, l.Pending())
}

func TestRegisterNotify(t *testing.T) {
	l := newLoop(t)
	fd := eventfd(t)
	calls := 0
	tok, err := l.Register(fd, func() {
		calls++
		drain(fd)
	})
	require.NoError(t, err)

	_, err = l.Register(fd, func() {})
	require.Error(t, err, "double registration")

	require.NoError(t, l.Turn(0))
	assert.Zero(t, calls)

	raise(t, fd)
	require.NoError(t, l.Turn(time.Second))
	assert.Equal(t, 1, calls)

	// Drained: level-triggered readiness does not repeat.
	require.NoError(t, l.Turn(0))
	assert.Equal(t, 1, calls)

	require.NoError(t, l.Deregister(tok))
	raise(t, fd)
	require.NoError(t, l.Turn(0))
	assert.Equal(t, 1, calls)
}

func TestRegisterWakesTask(t *testing.T) {
	l := newLoop(t)
	fd := eventfd(t)
	var (
		armed *loop.Waker
		ready bool
	)
	_, err := l.Register(fd, func() {
		drain(fd)
		ready = true
		armed.Wake()
	})
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		var b [8]byte
		binary.NativeEndian.PutUint64(b[:], 1)
		_, _ = unix.Write(fd, b[:])
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := loop.Block(ctx, l, loop.FutureFunc[bool](func(w *loop.Waker) loop.Poll[bool] {
		if ready {
			return loop.Ready(true)
		}
		armed = w
		return loop.Pending[bool]()
	}))
	require.NoError(t, err)
	assert.True(t, v)
}

func TestDeregisterUnknown(t *testing.T) {
	l := newLoop(t)
	require.NoError(t, l.Deregister(12345))
}

func TestWakeupFromAnotherGoroutine(t *testing.T) {
	l := newLoop(t)
	done := make(chan error, 1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		done <- l.Wakeup()
	}()
	start := time.Now()
	require.NoError(t, l.Turn(5*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second)
	require.NoError(t, <-done)
}

func TestDispatchRecoversPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	l := newLoop(t, loop.WithLogger(zap.New(core)), loop.WithMaxEvents(4))
	fd := eventfd(t)
	tok, err := l.Register(fd, func() {
		drain(fd)
		panic("callback")
	})
	require.NoError(t, err)
	raise(t, fd)

	require.NotPanics(t, func() { _ = l.Turn(time.Second) })
	assert.Equal(t, 1, logs.FilterMessage("readiness callback panicked").Len())
	require.NoError(t, l.Deregister(tok))
}

func TestClosed(t *testing.T) {
	l, err := loop.New()
	require.NoError(t, err)
	tk := loop.Spawn(l, &never{})
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	require.ErrorIs(t, l.Turn(0), loop.ErrClosed)
	_, err = l.Register(0, func() {})
	require.ErrorIs(t, err, loop.ErrClosed)
	require.NoError(t, l.Wakeup())
	assert.False(t, tk.Done())

	_, err = loop.Block(context.Background(), l, &countdown{n: 1})
	require.ErrorIs(t, err, loop.ErrClosed)
}
