// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/zsock"
	"code.hybscloud.com/zsock/loop"
)

// newLoop creates a loop closed at the end of the test.
func newLoop(tb testing.TB) *loop.Loop {
	tb.Helper()
	l, err := loop.New()
	if err != nil {
		tb.Fatalf("loop.New: %v", err)
	}
	tb.Cleanup(func() { _ = l.Close() })
	return l
}

// newPair opens a bound socket of kind bk and a socket of kind ck
// connected to it over inproc, both on l.
func newPair(tb testing.TB, ctx *zsock.Context, l *loop.Loop, bk, ck zsock.Kind) (bound, conn *zsock.Socket) {
	tb.Helper()
	endpoint := "inproc://" + tb.Name()
	bound, err := ctx.Socket(bk, l)
	if err != nil {
		tb.Fatalf("open %s: %v", bk, err)
	}
	if err := bound.Bind(endpoint); err != nil {
		tb.Fatalf("bind: %v", err)
	}
	conn, err = ctx.Socket(ck, l)
	if err != nil {
		tb.Fatalf("open %s: %v", ck, err)
	}
	if err := conn.Connect(endpoint); err != nil {
		tb.Fatalf("connect: %v", err)
	}
	tb.Cleanup(func() {
		_ = conn.Close()
		_ = bound.Close()
	})
	return bound, conn
}

// block drives f on l to completion with a test deadline.
func block[T any](tb testing.TB, l *loop.Loop, f loop.Future[T]) (T, error) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return loop.Block(ctx, l, f)
}

// turns runs n non-blocking loop turns.
func turns(tb testing.TB, l *loop.Loop, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		if err := l.Turn(0); err != nil {
			tb.Fatalf("turn: %v", err)
		}
	}
}
