// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock_test

import (
	"testing"

	"code.hybscloud.com/zsock"
)

// BenchmarkSendReceive measures a single-frame send/receive round-trip.
func BenchmarkSendReceive(b *testing.B) {
	l := newLoop(b)
	ctx := zsock.NewContext()
	defer ctx.Close()
	rx, tx := newPair(b, ctx, l, zsock.KindPair, zsock.KindPair)
	payload := []byte("ping")

	b.ReportAllocs()
	for b.Loop() {
		if _, err := block(b, l, tx.Send(payload)); err != nil {
			b.Fatal(err)
		}
		if _, err := block(b, l, rx.Receive()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMultipart3 measures a three-frame multipart round-trip.
func BenchmarkMultipart3(b *testing.B) {
	l := newLoop(b)
	ctx := zsock.NewContext()
	defer ctx.Close()
	rx, tx := newPair(b, ctx, l, zsock.KindPull, zsock.KindPush)
	parts := [][]byte{[]byte("k"), []byte("v1"), []byte("v2")}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := block(b, l, tx.SendMultipart(parts)); err != nil {
			b.Fatal(err)
		}
		if _, err := block(b, l, rx.ReceiveMultipart()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFramed measures a sink/stream round-trip.
func BenchmarkFramed(b *testing.B) {
	l := newLoop(b)
	ctx := zsock.NewContext()
	defer ctx.Close()
	rx, tx := newPair(b, ctx, l, zsock.KindPull, zsock.KindPush)
	sink, _ := tx.Framed()
	_, stream := rx.Framed()
	m := message("a", "b")

	b.ReportAllocs()
	for b.Loop() {
		if _, err := block(b, l, sink.Send(m)); err != nil {
			b.Fatal(err)
		}
		if _, err := block(b, l, stream.Next()); err != nil {
			b.Fatal(err)
		}
	}
}
