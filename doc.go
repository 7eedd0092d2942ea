// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package zsock runs non-blocking message sockets on a single-threaded
// event loop.
//
// Send and receive operations return futures immediately. A future performs
// one non-blocking attempt per poll; when the socket is not ready it arms the
// socket's readiness handle with the polling task's waker and suspends. The
// loop ([code.hybscloud.com/zsock/loop]) resumes it once the socket's pollable
// descriptor reports a readiness change. Nothing blocks and nothing spins.
//
// # Architecture
//
//   - Native layer: [code.hybscloud.com/zsock/native] defines the socket capability;
//     [code.hybscloud.com/zsock/inproc] implements it in-process.
//   - Non-blocking: native calls return [code.hybscloud.com/iox.ErrWouldBlock] when not ready;
//     each attempt is classified as [Completed], [WouldBlock] or [Failed].
//   - Operations: frame protocols on [code.hybscloud.com/kont], stepped one frame effect at a time.
//     A suspension stays unconsumed across WouldBlock, so a confirmed frame is never resent.
//   - Multipart: frames are transferred strictly in order; the native layer delivers
//     the message whole or not at all.
//
// # API Topologies
//
//   - [NewContext], [Context.Clone], [Context.Socket], [Context.Close], [Context.Destroy].
//   - [Socket.Bind], [Socket.Connect], [Socket.Disconnect], [Socket.Subscribe].
//   - Futures: [Socket.Send], [Socket.Receive], [Socket.SendMultipart], [Socket.ReceiveMultipart].
//   - Pipelines: [Socket.Framed] returns a [Sink] and a [Stream] with one operation in flight each.
//
// # Errors
//
// [*OpenError] and [*AddressError] report socket creation and endpoint
// failures. A send or receive fails with [*TransportError]; when the native
// handle is dead (closed socket, terminated context) the error is fatal and
// every later operation on the socket fails with the same cause. Nothing is
// retried.
//
// # Example
//
//	l, _ := loop.New()
//	ctx := zsock.NewContext()
//	rx, _ := ctx.Socket(zsock.KindPair, l)
//	_ = rx.Bind("inproc://example")
//	tx, _ := ctx.Socket(zsock.KindPair, l)
//	_ = tx.Connect("inproc://example")
//
//	_, _ = loop.Block(context.Background(), l, tx.Send([]byte("ping")))
//	f, _ := loop.Block(context.Background(), l, rx.Receive())
//	fmt.Println(f.String()) // ping
package zsock
