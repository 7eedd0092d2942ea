// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"go.uber.org/zap"

	"code.hybscloud.com/zsock/inproc"
	"code.hybscloud.com/zsock/native"
)

type options struct {
	logger     *zap.Logger
	native     native.Context
	hwm        int
	maxSockets int
}

// Option configures a [Context].
type Option func(*options)

// WithLogger sets the logger used by the context and its sockets.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNative supplies the native messaging context. Without it an
// [inproc.Context] is created.
func WithNative(nc native.Context) Option {
	return func(o *options) { o.native = nc }
}

// WithHighWaterMark sets the per-pipe message capacity of the default
// inproc context.
func WithHighWaterMark(n int) Option {
	return func(o *options) { o.hwm = n }
}

// WithMaxSockets bounds the sockets the default inproc context may open.
func WithMaxSockets(n int) Option {
	return func(o *options) { o.maxSockets = n }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.native == nil {
		o.native = inproc.NewContext(
			inproc.WithHighWaterMark(o.hwm),
			inproc.WithMaxSockets(o.maxSockets),
		)
	}
	return o
}
