// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package inproc

const (
	// DefaultHighWaterMark is the per-pipe message capacity.
	DefaultHighWaterMark = 1000
	// DefaultMaxSockets bounds the sockets one context may hold open.
	DefaultMaxSockets = 1023
)

type options struct {
	hwm        int
	maxSockets int
}

// Option configures a [Context].
type Option func(*options)

// WithHighWaterMark sets how many whole messages a pipe direction holds
// before senders see would-block.
func WithHighWaterMark(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.hwm = n
		}
	}
}

// WithMaxSockets sets the open socket limit.
func WithMaxSockets(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSockets = n
		}
	}
}
