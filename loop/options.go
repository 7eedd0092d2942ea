// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import "go.uber.org/zap"

// defaultMaxEvents bounds the readiness events collected per turn.
const defaultMaxEvents = 128

type options struct {
	logger    *zap.Logger
	maxEvents int
}

func defaultOptions() options {
	return options{
		logger:    zap.NewNop(),
		maxEvents: defaultMaxEvents,
	}
}

// Option configures a [Loop].
type Option func(*options)

// WithLogger sets the loop's logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxEvents sets how many readiness events one turn collects.
func WithMaxEvents(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEvents = n
		}
	}
}
