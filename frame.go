// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import "bytes"

// Frame is one immutable part of a message. More reports whether further
// frames of the same message follow.
type Frame struct {
	data []byte
	more bool
}

// NewFrame returns a final frame holding a copy of b.
func NewFrame(b []byte) Frame {
	return Frame{data: bytes.Clone(b)}
}

// Bytes returns the frame payload. The slice must not be modified.
func (f Frame) Bytes() []byte { return f.data }

// More reports whether the frame is followed by another frame of the same message.
func (f Frame) More() bool { return f.more }

// Len returns the payload length.
func (f Frame) Len() int { return len(f.data) }

// String returns the payload as a string.
func (f Frame) String() string { return string(f.data) }

// Message is a multipart message: every frame but the last has More set.
type Message []Frame

// NewMessage builds a message from payloads, setting More on all but the
// last frame.
func NewMessage(parts ...[]byte) Message {
	m := make(Message, len(parts))
	for i, p := range parts {
		m[i] = Frame{data: bytes.Clone(p), more: i < len(parts)-1}
	}
	return m
}

// Bytes returns the payloads of m in order.
func (m Message) Bytes() [][]byte {
	parts := make([][]byte, len(m))
	for i, f := range m {
		parts[i] = f.data
	}
	return parts
}

// Strings returns the payloads of m as strings.
func (m Message) Strings() []string {
	parts := make([]string, len(m))
	for i, f := range m {
		parts[i] = string(f.data)
	}
	return parts
}
