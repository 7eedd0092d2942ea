// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zsock

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed Socket.
	ErrClosed = errors.New("zsock: socket closed")
	// ErrBusy is returned when another operation already owns the same
	// direction of a socket, or a stream/sink already has one in flight.
	ErrBusy = errors.New("zsock: operation already in progress")
	// ErrCanceled is the result of a future canceled before completion.
	ErrCanceled = errors.New("zsock: operation canceled")
	// ErrContextClosed is returned when opening a socket on a released Context.
	ErrContextClosed = errors.New("zsock: context closed")
)

// OpenError reports that a socket could not be created.
type OpenError struct {
	Kind Kind
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("zsock: open %s socket: %v", e.Kind, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// AddressError reports a bind, connect or disconnect target the native
// layer rejected.
type AddressError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("zsock: %s %q: %v", e.Op, e.Endpoint, e.Err)
}

func (e *AddressError) Unwrap() error { return e.Err }

// TransportError reports a native failure during a send or receive.
// Frame is the number of frames the operation had completed when it failed;
// for a multipart send those frames cannot be taken back and the peer's
// message stream must be assumed desynchronized. Fatal means the socket is
// unusable and every later operation fails with the same cause.
type TransportError struct {
	Op    string
	Frame int
	Fatal bool
	Err   error
}

func (e *TransportError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("zsock: %s (frame %d, fatal): %v", e.Op, e.Frame, e.Err)
	}
	return fmt.Sprintf("zsock: %s (frame %d): %v", e.Op, e.Frame, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
