// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package inproc

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

func newSignalFd() (int, error) {
	return unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
}

var signalValue = func() []byte {
	b := make([]byte, 8)
	binary.NativeEndian.PutUint64(b, 1)
	return b
}()

func raiseFd(fd int) {
	// EAGAIN means the counter is saturated and the fd already readable.
	_, _ = unix.Write(fd, signalValue)
}

func drainFd(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}

func closeFd(fd int) error {
	return unix.Close(fd)
}
