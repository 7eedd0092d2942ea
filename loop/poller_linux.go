// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package loop

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// epoller is a level-triggered epoll backend.
type epoller struct {
	epfd   int
	events []unix.EpollEvent
}

func newPoller(maxEvents int) (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("loop: epoll create: %w", err)
	}
	return &epoller{epfd: epfd, events: make([]unix.EpollEvent, maxEvents)}, nil
}

func (p *epoller) add(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epoller) del(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epoller) wait(timeout time.Duration, fn func(fd int)) error {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
		if ms == 0 && timeout > 0 {
			ms = 1
		}
	}
	n, err := unix.EpollWait(p.epfd, p.events, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return fmt.Errorf("loop: epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		fn(int(p.events[i].Fd))
	}
	return nil
}

func (p *epoller) close() error {
	return unix.Close(p.epfd)
}

func newWakeFd() (int, error) {
	return unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
}

var one = func() []byte {
	b := make([]byte, 8)
	binary.NativeEndian.PutUint64(b, 1)
	return b
}()

func signalFd(fd int) error {
	_, err := unix.Write(fd, one)
	if err == unix.EAGAIN {
		// counter saturated; the fd is readable anyway
		return nil
	}
	return err
}

func drainFd(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}

func closeFd(fd int) error {
	return unix.Close(fd)
}
