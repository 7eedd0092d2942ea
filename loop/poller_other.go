// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package loop

func newPoller(int) (poller, error) { return nil, ErrUnsupported }

func newWakeFd() (int, error) { return -1, ErrUnsupported }

func signalFd(int) error { return ErrUnsupported }

func drainFd(int) {}

func closeFd(int) error { return nil }
