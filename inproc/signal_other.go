// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package inproc

import "errors"

var errNoSignalFd = errors.New("inproc: pollable signal fd not supported on this platform")

func newSignalFd() (int, error) { return -1, errNoSignalFd }

func raiseFd(int) {}

func drainFd(int) {}

func closeFd(int) error { return nil }
