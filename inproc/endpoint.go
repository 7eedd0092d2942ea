// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package inproc

import (
	"fmt"
	"strings"

	"code.hybscloud.com/zsock/native"
)

// Scheme is the only transport this package serves.
const Scheme = "inproc"

// parseEndpoint returns the name of an "inproc://name" endpoint.
func parseEndpoint(endpoint string) (string, error) {
	scheme, name, ok := strings.Cut(endpoint, "://")
	if !ok || scheme == "" {
		return "", fmt.Errorf("%w: %q", native.ErrBadAddress, endpoint)
	}
	if scheme != Scheme {
		return "", fmt.Errorf("%w: %q", native.ErrUnsupportedTransport, scheme)
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty inproc name", native.ErrBadAddress)
	}
	return name, nil
}

// compatible reports whether sockets of kinds a and b may be connected.
func compatible(a, b native.Kind) bool {
	switch a {
	case native.Pair:
		return b == native.Pair
	case native.Push:
		return b == native.Pull
	case native.Pull:
		return b == native.Push
	case native.Pub:
		return b == native.Sub
	case native.Sub:
		return b == native.Pub
	case native.Dealer:
		return b == native.Dealer
	}
	return false
}
