// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package inproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/zsock/native"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		name     string
		err      error
	}{
		{"inproc://svc", "svc", nil},
		{"inproc://a/b://c", "a/b://c", nil},
		{"inproc://", "", native.ErrBadAddress},
		{"svc", "", native.ErrBadAddress},
		{"://svc", "", native.ErrBadAddress},
		{"tcp://127.0.0.1:5555", "", native.ErrUnsupportedTransport},
		{"ipc:///tmp/x", "", native.ErrUnsupportedTransport},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			name, err := parseEndpoint(tt.endpoint)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestCompatible(t *testing.T) {
	ok := [][2]native.Kind{
		{native.Pair, native.Pair},
		{native.Push, native.Pull},
		{native.Pull, native.Push},
		{native.Pub, native.Sub},
		{native.Sub, native.Pub},
		{native.Dealer, native.Dealer},
	}
	for _, p := range ok {
		assert.True(t, compatible(p[0], p[1]), "%s-%s", p[0], p[1])
	}
	bad := [][2]native.Kind{
		{native.Pair, native.Push},
		{native.Push, native.Push},
		{native.Pub, native.Pull},
		{native.Req, native.Rep},
	}
	for _, p := range bad {
		assert.False(t, compatible(p[0], p[1]), "%s-%s", p[0], p[1])
	}
}

func TestRingCapacity(t *testing.T) {
	for hwm, want := range map[int]int{1: 2, 2: 2, 3: 4, 1000: 1024, 1024: 1024} {
		assert.Equal(t, want, ringCapacity(hwm), "hwm %d", hwm)
	}
}
