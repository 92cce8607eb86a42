package natutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsLAN(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.5.9", true},
		{"192.168.1.1", true},
		{"8.8.8.8", false},
		{"fe80::1", true},
		{"2001:4860:4860::8888", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, IsLAN(net.ParseIP(c.ip)), "IsLAN(%s)", c.ip)
	}
}

func TestIsSpecialNetwork(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"192.0.2.1", true},       // TEST-NET-1
		{"203.0.113.5", true},     // TEST-NET-3
		{"255.255.255.255", true}, // limited broadcast
		{"224.0.0.1", true},       // multicast
		{"8.8.8.8", false},
		{"2001:db8::1", true},
		{"2607:f8b0::1", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, IsSpecialNetwork(net.ParseIP(c.ip)), "IsSpecialNetwork(%s)", c.ip)
	}
}

func TestRoutable(t *testing.T) {
	require.True(t, Routable(net.ParseIP("8.8.8.8")))
	require.False(t, Routable(net.ParseIP("10.0.0.1")))
	require.False(t, Routable(net.ParseIP("192.0.2.1")))
	require.False(t, Routable(net.ParseIP("127.0.0.1")))
}
