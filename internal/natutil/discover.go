// Public-address discovery via UPnP IGD and NAT-PMP, tried in that order.
package natutil

import (
	"fmt"
	"net"
	"time"

	natpmp "github.com/jackpal/go-nat-pmp"

	"github.com/huin/goupnp/dcps/internetgateway1"
)

// DiscoverPublicIP tries UPnP IGD first, then NAT-PMP against the default
// gateway, returning the first routable address found.
func DiscoverPublicIP() (net.IP, error) {
	if ip, err := discoverUPnP(); err == nil && Routable(ip) {
		return ip, nil
	}
	if ip, err := discoverNATPMP(); err == nil && Routable(ip) {
		return ip, nil
	}
	return nil, ErrNoPublicAddr
}

func discoverUPnP() (net.IP, error) {
	clients, errs, err := internetgateway1.NewWANIPConnection1Clients()
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		if len(errs) > 0 {
			return nil, errs[0]
		}
		return nil, fmt.Errorf("natutil: no UPnP IGD found")
	}

	addrStr, err := clients[0].GetExternalIPAddress()
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(addrStr)
	if ip == nil {
		return nil, fmt.Errorf("natutil: UPnP returned malformed address %q", addrStr)
	}
	return ip, nil
}

func discoverNATPMP() (net.IP, error) {
	gw, err := defaultGateway()
	if err != nil {
		return nil, err
	}
	client := natpmp.NewClientWithTimeout(gw, 2*time.Second)
	res, err := client.GetExternalAddress()
	if err != nil {
		return nil, err
	}
	return net.IP(res.ExternalIPAddress[:]), nil
}

// defaultGateway guesses the LAN gateway as the first three address octets
// of a locally-bound non-loopback interface, with the last octet set to 1 — a
// common default for home routers. goupnp.ContextError/ssdp discovery is
// used for UPnP itself; NAT-PMP otherwise has no discovery protocol of its
// own, so this heuristic stands in for a user-supplied --gateway flag.
func defaultGateway() (net.IP, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	local := conn.LocalAddr().(*net.UDPAddr).IP.To4()
	if local == nil {
		return nil, fmt.Errorf("natutil: no IPv4 local address")
	}
	gw := make(net.IP, 4)
	copy(gw, local)
	gw[3] = 1
	return gw, nil
}
