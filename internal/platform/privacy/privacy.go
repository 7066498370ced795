// Package privacy masks client addresses before they reach the logs.
package privacy

import (
	"net"
	"net/netip"
)

// MaskAddr accepts "host:port" or a bare IP and returns the enclosing /24
// (IPv4) or /48 (IPv6) network address.
func MaskAddr(addr string) string {
	if addr == "" {
		return "unknown"
	}
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return "invalid"
	}
	ip = ip.Unmap().WithZone("")
	bits := 48
	if ip.Is4() {
		bits = 24
	}
	prefix, err := ip.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
