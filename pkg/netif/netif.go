// Package netif answers the two questions the configuration check asks
// of the host network stack: which IPv4 address an interface carries,
// and whether a VRF's network namespace exists.
package netif

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

var ErrNoIPv4 = errors.New("interface has no IPv4 address")

// netnsDirs lists where VRF network namespaces are bound. iproute2
// mounts them under /run/netns, with /var/run/netns as a legacy alias.
var netnsDirs = []string{"/run/netns", "/var/run/netns"}

// System resolves interfaces and VRFs against the running host.
type System struct{}

func (System) AddrByInterface(name string) (string, error) {
	return AddrByInterface(name)
}

func (System) VRFExists(name string) bool {
	return VRFExists(name)
}

// AddrByInterface returns the first IPv4 address assigned to the named
// interface, without its prefix length.
func AddrByInterface(name string) (string, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", name, err)
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", name, err)
	}

	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoIPv4, name)
}

// NamespaceName returns the network namespace that carries the given
// VRF's routing table.
func NamespaceName(vrf string) string {
	return "ns-" + vrf
}

// VRFExists reports whether the VRF's namespace is bound in any of the
// usual netns directories.
func VRFExists(name string) bool {
	for _, dir := range netnsDirs {
		if _, err := os.Stat(filepath.Join(dir, NamespaceName(name))); err == nil {
			return true
		}
	}
	return false
}
