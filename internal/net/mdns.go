package net

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service boards are advertised under.
const ServiceType = "_pencilboard._tcp"

// Advertise announces a board server listening on port.
func Advertise(port int, surfaces int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"PencilBoard", "path=/ws", fmt.Sprintf("surfaces=%d", surfaces)}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse reports the WebSocket URL of every board found on the LAN. It
// returns when the lookup times out.
func Browse(found func(url string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if u, ok := entryURL(e); ok {
				found(u)
			}
		}
	}()
	err := mdns.Lookup(ServiceType, entries)
	close(entries)
	<-done
	return err
}

func entryURL(e *mdns.ServiceEntry) (string, bool) {
	if e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	path := "/ws"
	for _, f := range e.InfoFields {
		if p, ok := strings.CutPrefix(f, "path="); ok {
			path = p
		}
	}
	return WebSocketURL(e.AddrV4, e.Port, path), true
}

// WebSocketURL formats the address clients connect to.
func WebSocketURL(ip net.IP, port int, path string) string {
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(ip.String(), fmt.Sprint(port)), path)
}
