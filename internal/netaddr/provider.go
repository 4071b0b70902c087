// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package netaddr resolves the host's best local IPv4 address for
// advertising the server URL, and tracks whether the network path is usable.
package netaddr

import (
	"net"
	"sync"
	"time"
)

// preferredInterfaces are the canonical primary wireless interface names,
// checked before any other interface. First match wins.
var preferredInterfaces = []string{"en0", "wlan0", "wlp2s0", "wlp3s0", "wifi0"}

// DefaultMonitorInterval is how often the background monitor re-evaluates
// the network path.
const DefaultMonitorInterval = 5 * time.Second

// Provider enumerates local network interfaces and maintains a background
// view of connectivity. It is safe to read from any goroutine.
type Provider struct {
	mu        sync.RWMutex
	connected bool

	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewProvider creates a provider and starts its path monitor. The monitor
// runs until Close is called; a non-positive interval selects
// DefaultMonitorInterval.
func NewProvider(interval time.Duration) *Provider {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}

	p := &Provider{
		interval: interval,
		stop:     make(chan struct{}),
	}
	p.refresh()
	go p.monitor()

	return p
}

// Close stops the background monitor. Idempotent.
func (p *Provider) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// IsConnected reports the monitor's last-known view of whether a usable
// network path exists.
func (p *Provider) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// BestIPAddress returns the host's preferred local IPv4 address and true,
// or "" and false when no suitable interface exists (airplane mode, no
// link). The primary wireless interface wins over any other; among the
// rest, the first up, non-loopback interface with an IPv4 address is used.
func (p *Provider) BestIPAddress() (string, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return outboundIP()
	}

	// Early exit on the platform's canonical primary interface.
	for _, name := range preferredInterfaces {
		for _, iface := range ifaces {
			if iface.Name != name {
				continue
			}
			if ip, ok := interfaceIPv4(iface); ok {
				return ip, true
			}
		}
	}

	for _, iface := range ifaces {
		if ip, ok := interfaceIPv4(iface); ok {
			return ip, true
		}
	}

	return outboundIP()
}

// AllIPAddresses returns every non-loopback IPv4 and IPv6 address found on
// up interfaces, unfiltered by preference.
func (p *Provider) AllIPAddresses() []string {
	var addrs []string

	ifaces, err := net.Interfaces()
	if err != nil {
		return addrs
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		ifAddrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range ifAddrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() {
				continue
			}
			addrs = append(addrs, ipNet.IP.String())
		}
	}

	return addrs
}

// monitor periodically refreshes the connectivity view until Close.
func (p *Provider) monitor() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.refresh()
		}
	}
}

// refresh recomputes the connectivity flag from the current interface set.
func (p *Provider) refresh() {
	_, ok := p.BestIPAddress()

	p.mu.Lock()
	p.connected = ok
	p.mu.Unlock()
}

// interfaceIPv4 returns the first usable IPv4 address on an up,
// non-loopback interface.
func interfaceIPv4(iface net.Interface) (string, bool) {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return "", false
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return "", false
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		return ip.String(), true
	}

	return "", false
}

// outboundIP asks the OS which local address it would route an external UDP
// packet through. No packet is sent; this only consults the routing table.
// Used as a fallback when interface enumeration yields nothing.
func outboundIP() (string, bool) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", false
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil || addr.IP.IsLoopback() {
		return "", false
	}
	return addr.IP.String(), true
}
