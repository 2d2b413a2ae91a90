// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package wire

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
)

// TrustedProxies lists the peer networks whose forwarding headers are believed.
//
// The zero value trusts nobody, so ClientIP is always the TCP peer.
type TrustedProxies []netip.Prefix

/*
ParseTrustedProxies reads CIDR blocks or single addresses.

Returns:
  - TrustedProxies: One prefix per non-empty entry
  - error: The first entry that is neither a CIDR block nor an address
*/
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("wire: invalid trusted proxy %q: %w", entry, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("wire: invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return proxies, nil
}

// Trusts reports whether addr belongs to a trusted network.
func (t TrustedProxies) Trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range t {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

/*
ResolveClientIP fixes the address that [Request.ClientIP] reports.

Description: Forwarding headers are read only when the TCP peer is trusted.
X-Forwarded-For is walked from the right and the first hop outside the
trusted networks wins, so entries a client prepends itself are ignored.
X-Real-IP is used only when X-Forwarded-For is absent.
*/
func (r *Request) ResolveClientIP(trusted TrustedProxies) {
	r.clientIP = trusted.clientIP(r)
}

func (t TrustedProxies) clientIP(r *Request) string {
	peer := r.peerIP()

	addr, err := netip.ParseAddr(peer)
	if err != nil || !t.Trusts(addr) {
		return peer
	}

	var hops []string
	for _, value := range r.Header.Values(constants.HeaderXForwardedFor) {
		hops = append(hops, strings.Split(value, ",")...)
	}

	if len(hops) == 0 {
		if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get(constants.HeaderXRealIP))); err == nil {
			return realIP.Unmap().String()
		}
		return peer
	}

	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = hop.Unmap().String()
		if !t.Trusts(hop) {
			break
		}
	}
	return client
}

func (r *Request) peerIP() string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
