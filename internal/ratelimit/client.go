package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ParsePrefixes parses IP addresses and CIDR ranges. A bare address becomes
// a single-host prefix.
func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("ratelimit: trusted proxy %q: %w", raw, err)
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("ratelimit: trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// ClientResolver names the client behind a request. The peer address is
// used unless it is a trusted proxy, in which case X-Forwarded-For is read
// from the right and the first hop that is not a trusted proxy wins.
// Without trusted proxies the header is ignored.
type ClientResolver struct {
	trusted []netip.Prefix
}

// NewClientResolver returns a resolver trusting X-Forwarded-For only from
// peers inside trusted.
func NewClientResolver(trusted []netip.Prefix) *ClientResolver {
	return &ClientResolver{trusted: append([]netip.Prefix(nil), trusted...)}
}

// Client returns the key the limiter uses for r.
func (c *ClientResolver) Client(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if c == nil || len(c.trusted) == 0 || !c.isTrusted(peer) {
		return peer
	}

	hops := r.Header.Values("X-Forwarded-For")
	var chain []string
	for _, header := range hops {
		for _, hop := range strings.Split(header, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				chain = append(chain, hop)
			}
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(chain[i])
		if err != nil {
			// An unparsable hop was written by someone we do not trust.
			return peer
		}
		if !c.isTrusted(addr.Unmap().String()) {
			return addr.Unmap().String()
		}
	}
	return peer
}

func (c *ClientResolver) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
