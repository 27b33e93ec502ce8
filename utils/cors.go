package utils

import (
	"net"
	"net/url"
	"strings"
)

var privateRanges = []*net.IPNet{
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("169.254.0.0/16"), // link-local IPv4
	mustParseCIDR("::1/128"),
	mustParseCIDR("fe80::/10"),
	mustParseCIDR("fc00::/7"),
}

// IsAllowedOrigin reports whether a browser Origin may call the API. Local,
// private-network and explicitly configured origins are allowed.
func IsAllowedOrigin(origin string, extra []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range extra {
		if allowed == "*" || strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return true
		}
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "localhost" || strings.HasSuffix(hostname, ".local") {
		return true
	}
	// single-label LAN names
	if !strings.Contains(hostname, ".") && !strings.Contains(hostname, ":") {
		return true
	}
	if ip := net.ParseIP(hostname); ip != nil {
		for _, network := range privateRanges {
			if network.Contains(ip) {
				return true
			}
		}
	}
	return false
}

func mustParseCIDR(s string) *net.IPNet {
	_, network, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return network
}
