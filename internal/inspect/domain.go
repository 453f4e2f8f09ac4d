package inspect

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// DomainOf returns the registrable domain (eTLD+1) of rawURL. Hosts without a
// public suffix, such as localhost or IP addresses, are returned as is.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}

	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return domain
}
