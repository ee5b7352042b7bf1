package plexus

import (
	"net"
	"net/url"
	"strings"
)

// rebuildURL merges a bare server address returned by topology discovery
// with the base URL's components to produce a full connection URL.
//
// The address's components take precedence wherever present; the base's
// components fill the gaps. This lets the scheme and credentials
// configured once by the caller survive into every discovered node's
// URL, while host and port come from discovery.
//
// Discovered addresses are typically "host:port" but may carry their own
// scheme or path. An address without "://" is parsed as an authority,
// never as a scheme-prefixed opaque URL.
func rebuildURL(base *url.URL, address string) (string, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return "", err
	}

	merged := url.URL{
		Scheme:   addr.Scheme,
		User:     addr.User,
		Path:     addr.Path,
		RawQuery: addr.RawQuery,
		Fragment: addr.Fragment,
	}

	if merged.Scheme == "" {
		merged.Scheme = base.Scheme
	}
	if merged.User == nil {
		merged.User = base.User
	}
	if merged.Path == "" {
		merged.Path = base.Path
	}
	if merged.RawQuery == "" {
		merged.RawQuery = base.RawQuery
	}
	if merged.Fragment == "" {
		merged.Fragment = base.Fragment
	}

	// Host and port merge independently so a base port survives an
	// address that names only a host.
	host := addr.Hostname()
	if host == "" {
		host = base.Hostname()
	}
	port := addr.Port()
	if port == "" {
		port = base.Port()
	}
	if port != "" {
		merged.Host = net.JoinHostPort(host, port)
	} else {
		merged.Host = host
	}

	return merged.String(), nil
}

// parseAddress parses a discovered server address.
//
// "host:port" style addresses have no scheme; url.Parse would treat the
// host as a scheme, so they are parsed as a protocol-relative authority
// instead.
func parseAddress(address string) (*url.URL, error) {
	if strings.Contains(address, "://") {
		return url.Parse(address)
	}

	return url.Parse("//" + address)
}
