// Package transport implements the TCP/TLS transport: the concrete
// binding of the six-hook remote.Transport interface to bringup,
// tlssession, and wire.
package transport

import (
	"fmt"
	"net/url"
	"strconv"
)

// parsedURL is the decoded form of a transport-url (spec §6):
//
//	transport-url := scheme "://" host ":" port [ "?" scope-id ]
//	scheme        := "tcp" | "tcp6"
//	host          := <empty> | ip-literal | dns-name   -- empty ⇒ bind-listen
type parsedURL struct {
	V6      bool
	Host    string // empty ⇒ bind mode
	Port    uint16
	ScopeID uint32 // tcp6 only
}

func parseURL(raw string) (parsedURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return parsedURL{}, fmt.Errorf("transport: invalid url %q: %w", raw, err)
	}

	var out parsedURL
	switch u.Scheme {
	case "tcp":
		out.V6 = false
	case "tcp6":
		out.V6 = true
	default:
		return parsedURL{}, fmt.Errorf("transport: unsupported scheme %q", u.Scheme)
	}

	out.Host = u.Hostname()

	portStr := u.Port()
	if portStr == "" {
		return parsedURL{}, fmt.Errorf("transport: url %q has no port", raw)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return parsedURL{}, fmt.Errorf("transport: invalid port %q: %w", portStr, err)
	}
	out.Port = uint16(port)

	if out.V6 && u.RawQuery != "" {
		scope, err := strconv.ParseUint(u.RawQuery, 10, 32)
		if err != nil {
			return parsedURL{}, fmt.Errorf("transport: invalid scope-id %q: %w", u.RawQuery, err)
		}
		out.ScopeID = uint32(scope)
	}

	return out, nil
}

// isBind reports whether p describes bind-listen mode: an empty
// host, e.g. "tcp://:4444".
func (p parsedURL) isBind() bool {
	return p.Host == ""
}
