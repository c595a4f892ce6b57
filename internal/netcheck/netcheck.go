// Package netcheck answers the single question the auth flow asks
// before every attempt: can the gateway be reached right now?
package netcheck

import (
	"net"
	"net/url"
	"time"
)

// Checker reports gateway reachability.  The auth flow and the syncer
// consult it before choosing the remote or the local path.
type Checker interface {
	Online() bool
}

// DialChecker probes reachability with a single TCP dial.
type DialChecker struct {
	Addr    string // host:port of the gateway
	Timeout time.Duration
}

// FromBaseURL derives a DialChecker from the gateway base URL,
// defaulting the port from the scheme.
func FromBaseURL(baseURL string) (*DialChecker, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "http":
			host = net.JoinHostPort(u.Hostname(), "80")
		default:
			host = net.JoinHostPort(u.Hostname(), "443")
		}
	}
	return &DialChecker{Addr: host, Timeout: 2 * time.Second}, nil
}

func (d *DialChecker) Online() bool {
	conn, err := net.DialTimeout("tcp", d.Addr, d.Timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
