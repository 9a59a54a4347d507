package pycontext

import (
	"net/url"
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
)

// NetworkPolicy governs outgoing HTTP requests per spec.md §4.3. A nil
// *NetworkPolicy on Context denies every request.
type NetworkPolicy struct {
	AllowedHosts                       []string
	AllowedURLPrefixes                 []string
	AllowedMethods                     []string // default ["GET", "HEAD"]
	DangerouslyAllowFullInternetAccess bool
}

// normalizedMethods returns AllowedMethods uppercased, defaulting to
// GET/HEAD when empty.
func (p *NetworkPolicy) normalizedMethods() []string {
	if len(p.AllowedMethods) == 0 {
		return []string{"GET", "HEAD"}
	}
	out := make([]string, len(p.AllowedMethods))
	for i, m := range p.AllowedMethods {
		out[i] = strings.ToUpper(m)
	}
	return out
}

// Admit implements spec.md §4.3/§8's network-policy law: a request is
// admitted when the method is allowed AND (the URL's host matches a
// listed host, case-insensitively and exactly, OR the URL starts with a
// listed prefix). dangerously_allow_full_internet_access bypasses both
// checks. Empty host-and-prefix lists deny everything.
func (p *NetworkPolicy) Admit(method, rawURL string) error {
	if p == nil {
		return pyerr.New(pyerr.NetworkError, "network access is disabled for this run")
	}
	if p.DangerouslyAllowFullInternetAccess {
		return nil
	}
	methodOK := false
	m := strings.ToUpper(method)
	for _, allowed := range p.normalizedMethods() {
		if allowed == m {
			methodOK = true
			break
		}
	}
	if !methodOK {
		return pyerr.New(pyerr.NetworkError, "method %s is not permitted by network policy", m)
	}
	if len(p.AllowedHosts) == 0 && len(p.AllowedURLPrefixes) == 0 {
		return pyerr.New(pyerr.NetworkError, "no hosts or URL prefixes are permitted by network policy")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return pyerr.New(pyerr.NetworkError, "invalid URL: %s", rawURL)
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range p.AllowedHosts {
		if strings.ToLower(h) == host {
			return nil
		}
	}
	for _, prefix := range p.AllowedURLPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return nil
		}
	}
	return pyerr.New(pyerr.NetworkError, "host %q is not permitted by network policy", host)
}
