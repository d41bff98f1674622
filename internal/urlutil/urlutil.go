package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var (
	// ErrNoHost marks a reference without a host component, e.g. "/about" or "mailto:".
	ErrNoHost = errors.New("no host component")

	// ErrMalformed marks a reference that does not parse as a URL.
	ErrMalformed = errors.New("malformed url")

	// ErrUnresolvable marks a host with no registrable domain.
	ErrUnresolvable = errors.New("registrable domain cannot be resolved")
)

// Host returns the lower-cased host of href, without port.
// Internationalized names are returned in their ASCII (punycode) form.
func Host(href string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	host := parsed.Hostname()
	if host == "" {
		return "", ErrNoHost
	}

	host = strings.ToLower(host)
	if isASCII(host) {
		return host, nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return ascii, nil
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}

// RegistrableDomain returns the public suffix plus one label of host (e.g. "docs.python.org" -> "python.org").
// IP literals, bare public suffixes and hosts under TLDs missing from the public suffix list are rejected.
func RegistrableDomain(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || net.ParseIP(host) != nil {
		return "", fmt.Errorf("%w: %q", ErrUnresolvable, host)
	}

	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && !strings.Contains(suffix, ".") {
		return "", fmt.Errorf("%w: %q has an unlisted top-level domain", ErrUnresolvable, host)
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	return domain, nil
}
