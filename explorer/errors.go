package explorer

import (
	"errors"
	"fmt"
	"strings"

	"tldball/internal/urlutil"
)

var (
	// ErrInvalidDomain is returned when the center is not a bare domain name.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrInvalidDepth is returned for a negative maximum depth.
	ErrInvalidDepth = errors.New("invalid max depth: must be positive")

	// ErrAlreadyRecorded reports an attempt to record a domain twice.
	// Reaching it means the traversal broke its insert-once invariant.
	ErrAlreadyRecorded = errors.New("domain already recorded")

	// ErrHTTPClientRequired is returned by Explore when no HTTP client is configured.
	ErrHTTPClientRequired = errors.New("http client is required")
)

// FetchError is recorded when a domain's page could not be retrieved.
// It never aborts a run; the domain is recorded with no links.
// Transient is set when the fetcher classified the failure as temporary.
type FetchError struct {
	Domain    string
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Domain, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// transientError is implemented by fetcher errors that know whether a retry could succeed.
type transientError interface {
	Transient() bool
}

func isTransient(err error) bool {
	var transient transientError

	return errors.As(err, &transient) && transient.Transient()
}

// canonicalDomain validates a center and puts it in the form links resolve to:
// lower case, internationalized labels in punycode, no trailing dot.
func canonicalDomain(domain string) (string, error) {
	if err := validateDomain(domain); err != nil {
		return "", err
	}

	host, err := urlutil.Host("//" + domain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}

	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("%w: %q has no labels", ErrInvalidDomain, domain)
	}

	return host, nil
}

func validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDomain)
	}

	if strings.ContainsAny(domain, "/:?#@ \t\r\n") {
		return fmt.Errorf("%w: %q is not a bare domain name", ErrInvalidDomain, domain)
	}

	return nil
}
