// Package extract turns a page into the ordered set of external domains it links to.
package extract

import (
	"errors"
	"fmt"

	"tldball/internal/cache"
	"tldball/internal/parser"
	"tldball/internal/urlutil"
)

var (
	// ErrMissingHref marks an <a> element without an href attribute.
	ErrMissingHref = errors.New("anchor has no href")

	// ErrUnparsable marks page content that could not be read as HTML.
	ErrUnparsable = errors.New("page content cannot be parsed")
)

// SkipError describes one link reference left out of an extraction.
type SkipError struct {
	Href string
	Err  error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip %q: %v", e.Href, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

type resolution struct {
	domain string
	err    error
}

// Extractor resolves anchors to registrable domains. It is safe for concurrent use.
type Extractor struct {
	domains *cache.Cache[resolution]
}

// New creates an Extractor with an empty host resolution cache.
func New() *Extractor {
	return &Extractor{
		domains: cache.New[resolution](),
	}
}

// Extract returns the distinct registrable domains linked from content, in page order.
// Relative references and links back to owner are ignored. References that cannot
// be resolved are reported as *SkipError values and do not stop the scan.
func (x *Extractor) Extract(content []byte, owner string) ([]string, []error) {
	links := []string{}

	anchors, err := parser.ParseAnchors(content)
	if err != nil {
		return links, []error{&SkipError{Err: fmt.Errorf("%w: %v", ErrUnparsable, err)}}
	}

	var skips []error
	seen := map[string]bool{}

	for _, anchor := range anchors {
		if !anchor.HasHref {
			skips = append(skips, &SkipError{Err: ErrMissingHref})
			continue
		}

		domain, err := x.resolve(anchor.Href)
		if errors.Is(err, urlutil.ErrNoHost) {
			continue
		}

		if err != nil {
			skips = append(skips, &SkipError{Href: anchor.Href, Err: err})
			continue
		}

		if domain == owner || seen[domain] {
			continue
		}

		seen[domain] = true
		links = append(links, domain)
	}

	return links, skips
}

// ResolvedHosts returns how many distinct hosts have been resolved so far.
func (x *Extractor) ResolvedHosts() int {
	return x.domains.Len()
}

func (x *Extractor) resolve(href string) (string, error) {
	host, err := urlutil.Host(href)
	if err != nil {
		return "", err
	}

	resolved := x.domains.GetOrCompute(host, func() resolution {
		domain, err := urlutil.RegistrableDomain(host)
		return resolution{domain: domain, err: err}
	})

	return resolved.domain, resolved.err
}
