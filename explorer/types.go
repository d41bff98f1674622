package explorer

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"tldball/internal/limiter"
)

// DefaultMaxDepth is the radius used when Options.MaxDepth is zero.
const DefaultMaxDepth = 2

// Options configures an exploration run.
// MaxDepth is the exclusive radius: domains first reached at depth >= MaxDepth are not fetched.
// Workers > 1 fetches distinct domains concurrently; sibling order is then not preserved.
// Timeout, Retries, Delay, RPS and UserAgent configure the HTTP fetcher built by Explore.
type Options struct {
	Center     string
	MaxDepth   int
	Workers    int
	Timeout    time.Duration
	Retries    int
	Delay      time.Duration
	RPS        float64
	UserAgent  string
	HTTPClient *http.Client
	Clock      limiter.Timer
	Logger     *log.Logger
}

// PageFetcher retrieves the page served at a bare domain name.
type PageFetcher interface {
	FetchDomain(ctx context.Context, domain string) ([]byte, error)
}

// LinkExtractor lists the distinct external domains a page links to, in page order.
// Each skipped reference is reported as an error; skips never fail the extraction.
type LinkExtractor interface {
	Extract(content []byte, owner string) ([]string, []error)
}

// Outcome is the terminal state of one attempt to visit a domain.
type Outcome string

const (
	OutcomeDepthExceeded  Outcome = "depth_exceeded"
	OutcomeAlreadyVisited Outcome = "already_visited"
	OutcomeFetchFailed    Outcome = "fetch_failed"
	OutcomeExtracted      Outcome = "extracted"
)

// Visit describes what happened when a frontier item was processed.
type Visit struct {
	Domain       string   `json:"domain"`
	Depth        int      `json:"depth"`
	Outcome      Outcome  `json:"outcome"`
	Links        []string `json:"links,omitempty"`
	Error        string   `json:"error,omitempty"`
	Transient    bool     `json:"transient,omitempty"`
	SkippedLinks int      `json:"skipped_links,omitempty"`
	Err          error    `json:"-"`
	Skips        []error  `json:"-"`
}

// Result is the outcome of Explorer.Run.
type Result struct {
	Snapshot Snapshot
	Visits   []Visit
}

// Report is returned by Explore.
type Report struct {
	Center      string  `json:"center"`
	MaxDepth    int     `json:"max_depth"`
	GeneratedAt string  `json:"generated_at"`
	Graph       Graph   `json:"graph"`
	Visits      []Visit `json:"visits"`
}
