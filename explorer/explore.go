package explorer

import (
	"context"
	"time"

	"tldball/internal/extract"
	"tldball/internal/fetcher"
	"tldball/internal/limiter"
)

const defaultUserAgent = "tldball/1.0"

// Explore fetches the ball of radius opts.MaxDepth around opts.Center over HTTP
// and returns the assembled graph together with the visit trace.
// The report is populated even when an error is returned.
func Explore(ctx context.Context, opts Options) (Report, error) {
	clock := opts.Clock
	if clock == nil {
		clock = limiter.NewClock()
	}

	report := Report{
		Center:      opts.Center,
		MaxDepth:    opts.MaxDepth,
		GeneratedAt: clock.Now().UTC().Format(time.RFC3339),
		Graph:       Graph{Nodes: []Node{}, Edges: []Edge{}},
		Visits:      []Visit{},
	}

	if opts.HTTPClient == nil {
		return report, ErrHTTPClientRequired
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	fetch := fetcher.New(
		opts.HTTPClient,
		opts.Timeout,
		userAgent,
		limiter.FromOptions(opts.Delay, opts.RPS, clock),
		opts.Retries,
		opts.Delay,
		clock,
	)

	extractor := extract.New()

	explorer, err := New(opts, fetch, extractor)
	if err != nil {
		return report, err
	}

	report.Center = explorer.center
	report.MaxDepth = explorer.maxDepth

	result, runErr := explorer.Run(ctx)
	report.Graph = Assemble(result.Snapshot)
	if len(result.Visits) > 0 {
		report.Visits = result.Visits
	}

	explorer.logger.Info("exploration finished",
		"domains", len(report.Graph.Nodes),
		"links", len(report.Graph.Edges),
		"hosts", extractor.ResolvedHosts(),
	)

	return report, runErr
}
