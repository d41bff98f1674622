package explorer

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"
)

// Explorer walks the link graph outward from a center domain.
type Explorer struct {
	center   string
	maxDepth int
	workers  int
	fetch    PageFetcher
	extract  LinkExtractor
	logger   *log.Logger
}

type visitResult struct {
	item  Item
	links []string
	skips []error
	err   error

	// canceled marks a visit cut short by the run's context; it is never recorded.
	canceled bool
}

// run holds the state of a single exploration.
type run struct {
	registry *Registry
	frontier *Frontier
	visits   []Visit
}

// New validates opts and returns an Explorer using the given collaborators.
// Only Center, MaxDepth, Workers and Logger are read from opts.
func New(opts Options, fetch PageFetcher, extract LinkExtractor) (*Explorer, error) {
	center, err := canonicalDomain(opts.Center)
	if err != nil {
		return nil, err
	}

	maxDepth, err := normalizeMaxDepth(opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Explorer{
		center:   center,
		maxDepth: maxDepth,
		workers:  workers,
		fetch:    fetch,
		extract:  extract,
		logger:   logger,
	}, nil
}

// Run explores the ball around the center and returns the recorded registry.
// Fetch failures are recorded, not returned. The error is non-nil only when
// ctx is canceled or the registry invariant is broken; the partial result is
// returned alongside it.
func (e *Explorer) Run(ctx context.Context) (Result, error) {
	state := &run{
		registry: NewRegistry(),
		frontier: &Frontier{},
	}
	state.frontier.Push(Item{Domain: e.center, Depth: 0})

	var err error
	if e.workers == 1 {
		err = e.runSequential(ctx, state)
	} else {
		err = e.runConcurrent(ctx, state)
	}

	return Result{
		Snapshot: state.registry.Snapshot(),
		Visits:   state.visits,
	}, err
}

func (e *Explorer) runSequential(ctx context.Context, state *run) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, ok := state.frontier.Pop()
		if !ok {
			return nil
		}

		if !e.admit(state, item) {
			continue
		}

		if err := e.commit(state, e.visit(ctx, item)); err != nil {
			return err
		}
	}
}

// runConcurrent keeps the frontier and registry on this goroutine and
// fans fetch+extract out to at most e.workers goroutines at a time.
func (e *Explorer) runConcurrent(ctx context.Context, state *run) error {
	sem := semaphore.NewWeighted(int64(e.workers))
	results := make(chan visitResult)
	pending := 0

	var runErr error
	for {
		for runErr == nil && state.frontier.Len() > 0 {
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}

			item, _ := state.frontier.Pop()
			if !e.admit(state, item) {
				continue
			}

			pending++
			go func() {
				results <- e.visitGated(ctx, sem, item)
			}()
		}

		if pending == 0 {
			if runErr == nil {
				runErr = ctx.Err()
			}

			return runErr
		}

		result := <-results
		pending--

		if err := e.commit(state, result); err != nil && runErr == nil {
			runErr = err
		}
	}
}

// admit decides whether item needs a fetch and claims it if so.
func (e *Explorer) admit(state *run, item Item) bool {
	indent := strings.Repeat(" ", item.Depth)
	e.logger.Info(indent+"explore", "domain", item.Domain, "depth", item.Depth)

	if item.Depth >= e.maxDepth {
		e.logger.Info(indent+" maximum depth exceeded", "domain", item.Domain)
		state.visits = append(state.visits, Visit{
			Domain:  item.Domain,
			Depth:   item.Depth,
			Outcome: OutcomeDepthExceeded,
		})

		return false
	}

	if !state.registry.Claim(item.Domain) {
		e.logger.Info(indent+" already visited", "domain", item.Domain)
		state.visits = append(state.visits, Visit{
			Domain:  item.Domain,
			Depth:   item.Depth,
			Outcome: OutcomeAlreadyVisited,
		})

		return false
	}

	e.logger.Info(indent+" exploring", "domain", item.Domain)

	return true
}

func (e *Explorer) visitGated(ctx context.Context, sem *semaphore.Weighted, item Item) visitResult {
	if err := sem.Acquire(ctx, 1); err != nil {
		return visitResult{item: item, err: err, canceled: true}
	}
	defer sem.Release(1)

	return e.visit(ctx, item)
}

func (e *Explorer) visit(ctx context.Context, item Item) visitResult {
	content, err := e.fetch.FetchDomain(ctx, item.Domain)
	if err != nil {
		return visitResult{
			item:     item,
			err:      &FetchError{Domain: item.Domain, Transient: isTransient(err), Err: err},
			canceled: ctx.Err() != nil,
		}
	}

	links, skips := e.extract.Extract(content, item.Domain)

	return visitResult{
		item:  item,
		links: links,
		skips: skips,
	}
}

// commit records a finished visit and schedules its links.
func (e *Explorer) commit(state *run, result visitResult) error {
	item := result.item
	indent := strings.Repeat(" ", item.Depth)

	if result.canceled {
		e.logger.Debug(indent+" canceled", "domain", item.Domain)

		return nil
	}

	links := result.links
	if result.err != nil {
		links = nil
	}

	recorded, err := state.registry.Record(item.Domain, links)
	if err != nil {
		return err
	}

	visit := Visit{
		Domain: item.Domain,
		Depth:  item.Depth,
		Links:  recorded,
	}

	if result.err != nil {
		e.logger.Warn(indent+" fetch failed", "domain", item.Domain, "err", result.err)
		visit.Outcome = OutcomeFetchFailed
		visit.Transient = isTransient(result.err)
		visit.Err = result.err
		visit.Error = result.err.Error()
		state.visits = append(state.visits, visit)

		return nil
	}

	for _, skip := range result.skips {
		e.logger.Debug(indent+" skipped link", "domain", item.Domain, "err", skip)
	}

	visit.Outcome = OutcomeExtracted
	visit.Skips = result.skips
	visit.SkippedLinks = len(result.skips)
	state.visits = append(state.visits, visit)

	state.frontier.PushChildren(recorded, item.Depth+1)

	return nil
}

func normalizeMaxDepth(depth int) (int, error) {
	if depth < 0 {
		return 0, ErrInvalidDepth
	}

	if depth == 0 {
		return DefaultMaxDepth, nil
	}

	return depth, nil
}
