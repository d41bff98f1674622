package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"tldball/internal/limiter"
)

const (
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second

	// MaxBodySize caps how much of a page is read.
	MaxBodySize = 5 << 20
)

var (
	// ErrInvalidRequest marks a URL that no request can be built for.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidDomain is returned by FetchDomain for an empty domain.
	ErrInvalidDomain = errors.New("invalid domain")
)

// Page is a response as read by the fetcher. Error statuses are pages too.
type Page struct {
	StatusCode int
	Body       []byte
}

// Error reports a request that ended without a usable response.
type Error struct {
	URL      string
	Attempts int
	Err      error

	transient bool
}

func (e *Error) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("get %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}

	return fmt.Sprintf("get %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether the last attempt failed in a way a later attempt could avoid,
// such as a reset connection, a truncated body or a request timeout.
func (e *Error) Transient() bool {
	return e.transient
}

// Fetcher performs page requests with optional retries and pacing.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	userAgent  string
	pacer      *limiter.Limiter
	retries    int
	retryDelay time.Duration
	clock      limiter.Timer
}

// New creates a Fetcher. retries counts the extra attempts made after a transient failure;
// retryDelay is the first backoff step and doubles up to a fixed ceiling.
func New(
	client *http.Client,
	timeout time.Duration,
	userAgent string,
	pacer *limiter.Limiter,
	retries int,
	retryDelay time.Duration,
	clock limiter.Timer,
) *Fetcher {
	if retryDelay <= 0 {
		retryDelay = baseRetryDelay
	}

	if clock == nil {
		clock = limiter.NewClock()
	}

	return &Fetcher{
		client:     client,
		timeout:    timeout,
		userAgent:  userAgent,
		pacer:      pacer,
		retries:    max(retries, 0),
		retryDelay: retryDelay,
		clock:      clock,
	}
}

// FetchDomain retrieves http://<domain>/ and returns the page body.
// Any HTTP status counts as a page; only a missing response is an error.
func (f *Fetcher) FetchDomain(ctx context.Context, domain string) ([]byte, error) {
	if domain == "" {
		return nil, ErrInvalidDomain
	}

	page, err := f.Fetch(ctx, "http://"+domain+"/")
	if err != nil {
		return nil, err
	}

	return page.Body, nil
}

// Fetch GETs rawURL. Transient failures, 429 and 5xx answers are attempted again
// up to the retry budget. An answer still failing after the last attempt is
// returned as a page; failures without an answer come back as *Error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Err: fmt.Errorf("%w: %v", ErrInvalidRequest, err)}
	}

	if target.Path == "" {
		target.Path = "/"
	}

	for attempt := 1; ; attempt++ {
		page, err := f.attempt(ctx, target.String())
		transient := ctx.Err() == nil && isTransient(page.StatusCode, err)

		if !transient || attempt > f.retries {
			if err != nil {
				return Page{}, &Error{URL: rawURL, Attempts: attempt, Err: err, transient: transient}
			}

			return page, nil
		}

		if err := f.clock.Sleep(ctx, f.backoff(attempt)); err != nil {
			return Page{}, &Error{URL: rawURL, Attempts: attempt, Err: err}
		}
	}
}

func (f *Fetcher) attempt(ctx context.Context, target string) (Page, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return Page{}, err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if f.userAgent != "" {
		request.Header.Set("User-Agent", f.userAgent)
	}

	response, err := f.client.Do(request)
	if err != nil {
		return Page{}, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(response.Body, MaxBodySize))
	if err != nil {
		return Page{StatusCode: response.StatusCode}, fmt.Errorf("read body: %w", err)
	}

	return Page{StatusCode: response.StatusCode, Body: body}, nil
}

// isTransient classifies one attempt. Without an error, only 429 and 5xx answers qualify.
func isTransient(statusCode int, err error) bool {
	if err == nil {
		return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	// *url.Error satisfies net.Error itself, so classify what it wraps.
	var urlErr *url.Error
	for errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

// backoff is the pause after the given failed attempt: retryDelay doubled per attempt, capped.
func (f *Fetcher) backoff(attempt int) time.Duration {
	delay := f.retryDelay
	for range max(attempt-1, 0) {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}

	return min(delay, maxRetryDelay)
}
