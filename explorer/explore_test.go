package explorer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// steppingClock advances on every Sleep and records the requested durations.
type steppingClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *steppingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)

	return ctx.Err()
}

func pageClient(pages map[string]string, fail func(host string) error) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if fail != nil {
				if err := fail(req.URL.Host); err != nil {
					return nil, err
				}
			}

			body, ok := pages[req.URL.Host]
			if !ok {
				return nil, errors.New("dial tcp: no such host")
			}

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(body)),
				Request:    req,
			}, nil
		}),
	}
}

func TestExploreOverHTTP(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"a.com": `<a href="http://b.com/x">b</a><a href="/local">l</a><a href="https://www.c.com">c</a><a>no href</a>`,
		"b.com": `<a href="http://c.com">c</a><a href="http://10.0.0.1/">ip</a><a href="https://a.com/">a</a>`,
		"c.com": `<a href="http://d.com">d</a>`,
	}

	var mu sync.Mutex
	var agents []string
	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			agents = append(agents, req.Header.Get("User-Agent"))
			mu.Unlock()

			body, ok := pages[req.URL.Host]
			if !ok {
				return nil, errors.New("dial tcp: no such host")
			}

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"text/html"}},
				Body:       io.NopCloser(strings.NewReader(body)),
				Request:    req,
			}, nil
		}),
	}

	report, err := Explore(context.Background(), Options{
		Center:     "a.com",
		HTTPClient: client,
		Clock:      fixedClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))},
	})
	require.NoError(t, err)

	require.Equal(t, "a.com", report.Center)
	require.Equal(t, DefaultMaxDepth, report.MaxDepth)
	require.Equal(t, "2024-06-01T11:00:00Z", report.GeneratedAt)
	require.Equal(t, []Node{
		{ID: "v0", Domain: "a.com"},
		{ID: "v1", Domain: "b.com"},
		{ID: "v2", Domain: "c.com"},
	}, report.Graph.Nodes)
	require.Equal(t, []Edge{
		{From: "a.com", To: "b.com"},
		{From: "a.com", To: "c.com"},
		{From: "b.com", To: "c.com"},
		{From: "b.com", To: "a.com"},
	}, report.Graph.Edges)

	require.Equal(t, OutcomeExtracted, report.Visits[0].Outcome)
	require.Equal(t, 1, report.Visits[0].SkippedLinks, "anchor without href")
	require.Equal(t, 1, report.Visits[1].SkippedLinks, "ip literal")

	require.Len(t, agents, 3)
	for _, agent := range agents {
		require.Equal(t, defaultUserAgent, agent)
	}
}

func TestExploreRequiresHTTPClient(t *testing.T) {
	t.Parallel()

	report, err := Explore(context.Background(), Options{Center: "a.com"})
	require.ErrorIs(t, err, ErrHTTPClientRequired)
	require.NotNil(t, report.Graph.Nodes)
	require.NotNil(t, report.Visits)
}

func TestExploreInvalidCenter(t *testing.T) {
	t.Parallel()

	report, err := Explore(context.Background(), Options{
		Center:     "https://a.com/",
		HTTPClient: &http.Client{},
	})
	require.ErrorIs(t, err, ErrInvalidDomain)
	require.Empty(t, report.Graph.Nodes)
}

func TestExplorePacesRequestsWithDelay(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"a.com": `<a href="http://b.com/">b</a><a href="http://c.com/">c</a>`,
		"b.com": ``,
		"c.com": ``,
	}
	clock := &steppingClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	report, err := Explore(context.Background(), Options{
		Center:     "a.com",
		Delay:      200 * time.Millisecond,
		HTTPClient: pageClient(pages, nil),
		Clock:      clock,
	})
	require.NoError(t, err)
	require.Len(t, report.Graph.Nodes, 3)

	require.Equal(t, []time.Duration{0, 200 * time.Millisecond, 200 * time.Millisecond}, clock.sleeps)
}

func TestExploreCanonicalCenterMatchesLinks(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"python.org": `<a href="https://www.python.org/about/">about</a><a href="http://b.com/">b</a>`,
		"b.com":      `<a href="https://docs.python.org/3/">docs</a>`,
	}

	report, err := Explore(context.Background(), Options{
		Center:     "Python.org",
		HTTPClient: pageClient(pages, nil),
		Clock:      fixedClock{},
	})
	require.NoError(t, err)

	require.Equal(t, "python.org", report.Center)
	require.Equal(t, []Node{
		{ID: "v0", Domain: "python.org"},
		{ID: "v1", Domain: "b.com"},
	}, report.Graph.Nodes)
	require.Equal(t, []Edge{
		{From: "python.org", To: "b.com"},
		{From: "b.com", To: "python.org"},
	}, report.Graph.Edges)
}

func TestExploreMarksTransientFetchFailures(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"a.com": `<a href="http://flaky.com/">f</a><a href="http://gone.com/">g</a>`,
	}
	fail := func(host string) error {
		if host == "flaky.com" {
			return io.ErrUnexpectedEOF
		}

		return nil
	}

	report, err := Explore(context.Background(), Options{
		Center:     "a.com",
		HTTPClient: pageClient(pages, fail),
		Clock:      fixedClock{},
	})
	require.NoError(t, err)

	require.Len(t, report.Visits, 3)
	require.Equal(t, "flaky.com", report.Visits[1].Domain)
	require.Equal(t, OutcomeFetchFailed, report.Visits[1].Outcome)
	require.True(t, report.Visits[1].Transient)
	require.Equal(t, "gone.com", report.Visits[2].Domain)
	require.False(t, report.Visits[2].Transient)
}
