package tvod

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/ratelimit"
)

// DefaultConcurrency is the number of requests kept in flight by default.
const DefaultConcurrency = 1000

// Outcome classifies a single probe.
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Throttled
	Failed

	// canceled probes are dropped from the stats
	canceled
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Throttled:
		return "throttled"
	case Failed:
		return "failed"
	}
	return "canceled"
}

// Classify maps a status code to an outcome. 403 and 404 are how the CDNs
// answer for a hash they don't hold; anything else besides 200 usually means
// the client is being rate limited.
func Classify(status int) Outcome {
	switch status {
	case http.StatusOK:
		return Hit
	case http.StatusForbidden, http.StatusNotFound:
		return Miss
	default:
		return Throttled
	}
}

// Stats counts probe outcomes for one batch.
type Stats struct {
	Checked   int64
	Hits      int64
	Misses    int64
	Throttled int64
	Failed    int64
}

type counters struct {
	hits, misses, throttled, failed atomic.Int64
}

func (c *counters) add(o Outcome) {
	switch o {
	case Hit:
		c.hits.Add(1)
	case Miss:
		c.misses.Add(1)
	case Throttled:
		c.throttled.Add(1)
	case Failed:
		c.failed.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Throttled: c.throttled.Load(),
		Failed:    c.failed.Load(),
	}
	s.Checked = s.Hits + s.Misses + s.Throttled + s.Failed
	return s
}

// Prober checks guessed URLs with bounded concurrency.
type Prober struct {
	Client      *http.Client
	Concurrency int
	// Limiter paces requests, nil means unlimited.
	Limiter ratelimit.Limiter
	// OnBatch is called with the number of URLs before a batch starts.
	OnBatch func(total int)
	// OnProbe is called once per finished probe, from the worker goroutines.
	OnProbe func(Outcome)
}

func NewProber(client *http.Client, concurrency int) *Prober {
	return &Prober{
		Client:      client,
		Concurrency: concurrency,
	}
}

func (p *Prober) concurrency() int {
	if p.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return p.Concurrency
}

func (p *Prober) check(ctx context.Context, url string) Outcome {
	if ctx.Err() != nil {
		return canceled
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("couldn't build the request", slog.String("url", url), slog.Any("error", err))
		return Failed
	}
	res, err := p.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return canceled
		}
		slog.Warn("request failed", slog.String("url", url), slog.Any("error", err))
		return Failed
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	o := Classify(res.StatusCode)
	switch o {
	case Hit:
		slog.Debug("got it", slog.String("url", url))
	case Miss:
		slog.Debug("still going", slog.String("url", url), slog.Int("status", res.StatusCode))
	case Throttled:
		slog.Warn("you might be getting throttled (or your connection is dead)",
			slog.Int("status", res.StatusCode), slog.String("url", url))
	}
	return o
}

// run probes every url on an ants pool and reports each outcome to visit.
// visit is called concurrently but never twice for the same index.
// The limiter is taken here, before submitting, so workers never wait on it
// once ctx is done.
func (p *Prober) run(ctx context.Context, urls []string, visit func(i int, o Outcome)) (Stats, error) {
	var c counters
	if len(urls) == 0 {
		return c.snapshot(), nil
	}
	if p.OnBatch != nil {
		p.OnBatch(len(urls))
	}

	size := min(p.concurrency(), len(urls))
	pool, err := ants.NewPool(size)
	if err != nil {
		return Stats{}, errors.Join(errors.New("creating worker pool"), err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, url := range urls {
		if p.Limiter != nil {
			p.Limiter.Take()
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			o := p.check(ctx, url)
			if o == canceled {
				return
			}
			c.add(o)
			if p.OnProbe != nil {
				p.OnProbe(o)
			}
			if visit != nil {
				visit(i, o)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return c.snapshot(), errors.Join(errors.New("submitting probe"), err)
		}
	}
	wg.Wait()
	return c.snapshot(), nil
}

// First returns the first candidate that answers 200. Outstanding probes are
// cancelled as soon as one hits. When nothing hits every candidate has been
// checked.
func (p *Prober) First(ctx context.Context, candidates []Candidate) (Candidate, bool, Stats, error) {
	urls := make([]string, len(candidates))
	for i, c := range candidates {
		urls[i] = c.URL
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan int, 1)
	stats, err := p.run(batchCtx, urls, func(i int, o Outcome) {
		if o != Hit {
			return
		}
		select {
		case found <- i:
			cancel()
		default:
		}
	})

	select {
	case i := <-found:
		return candidates[i], true, stats, nil
	default:
	}
	if err != nil {
		return Candidate{}, false, stats, err
	}
	if ctx.Err() != nil {
		return Candidate{}, false, stats, ctx.Err()
	}
	return Candidate{}, false, stats, nil
}

// All returns every url that answers 200, in input order.
func (p *Prober) All(ctx context.Context, urls []string) ([]string, Stats, error) {
	hits := make([]bool, len(urls))
	stats, err := p.run(ctx, urls, func(i int, o Outcome) {
		hits[i] = o == Hit
	})
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	live := make([]string, 0)
	for i, hit := range hits {
		if hit {
			live = append(live, urls[i])
		}
	}
	return live, stats, err
}
