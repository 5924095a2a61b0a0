package page

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/skbidisigma1/groupme-cli/api"
	"github.com/skbidisigma1/groupme-cli/errors"
)

// DefaultPageSize is the provider's maximum page size.
const DefaultPageSize = 100

// DefaultSearchPages caps client-side search when no native endpoint exists.
const DefaultSearchPages = 10

// Stop aborts a Walk early without surfacing an error to the caller.
var Stop = stderrors.New("stop pagination walk")

// Source fetches one page of messages, newest first. An empty beforeID
// requests the latest page. Implementations wrap one REST endpoint and do
// no pagination of their own.
type Source func(ctx context.Context, beforeID string, limit int) ([]api.Message, error)

// GroupMessages adapts a REST client into a Source over a group's messages
func GroupMessages(c *api.Client, groupID string) Source {
	return func(ctx context.Context, beforeID string, limit int) ([]api.Message, error) {
		return c.GroupMessages(ctx, groupID, beforeID, limit)
	}
}

// DirectMessages adapts a REST client into a Source over a direct-message
// conversation
func DirectMessages(c *api.Client, otherUserID string) Source {
	return func(ctx context.Context, beforeID string, limit int) ([]api.Message, error) {
		return c.DirectMessages(ctx, otherUserID, beforeID, limit)
	}
}

// Fetcher walks a Source page by page
type Fetcher struct {
	src      Source
	pageSize int
	limiter  *rate.Limiter
	logger   *slog.Logger
	metrics  *Metrics
}

// Option is a functional option for configuring the Fetcher
type Option func(*Fetcher)

// WithPageSize overrides the per-request page size (clamped to [1,100])
func WithPageSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			if n > DefaultPageSize {
				n = DefaultPageSize
			}
			f.pageSize = n
		}
	}
}

// WithLimiter rate-limits page fetches, keeping bulk exports polite
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithLogger sets a custom logger for the fetcher
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus metrics to the fetcher
func WithMetrics(m *Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a Fetcher over a Source
func NewFetcher(src Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		src:      src,
		pageSize: DefaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "page")
	return f
}

// fetch performs one rate-limited page request
func (f *Fetcher) fetch(ctx context.Context, beforeID string, limit int) ([]api.Message, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, errors.WrapFetch(err, "page", "fetch", "await rate limit")
		}
	}
	msgs, err := f.src(ctx, beforeID, limit)
	if err != nil {
		f.metrics.trackError()
		return nil, err
	}
	f.metrics.trackPage(len(msgs))
	return msgs, nil
}

// Latest collects up to n messages in newest-first order. It requests
// min(pageSize, remaining) items per round trip and terminates on an empty
// page, a satisfied target, or a short page.
func (f *Fetcher) Latest(ctx context.Context, n int) ([]api.Message, error) {
	if n <= 0 {
		return nil, nil
	}

	var collected []api.Message
	beforeID := ""
	for len(collected) < n {
		remaining := n - len(collected)
		limit := remaining
		if limit > f.pageSize {
			limit = f.pageSize
		}

		msgs, err := f.fetch(ctx, beforeID, limit)
		if err != nil {
			return nil, err
		}
		if len(msgs) == 0 {
			break
		}
		collected = append(collected, msgs...)
		beforeID = msgs[len(msgs)-1].ID
		if len(msgs) < limit {
			break // short page, no more history
		}
	}

	if len(collected) > n {
		collected = collected[:n]
	}
	return collected, nil
}

// Walk streams every message, newest first, until history is exhausted.
// fn returning Stop ends the walk cleanly; any other error aborts and is
// returned to the caller.
func (f *Fetcher) Walk(ctx context.Context, fn func(api.Message) error) error {
	beforeID := ""
	for {
		msgs, err := f.fetch(ctx, beforeID, f.pageSize)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}
		for _, m := range msgs {
			if err := fn(m); err != nil {
				if stderrors.Is(err, Stop) {
					return nil
				}
				return err
			}
		}
		beforeID = msgs[len(msgs)-1].ID
		if len(msgs) < f.pageSize {
			return nil
		}
	}
}

// Collect materializes the full history via Walk
func (f *Fetcher) Collect(ctx context.Context) ([]api.Message, error) {
	var all []api.Message
	err := f.Walk(ctx, func(m api.Message) error {
		all = append(all, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Search filters pages by case-insensitive substring match against the
// message text, scanning at most maxPages pages (DefaultSearchPages when
// maxPages <= 0) to bound worst-case cost for resources with no native
// search endpoint.
func (f *Fetcher) Search(ctx context.Context, query string, maxPages int) ([]api.Message, error) {
	if maxPages <= 0 {
		maxPages = DefaultSearchPages
	}
	q := strings.ToLower(query)

	var results []api.Message
	beforeID := ""
	for pages := 0; pages < maxPages; pages++ {
		msgs, err := f.fetch(ctx, beforeID, f.pageSize)
		if err != nil {
			return nil, err
		}
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			if strings.Contains(strings.ToLower(m.Text), q) {
				results = append(results, m)
			}
		}
		beforeID = msgs[len(msgs)-1].ID
		if len(msgs) < f.pageSize {
			break
		}
	}
	return results, nil
}
