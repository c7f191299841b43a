package sources

import (
	"time"

	"github.com/lysyi3m/rss-press/app/fetcher"
)

type Options struct {
	RootTimeout       time.Duration
	FetchTimeout      time.Duration
	FanoutLimit       int
	SerialConcurrency int
	Now               func() time.Time
}

// NewRegistry registers the built-in sources followed by the configured ones and
// freezes the result. A configured source can never shadow a built-in id.
func NewRegistry(f fetcher.Fetcher, opts Options, configs []*ScrapeConfig) *Registry {
	builder := NewRegistryBuilder()

	builder.Register(NewPeoplesDaily(f, PeoplesDailyOptions{
		RootTimeout: opts.RootTimeout,
		PageTimeout: opts.FetchTimeout,
		Concurrency: opts.FanoutLimit,
		Now:         opts.Now,
	}))
	builder.Register(NewNewsBroadcast(f, NewsBroadcastOptions{
		ListTimeout:    opts.RootTimeout,
		ArticleTimeout: opts.FetchTimeout,
		Concurrency:    opts.SerialConcurrency,
		Now:            opts.Now,
	}))
	builder.Register(NewStatic())

	for _, config := range configs {
		builder.Register(NewScrape(*config, f, opts.Now))
	}

	return builder.Build()
}
