package sources

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/fetcher"
	"github.com/samber/lo"
)

var publishedTimeSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[name="publishdate"]`, "content"},
	{"time[datetime]", "datetime"},
}

var publishedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
}

// Scrape is a source described by a ScrapeConfig: one listing page whose entries
// are fetched individually. Without a content selector the article body is found
// by readability.
type Scrape struct {
	config    ScrapeConfig
	fetcher   fetcher.Fetcher
	extractor *feed.ContentExtractor
	filterer  *feed.Filterer
	listRules []feed.FilterRule // rules decidable from the listing alone
	timeout   time.Duration
	now       func() time.Time
}

var _ Source = (*Scrape)(nil)

func NewScrape(config ScrapeConfig, f fetcher.Fetcher, now func() time.Time) *Scrape {
	if now == nil {
		now = time.Now
	}

	config.Categories = slices.Clone(config.Categories)
	config.Filters = slices.Clone(config.Filters)

	listRules := lo.Filter(config.Filters, func(rule feed.FilterRule, _ int) bool {
		return rule.Field == "title" || rule.Field == "link"
	})

	return &Scrape{
		config:    config,
		fetcher:   f,
		extractor: feed.NewContentExtractor(),
		filterer:  feed.NewFilterer(),
		listRules: listRules,
		timeout:   time.Duration(config.Timeout) * time.Second,
		now:       now,
	}
}

func (s *Scrape) ID() string    { return s.config.ID }
func (s *Scrape) Title() string { return s.config.Title }
func (s *Scrape) Link() string  { return s.config.Link }

func (s *Scrape) Description() string {
	return cmp.Or(s.config.Description, s.config.Title)
}

func (s *Scrape) concurrency() int {
	if s.config.Concurrency == nil {
		return 1
	}
	return *s.config.Concurrency
}

func (s *Scrape) Generate(ctx context.Context) (*feed.Feed, error) {
	start := time.Now()
	runAt := s.now()

	body, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: s.config.Link, Timeout: s.timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing %s: %w", s.config.Link, err)
	}

	doc, err := parseHTML(body)
	if err != nil {
		return nil, err
	}

	refs := s.listEntries(doc)
	slog.Info("Found articles", "source", s.ID(), "articles", len(refs))

	items := collect(ctx, s.concurrency(), refs, func(ctx context.Context, ref articleRef) (feed.Item, error) {
		return s.fetchItem(ctx, ref, runAt), nil
	})

	kept := s.filterer.Run(items, s.config.Filters)
	if dropped := len(items) - len(kept); dropped > 0 {
		slog.Debug("Articles filtered", "source", s.ID(), "dropped", dropped)
	}

	out := feed.New(s.ID(), s.Title(), s.Description(), s.Link(), runAt)
	for _, item := range kept {
		out.Add(item)
	}

	slog.Info("Feed generated", "source", s.ID(), "items", len(out.Items), "duration", time.Since(start))
	return out, nil
}

func (s *Scrape) listEntries(doc *goquery.Document) []articleRef {
	var refs []articleRef
	doc.Find(s.config.ItemSelector).Each(func(i int, sel *goquery.Selection) {
		if i < s.config.SkipLeading {
			return
		}

		a := sel
		if !sel.Is("a") {
			a = sel.Find("a").First()
		}

		href, _ := a.Attr("href")
		title := outerText(a)
		if s.config.TitleAttr != "" {
			title = cmp.Or(strings.TrimSpace(a.AttrOr(s.config.TitleAttr, "")), title)
		}
		if href == "" || title == "" {
			return
		}

		link, err := resolveURL(s.config.Link, href)
		if err != nil {
			return
		}

		if excluded, reason := s.filterer.Excluded(feed.Item{Title: title, Link: link}, s.listRules); excluded {
			slog.Debug("Skipping list entry", "source", s.ID(), "title", title, "reason", reason)
			return
		}

		refs = append(refs, articleRef{Title: title, Link: link})
	})

	return refs
}

// fetchItem always yields an item; a failed article keeps its list title as the
// description.
func (s *Scrape) fetchItem(ctx context.Context, ref articleRef, runAt time.Time) feed.Item {
	item := feed.Item{
		GUID:        ref.Link,
		Title:       ref.Title,
		Link:        ref.Link,
		Description: ref.Title,
		PublishedAt: runAt,
		Categories:  slices.Clone(s.config.Categories),
	}

	body, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: ref.Link, Timeout: s.timeout})
	if err != nil {
		slog.Warn("Failed to fetch article", "source", s.ID(), "url", ref.Link, "error", err)
		return item
	}

	doc, err := parseHTML(body)
	if err != nil {
		slog.Warn("Failed to parse article", "source", s.ID(), "url", ref.Link, "error", err)
		return item
	}

	if publishedAt, ok := publishedTime(doc); ok {
		item.PublishedAt = publishedAt
	}

	var content string
	if s.config.ContentSelector != "" {
		region := doc.Find(s.config.ContentSelector).First()
		absolutizeAttr(region.Find("img[src]"), "src", ref.Link)
		absolutizeAttr(region.Find("a[href]"), "href", ref.Link)
		content, err = region.Html()
	} else {
		content, err = s.extractor.Run(body, ref.Link)
	}
	if err != nil {
		slog.Warn("Failed to extract article content", "source", s.ID(), "url", ref.Link, "error", err)
		return item
	}

	if content = strings.TrimSpace(content); content != "" {
		item.Content = content
		item.Description = content
	}

	return item
}

func publishedTime(doc *goquery.Document) (time.Time, bool) {
	for _, candidate := range publishedTimeSelectors {
		value, ok := doc.Find(candidate.selector).First().Attr(candidate.attr)
		if !ok {
			continue
		}
		if t, ok := parseLocalDate(value, chinaStandardTime, publishedTimeLayouts); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
