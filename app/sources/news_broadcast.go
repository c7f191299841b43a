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
	"github.com/google/uuid"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/fetcher"
	"github.com/samber/lo"
)

const (
	NewsBroadcastID             = "xinwenlianbo"
	DefaultNewsBroadcastListURL = "https://tv.cctv.com/lm/xwlb/index.shtml"

	// The programme airs at 19:00 Beijing time.
	broadcastHour = 19

	strippedContentSelectors = "script, style, header, footer, nav, .sidebar, .comments, .editor_new_pc, .share, .fxg_btn"
	mediaSourceSelectors     = "img[src], video[src], source[src], embed[src], iframe[src]"
)

var newsBroadcastCategories = []string{"新闻联播", "CCTV", "中国新闻"}

type NewsBroadcastOptions struct {
	ListURL        string
	ListTimeout    time.Duration
	ArticleTimeout time.Duration
	// Concurrency caps in-flight article fetches; 0 means the default of 1.
	Concurrency int
	// SkipLeading is the number of header rows before the first entry; nil means 1.
	SkipLeading *int
	Now         func() time.Time
}

// NewsBroadcast scrapes the daily programme listing and fetches every segment
// page. Every item shares the listing date, and a failed run is reported as a
// single diagnostic item instead of an error.
type NewsBroadcast struct {
	fetcher        fetcher.Fetcher
	listURL        string
	listTimeout    time.Duration
	articleTimeout time.Duration
	concurrency    int
	skipLeading    int
	now            func() time.Time
}

var _ Source = (*NewsBroadcast)(nil)

func NewNewsBroadcast(f fetcher.Fetcher, opts NewsBroadcastOptions) *NewsBroadcast {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	skipLeading := 1
	if opts.SkipLeading != nil {
		skipLeading = max(*opts.SkipLeading, 0)
	}

	return &NewsBroadcast{
		fetcher:        f,
		listURL:        cmp.Or(opts.ListURL, DefaultNewsBroadcastListURL),
		listTimeout:    cmp.Or(opts.ListTimeout, 15*time.Second),
		articleTimeout: cmp.Or(opts.ArticleTimeout, fetcher.DefaultTimeout),
		concurrency:    max(cmp.Or(opts.Concurrency, 1), 1),
		skipLeading:    skipLeading,
		now:            now,
	}
}

func (s *NewsBroadcast) ID() string          { return NewsBroadcastID }
func (s *NewsBroadcast) Title() string       { return "CCTV 新闻联播" }
func (s *NewsBroadcast) Description() string { return "中央电视台《新闻联播》最新节目内容的 RSS Feed，包含全文。" }
func (s *NewsBroadcast) Link() string        { return s.listURL }

func (s *NewsBroadcast) Generate(ctx context.Context) (out *feed.Feed, err error) {
	start := time.Now()
	fallback := atHour(s.now(), chinaStandardTime, broadcastHour)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Feed generation panicked", "source", s.ID(), "panic", fmt.Sprint(r))
			out, err = s.failureFeed(fallback, fmt.Errorf("panic: %v", r)), nil
		}
	}()

	out, runErr := s.run(ctx, fallback)
	if runErr != nil {
		slog.Error("Feed generation failed", "source", s.ID(), "error", runErr)
		return s.failureFeed(fallback, runErr), nil
	}

	slog.Info("Feed generated", "source", s.ID(), "items", len(out.Items), "duration", time.Since(start))
	return out, nil
}

func (s *NewsBroadcast) run(ctx context.Context, fallback time.Time) (*feed.Feed, error) {
	body, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: s.listURL, Timeout: s.listTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	doc, err := parseHTML(body)
	if err != nil {
		return nil, err
	}

	listDate, ok := parseLocalDate(doc.Find("div.rilititle p").First().Text(), chinaStandardTime, listDateLayouts)
	if ok {
		listDate = atHour(listDate, chinaStandardTime, broadcastHour)
	} else {
		slog.Warn("Listing date not found, using today", "source", s.ID(), "date", fallback)
		listDate = fallback
	}

	refs := s.listEntries(doc)
	slog.Info("Found programme segments", "source", s.ID(), "segments", len(refs))

	items := collect(ctx, s.concurrency, refs, func(ctx context.Context, ref articleRef) (feed.Item, error) {
		content := s.fetchContent(ctx, ref.Link)
		return feed.Item{
			GUID:        ref.Link,
			Title:       ref.Title,
			Link:        ref.Link,
			Description: cmp.Or(content, ref.Title),
			Content:     content,
			PublishedAt: listDate,
			Categories:  slices.Clone(newsBroadcastCategories),
		}, nil
	})

	out := feed.New(s.ID(), s.Title(), s.Description(), s.Link(), listDate)
	for _, item := range items {
		out.Add(item)
	}

	return out, nil
}

func (s *NewsBroadcast) listEntries(doc *goquery.Document) []articleRef {
	var refs []articleRef
	doc.Find("#content.rililist.newsList > li").Each(func(i int, li *goquery.Selection) {
		if i < s.skipLeading {
			return
		}

		a := li.Find("a").First()
		href, _ := a.Attr("href")
		title := cmp.Or(a.AttrOr("title", ""), strings.TrimSpace(strings.ReplaceAll(a.Text(), "完整版", "")))
		if href == "" || title == "" {
			return
		}

		link, err := resolveURL(s.listURL, href)
		if err != nil {
			slog.Debug("Skipping segment link", "source", s.ID(), "href", href, "error", err)
			return
		}

		refs = append(refs, articleRef{Title: title, Link: link})
	})

	return refs
}

// fetchContent returns the segment's article HTML, or "" when the page cannot be
// fetched or has no recognisable body. A panic while scraping one segment is
// treated the same way, so the segment is still emitted.
func (s *NewsBroadcast) fetchContent(ctx context.Context, link string) (content string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Segment scrape panicked", "source", s.ID(), "url", link, "panic", fmt.Sprint(r))
			content = ""
		}
	}()

	body, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: link, Timeout: s.articleTimeout})
	if err != nil {
		slog.Warn("Failed to fetch segment", "source", s.ID(), "url", link, "error", err)
		return ""
	}

	doc, err := parseHTML(body)
	if err != nil {
		slog.Warn("Failed to parse segment", "source", s.ID(), "url", link, "error", err)
		return ""
	}

	region := doc.Find("div.title_con #content").First()
	if region.Length() > 0 {
		region.Find(strippedContentSelectors).Remove()
		forceHTTPS(region.Find(mediaSourceSelectors), "src")
		forceHTTPS(region.Find("video[poster]"), "poster")

		fragment, err := region.Html()
		if err != nil {
			slog.Warn("Failed to render segment content", "source", s.ID(), "url", link, "error", err)
			return ""
		}
		return strings.TrimSpace(fragment)
	}

	slog.Warn("Segment body not found, falling back to paragraphs", "source", s.ID(), "url", link)
	paragraphs := doc.Find("div.title_con p").Map(func(_ int, p *goquery.Selection) string {
		fragment, _ := p.Html()
		return strings.TrimSpace(fragment)
	})

	return strings.Join(lo.Compact(paragraphs), "<br>")
}

func (s *NewsBroadcast) failureFeed(fallback time.Time, cause error) *feed.Feed {
	out := feed.New(s.ID(), s.Title(), s.Description(), s.Link(), fallback)
	out.Degraded = true
	out.Add(feed.Item{
		GUID:        "error-" + uuid.Must(uuid.NewV7()).String(),
		Title:       fmt.Sprintf("抓取CCTV新闻联播RSS失败 - %s", fallback.UTC().Format(time.RFC3339)),
		Link:        s.listURL,
		Description: fmt.Sprintf("无法获取CCTV新闻联播内容。请检查网络连接或网站结构是否改变。错误信息: %s", cause),
		PublishedAt: fallback,
	})

	return out
}

func forceHTTPS(sel *goquery.Selection, attr string) {
	sel.Each(func(_ int, el *goquery.Selection) {
		if value, ok := el.Attr(attr); ok && strings.HasPrefix(value, "//") {
			el.SetAttr(attr, "https:"+value)
		}
	})
}
