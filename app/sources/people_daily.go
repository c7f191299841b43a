package sources

import (
	"cmp"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/fetcher"
	"github.com/samber/lo"
	"golang.org/x/text/width"
)

const (
	PeoplesDailyID             = "renminribao"
	DefaultPeoplesDailyBaseURL = "https://paper.people.com.cn/rmrb/pc/layout"

	editorialCreditMarker = "本版责编"
	peoplesDailyCategory  = "人民日报"
)

type PeoplesDailyOptions struct {
	BaseURL     string
	RootTimeout time.Duration
	PageTimeout time.Duration
	// Concurrency caps in-flight page and article fetches; 0 means unbounded.
	Concurrency int
	Now         func() time.Time
}

// PeoplesDaily scrapes the e-paper edition: the issue index lists pages, each page
// lists articles, and every article is fetched for its full text.
type PeoplesDaily struct {
	fetcher     fetcher.Fetcher
	filterer    *feed.Filterer
	rules       []feed.FilterRule
	baseURL     string
	rootTimeout time.Duration
	pageTimeout time.Duration
	concurrency int
	now         func() time.Time
}

var _ Source = (*PeoplesDaily)(nil)

func NewPeoplesDaily(f fetcher.Fetcher, opts PeoplesDailyOptions) *PeoplesDaily {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &PeoplesDaily{
		fetcher:  f,
		filterer: feed.NewFilterer(),
		rules: []feed.FilterRule{
			{Field: "title", Excludes: []string{editorialCreditMarker}},
		},
		baseURL:     strings.TrimSuffix(cmp.Or(opts.BaseURL, DefaultPeoplesDailyBaseURL), "/"),
		rootTimeout: cmp.Or(opts.RootTimeout, 15*time.Second),
		pageTimeout: cmp.Or(opts.PageTimeout, fetcher.DefaultTimeout),
		concurrency: max(opts.Concurrency, 0),
		now:         now,
	}
}

func (s *PeoplesDaily) ID() string          { return PeoplesDailyID }
func (s *PeoplesDaily) Title() string       { return "人民日报电子版" }
func (s *PeoplesDaily) Description() string { return "人民日报每日电子版，包含当日各版面文章全文。" }
func (s *PeoplesDaily) Link() string        { return s.baseURL + "/" }

func (s *PeoplesDaily) Generate(ctx context.Context) (*feed.Feed, error) {
	start := time.Now()
	today := s.now().In(chinaStandardTime)
	issueDate := today.Format(time.DateOnly)
	rootURL := fmt.Sprintf("%s/%s/%s/", s.baseURL, today.Format("200601"), today.Format("02"))

	out := feed.New(s.ID(), s.Title(), s.Description(), s.Link(), today)

	pages, err := s.discover(ctx, rootURL)
	if err != nil {
		if fetcher.IsNotFound(err) {
			slog.Warn("Issue not published yet", "source", s.ID(), "date", issueDate, "url", rootURL)
			out.Degraded = true
			out.Add(feed.Item{
				GUID:        "rmrb-no-update-" + issueDate,
				Title:       fmt.Sprintf("人民日报 (%s) 无更新", issueDate),
				Link:        rootURL,
				Description: "今日人民日报尚未发布或页面不存在。",
				PublishedAt: today,
			})
			return out, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDiscovery, rootURL, err)
	}
	slog.Info("Found issue pages", "source", s.ID(), "date", issueDate, "pages", len(pages))

	refs := lo.Flatten(collect(ctx, s.concurrency, pages, s.listArticles))
	slog.Info("Found articles", "source", s.ID(), "articles", len(refs))

	items := collect(ctx, s.concurrency, refs, func(ctx context.Context, ref articleRef) (feed.Item, error) {
		return s.fetchArticle(ctx, ref, today)
	})

	for _, item := range items {
		out.Add(item)
	}

	slog.Info("Feed generated",
		"source", s.ID(),
		"items", len(out.Items),
		"dropped", len(refs)-len(items),
		"duration", time.Since(start))

	return out, nil
}

func (s *PeoplesDaily) discover(ctx context.Context, rootURL string) ([]pageLink, error) {
	body, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: rootURL, Timeout: s.rootTimeout})
	if err != nil {
		return nil, err
	}

	doc, err := parseHTML(body)
	if err != nil {
		return nil, err
	}

	var pages []pageLink
	doc.Find("#list li a").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if name == "" || href == "" {
			return
		}
		pageURL, err := resolveURL(rootURL, href)
		if err != nil {
			slog.Debug("Skipping page link", "source", s.ID(), "href", href, "error", err)
			return
		}
		pages = append(pages, pageLink{Name: name, URL: pageURL})
	})

	if len(pages) == 0 {
		return nil, ErrNoPageLinks
	}

	return pages, nil
}

func (s *PeoplesDaily) listArticles(ctx context.Context, page pageLink) ([]articleRef, error) {
	body, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: page.URL, Timeout: s.pageTimeout})
	if err != nil {
		slog.Error("Failed to fetch page", "source", s.ID(), "page", page.Name, "url", page.URL, "error", err)
		return nil, err
	}

	doc, err := parseHTML(body)
	if err != nil {
		slog.Error("Failed to parse page", "source", s.ID(), "page", page.Name, "error", err)
		return nil, err
	}

	var refs []articleRef
	doc.Find("div.news ul.news-list li a").Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if title == "" || href == "" {
			return
		}

		link, err := resolveURL(page.URL, href)
		if err != nil {
			return
		}

		if excluded, reason := s.filterer.Excluded(feed.Item{Title: title, Link: link}, s.rules); excluded {
			slog.Debug("Skipping list entry", "source", s.ID(), "title", title, "reason", reason)
			return
		}

		refs = append(refs, articleRef{Title: title, Link: link, PageName: page.Name})
	})

	return refs, nil
}

func (s *PeoplesDaily) fetchArticle(ctx context.Context, ref articleRef, today time.Time) (feed.Item, error) {
	body, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: ref.Link, Timeout: s.pageTimeout})
	if err != nil {
		slog.Error("Failed to fetch article", "source", s.ID(), "url", ref.Link, "error", err)
		return feed.Item{}, err
	}

	doc, err := parseHTML(body)
	if err != nil {
		slog.Error("Failed to parse article", "source", s.ID(), "url", ref.Link, "error", err)
		return feed.Item{}, err
	}

	title := cmp.Or(strings.TrimSpace(doc.Find("div.article > h1 > p").Text()), ref.Title)
	subtitle := strings.TrimSpace(doc.Find("div.article > h3 > p").Text())
	fullTitle := title
	if subtitle != "" {
		fullTitle = subtitle + " " + title
	}

	publishedAt, ok := parseLocalDate(doc.Find("p.sec span.date span.newstime").First().Text(), chinaStandardTime, paperDateLayouts)
	if !ok {
		publishedAt = today
	}

	absolutizeAttr(doc.Find("div.article img"), "src", ref.Link)

	var content strings.Builder
	if subtitle != "" {
		content.WriteString("<h3>" + html.EscapeString(subtitle) + "</h3>")
	}
	content.WriteString("<h1>" + html.EscapeString(title) + "</h1>")
	for _, selector := range []string{"p.sec", "div.article div.attachment", "div.article div#ozoom"} {
		if fragment, err := doc.Find(selector).First().Html(); err == nil {
			content.WriteString(fragment)
		}
	}

	label, topic := splitPageName(ref.PageName)
	categories := []string{peoplesDailyCategory}
	if topic != "" {
		categories = append(categories, topic)
	}

	return feed.Item{
		GUID:        ref.Link,
		Title:       fmt.Sprintf("【%s】%s", label, fullTitle),
		Link:        ref.Link,
		Description: content.String(),
		Content:     content.String(),
		PublishedAt: publishedAt,
		Categories:  categories,
	}, nil
}

// splitPageName splits "第01版：要闻" into its label and topic. Full-width and
// half-width colons are both accepted.
func splitPageName(name string) (label, topic string) {
	label, topic, _ = strings.Cut(width.Narrow.String(name), ":")
	return strings.TrimSpace(label), strings.TrimSpace(topic)
}
