// Package sources holds the source adapters that turn HTML publications into feeds,
// and the registry that maps route ids to them.
package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/rss-press/app/feed"
)

// Source is one publication. Implementations are immutable after construction, so
// Generate may run concurrently on the same value.
//
// Generate returns an error only when nothing meaningful can be produced; expected
// absences and per-article failures yield a smaller or degraded feed instead.
type Source interface {
	ID() string
	Title() string
	Description() string
	Link() string
	Generate(ctx context.Context) (*feed.Feed, error)
}

var (
	ErrDiscovery   = errors.New("discovery failed")
	ErrNoPageLinks = errors.New("no page links found")
)

// chinaStandardTime is the home timezone of the built-in publications. China has
// no DST, so a fixed zone avoids depending on tzdata.
var chinaStandardTime = time.FixedZone("CST", 8*60*60)

type pageLink struct {
	Name string
	URL  string
}

type articleRef struct {
	Title    string
	Link     string
	PageName string
}

func parseHTML(data []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// resolveURL resolves ref against base. Protocol-relative refs get https.
func resolveURL(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty URL")
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref, nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}

	return baseURL.ResolveReference(refURL).String(), nil
}

func isAbsoluteHTTP(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// absolutizeAttr rewrites attr on every element of sel to an absolute URL based on
// base. Values that are already absolute, data URIs or unparsable are left alone.
func absolutizeAttr(sel *goquery.Selection, attr, base string) {
	sel.Each(func(_ int, el *goquery.Selection) {
		value, ok := el.Attr(attr)
		if !ok || value == "" || isAbsoluteHTTP(value) || strings.HasPrefix(value, "data:") {
			return
		}
		if resolved, err := resolveURL(base, value); err == nil {
			el.SetAttr(attr, resolved)
		}
	})
}

func outerText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
