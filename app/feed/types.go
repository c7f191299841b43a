package feed

import (
	"log/slog"
	"time"
)

// Metadata is the channel-level data recovered when a rendered feed is parsed back.
type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
	Generator   string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string    // full text for content:encoded, empty when absent
	PublishedAt time.Time // never zero once added to a Feed
	Author      string
	Categories  []string
}

type Feed struct {
	SourceID    string
	Title       string
	Description string
	Link        string
	Language    string
	TTL         int // minutes
	GeneratedAt time.Time

	// Degraded marks placeholder or diagnostic output.
	Degraded bool

	Items []Item
	guids map[string]struct{}
}

func New(sourceID, title, description, link string, generatedAt time.Time) *Feed {
	return &Feed{
		SourceID:    sourceID,
		Title:       title,
		Description: description,
		Link:        link,
		Language:    "zh-CN",
		TTL:         60,
		GeneratedAt: generatedAt,
		guids:       make(map[string]struct{}),
	}
}

// Add appends item unless its GUID is already taken. An empty GUID defaults to the
// link and a zero PublishedAt to the feed's GeneratedAt.
func (f *Feed) Add(item Item) bool {
	if item.GUID == "" {
		item.GUID = item.Link
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = f.GeneratedAt
	}
	if f.guids == nil {
		f.guids = make(map[string]struct{})
	}
	if _, dup := f.guids[item.GUID]; dup {
		slog.Warn("Duplicate item dropped", "source", f.SourceID, "guid", item.GUID)
		return false
	}
	f.guids[item.GUID] = struct{}{}
	f.Items = append(f.Items, item)
	return true
}

// Filter rules, shared by built-in sources and YAML-configured ones.

type FilterRule struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
