package sources

import (
	"context"
	"time"

	"github.com/lysyi3m/rss-press/app/feed"
)

const StaticID = "my-hardcoded-feed"

// Static serves a fixed feed without any I/O. It demonstrates the adapter contract.
type Static struct{}

var _ Source = Static{}

func NewStatic() Static {
	return Static{}
}

func (Static) ID() string          { return StaticID }
func (Static) Title() string       { return "我的硬编码 RSS Feed" }
func (Static) Description() string { return "这是一个完全固定，用于演示框架的RSS Feed。" }
func (Static) Link() string        { return "http://example.com/hardcoded" }

func (s Static) Generate(_ context.Context) (*feed.Feed, error) {
	items := staticItems()

	// Build date follows the newest item so repeated calls stay identical.
	out := feed.New(s.ID(), s.Title(), s.Description(), s.Link(), items[0].PublishedAt)
	for _, item := range items {
		out.Add(item)
	}

	return out, nil
}

func staticItems() []feed.Item {
	return []feed.Item{
		{
			GUID:        "hardcoded-article-1",
			Title:       "第一篇硬编码文章",
			Link:        "http://example.com/hardcoded/article1",
			Description: "这是第一篇固定内容的文章描述，内容是写死的。",
			Content:     "<p>这篇硬编码文章的<b>完整内容</b>。</p><p>没有任何动态生成或解析。</p>",
			PublishedAt: time.Date(2025, time.January, 2, 8, 0, 0, 0, chinaStandardTime),
			Author:      "固定作者A",
			Categories:  []string{"分类一", "演示"},
		},
		{
			GUID:        "hardcoded-article-2",
			Title:       "第二篇硬编码文章",
			Link:        "http://example.com/hardcoded/article2",
			Description: "这是第二篇固定内容的文章描述。",
			PublishedAt: time.Date(2025, time.January, 1, 8, 0, 0, 0, chinaStandardTime),
			Author:      "固定作者B",
			Categories:  []string{"分类二"},
		},
	}
}
