package api

import (
	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/sources"
)

type GeneratorInterface interface {
	Run(f *feed.Feed) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	registry  *sources.Registry
	generator GeneratorInterface
	runs      database.RunStore // nil when the run log is disabled
	version   string
}
