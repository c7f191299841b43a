package cfg

import (
	"time"
)

type Cfg struct {
	// Server
	Port    string
	BaseUrl string

	// Sources
	SourcesDir        string
	UserAgent         string
	RootTimeout       time.Duration
	FetchTimeout      time.Duration
	FanoutLimit       int
	SerialConcurrency int

	// Run log; empty DBPath disables it
	DBPath string

	Timezone string
	Debug    bool
	Version  string
}
