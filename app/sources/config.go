package sources

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lysyi3m/rss-press/app/feed"
	"gopkg.in/yaml.v3"
)

// ScrapeConfig describes a single-listing source loaded from <sources-dir>/<id>.yml.
type ScrapeConfig struct {
	ID              string            `yaml:"-"`
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	Link            string            `yaml:"link"`
	ItemSelector    string            `yaml:"item_selector"`
	TitleAttr       string            `yaml:"title_attr"`
	ContentSelector string            `yaml:"content_selector"`
	Concurrency     *int              `yaml:"concurrency"` // nil means 1, 0 means unbounded
	SkipLeading     int               `yaml:"skip_leading"`
	Timeout         int               `yaml:"timeout"` // seconds
	Categories      []string          `yaml:"categories"`
	Filters         []feed.FilterRule `yaml:"filters"`
}

// LoadScrapeConfigs reads every *.yml and *.yaml file in dir, sorted by name. A
// missing directory yields no configs; any invalid file fails the whole load.
func LoadScrapeConfigs(dir string) ([]*ScrapeConfig, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to find YAML files: %w", err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)

	configs := make([]*ScrapeConfig, 0, len(files))
	for _, file := range files {
		config, err := LoadScrapeConfig(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", config.ID, "link", config.Link)
		configs = append(configs, config)
	}

	return configs, nil
}

// LoadScrapeConfig parses one file; the source id is the file name without its
// extension.
func LoadScrapeConfig(file string) (*ScrapeConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config ScrapeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	name := filepath.Base(file)
	config.ID = strings.TrimSuffix(name, filepath.Ext(name))

	if config.Timeout == 0 {
		config.Timeout = 10
	}
	if config.Concurrency == nil {
		serial := 1
		config.Concurrency = &serial
	}

	if err := validateScrapeConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", file, err)
	}

	return &config, nil
}

func validateScrapeConfig(config *ScrapeConfig) error {
	requiredFields := []struct {
		name  string
		value string
	}{
		{"source id", config.ID},
		{"title", config.Title},
		{"link", config.Link},
		{"item selector", config.ItemSelector},
	}

	for _, field := range requiredFields {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}

	link, err := url.Parse(config.Link)
	if err != nil || (link.Scheme != "http" && link.Scheme != "https") || link.Host == "" {
		return fmt.Errorf("link must be an absolute http(s) URL: %s", config.Link)
	}

	nonNegativeFields := map[string]int{
		"concurrency":  *config.Concurrency,
		"skip leading": config.SkipLeading,
		"timeout":      config.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, filter := range config.Filters {
		if !feed.FilterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
