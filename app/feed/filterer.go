package feed

import (
	"fmt"
	"strings"
)

var FilterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"author":      true,
	"link":        true,
	"categories":  true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the items that pass every rule, preserving order.
func (f *Filterer) Run(items []Item, rules []FilterRule) []Item {
	if len(rules) == 0 {
		return items
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if excluded, _ := f.Excluded(item, rules); !excluded {
			kept = append(kept, item)
		}
	}

	return kept
}

// Excluded reports whether item is rejected by rules and why.
func (f *Filterer) Excluded(item Item, rules []FilterRule) (bool, string) {
	for _, rule := range rules {
		value := f.getFieldValue(item, rule.Field)

		for _, exclude := range rule.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", rule.Field, exclude)
			}
		}

		if len(rule.Includes) > 0 {
			matched := false
			for _, include := range rule.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", rule.Field, rule.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "author":
		return item.Author
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}
