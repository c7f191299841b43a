package feed

import (
	"testing"
	"time"
)

func TestFeedAdd_DefaultsAndDuplicates(t *testing.T) {
	generatedAt := time.Date(2025, 10, 22, 19, 0, 0, 0, time.UTC)
	f := New("src", "Title", "Description", "https://example.com", generatedAt)

	if !f.Add(Item{Title: "first", Link: "https://example.com/1"}) {
		t.Fatal("Expected first item to be added")
	}
	if f.Add(Item{Title: "second", Link: "https://example.com/1"}) {
		t.Error("Expected item with duplicate GUID to be rejected")
	}
	if !f.Add(Item{Title: "third", Link: "https://example.com/1", GUID: "custom"}) {
		t.Error("Expected item with distinct GUID to be added")
	}

	if len(f.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(f.Items))
	}
	if f.Items[0].GUID != "https://example.com/1" {
		t.Errorf("Expected GUID to default to link, got '%s'", f.Items[0].GUID)
	}
	if f.Items[0].Title != "first" {
		t.Errorf("Expected first writer to win, got '%s'", f.Items[0].Title)
	}
	if !f.Items[0].PublishedAt.Equal(generatedAt) {
		t.Errorf("Expected zero date to fall back to %v, got %v", generatedAt, f.Items[0].PublishedAt)
	}
}

func TestFeedAdd_ZeroValueFeed(t *testing.T) {
	var f Feed

	if !f.Add(Item{GUID: "a"}) {
		t.Error("Expected zero value feed to accept items")
	}
	if f.Add(Item{GUID: "a"}) {
		t.Error("Expected duplicate GUID to be rejected on zero value feed")
	}
}
