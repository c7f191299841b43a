package sources

import (
	"context"
	"reflect"
	"testing"
)

func TestStatic_Generate(t *testing.T) {
	out, err := NewStatic().Generate(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if out.SourceID != StaticID {
		t.Errorf("Expected source id '%s', got '%s'", StaticID, out.SourceID)
	}
	if len(out.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(out.Items))
	}

	first, second := out.Items[0], out.Items[1]
	if first.GUID != "hardcoded-article-1" || second.GUID != "hardcoded-article-2" {
		t.Errorf("Expected fixed guids, got '%s' and '%s'", first.GUID, second.GUID)
	}
	if first.Author != "固定作者A" {
		t.Errorf("Expected author '固定作者A', got '%s'", first.Author)
	}
	if !reflect.DeepEqual(first.Categories, []string{"分类一", "演示"}) {
		t.Errorf("Expected two categories, got %v", first.Categories)
	}
	if first.Content == "" {
		t.Error("Expected first item to carry full content")
	}
	if second.Content != "" {
		t.Errorf("Expected second item without content, got '%s'", second.Content)
	}
	if !first.PublishedAt.After(second.PublishedAt) {
		t.Error("Expected items newest first")
	}
}

func TestStatic_Generate_Deterministic(t *testing.T) {
	a, _ := NewStatic().Generate(context.Background())
	b, _ := NewStatic().Generate(context.Background())

	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical feeds across calls")
	}
}
