package feed

import (
	"strings"
	"testing"
)

func TestContentExtractor_Run_ValidHTML(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head><title>Test Article</title></head>
	<body>
		<header><nav>Navigation</nav></header>
		<main>
			<article>
				<h1>Main Article Title</h1>
				<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
				<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
				<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
				<img src="/images/photo.jpg" alt="photo">
			</article>
		</main>
		<footer><p>Copyright 2024</p></footer>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent), "https://example.com/news/1.html")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "main content of the article") {
		t.Errorf("Expected extracted content to contain main article text")
	}

	if strings.Contains(result, "Copyright 2024") {
		t.Errorf("Expected extracted content to exclude footer")
	}

	if strings.Contains(result, `src="/images/photo.jpg"`) {
		t.Errorf("Expected relative image to be resolved against the page URL")
	}
}

func TestContentExtractor_Run_EmptyData(t *testing.T) {
	extractor := NewContentExtractor()

	result, err := extractor.Run([]byte{}, "")
	if err == nil {
		t.Error("Expected error for empty data")
	}
	if result != "" {
		t.Errorf("Expected empty result, got '%s'", result)
	}
}

func TestContentExtractor_Run_InvalidPageURL(t *testing.T) {
	extractor := NewContentExtractor()

	_, err := extractor.Run([]byte("<html><body><p>text</p></body></html>"), "://bad")
	if err == nil {
		t.Error("Expected error for invalid page URL")
	}
}
