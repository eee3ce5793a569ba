package ingest

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// Classifier assigns a content type to an unlabeled chunk.
type Classifier interface {
	Classify(ctx context.Context, text string) (contenttype.ContentType, error)
}

// KeywordClassifier is a cheap heuristic classifier for CLI ingestion.
// Pre-labeled chunks bypass it entirely; it only decides for chunks that
// arrive without a content type.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a KeywordClassifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var codeMarkers = []string{
	"func ", "def ", "class ", "import ", "package ", "return ",
	"#include", "};", "=>", "fn ", "pub fn", "var ", ":= ",
}

var mediaSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
	".mp3", ".mp4", ".wav", ".mov", ".avi",
}

// Classify labels text as code, media, or documents.
func (c *KeywordClassifier) Classify(_ context.Context, text string) (contenttype.ContentType, error) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if strings.HasPrefix(trimmed, "```") {
		return contenttype.Code, nil
	}
	for _, s := range mediaSuffixes {
		if strings.HasSuffix(lower, s) {
			return contenttype.Media, nil
		}
	}
	for _, m := range codeMarkers {
		if strings.Contains(trimmed, m) {
			return contenttype.Code, nil
		}
	}
	return contenttype.Documents, nil
}

var _ Classifier = (*KeywordClassifier)(nil)
