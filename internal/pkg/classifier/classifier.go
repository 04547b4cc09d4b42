package classifier

import "context"

// Classifier turns a PDF and a category list into raw model text.
// Failures are upstream errors; the caller decides what happens to the
// already-reserved credit.
type Classifier interface {
	Classify(ctx context.Context, pdf []byte, categories []string) (string, error)
}
