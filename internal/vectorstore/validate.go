package vectorstore

import (
	"fmt"
	"regexp"
)

// collectionNamePattern validates collection names.
// Pattern: letters, numbers, underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// ValidateCollectionName validates a collection name against naming rules.
// Rejects special characters, path traversal, and spaces.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match ^[A-Za-z0-9_]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// validateVector checks a vector against the collection's expected
// dimension and rejects degenerate all-zero embeddings. Zero vectors are a
// symptom of corrupt or quota-exhausted embedding calls and would silently
// poison the index if stored.
func validateVector(collection string, vector []float32, wantDim int) error {
	if len(vector) != wantDim {
		return fmt.Errorf("%w: vector length %d does not match collection %s dimension %d",
			ErrValidation, len(vector), collection, wantDim)
	}
	for _, v := range vector {
		if v != 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: all-zero vector rejected for collection %s", ErrValidation, collection)
}

// validatePoints validates every point in a batch before any write.
func validatePoints(collection string, points []Point, wantDim int) error {
	for i, p := range points {
		if p.ID == "" {
			return fmt.Errorf("%w: point %d has no id", ErrValidation, i)
		}
		if err := validateVector(collection, p.Vector, wantDim); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return nil
}
