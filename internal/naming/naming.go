// Package naming provides deterministic collection-name derivation.
//
// Vector store collection names must match ^[A-Za-z0-9_]{1,64}$. A domain's
// physical collection name is a pure function of its title and content type,
// with the domain id as a fallback seed when sanitization collapses the
// title to nothing. The derived name is computed exactly once, at domain
// creation; afterwards the persisted mapping is the single source of truth
// and names are never recomputed from the title.
package naming

import (
	"strings"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// MaxCollectionNameLength is the maximum collection name length accepted by
// the vector store backends.
const MaxCollectionNameLength = 64

// fallbackPrefix seeds the name when the sanitized title is empty.
const fallbackPrefix = "Source_"

// Sanitize reduces a string to the collection-name alphabet: every character
// outside [A-Za-z0-9_] becomes an underscore, runs of underscores collapse,
// and leading/trailing underscores are trimmed. Case is preserved.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// CollectionName derives the physical collection name for a domain title and
// content type: {sanitized_title}_{contentType}, truncated so the whole name
// fits MaxCollectionNameLength. A title that sanitizes to nothing falls back
// to "Source_{domainID}" so the name is still unique by construction.
//
// The function is deterministic and idempotent: applying it to its own
// output (with the same content type) yields the same name.
func CollectionName(title, domainID string, ct contenttype.ContentType) string {
	prefix := Sanitize(title)
	if prefix == "" {
		prefix = Sanitize(fallbackPrefix + domainID)
	}

	suffix := "_" + string(ct)

	// Idempotence: a prefix that already carries the type suffix keeps it
	// once, not twice.
	prefix = strings.TrimSuffix(prefix, suffix)

	if max := MaxCollectionNameLength - len(suffix); len(prefix) > max {
		prefix = strings.TrimRight(prefix[:max], "_")
	}

	return prefix + suffix
}
