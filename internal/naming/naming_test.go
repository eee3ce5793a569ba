package naming

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"preserves case", "AI Knowledge", "AI_Knowledge"},
		{"already clean", "Support_Docs", "Support_Docs"},
		{"special characters", "Dev/Ops: Runbooks!", "Dev_Ops_Runbooks"},
		{"collapses underscore runs", "a -- b", "a_b"},
		{"trims edges", "  padded  ", "padded"},
		{"unicode", "café & résumé", "caf_r_sum"},
		{"digits survive", "team42", "team42"},
		{"all special", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"AI Knowledge", "Dev/Ops: Runbooks!", "a -- b", "Support_Docs"}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		domainID string
		ct       contenttype.ContentType
		want     string
	}{
		{
			name:     "title plus type suffix",
			title:    "AI Knowledge",
			domainID: "d1",
			ct:       contenttype.Documents,
			want:     "AI_Knowledge_documents",
		},
		{
			name:     "code suffix",
			title:    "AI Knowledge",
			domainID: "d1",
			ct:       contenttype.Code,
			want:     "AI_Knowledge_code",
		},
		{
			name:     "unsanitizable title falls back to domain id",
			title:    "!!!",
			domainID: "6a1f0c2e",
			ct:       contenttype.Documents,
			want:     "Source_6a1f0c2e_documents",
		},
		{
			name:     "empty title falls back to domain id",
			title:    "",
			domainID: "6a1f0c2e",
			ct:       contenttype.Media,
			want:     "Source_6a1f0c2e_media",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollectionName(tt.title, tt.domainID, tt.ct))
		})
	}
}

func TestCollectionNameDeterministic(t *testing.T) {
	first := CollectionName("AI Knowledge", "d1", contenttype.Documents)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CollectionName("AI Knowledge", "d1", contenttype.Documents))
	}
}

func TestCollectionNameIdempotent(t *testing.T) {
	// Feeding a derived name back in with the same type must not stack
	// suffixes.
	name := CollectionName("AI Knowledge", "d1", contenttype.Documents)
	again := CollectionName(name, "d1", contenttype.Documents)
	assert.Equal(t, name, again)
}

func TestCollectionNameLengthAndCharset(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

	longTitle := strings.Repeat("Very Long Departmental Knowledge Base ", 5)
	for _, ct := range []contenttype.ContentType{contenttype.Documents, contenttype.Code, contenttype.Media} {
		name := CollectionName(longTitle, "d1", ct)
		require.LessOrEqual(t, len(name), MaxCollectionNameLength)
		assert.Regexp(t, pattern, name)
		assert.True(t, strings.HasSuffix(name, "_"+string(ct)), "name %q missing type suffix", name)
	}
}
