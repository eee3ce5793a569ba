package contenttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryValidates(t *testing.T) {
	require.NoError(t, DefaultRegistry().Validate())
}

func TestRegistryValidate(t *testing.T) {
	tests := []struct {
		name     string
		registry Registry
		wantErr  string
	}{
		{
			name:     "empty registry",
			registry: Registry{},
			wantErr:  "cannot be empty",
		},
		{
			name: "missing documents entry",
			registry: Registry{
				Code: {Model: "m", Dimension: 8},
			},
			wantErr: "must include",
		},
		{
			name: "missing model",
			registry: Registry{
				Documents: {Dimension: 8},
			},
			wantErr: "no model",
		},
		{
			name: "non-positive dimension",
			registry: Registry{
				Documents: {Model: "m", Dimension: 0},
			},
			wantErr: "invalid dimension",
		},
		{
			name: "valid",
			registry: Registry{
				Documents: {Model: "m", Dimension: 8},
				Code:      {Model: "n", Dimension: 16},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.registry.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistrySpec(t *testing.T) {
	r := DefaultRegistry()

	spec, err := r.Spec(Documents)
	require.NoError(t, err)
	assert.Equal(t, 1536, spec.Dimension)

	_, err = r.Spec("video")
	assert.ErrorIs(t, err, ErrUnknownType)

	dim, err := r.Dimension(Code)
	require.NoError(t, err)
	assert.Equal(t, 3072, dim)
}

func TestRegistryTypesSorted(t *testing.T) {
	types := DefaultRegistry().Types()
	assert.Equal(t, []ContentType{Code, Documents, Media}, types)
}

func TestDimensionForCollection(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name       string
		collection string
		want       int
	}{
		{"suffixed documents", "AI_Knowledge_documents", 1536},
		{"suffixed code", "AI_Knowledge_code", 3072},
		{"suffixed media", "Marketing_media", 512},
		{"bare type name", "documents", 1536},
		{"unknown suffix defaults to documents", "AI_Knowledge_video", 1536},
		{"no suffix defaults to documents", "AI_Knowledge", 1536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.DimensionForCollection(tt.collection))
		})
	}
}

func TestTypeForCollection(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, Code, r.TypeForCollection("AI_Knowledge_code"))
	assert.Equal(t, Documents, r.TypeForCollection("whatever"))
}
