package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
)

// testRegistry uses tiny dimensions so vectors are easy to write by hand.
func testRegistry() contenttype.Registry {
	return contenttype.Registry{
		contenttype.Documents: {Model: "test-docs", Dimension: 4},
		contenttype.Code:      {Model: "test-code", Dimension: 8},
	}
}

func newTestChromem(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(ChromemConfig{}, testRegistry())
	require.NoError(t, err)
	return store
}

func TestChromemEnsureCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)

	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	exists, err := store.CollectionExists(ctx, "Docs_documents")
	require.NoError(t, err)
	assert.True(t, exists)

	// Ensuring again is idempotent.
	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	exists, err = store.CollectionExists(ctx, "never_created")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestChromemEnsureCollectionRejectsBadName(t *testing.T) {
	store := newTestChromem(t)
	err := store.EnsureCollection(context.Background(), "bad name!", 4)
	assert.ErrorIs(t, err, ErrInvalidCollectionName)
}

func TestChromemUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	points := []Point{
		{
			ID:     "p1",
			Vector: []float32{1, 0, 0, 0},
			Payload: map[string]interface{}{
				PayloadDomainID:    "domain-a",
				PayloadContent:     "alpha",
				PayloadContentType: "documents",
				PayloadOrdinal:     0,
			},
		},
		{
			ID:     "p2",
			Vector: []float32{0, 1, 0, 0},
			Payload: map[string]interface{}{
				PayloadDomainID:    "domain-b",
				PayloadContent:     "beta",
				PayloadContentType: "documents",
				PayloadOrdinal:     1,
			},
		},
	}
	require.NoError(t, store.Upsert(ctx, "Docs_documents", points, 0))

	// Unfiltered query sees both, closest first.
	results, err := store.Query(ctx, "Docs_documents", []float32{1, 0, 0, 0}, 10, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, "alpha", results[0].Payload[PayloadContent])
	assert.Equal(t, int64(0), results[0].Payload[PayloadOrdinal])

	// Domain filter hides the other tenant completely.
	results, err = store.Query(ctx, "Docs_documents", []float32{1, 0, 0, 0}, 10, 0, Filter{PayloadDomainID: "domain-b"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p2", results[0].ID)
	assert.Equal(t, "domain-b", results[0].Payload[PayloadDomainID])
}

func TestChromemUpsertValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	// Dimension mismatch: nothing stored.
	err := store.Upsert(ctx, "Docs_documents", []Point{
		{ID: "bad", Vector: []float32{1, 0}},
	}, 0)
	assert.ErrorIs(t, err, ErrValidation)

	// Zero vector: nothing stored.
	err = store.Upsert(ctx, "Docs_documents", []Point{
		{ID: "zero", Vector: []float32{0, 0, 0, 0}},
	}, 0)
	assert.ErrorIs(t, err, ErrValidation)

	results, err := store.Query(ctx, "Docs_documents", []float32{1, 0, 0, 0}, 10, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemQueryValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	_, err := store.Query(ctx, "Docs_documents", []float32{1, 0}, 5, 0, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = store.Query(ctx, "Docs_documents", []float32{1, 0, 0, 0}, 0, 0, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = store.Query(ctx, "missing_documents", []float32{1, 0, 0, 0}, 5, 0, nil)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestChromemQueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	results, err := store.Query(ctx, "Docs_documents", []float32{1, 0, 0, 0}, 5, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemDeleteCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	require.NoError(t, store.DeleteCollection(ctx, "Docs_documents"))

	exists, err := store.CollectionExists(ctx, "Docs_documents")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting an absent collection is success.
	require.NoError(t, store.DeleteCollection(ctx, "Docs_documents"))
}

func TestChromemDeleteByFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.EnsureCollection(ctx, "Docs_documents", 4))

	require.NoError(t, store.Upsert(ctx, "Docs_documents", []Point{
		{ID: "a", Vector: []float32{1, 0, 0, 0}, Payload: map[string]interface{}{PayloadDomainID: "domain-a", PayloadContent: "x"}},
		{ID: "b", Vector: []float32{0, 1, 0, 0}, Payload: map[string]interface{}{PayloadDomainID: "domain-b", PayloadContent: "y"}},
	}, 0))

	// Unfiltered delete is refused.
	assert.ErrorIs(t, store.DeleteByFilter(ctx, "Docs_documents", nil), ErrValidation)

	require.NoError(t, store.DeleteByFilter(ctx, "Docs_documents", Filter{PayloadDomainID: "domain-a"}))

	results, err := store.Query(ctx, "Docs_documents", []float32{1, 0, 0, 0}, 10, 0, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "pinecone"}, testRegistry())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
