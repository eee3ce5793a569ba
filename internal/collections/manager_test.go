package collections

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/retrievald/internal/contenttype"
	"github.com/fyrsmithlabs/retrievald/internal/vectorstore"
)

// fakeStore records calls and fails on demand.
type fakeStore struct {
	ensured     []string
	indexed     []string
	deleted     []string
	failEnsure  map[string]error
	failDelete  map[string]error
	collections map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failEnsure:  map[string]error{},
		failDelete:  map[string]error{},
		collections: map[string]bool{},
	}
}

func (f *fakeStore) EnsureCollection(_ context.Context, name string, _ int) error {
	if err := f.failEnsure[name]; err != nil {
		return err
	}
	f.ensured = append(f.ensured, name)
	f.collections[name] = true
	return nil
}

func (f *fakeStore) EnsureDomainIndex(_ context.Context, collection string) error {
	f.indexed = append(f.indexed, collection)
	return nil
}

func (f *fakeStore) CollectionExists(_ context.Context, name string) (bool, error) {
	return f.collections[name], nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, name string) error {
	if err := f.failDelete[name]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, name)
	delete(f.collections, name)
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, _ string, _ []vectorstore.Point, _ int) error {
	return nil
}

func (f *fakeStore) Query(_ context.Context, _ string, _ []float32, _ int, _ float32, _ vectorstore.Filter) ([]vectorstore.ScoredPoint, error) {
	return nil, nil
}

func (f *fakeStore) DeletePoints(_ context.Context, _ string, _ []string) error   { return nil }
func (f *fakeStore) DeleteByFilter(_ context.Context, _ string, _ vectorstore.Filter) error {
	return nil
}
func (f *fakeStore) Close() error { return nil }

var _ vectorstore.Store = (*fakeStore)(nil)

func testRegistry() contenttype.Registry {
	return contenttype.Registry{
		contenttype.Documents: {Model: "m-docs", Dimension: 4},
		contenttype.Code:      {Model: "m-code", Dimension: 8},
		contenttype.Media:     {Model: "m-media", Dimension: 2},
	}
}

func TestManagerCreate(t *testing.T) {
	store := newFakeStore()
	m, err := NewManager(store, testRegistry(), nil)
	require.NoError(t, err)

	mapping, err := m.Create(context.Background(), "d1", "AI Knowledge", []contenttype.ContentType{
		contenttype.Documents, contenttype.Code,
	})
	require.NoError(t, err)

	assert.Equal(t, map[contenttype.ContentType]string{
		contenttype.Documents: "AI_Knowledge_documents",
		contenttype.Code:      "AI_Knowledge_code",
	}, mapping)
	// Sorted by type: code before documents.
	assert.Equal(t, []string{"AI_Knowledge_code", "AI_Knowledge_documents"}, store.ensured)
	assert.Equal(t, store.ensured, store.indexed)
}

func TestManagerCreateEmptyTypes(t *testing.T) {
	m, err := NewManager(newFakeStore(), testRegistry(), nil)
	require.NoError(t, err)

	_, err = m.Create(context.Background(), "d1", "t", nil)
	assert.Error(t, err)
}

func TestManagerCreateUnknownType(t *testing.T) {
	store := newFakeStore()
	m, err := NewManager(store, testRegistry(), nil)
	require.NoError(t, err)

	_, err = m.Create(context.Background(), "d1", "t", []contenttype.ContentType{"video"})
	assert.ErrorIs(t, err, contenttype.ErrUnknownType)
	assert.Empty(t, store.ensured)
}

func TestManagerCreateFailureReturnsError(t *testing.T) {
	store := newFakeStore()
	store.failEnsure["AI_Knowledge_documents"] = errors.New("backend down")

	m, err := NewManager(store, testRegistry(), nil)
	require.NoError(t, err)

	_, err = m.Create(context.Background(), "d1", "AI Knowledge", []contenttype.ContentType{
		contenttype.Documents, contenttype.Code,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	// code sorts first and was created before documents failed.
	assert.Equal(t, []string{"AI_Knowledge_code"}, store.ensured)
}

func TestManagerDeleteBestEffort(t *testing.T) {
	store := newFakeStore()
	store.collections["A_documents"] = true
	store.collections["A_code"] = true
	store.failDelete["A_code"] = errors.New("backend down")

	m, err := NewManager(store, testRegistry(), nil)
	require.NoError(t, err)

	// Never raises, even when one collection fails to delete.
	m.Delete(context.Background(), map[contenttype.ContentType]string{
		contenttype.Documents: "A_documents",
		contenttype.Code:      "A_code",
	})

	assert.Equal(t, []string{"A_documents"}, store.deleted)
}
