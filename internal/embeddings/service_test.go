package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T, url string) *Service {
	t.Helper()
	svc, err := NewService(Config{
		BaseURL:      url,
		Timeout:      5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, "test-model", nil)
	require.NoError(t, err)
	return svc
}

func TestEmbedDocuments(t *testing.T) {
	var gotReq teiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode([][]float32{{0.1, 0.2}, {0.3, 0.4}})
	}))
	defer server.Close()

	svc := testService(t, server.URL)
	vectors, err := svc.EmbedDocuments(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vectors)
	assert.Equal(t, "test-model", gotReq.Model)
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	svc := testService(t, "http://localhost:1")
	_, err := svc.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedDocumentsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{{0.1}})
	}))
	defer server.Close()

	svc := testService(t, server.URL)
	_, err := svc.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbedQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{{0.5, 0.6}})
	}))
	defer server.Close()

	svc := testService(t, server.URL)
	vector, err := svc.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.6}, vector)

	_, err = svc.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([][]float32{{0.1}})
	}))
	defer server.Close()

	svc := testService(t, server.URL)
	vectors, err := svc.EmbedDocuments(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbedRetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := testService(t, server.URL)
	_, err := svc.EmbedDocuments(context.Background(), []string{"a"})
	require.ErrorIs(t, err, ErrEmbeddingFailed)
	// 1 initial attempt + 3 retries.
	assert.Equal(t, int32(4), calls.Load())
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	svc := testService(t, server.URL)
	_, err := svc.EmbedDocuments(context.Background(), []string{"a"})
	require.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, err := NewService(Config{
		BaseURL:      server.URL,
		MaxRetries:   5,
		RetryBackoff: time.Hour, // never elapses; cancellation must win
	}, "test-model", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.EmbedDocuments(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(Config{BaseURL: "http://x"}, "", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestServiceSendsAPIKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([][]float32{{0.1}})
	}))
	defer server.Close()

	svc, err := NewService(Config{BaseURL: server.URL, APIKey: "sk-test"}, "m", nil)
	require.NoError(t, err)

	_, err = svc.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}
