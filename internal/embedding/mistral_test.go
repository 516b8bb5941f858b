package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBatchRequestShape(t *testing.T) {
	var gotAuth string
	var gotReq embeddingsRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"data": [
			{"index": 0, "embedding": [1, 0]},
			{"index": 1, "embedding": [0, 1]}
		]}`))
	}))
	defer server.Close()

	client := NewMistralClient(MistralConfig{APIKey: "mk", Endpoint: server.URL})

	vectors, err := client.EmbedBatch(context.Background(), []string{"atta", "milk"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer mk", gotAuth)
	assert.Equal(t, "mistral-embed", gotReq.Model)
	assert.Equal(t, []string{"atta", "milk"}, gotReq.Input)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
}

func TestEmbedBatchIndexTagsTakePrecedence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Out of order and one entry missing entirely.
		w.Write([]byte(`{"data": [
			{"index": 2, "embedding": [3]},
			{"index": 0, "embedding": [1]}
		]}`))
	}))
	defer server.Close()

	client := NewMistralClient(MistralConfig{APIKey: "mk", Endpoint: server.URL})

	vectors, err := client.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, []float32{1}, vectors[0])
	assert.Nil(t, vectors[1])
	assert.Equal(t, []float32{3}, vectors[2])
}

func TestEmbedBatchAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer server.Close()

	client := NewMistralClient(MistralConfig{APIKey: "mk", Endpoint: server.URL})

	_, err := client.EmbedBatch(context.Background(), []string{"a"})

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Contains(t, embErr.Error(), "429")
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	client := NewMistralClient(MistralConfig{APIKey: "mk", Endpoint: "http://invalid.local"})

	vectors, err := client.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"index": 0, "embedding": [0.5, 0.5]}]}`))
	}))
	defer server.Close()

	client := NewMistralClient(MistralConfig{APIKey: "mk", Endpoint: server.URL})

	vec, err := client.EmbedOne(context.Background(), "aashirvaad atta")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}
