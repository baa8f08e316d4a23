package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierClient_SendsCanonicalsAndAuth(t *testing.T) {
	var gotAuth string
	var gotRequest classifyRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(classifyResponse{Categories: map[string]string{
			"SWIGGY ORDER <id>": "Food & Dining",
		}})
	}))
	defer server.Close()

	client := NewClassifierClient(server.URL, "secret-token")
	categories, err := client.ClassifyCanonical(context.Background(), []string{"SWIGGY ORDER <id>"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, []string{"SWIGGY ORDER <id>"}, gotRequest.Descriptions)
	assert.Equal(t, map[string]string{"SWIGGY ORDER <id>": "Food & Dining"}, categories)
}

func TestClassifierClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClassifierClient(server.URL, "")
	_, err := client.ClassifyCanonical(context.Background(), []string{"X"})
	assert.Error(t, err)
}

func TestClassifierClient_NullCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"categories": null}`))
	}))
	defer server.Close()

	client := NewClassifierClient(server.URL, "")
	categories, err := client.ClassifyCanonical(context.Background(), []string{"X"})

	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestClassifierClient_EmptyInputSkipsCall(t *testing.T) {
	client := NewClassifierClient("http://127.0.0.1:0", "")
	categories, err := client.ClassifyCanonical(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestClassifierClient_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClassifierClient(server.URL, "")
	_, err := client.ClassifyCanonical(ctx, []string{"X"})
	assert.Error(t, err)
}
