package brave

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	var gotToken, gotQuery, gotCount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Subscription-Token")
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		fmt.Fprint(w, `{"web":{"results":[
			{"title":"First","url":"https://a.example","description":"snippet a"},
			{"title":"Second","url":"https://b.example","description":"snippet b"}
		]}}`)
	}))
	defer server.Close()

	c, err := NewClient("secret-token", WithEndpoint(server.URL))
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "test query", 5)
	require.NoError(t, err)

	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "test query", gotQuery)
	assert.Equal(t, "5", gotCount)

	require.Len(t, results, 2)
	assert.Equal(t, "First", results[0].Title)
	assert.Equal(t, "https://a.example", results[0].URL)
	assert.Equal(t, "snippet a", results[0].Snippet)
}

func TestSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, err := NewClient("secret-token", WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "query", 5)
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}
