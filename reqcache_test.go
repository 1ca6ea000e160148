package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedFetchBody(t *testing.T, rc *ReqCache, rawUrl string) (string, int) {
	req, err := newGetRequest(rawUrl)
	require.NoError(t, err)
	resp, err := rc.CachedFetch(req, &http.Client{})
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data), resp.StatusCode
}

func TestCachedFetchReplaysResponses(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, "fresh body")
	}))
	t.Cleanup(srv.Close)

	rc := NewReqCache(newTestStore(t))

	body, status := cachedFetchBody(t, rc, srv.URL+"/api")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fresh body", body)

	body, status = cachedFetchBody(t, rc, srv.URL+"/api")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fresh body", body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second fetch is served from the store")

	cachedFetchBody(t, rc, srv.URL+"/other")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "a different request misses")
}

func TestCachedFetchSkipsFailedResponses(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "no", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	rc := NewReqCache(newTestStore(t))

	_, status := cachedFetchBody(t, rc, srv.URL)
	assert.Equal(t, 500, status)
	_, status = cachedFetchBody(t, rc, srv.URL)
	assert.Equal(t, 500, status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "error responses are not recorded")
}

func TestSearchThroughResponseCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, pixabayBody("http://img.example/a.jpg"))
	}))
	t.Cleanup(srv.Close)

	dbFile := filepath.Join(t.TempDir(), "cache.db")
	cfg := Config{}
	cfg.Pixabay.Key = "test-key"

	store, err := NewStore(dbFile)
	require.NoError(t, err)
	api := NewPixabayApi(&cfg, NewReqCache(store))
	api.baseUrl = srv.URL
	first, err := api.Search("perros", 1)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(dbFile)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	api = NewPixabayApi(&cfg, NewReqCache(store))
	api.baseUrl = srv.URL
	second, err := api.Search("perros", 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "the repeated search replays the stored response")
}
