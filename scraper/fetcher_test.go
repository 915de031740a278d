package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *Fetcher {
	f := NewFetcher(5 * time.Second)
	f.attemptDelay = time.Millisecond
	return f
}

func TestFetchHappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	body, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "ok")
}

func TestFetchSetsGenericUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, genericUserAgent, gotUA)
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestRotationRetriesUntilAccepted(t *testing.T) {
	var mu sync.Mutex
	var agents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		blocked := len(agents) <= 2
		mu.Unlock()
		if blocked {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("<html><body>product page</body></html>"))
	}))
	defer server.Close()

	body, err := newTestFetcher().fetchWithRotation(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "product page")

	// Each blocked attempt used a different identity.
	require.Len(t, agents, 3)
	assert.NotEqual(t, agents[0], agents[1])
	assert.NotEqual(t, agents[1], agents[2])
}

func TestRotationExhaustsAllProfiles(t *testing.T) {
	var attempts int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestFetcher().fetchWithRotation(context.Background(), server.URL)
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "exhausted")
	assert.Equal(t, len(flipkartProfiles), attempts)
}

func TestRotationTreatsRedirectAsFailure(t *testing.T) {
	var redirected int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		redirected++
		mu.Unlock()
		http.Redirect(w, r, "/challenge", http.StatusFound)
	}))
	defer server.Close()

	_, err := newTestFetcher().fetchWithRotation(context.Background(), server.URL)
	require.Error(t, err)

	// The redirect is never followed; every profile sees the 302.
	assert.Equal(t, len(flipkartProfiles), redirected)
}

func TestRotationStopsOnCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	f.attemptDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := f.fetchWithRotation(ctx, server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}

func TestFetchErrorUnwrap(t *testing.T) {
	fe := &FetchError{URL: "https://example.com", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, fe, context.DeadlineExceeded)
	assert.Contains(t, fe.Error(), "example.com")

	statusOnly := &FetchError{URL: "https://example.com", StatusCode: 503}
	assert.Contains(t, statusOnly.Error(), "503")
	assert.Nil(t, statusOnly.Unwrap())
}
