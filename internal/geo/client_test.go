package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchesAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/api/provinces/137400000/cities-municipalities.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"code":"137404000","name":"Quezon City","provinceCode":"137400000","isCity":true}]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/api/", Timeout: time.Second, CacheTTL: time.Minute})

	for i := 0; i < 2; i++ {
		areas, err := c.CitiesMunicipalities(context.Background(), "137400000")
		require.NoError(t, err)
		require.Len(t, areas, 1)
		assert.Equal(t, "Quezon City", areas[0].Name)
		assert.True(t, areas[0].IsCity)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClientNon2xxIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Provinces(context.Background())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClientRejectsInvalidCodes(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"})

	_, err := c.Barangays(context.Background(), "../provinces")
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = c.CitiesMunicipalities(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestClientEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	areas, err := NewClient(Config{BaseURL: srv.URL}).Barangays(context.Background(), "137404000")
	require.NoError(t, err)
	assert.NotNil(t, areas)
	assert.Empty(t, areas)
}

func TestClientReturnsCopiesOfCachedAreas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"code":"137400000","name":"Metro Manila"}]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, CacheTTL: time.Minute})

	first, err := c.Provinces(context.Background())
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := c.Provinces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Metro Manila", second[0].Name)
	second[0].Name = "changed again"

	third, err := c.Provinces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Metro Manila", third[0].Name)
}

func TestClientCancelledCallersDoNotOpenBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Provinces(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	}

	areas, err := c.Provinces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, areas)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
