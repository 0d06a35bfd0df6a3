package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecordAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(testCatalog)
	})
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, p := range testCatalog {
			if chi.URLParam(r, "id") == strconv.FormatInt(p.ID, 10) {
				_ = json.NewEncoder(w).Encode(p)
				return
			}
		}
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSourceList(t *testing.T) {
	srv := newRecordAPI(t)
	src := NewRemoteSource(srv.URL+"/", time.Second)

	products, err := src.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ids(testCatalog), ids(products))
	assert.True(t, products[0].Price.Equal(testCatalog[0].Price))
}

func TestRemoteSourceGet(t *testing.T) {
	srv := newRecordAPI(t)
	src := NewRemoteSource(srv.URL, time.Second)
	ctx := context.Background()

	p, found, err := src.Get(ctx, 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Orchid", p.Name)

	_, found, err = src.Get(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemoteSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	src := NewRemoteSource(srv.URL, time.Second)

	_, err := src.List(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, _, err = src.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRemoteSourceMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := NewRemoteSource(srv.URL, time.Second).List(context.Background())

	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRemoteSourceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := NewRemoteSource(srv.URL, 50*time.Millisecond).List(context.Background())

	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestServiceOverUnreachableRemote(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc := NewService(NewRemoteSource(srv.URL, 100*time.Millisecond), zap.NewNop())

	assert.Empty(t, svc.GetAll(context.Background()))
	_, err := svc.GetByID(context.Background(), "1")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
