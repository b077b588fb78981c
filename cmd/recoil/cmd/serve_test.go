package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recoilapp/recoil"
	"github.com/recoilapp/recoil/pkg/mutation"
	"github.com/recoilapp/recoil/pkg/records"
)

type staticFeed struct {
	rows []records.CrimeRecord
}

func (f *staticFeed) Fetch(context.Context) ([]records.CrimeRecord, error) {
	out := make([]records.CrimeRecord, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

type memStore struct {
	mu          sync.Mutex
	transmitted int
}

func (s *memStore) Snapshot(context.Context, time.Duration) ([]records.CrimeRecord, error) {
	return nil, nil
}

func (s *memStore) Transmit(_ context.Context, descriptors []mutation.Descriptor) ([]mutation.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transmitted += len(descriptors)
	return []mutation.BatchResult{{StatusCode: 200}}, nil
}

func (s *memStore) Notify(context.Context, mutation.Descriptor) error {
	return nil
}

func newServerClient(t *testing.T, store *memStore) recoil.Client {
	t.Helper()
	feed := &staticFeed{rows: []records.CrimeRecord{{
		Name:       "John Doe",
		Address:    "100 W Monroe St",
		OccurredAt: "2015-03-02T14:30:00",
	}}}
	client, err := recoil.New(recoil.WithFeed(feed), recoil.WithStore(store))
	require.NoError(t, err)
	return client
}

func TestServeHealthz(t *testing.T) {
	router := newRouter(newServerClient(t, &memStore{}))
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeSyncPass(t *testing.T) {
	store := &memStore{}
	router := newRouter(newServerClient(t, store))
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sync", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, store.transmitted)
}

func TestServeSyncDryRun(t *testing.T) {
	store := &memStore{}
	router := newRouter(newServerClient(t, store))
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sync?dry_run=true", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, store.transmitted)
}
