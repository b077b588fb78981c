package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeSuccess(t *testing.T) {
	var gotAddress string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		_, _ = w.Write([]byte(`{"result":{"addressMatches":[{"coordinates":{"x":-87.623,"y":41.881}}]}}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	lat, lng := c.Geocode(context.Background(), "100 N State St")

	require.NotNil(t, lat)
	require.NotNil(t, lng)
	assert.Equal(t, 41.881, *lat)
	assert.Equal(t, -87.623, *lng)
	assert.Equal(t, "100 N State St, Chicago, IL", gotAddress)
}

func TestGeocodeFailuresReturnEmptyPair(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no matches",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"result":{"addressMatches":[]}}`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			lat, lng := New(WithBaseURL(srv.URL)).Geocode(context.Background(), "100 N State St")
			assert.Nil(t, lat)
			assert.Nil(t, lng)
		})
	}
}

func TestGeocodeEmptyAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty address")
	}))
	defer srv.Close()

	lat, lng := New(WithBaseURL(srv.URL)).Geocode(context.Background(), "")
	assert.Nil(t, lat)
	assert.Nil(t, lng)
}

func TestGeocodeUnreachableHost(t *testing.T) {
	c := New(WithBaseURL("http://127.0.0.1:1"))
	lat, lng := c.Geocode(context.Background(), "100 N State St")
	assert.Nil(t, lat)
	assert.Nil(t, lng)
}
