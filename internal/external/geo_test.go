package external

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLocate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "success", "lat": 40.7128, "lon": -74.006}`)
	}))
	defer srv.Close()

	locator := NewIPLocator(srv.URL, srv.Client())

	coords, err := locator.Locate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 40.7128, coords.Lat, 0.0001)
	assert.InDelta(t, -74.006, coords.Lon, 0.0001)
}

func TestGeocoderForward(t *testing.T) {
	t.Parallel()

	t.Run("match", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Boston", r.URL.Query().Get("name"))
			assert.Equal(t, "1", r.URL.Query().Get("count"))
			fmt.Fprint(w, `{"results": [{"latitude": 42.3601, "longitude": -71.0589}]}`)
		}))
		defer srv.Close()

		geocoder := NewGeocoder(srv.URL, srv.Client())

		coords, matched, err := geocoder.Forward(context.Background(), "Boston")
		require.NoError(t, err)
		assert.True(t, matched)
		assert.InDelta(t, 42.3601, coords.Lat, 0.0001)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{}`)
		}))
		defer srv.Close()

		geocoder := NewGeocoder(srv.URL, srv.Client())

		_, matched, err := geocoder.Forward(context.Background(), "Nowheresville-xyz")
		require.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		geocoder := NewGeocoder(srv.URL, srv.Client())

		_, matched, err := geocoder.Forward(context.Background(), "Boston")
		require.Error(t, err)
		assert.False(t, matched)
	})
}
