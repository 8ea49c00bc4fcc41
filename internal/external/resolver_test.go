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

// fakeProviders stands up one test server answering for all four providers
// and returns a Resolver wired to it.
type fakeProviders struct {
	mux *http.ServeMux
	srv *httptest.Server

	ipCalled      bool
	geocodeCalled bool
}

func newFakeProviders(t *testing.T) *fakeProviders {
	t.Helper()

	f := &fakeProviders{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeProviders) resolver() *Resolver {
	client := f.srv.Client()
	return NewResolver(
		NewNewsClient(f.srv.URL+"/news", "k", "us", 10, client),
		NewIPLocator(f.srv.URL+"/ip", client),
		NewGeocoder(f.srv.URL+"/geo", client),
		NewForecastClient(f.srv.URL+"/wx", client),
	)
}

func (f *fakeProviders) serveIP(lat, lon float64) {
	f.mux.HandleFunc("/ip", func(w http.ResponseWriter, _ *http.Request) {
		f.ipCalled = true
		fmt.Fprintf(w, `{"status": "success", "lat": %f, "lon": %f}`, lat, lon)
	})
}

func (f *fakeProviders) serveGeocode(body string, status int) {
	f.mux.HandleFunc("/geo/search", func(w http.ResponseWriter, _ *http.Request) {
		f.geocodeCalled = true
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})
}

func TestResolveLocation(t *testing.T) {
	t.Parallel()

	t.Run("empty location uses IP", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.serveIP(40.7, -74.0)

		coords, err := f.resolver().ResolveLocation(context.Background(), "")
		require.NoError(t, err)
		assert.True(t, f.ipCalled)
		assert.False(t, f.geocodeCalled)
		assert.InDelta(t, 40.7, coords.Lat, 0.001)
	})

	t.Run("geocode match wins", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.serveIP(40.7, -74.0)
		f.serveGeocode(`{"results": [{"latitude": 42.36, "longitude": -71.06}]}`, http.StatusOK)

		coords, err := f.resolver().ResolveLocation(context.Background(), "Boston")
		require.NoError(t, err)
		assert.False(t, f.ipCalled)
		assert.InDelta(t, 42.36, coords.Lat, 0.001)
	})

	t.Run("geocode no match falls back to IP", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.serveIP(40.7, -74.0)
		f.serveGeocode(`{"results": []}`, http.StatusOK)

		coords, err := f.resolver().ResolveLocation(context.Background(), "Nowheresville")
		require.NoError(t, err)
		assert.True(t, f.ipCalled)
		assert.InDelta(t, 40.7, coords.Lat, 0.001)
	})

	t.Run("geocode transport error falls back to IP", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.serveIP(40.7, -74.0)
		f.serveGeocode(`boom`, http.StatusInternalServerError)

		coords, err := f.resolver().ResolveLocation(context.Background(), "Boston")
		require.NoError(t, err)
		assert.True(t, f.ipCalled)
		assert.InDelta(t, 40.7, coords.Lat, 0.001)
	})

	t.Run("IP failure is terminal", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.mux.HandleFunc("/ip", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := f.resolver().ResolveLocation(context.Background(), "")
		assert.Error(t, err)
	})
}

func TestBuildLandingContext(t *testing.T) {
	t.Parallel()

	serveWeather := func(f *fakeProviders) {
		f.mux.HandleFunc("/wx/points/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `{
				"properties": {
					"forecast": "%s/wx/forecast",
					"relativeLocation": {"properties": {"city": "New York", "state": "NY"}}
				}
			}`, f.srv.URL)
		})
		f.mux.HandleFunc("/wx/forecast", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"properties": {"periods": [{"name": "Tonight", "temperature": 60, "temperatureUnit": "F"}]}}`)
		})
	}

	t.Run("all providers healthy", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.serveIP(40.7, -74.0)
		serveWeather(f)
		f.mux.HandleFunc("/news/top-headlines", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"status": "ok", "articles": [{"title": "Headline one"}]}`)
		})

		lc := f.resolver().BuildLandingContext(context.Background(), "")
		require.NotNil(t, lc)
		require.Len(t, lc.Headlines, 1)
		require.NotNil(t, lc.Forecast)
		assert.Equal(t, "New York", lc.Forecast.City)
	})

	t.Run("news outage drops headlines only", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.serveIP(40.7, -74.0)
		serveWeather(f)
		f.mux.HandleFunc("/news/top-headlines", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		lc := f.resolver().BuildLandingContext(context.Background(), "")
		assert.Nil(t, lc.Headlines)
		require.NotNil(t, lc.Forecast)
	})

	t.Run("unresolvable location drops forecast only", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)
		f.mux.HandleFunc("/ip", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		f.mux.HandleFunc("/news/top-headlines", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"status": "ok", "articles": [{"title": "Headline one"}]}`)
		})

		lc := f.resolver().BuildLandingContext(context.Background(), "")
		require.Len(t, lc.Headlines, 1)
		assert.Nil(t, lc.Forecast)
	})

	t.Run("total outage still renders", func(t *testing.T) {
		t.Parallel()

		f := newFakeProviders(t)

		lc := f.resolver().BuildLandingContext(context.Background(), "")
		require.NotNil(t, lc)
		assert.Nil(t, lc.Headlines)
		assert.Nil(t, lc.Forecast)
	})
}
