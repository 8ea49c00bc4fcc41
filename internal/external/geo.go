package external

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"quill/internal/observability"
)

// IPLocator resolves the serving host's network address to coordinates
// using an ip-api-compatible provider.
type IPLocator struct {
	baseURL string
	client  *http.Client
}

// NewIPLocator creates an IPLocator.
func NewIPLocator(baseURL string, client *http.Client) *IPLocator {
	return &IPLocator{baseURL: baseURL, client: client}
}

type ipGeoResponse struct {
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// Locate returns the coordinates derived from the caller's IP.
func (l *IPLocator) Locate(ctx context.Context) (Coordinates, error) {
	start := time.Now()

	ctx, span := observability.StartProviderSpan(ctx, "ipgeo", "locate")
	defer span.End()

	var resp ipGeoResponse
	err := getJSON(ctx, l.client, l.baseURL, &resp)
	observability.ObserveExternalFetch("ipgeo", start, err)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return Coordinates{}, err
	}

	return Coordinates{Lat: resp.Lat, Lon: resp.Lon}, nil
}

// Geocoder resolves a submitted place name to coordinates using an
// Open-Meteo-compatible forward geocoding provider.
type Geocoder struct {
	baseURL string
	client  *http.Client
}

// NewGeocoder creates a Geocoder.
func NewGeocoder(baseURL string, client *http.Client) *Geocoder {
	return &Geocoder{baseURL: baseURL, client: client}
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Forward geocodes a place name. The second return value reports whether
// the provider matched anything; a transport failure is returned as an
// error, distinct from "reachable but no match".
func (g *Geocoder) Forward(ctx context.Context, place string) (Coordinates, bool, error) {
	start := time.Now()

	ctx, span := observability.StartProviderSpan(ctx, "geocode", "forward")
	defer span.End()

	q := url.Values{}
	q.Set("name", place)
	q.Set("count", "1")

	var resp geocodeResponse
	err := getJSON(ctx, g.client, g.baseURL+"/search?"+q.Encode(), &resp)
	observability.ObserveExternalFetch("geocode", start, err)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return Coordinates{}, false, err
	}

	if len(resp.Results) == 0 {
		return Coordinates{}, false, nil
	}

	return Coordinates{
		Lat: resp.Results[0].Latitude,
		Lon: resp.Results[0].Longitude,
	}, true, nil
}
