package external

import (
	"context"
	"log/slog"

	"quill/internal/observability"
)

// Resolver reconciles the third-party context for the landing page. It
// reads nothing from and writes nothing to persisted state.
type Resolver struct {
	news     *NewsClient
	ipgeo    *IPLocator
	geocoder *Geocoder
	forecast *ForecastClient
}

// LandingContext is the external portion of the landing page payload.
// Headlines and Forecast are nil when their provider failed; the landing
// render degrades rather than failing outright.
type LandingContext struct {
	Headlines []Article `json:"headlines,omitempty"`
	Forecast  *Forecast `json:"forecast,omitempty"`
}

// NewResolver creates a Resolver over the four provider clients.
func NewResolver(news *NewsClient, ipgeo *IPLocator, geocoder *Geocoder, forecast *ForecastClient) *Resolver {
	return &Resolver{
		news:     news,
		ipgeo:    ipgeo,
		geocoder: geocoder,
		forecast: forecast,
	}
}

// ResolveLocation applies the location fallback chain:
//
//  1. no submitted location: IP-based lookup
//  2. submitted location: forward geocoding
//     a. geocoding transport error: fall back to IP
//     b. geocoding reachable but no match: fall back to IP
//     c. match: use the geocoded coordinates
//
// The chain never leaves coordinates unresolved short of the IP provider
// itself failing, which is the terminal degradation.
func (r *Resolver) ResolveLocation(ctx context.Context, submitted string) (Coordinates, error) {
	if submitted == "" {
		return r.ipgeo.Locate(ctx)
	}

	coords, matched, err := r.geocoder.Forward(ctx, submitted)
	if err != nil {
		observability.LocationFallbacks.WithLabelValues("geocode_error").Inc()
		observability.Logger.Warn("geocoding failed, falling back to IP lookup",
			slog.String("location", submitted), slog.String("error", err.Error()))
		return r.ipgeo.Locate(ctx)
	}
	if !matched {
		observability.LocationFallbacks.WithLabelValues("no_match").Inc()
		observability.Logger.Info("geocoding found no match, falling back to IP lookup",
			slog.String("location", submitted))
		return r.ipgeo.Locate(ctx)
	}

	return coords, nil
}

// BuildLandingContext fetches headlines and the forecast for the submitted
// (or IP-derived) location. Provider failures degrade the affected section
// to nil; they never fail the landing render.
func (r *Resolver) BuildLandingContext(ctx context.Context, submittedLocation string) *LandingContext {
	lc := &LandingContext{}

	headlines, err := r.news.TopHeadlines(ctx)
	if err != nil {
		observability.Logger.Warn("headlines unavailable", slog.String("error", err.Error()))
	} else {
		lc.Headlines = headlines
	}

	coords, err := r.ResolveLocation(ctx, submittedLocation)
	if err != nil {
		observability.Logger.Warn("location unresolved, omitting forecast",
			slog.String("error", err.Error()))
		return lc
	}

	forecast, err := r.forecast.Forecast(ctx, coords)
	if err != nil {
		observability.Logger.Warn("forecast unavailable", slog.String("error", err.Error()))
		return lc
	}
	lc.Forecast = forecast

	return lc
}
