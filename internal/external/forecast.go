package external

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quill/internal/observability"
)

// ForecastPeriod is one entry of the forecast shown on the landing page.
type ForecastPeriod struct {
	Name            string `json:"name"`
	Temperature     int    `json:"temperature"`
	TemperatureUnit string `json:"temperature_unit"`
	WindSpeed       string `json:"wind_speed"`
	ShortForecast   string `json:"short_forecast"`
	Icon            string `json:"icon"`
}

// Forecast is the resolved weather context for a location.
type Forecast struct {
	City    string           `json:"city"`
	State   string           `json:"state"`
	Periods []ForecastPeriod `json:"periods"`
}

// ForecastClient fetches a forecast from an NWS-compatible provider. The
// lookup is two hops: the points endpoint maps coordinates to a grid cell
// (carrying the human-readable city/state and a forecast URL), then the
// forecast URL yields the periods.
type ForecastClient struct {
	baseURL string
	client  *http.Client
}

// NewForecastClient creates a ForecastClient.
func NewForecastClient(baseURL string, client *http.Client) *ForecastClient {
	return &ForecastClient{baseURL: baseURL, client: client}
}

type pointsResponse struct {
	Properties struct {
		Forecast         string `json:"forecast"`
		RelativeLocation struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []struct {
			Name            string `json:"name"`
			Temperature     int    `json:"temperature"`
			TemperatureUnit string `json:"temperatureUnit"`
			WindSpeed       string `json:"windSpeed"`
			ShortForecast   string `json:"shortForecast"`
			Icon            string `json:"icon"`
		} `json:"periods"`
	} `json:"properties"`
}

// Forecast resolves coordinates to a city/state and forecast periods.
// A failure at either hop propagates to the caller.
func (f *ForecastClient) Forecast(ctx context.Context, coords Coordinates) (*Forecast, error) {
	start := time.Now()

	ctx, span := observability.StartProviderSpan(ctx, "forecast", "points")
	defer span.End()

	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", f.baseURL, coords.Lat, coords.Lon)

	var points pointsResponse
	if err := getJSON(ctx, f.client, pointsURL, &points); err != nil {
		observability.ObserveExternalFetch("forecast", start, err)
		observability.RecordErrorInContext(ctx, err)
		return nil, fmt.Errorf("resolving grid point: %w", err)
	}
	if points.Properties.Forecast == "" {
		err := fmt.Errorf("grid point metadata has no forecast reference")
		observability.ObserveExternalFetch("forecast", start, err)
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}

	// The forecast URL comes from the provider's own metadata, not config.
	var fc forecastResponse
	err := getJSON(ctx, f.client, points.Properties.Forecast, &fc)
	observability.ObserveExternalFetch("forecast", start, err)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, fmt.Errorf("fetching forecast periods: %w", err)
	}

	periods := make([]ForecastPeriod, 0, len(fc.Properties.Periods))
	for _, p := range fc.Properties.Periods {
		periods = append(periods, ForecastPeriod{
			Name:            p.Name,
			Temperature:     p.Temperature,
			TemperatureUnit: p.TemperatureUnit,
			WindSpeed:       p.WindSpeed,
			ShortForecast:   p.ShortForecast,
			Icon:            p.Icon,
		})
	}

	return &Forecast{
		City:    points.Properties.RelativeLocation.Properties.City,
		State:   points.Properties.RelativeLocation.Properties.State,
		Periods: periods,
	}, nil
}
