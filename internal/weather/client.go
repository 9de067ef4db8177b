// Package weather proxies weatherapi.com: the five-day farm forecast and
// the daily alert sweep that feeds push notifications.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/krishi-ai/krishi-go/internal/models"
)

const defaultBaseURL = "https://api.weatherapi.com"

const forecastDays = 5

// Translator localizes condition descriptions in the farmer's language.
type Translator interface {
	TranslateText(ctx context.Context, text, language string) string
}

// Client fetches weather data for a district.
type Client struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	translator Translator
	logger     *slog.Logger
}

// New creates a weather client. translator may be nil, in which case
// condition texts always come back in the upstream's English.
func New(apiKey string, translator Translator, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		translator: translator,
		logger:     logger,
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// upstream mirrors just the weatherapi.com fields the reshaped report
// needs.
type upstreamForecast struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		TempF     float64 `json:"temp_f"`
		IsDay     int     `json:"is_day"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
		FeelslikeC float64 `json:"feelslike_c"`
		FeelslikeF float64 `json:"feelslike_f"`
		PrecipMM   float64 `json:"precip_mm"`
		PrecipIn   float64 `json:"precip_in"`
		DewpointC  float64 `json:"dewpoint_c"`
		DewpointF  float64 `json:"dewpoint_f"`
		Humidity   int     `json:"humidity"`
		Cloud      int     `json:"cloud"`
		VisKM      float64 `json:"vis_km"`
		VisMiles   float64 `json:"vis_miles"`
		UV         float64 `json:"uv"`
	} `json:"current"`
	Forecast struct {
		Forecastday []struct {
			Date string `json:"date"`
			Day  struct {
				MaxtempC  float64 `json:"maxtemp_c"`
				MaxtempF  float64 `json:"maxtemp_f"`
				MintempC  float64 `json:"mintemp_c"`
				MintempF  float64 `json:"mintemp_f"`
				AvgtempC  float64 `json:"avgtemp_c"`
				AvgtempF  float64 `json:"avgtemp_f"`
				Condition struct {
					Text string `json:"text"`
				} `json:"condition"`
				TotalprecipMM     float64 `json:"totalprecip_mm"`
				TotalprecipIn     float64 `json:"totalprecip_in"`
				MaxwindMPH        float64 `json:"maxwind_mph"`
				MaxwindKPH        float64 `json:"maxwind_kph"`
				AvgHumidity       float64 `json:"avghumidity"`
				DailyWillItRain   int     `json:"daily_will_it_rain"`
				DailyChanceOfRain int     `json:"daily_chance_of_rain"`
				DailyWillItSnow   int     `json:"daily_will_it_snow"`
				DailyChanceOfSnow int     `json:"daily_chance_of_snow"`
				UV                float64 `json:"uv"`
			} `json:"day"`
			Astro models.WeatherAstro `json:"astro"`
		} `json:"forecastday"`
	} `json:"forecast"`
	Alerts struct {
		Alert []models.WeatherAlert `json:"alert"`
	} `json:"alerts"`
}

// FarmForecast returns the reshaped current conditions and five-day
// forecast for a district. Condition descriptions are localized into the
// requested language; numeric fields are never touched.
func (c *Client) FarmForecast(ctx context.Context, district, state, language string) (models.FarmWeather, error) {
	payload, err := c.fetch(ctx, district, state, forecastDays, false)
	if err != nil {
		return models.FarmWeather{}, err
	}

	report := models.FarmWeather{
		District: payload.Location.Name,
		State:    payload.Location.Region,
		Country:  payload.Location.Country,
		Current: models.WeatherCurrent{
			TempC:      payload.Current.TempC,
			TempF:      payload.Current.TempF,
			IsDay:      payload.Current.IsDay,
			Condition:  payload.Current.Condition.Text,
			FeelslikeC: payload.Current.FeelslikeC,
			FeelslikeF: payload.Current.FeelslikeF,
			PrecipMM:   payload.Current.PrecipMM,
			PrecipIn:   payload.Current.PrecipIn,
			DewpointC:  payload.Current.DewpointC,
			DewpointF:  payload.Current.DewpointF,
			Humidity:   payload.Current.Humidity,
			Cloud:      payload.Current.Cloud,
			VisKM:      payload.Current.VisKM,
			VisMiles:   payload.Current.VisMiles,
			UV:         payload.Current.UV,
		},
	}
	for _, d := range payload.Forecast.Forecastday {
		report.Forecast = append(report.Forecast, models.WeatherForecastDay{
			Date: d.Date,
			Day: models.WeatherDay{
				MaxtempC:          d.Day.MaxtempC,
				MaxtempF:          d.Day.MaxtempF,
				MintempC:          d.Day.MintempC,
				MintempF:          d.Day.MintempF,
				AvgtempC:          d.Day.AvgtempC,
				AvgtempF:          d.Day.AvgtempF,
				Condition:         d.Day.Condition.Text,
				TotalprecipMM:     d.Day.TotalprecipMM,
				TotalprecipIn:     d.Day.TotalprecipIn,
				MaxwindMPH:        d.Day.MaxwindMPH,
				MaxwindKPH:        d.Day.MaxwindKPH,
				AvgHumidity:       d.Day.AvgHumidity,
				DailyWillItRain:   d.Day.DailyWillItRain,
				DailyChanceOfRain: d.Day.DailyChanceOfRain,
				DailyWillItSnow:   d.Day.DailyWillItSnow,
				DailyChanceOfSnow: d.Day.DailyChanceOfSnow,
				UV:                d.Day.UV,
			},
			Astro: d.Astro,
		})
	}

	if c.translator != nil && language != "" && language != "en" {
		report.Current.Condition = c.translator.TranslateText(ctx, report.Current.Condition, language)
		for i := range report.Forecast {
			report.Forecast[i].Day.Condition = c.translator.TranslateText(ctx, report.Forecast[i].Day.Condition, language)
		}
	}
	return report, nil
}

// Alerts returns the active upstream alerts for a district. An empty
// slice means no active alerts.
func (c *Client) Alerts(ctx context.Context, district, state string) ([]models.WeatherAlert, error) {
	payload, err := c.fetch(ctx, district, state, 1, true)
	if err != nil {
		return nil, err
	}
	return payload.Alerts.Alert, nil
}

func (c *Client) fetch(ctx context.Context, district, state string, days int, alerts bool) (*upstreamForecast, error) {
	if district == "" {
		return nil, fmt.Errorf("empty district")
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	location := district
	if state != "" {
		location += "," + state
	}
	q.Set("q", location)
	q.Set("days", fmt.Sprintf("%d", days))
	if alerts {
		q.Set("alerts", "yes")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/forecast.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather api error (status %d): %s", resp.StatusCode, body)
	}

	var payload upstreamForecast
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	return &payload, nil
}
