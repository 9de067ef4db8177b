package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishi-ai/krishi-go/internal/models"
)

const forecastBody = `{
	"location":{"name":"Pune","region":"Maharashtra","country":"India"},
	"current":{"temp_c":31.5,"temp_f":88.7,"is_day":1,
		"condition":{"text":"Partly cloudy"},
		"feelslike_c":34.0,"humidity":62,"cloud":40,"uv":7.0},
	"forecast":{"forecastday":[
		{"date":"2026-08-30","day":{"maxtemp_c":33.1,"mintemp_c":24.2,
			"condition":{"text":"Patchy rain"},"daily_will_it_rain":1,
			"daily_chance_of_rain":84},
		 "astro":{"sunrise":"06:19 AM","sunset":"06:48 PM"}},
		{"date":"2026-08-31","day":{"maxtemp_c":32.0,"mintemp_c":23.8,
			"condition":{"text":"Sunny"}},
		 "astro":{"sunrise":"06:19 AM","sunset":"06:47 PM"}}
	]},
	"alerts":{"alert":[]}
}`

func TestFarmForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "Pune,Maharashtra", q.Get("q"))
		assert.Equal(t, "5", q.Get("days"))
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := New("test-key", nil, nil)
	c.SetBaseURL(srv.URL)

	report, err := c.FarmForecast(context.Background(), "Pune", "Maharashtra", "")
	require.NoError(t, err)
	assert.Equal(t, "Pune", report.District)
	assert.Equal(t, "Maharashtra", report.State)
	assert.Equal(t, "India", report.Country)
	assert.InDelta(t, 31.5, report.Current.TempC, 1e-9)
	assert.Equal(t, "Partly cloudy", report.Current.Condition)

	require.Len(t, report.Forecast, 2)
	assert.Equal(t, "2026-08-30", report.Forecast[0].Date)
	assert.Equal(t, "Patchy rain", report.Forecast[0].Day.Condition)
	assert.Equal(t, 84, report.Forecast[0].Day.DailyChanceOfRain)
	assert.Equal(t, "06:19 AM", report.Forecast[0].Astro.Sunrise)
}

func TestFarmForecastEmptyDistrict(t *testing.T) {
	c := New("key", nil, nil)
	_, err := c.FarmForecast(context.Background(), "", "Maharashtra", "")
	assert.Error(t, err)
}

func TestAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.URL.Query().Get("alerts"))
		_, _ = w.Write([]byte(`{"alerts":{"alert":[
			{"headline":"Orange alert for heavy rain","event":"Heavy Rain",
			 "severity":"Moderate","desc":"150mm expected in 24h"}]}}`))
	}))
	defer srv.Close()

	c := New("key", nil, nil)
	c.SetBaseURL(srv.URL)

	alerts, err := c.Alerts(context.Background(), "Pune", "Maharashtra")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Heavy Rain", alerts[0].Event)
	assert.Equal(t, "Moderate", alerts[0].Severity)
}

type fixedLocations struct {
	locations []models.Location
	err       error
}

func (f *fixedLocations) AllLocations(_ context.Context) ([]models.Location, error) {
	return f.locations, f.err
}

type fixedComposer struct {
	body string
	err  error
}

func (f *fixedComposer) NotificationMessage(_ context.Context, _ models.WeatherAlert, _ string) (string, error) {
	return f.body, f.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	sends []string
	err   error
}

func (r *recordingNotifier) SendToTopic(_ context.Context, topic, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, fmt.Sprintf("%s|%s|%s", topic, title, body))
	return r.err
}

func alertServer(t *testing.T, alertsByDistrict map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		district := r.URL.Query().Get("q")
		body, ok := alertsByDistrict[district]
		if !ok {
			body = `{"alerts":{"alert":[]}}`
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestSweepPushesOnlyAlertingLocations(t *testing.T) {
	srv := alertServer(t, map[string]string{
		"Pune,Maharashtra": `{"alerts":{"alert":[
			{"headline":"h","event":"Flood Warning","severity":"Severe","desc":"d"}]}}`,
	})
	defer srv.Close()

	c := New("key", nil, nil)
	c.SetBaseURL(srv.URL)

	notifier := &recordingNotifier{}
	svc := NewAlertService(c,
		&fixedLocations{locations: []models.Location{
			{District: "Pune", State: "Maharashtra", FirebaseTopic: "weather_alerts_pune_maharashtra"},
			{District: "Nashik", State: "Maharashtra", FirebaseTopic: "weather_alerts_nashik_maharashtra"},
		}},
		&fixedComposer{body: "Flood warning for your area. Move harvested produce to high ground."},
		notifier, "en", nil)

	require.NoError(t, svc.Sweep(context.Background()))
	require.Len(t, notifier.sends, 1)
	assert.Equal(t,
		"weather_alerts_pune_maharashtra|Flood Warning|Flood warning for your area. Move harvested produce to high ground.",
		notifier.sends[0])
}

func TestSweepContinuesPastFailures(t *testing.T) {
	srv := alertServer(t, map[string]string{
		"Pune,Maharashtra":   `not json`,
		"Nashik,Maharashtra": `{"alerts":{"alert":[{"event":"Heat Wave","severity":"Severe"}]}}`,
	})
	defer srv.Close()

	c := New("key", nil, nil)
	c.SetBaseURL(srv.URL)

	notifier := &recordingNotifier{}
	svc := NewAlertService(c,
		&fixedLocations{locations: []models.Location{
			{District: "Pune", State: "Maharashtra", FirebaseTopic: "t1"},
			{District: "Nashik", State: "Maharashtra", FirebaseTopic: "t2"},
		}},
		&fixedComposer{body: "stay indoors"},
		notifier, "en", nil)

	err := svc.Sweep(context.Background())
	require.Error(t, err)
	// The second location was still processed.
	require.Len(t, notifier.sends, 1)
	assert.Contains(t, notifier.sends[0], "t2|Heat Wave")
}

func TestSweepLocationListFailure(t *testing.T) {
	svc := NewAlertService(New("key", nil, nil),
		&fixedLocations{err: fmt.Errorf("db down")},
		&fixedComposer{}, &recordingNotifier{}, "en", nil)

	err := svc.Sweep(context.Background())
	assert.Error(t, err)
}

type upperTranslator struct{}

func (upperTranslator) TranslateText(_ context.Context, text, _ string) string {
	return "[hi] " + text
}

func TestFarmForecastTranslatesConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := New("key", upperTranslator{}, nil)
	c.SetBaseURL(srv.URL)

	report, err := c.FarmForecast(context.Background(), "Pune", "Maharashtra", "hi")
	require.NoError(t, err)
	assert.Equal(t, "[hi] Partly cloudy", report.Current.Condition)
	assert.Equal(t, "[hi] Patchy rain", report.Forecast[0].Day.Condition)
	// Numeric fields are untouched.
	assert.InDelta(t, 31.5, report.Current.TempC, 1e-9)

	// English requests skip the translator.
	report, err = c.FarmForecast(context.Background(), "Pune", "Maharashtra", "en")
	require.NoError(t, err)
	assert.Equal(t, "Partly cloudy", report.Current.Condition)
}
