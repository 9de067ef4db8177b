package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/krishi-ai/krishi-go/internal/models"
)

// alertSchedule fires the sweep at 06:00 server time every day.
const alertSchedule = "0 6 * * *"

// LocationSource lists the districts that registered farms cover.
type LocationSource interface {
	AllLocations(ctx context.Context) ([]models.Location, error)
}

// Composer turns a raw alert into a farmer-facing notification body.
type Composer interface {
	NotificationMessage(ctx context.Context, alert models.WeatherAlert, language string) (string, error)
}

// Notifier delivers a push message to every device subscribed to a topic.
type Notifier interface {
	SendToTopic(ctx context.Context, topic, title, body string) error
}

// AlertService sweeps all registered locations for active weather alerts
// and pushes one notification per alerting location to its topic.
type AlertService struct {
	weather   *Client
	locations LocationSource
	composer  Composer
	notifier  Notifier
	language  string
	logger    *slog.Logger
	cron      *cron.Cron
}

func NewAlertService(weather *Client, locations LocationSource, composer Composer, notifier Notifier, language string, logger *slog.Logger) *AlertService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertService{
		weather:   weather,
		locations: locations,
		composer:  composer,
		notifier:  notifier,
		language:  language,
		logger:    logger,
	}
}

// Start schedules the daily sweep. Call Stop to cancel.
func (s *AlertService) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(alertSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("weather alert sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule alert sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("weather alert sweep scheduled", "schedule", alertSchedule)
	return nil
}

// Stop cancels the schedule and waits for a running sweep to finish.
func (s *AlertService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep checks every registered location once. A failure for one location
// is logged and does not stop the sweep; the first error is reported after
// all locations were attempted.
func (s *AlertService) Sweep(ctx context.Context) error {
	locations, err := s.locations.AllLocations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	s.logger.Info("starting weather alert sweep", "locations", len(locations))

	var firstErr error
	for _, loc := range locations {
		if err := s.sweepLocation(ctx, loc); err != nil {
			s.logger.Error("alert check failed", "district", loc.District, "state", loc.State, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *AlertService) sweepLocation(ctx context.Context, loc models.Location) error {
	alerts, err := s.weather.Alerts(ctx, loc.District, loc.State)
	if err != nil {
		return fmt.Errorf("fetch alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	// One notification per sweep per location, for the most recent alert.
	alert := alerts[0]
	body, err := s.composer.NotificationMessage(ctx, alert, s.language)
	if err != nil {
		return fmt.Errorf("compose notification: %w", err)
	}

	title := alert.Event
	if title == "" {
		title = "Weather alert"
	}
	if err := s.notifier.SendToTopic(ctx, loc.FirebaseTopic, title, body); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	s.logger.Info("weather alert pushed", "district", loc.District, "topic", loc.FirebaseTopic, "event", alert.Event)
	return nil
}
