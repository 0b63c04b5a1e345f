package service

import (
	"context"
	"errors"
	"fmt"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/metrics"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/repository"
)

// IAlertService defines the business logic for handling alerts.
type IAlertService interface {
	Raise(ctx context.Context, in models.AlertInput) models.Alert
	List(status string) (*models.AlertList, error)
	UpdateStatus(id int, status string) (*models.Alert, error)
}

// AlertPublisher mirrors alerts to an external broker.
type AlertPublisher interface {
	PublishAlert(alert interface{}) error
}

type AlertService struct {
	monitor   *monitor.Monitor
	events    repository.IEventRepository
	cache     *cache.Cache
	publisher AlertPublisher
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewAlertService wires the alert path. events and publisher may be nil.
func NewAlertService(
	mon *monitor.Monitor,
	events repository.IEventRepository,
	c *cache.Cache,
	publisher AlertPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) *AlertService {
	return &AlertService{
		monitor:   mon,
		events:    events,
		cache:     c,
		publisher: publisher,
		metrics:   m,
		log:       log.With("alerts"),
	}
}

// Raise records the alert in memory, then fires the durable write, the
// security_alerts publish and the broker mirror. Failures after the
// in-memory step are logged and do not affect the returned alert.
func (s *AlertService) Raise(ctx context.Context, in models.AlertInput) models.Alert {
	alert := s.monitor.AddAlert(in)
	s.metrics.AlertRaised(alert.Severity)

	if s.events != nil {
		risk := 50
		if alert.Severity == models.SeverityHigh {
			risk = 80
		}
		event := &models.SecurityEvent{
			EventType:     alert.Type,
			Severity:      alert.Severity,
			SourceIP:      optional(in.SourceIP),
			DestinationIP: optional(in.DestinationIP),
			RiskScore:     risk,
			Metadata: map[string]interface{}{
				"severity":       in.Severity,
				"type":           in.Type,
				"description":    in.Description,
				"source_ip":      in.SourceIP,
				"destination_ip": in.DestinationIP,
			},
			Status: models.StatusActive,
		}
		if _, err := s.events.Create(ctx, event); err != nil {
			s.log.Error("Failed to persist alert %d: %v", alert.ID, err)
		}
	}

	s.cache.PublishAlert(ctx, alert)

	if s.publisher != nil {
		if err := s.publisher.PublishAlert(alert); err != nil {
			s.log.Warn("Failed to mirror alert %d to broker: %v", alert.ID, err)
		}
	}

	if alert.Severity == models.SeverityHigh {
		s.log.Warn("[HIGH ALERT] %s: %s (source %s)", alert.Type, alert.Description, alert.SourceIP)
	}

	return alert
}

func (s *AlertService) List(status string) (*models.AlertList, error) {
	switch status {
	case "", "all", models.StatusActive, models.StatusResolved, models.StatusInvestigating, models.StatusStale:
	default:
		return nil, invalid("status", "Invalid status filter")
	}

	alerts, active := s.monitor.Alerts(status)
	return &models.AlertList{Alerts: alerts, Total: len(alerts), Active: active}, nil
}

func (s *AlertService) UpdateStatus(id int, status string) (*models.Alert, error) {
	alert, err := s.monitor.UpdateStatus(id, status)
	if err != nil {
		if errors.Is(err, monitor.ErrAlertNotFound) {
			return nil, fmt.Errorf("alert %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	s.log.Info("Alert %d set to %s", id, status)
	return &alert, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
