package service

import (
	"context"
	"fmt"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/repository"
)

const liveEventCount = 10

type IEventService interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.SecurityEvent, error)
	Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	Live(ctx context.Context) []models.MockEvent
}

type EventService struct {
	repo    repository.IEventRepository
	monitor *monitor.Monitor
	cache   *cache.Cache
	log     *logger.Logger
}

func NewEventService(repo repository.IEventRepository, mon *monitor.Monitor, c *cache.Cache, log *logger.Logger) *EventService {
	return &EventService{repo: repo, monitor: mon, cache: c, log: log.With("events")}
}

func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.SecurityEvent, error) {
	if s.repo == nil {
		return []models.SecurityEvent{}, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventService) Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	if event == nil {
		return nil, invalid("body", "No event data provided")
	}
	if event.EventType == "" {
		return nil, missingField("event_type")
	}
	if event.Severity == "" {
		event.Severity = models.SeverityMedium
	}
	if !models.ValidSeverity(event.Severity) {
		return nil, invalid("severity", "Invalid severity: "+event.Severity)
	}
	if event.Status == "" {
		event.Status = models.StatusActive
	}
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.log.Info("Stored %s event (%s)", created.EventType, created.Severity)
	return created, nil
}

// Live serves the cached realtime feed, regenerating it on a miss.
func (s *EventService) Live(ctx context.Context) []models.MockEvent {
	var events []models.MockEvent
	if s.cache.RealtimeEvents(ctx, &events) && len(events) > 0 {
		return events
	}

	events = s.monitor.MockEvents(liveEventCount)
	s.cache.CacheRealtimeEvents(ctx, events)
	return events
}
