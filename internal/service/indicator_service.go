package service

import (
	"context"
	"fmt"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/repository"
)

type IIndicatorService interface {
	List(ctx context.Context) []models.ThreatIndicator
	Add(ctx context.Context, in models.IndicatorInput) (*models.ThreatIndicator, error)
	Check(ctx context.Context, value string) (*models.ThreatCheck, error)
}

type IndicatorService struct {
	monitor *monitor.Monitor
	repo    repository.IIndicatorRepository
	cache   *cache.Cache
	log     *logger.Logger
	now     func() time.Time
}

func NewIndicatorService(mon *monitor.Monitor, repo repository.IIndicatorRepository, c *cache.Cache, log *logger.Logger) *IndicatorService {
	return &IndicatorService{monitor: mon, repo: repo, cache: c, log: log.With("indicators"), now: time.Now}
}

// List prefers the cached list. An empty cached list counts as a miss.
func (s *IndicatorService) List(ctx context.Context) []models.ThreatIndicator {
	var cached []models.ThreatIndicator
	if s.cache.Indicators(ctx, &cached) && len(cached) > 0 {
		return cached
	}

	indicators := s.monitor.Indicators()
	s.cache.CacheIndicators(ctx, indicators)
	return indicators
}

func (s *IndicatorService) Add(ctx context.Context, in models.IndicatorInput) (*models.ThreatIndicator, error) {
	if in.Type == nil {
		return nil, missingField("type")
	}
	if in.Value == nil {
		return nil, missingField("value")
	}
	if in.Description == nil {
		return nil, missingField("description")
	}
	if in.Confidence != "" && !models.ValidConfidence(in.Confidence) {
		return nil, invalid("confidence", "Invalid confidence: "+in.Confidence)
	}

	indicator := s.monitor.AddIndicator(models.ThreatIndicator{
		Type:        *in.Type,
		Value:       *in.Value,
		Description: *in.Description,
		Confidence:  in.Confidence,
		Category:    in.Category,
		Source:      in.Source,
	})

	s.persist(ctx, indicator, in.Metadata)

	s.cache.CacheIndicators(ctx, s.monitor.Indicators())
	s.cache.MarkKnownThreat(ctx, indicator.Value)
	s.cache.CacheThreatCheck(ctx, indicator.Value, s.checkResult(indicator.Value, &indicator, "memory"))

	s.log.Info("Added %s indicator %s (%s)", indicator.Type, indicator.Value, indicator.Confidence)
	return &indicator, nil
}

func (s *IndicatorService) persist(ctx context.Context, ind models.ThreatIndicator, metadata map[string]interface{}) {
	if s.repo == nil {
		return
	}

	rec := &models.ThreatIntelRecord{
		IndicatorType:   ind.Type,
		IndicatorValue:  ind.Value,
		ConfidenceLevel: ind.Confidence,
		ThreatCategory:  optional(ind.Category),
		Description:     optional(ind.Description),
		Source:          optional(ind.Source),
		Active:          true,
		Metadata:        metadata,
	}
	if _, err := s.repo.Add(ctx, rec); err != nil {
		s.log.Error("Failed to persist indicator %s: %v", ind.Value, err)
	}
}

// Check resolves a value through the cache, the in-memory list and finally
// the durable store. A value found nowhere yields ErrNotFound.
func (s *IndicatorService) Check(ctx context.Context, value string) (*models.ThreatCheck, error) {
	if value == "" {
		return nil, missingField("value")
	}

	var cached models.ThreatCheck
	if s.cache.ThreatCheck(ctx, value, &cached) && cached.Known {
		cached.Source = "cache"
		return &cached, nil
	}

	for _, ind := range s.monitor.Indicators() {
		if ind.Value == value && ind.Active {
			ind := ind
			check := s.checkResult(value, &ind, "memory")
			s.cache.CacheThreatCheck(ctx, value, check)
			return check, nil
		}
	}

	if s.repo != nil {
		rec, err := s.repo.FindActive(ctx, value, "")
		if err != nil {
			return nil, fmt.Errorf("failed to look up indicator: %w", err)
		}
		if rec != nil {
			check := s.checkResult(value, recordToIndicator(rec), "database")
			s.cache.CacheThreatCheck(ctx, value, check)
			s.cache.MarkKnownThreat(ctx, value)
			return check, nil
		}
	}

	return nil, fmt.Errorf("indicator %q: %w", value, ErrNotFound)
}

func (s *IndicatorService) checkResult(value string, ind *models.ThreatIndicator, source string) *models.ThreatCheck {
	return &models.ThreatCheck{
		Value:     value,
		Known:     true,
		Indicator: ind,
		Source:    source,
		CheckedAt: s.now(),
	}
}

func recordToIndicator(rec *models.ThreatIntelRecord) *models.ThreatIndicator {
	ind := &models.ThreatIndicator{
		ID:         int(rec.ID),
		Timestamp:  rec.Timestamp,
		Type:       rec.IndicatorType,
		Value:      rec.IndicatorValue,
		Confidence: rec.ConfidenceLevel,
		Active:     rec.Active,
	}
	if rec.Description != nil {
		ind.Description = *rec.Description
	}
	if rec.ThreatCategory != nil {
		ind.Category = *rec.ThreatCategory
	}
	if rec.Source != nil {
		ind.Source = *rec.Source
	}
	return ind
}
