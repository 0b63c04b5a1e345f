package service

import (
	"context"
	"fmt"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/repository"
)

type IMetricService interface {
	List(ctx context.Context, filter models.MetricFilter) ([]models.NetworkMetric, error)
	Record(ctx context.Context, in models.MetricInput) (*models.NetworkMetric, error)
}

type MetricService struct {
	repo repository.IMetricRepository
	log  *logger.Logger
}

func NewMetricService(repo repository.IMetricRepository, log *logger.Logger) *MetricService {
	return &MetricService{repo: repo, log: log.With("metrics")}
}

// List returns an empty slice when no store is configured.
func (s *MetricService) List(ctx context.Context, filter models.MetricFilter) ([]models.NetworkMetric, error) {
	if s.repo == nil {
		return []models.NetworkMetric{}, nil
	}
	if filter.Period == "" {
		filter.Period = models.PeriodRealtime
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	metrics, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	return metrics, nil
}

func (s *MetricService) Record(ctx context.Context, in models.MetricInput) (*models.NetworkMetric, error) {
	if in.MetricName == "" {
		return nil, missingField("metric_name")
	}
	if in.MetricValue == nil {
		return nil, missingField("metric_value")
	}
	if in.Period == "" {
		in.Period = models.PeriodRealtime
	}
	if !models.ValidPeriod(in.Period) {
		return nil, invalid("period", "Invalid period: "+in.Period)
	}
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}

	metric, err := s.repo.Record(ctx, &models.NetworkMetric{
		MetricName:  in.MetricName,
		MetricValue: *in.MetricValue,
		MetricUnit:  in.MetricUnit,
		Source:      in.Source,
		Tags:        in.Tags,
		Period:      in.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record metric: %w", err)
	}
	return metric, nil
}

// recordInternal stores a metric produced by the API itself. It reports
// whether the row was written; failures are only logged.
func (s *MetricService) recordInternal(ctx context.Context, name string, value float64, unit, source string, tags map[string]interface{}) bool {
	if s == nil || s.repo == nil {
		return false
	}

	_, err := s.repo.Record(ctx, &models.NetworkMetric{
		MetricName:  name,
		MetricValue: value,
		MetricUnit:  &unit,
		Source:      &source,
		Tags:        tags,
		Period:      models.PeriodRealtime,
	})
	if err != nil {
		s.log.Error("Failed to record %s: %v", name, err)
		return false
	}
	return true
}
