package repository

import (
	"context"
	"database/sql"
	"fmt"

	"NetIntelAPI/internal/models"
)

type IMetricRepository interface {
	Record(ctx context.Context, metric *models.NetworkMetric) (*models.NetworkMetric, error)
	List(ctx context.Context, filter models.MetricFilter) ([]models.NetworkMetric, error)
}

type MetricRepository struct {
	db *sql.DB
}

func NewMetricRepository(db *sql.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

const metricColumns = ` id, timestamp, metric_name, metric_value, metric_unit, source, tags, period`

func (r *MetricRepository) Record(ctx context.Context, metric *models.NetworkMetric) (*models.NetworkMetric, error) {
	query := `
		INSERT INTO network_analytics (
			metric_name, metric_value, metric_unit, source, tags, period
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + metricColumns

	tags := metric.Tags
	if tags == nil {
		tags = map[string]interface{}{}
	}
	tagsJSON, err := toJSON(tags)
	if err != nil {
		return nil, err
	}

	period := metric.Period
	if period == "" {
		period = models.PeriodRealtime
	}

	var stored *models.NetworkMetric
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		m, err := scanMetric(tx.QueryRowContext(
			ctx, query,
			metric.MetricName,
			metric.MetricValue,
			metric.MetricUnit,
			metric.Source,
			tagsJSON,
			period,
		))
		if err != nil {
			return err
		}
		stored = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record metric: %w", err)
	}

	return stored, nil
}

func (r *MetricRepository) List(ctx context.Context, filter models.MetricFilter) ([]models.NetworkMetric, error) {
	query := `SELECT` + metricColumns + ` FROM network_analytics WHERE 1=1`
	args := []interface{}{}

	if filter.MetricName != "" {
		args = append(args, filter.MetricName)
		query += fmt.Sprintf(" AND metric_name = $%d", len(args))
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		query += fmt.Sprintf(" AND period = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	metrics := []models.NetworkMetric{}
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, *m)
	}

	return metrics, rows.Err()
}

func scanMetric(s scanner) (*models.NetworkMetric, error) {
	var m models.NetworkMetric
	var tagsJSON []byte

	err := s.Scan(
		&m.ID,
		&m.Timestamp,
		&m.MetricName,
		&m.MetricValue,
		&m.MetricUnit,
		&m.Source,
		&tagsJSON,
		&m.Period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan metric: %w", err)
	}

	m.Tags = decodeMap(tagsJSON)
	return &m, nil
}
