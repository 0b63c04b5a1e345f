package repository

import (
	"context"
	"database/sql"
	"fmt"

	"NetIntelAPI/internal/models"
)

type IIndicatorRepository interface {
	Add(ctx context.Context, rec *models.ThreatIntelRecord) (*models.ThreatIntelRecord, error)
	FindActive(ctx context.Context, value, indicatorType string) (*models.ThreatIntelRecord, error)
	List(ctx context.Context, filter models.IndicatorFilter) ([]models.ThreatIntelRecord, error)
}

type IndicatorRepository struct {
	db *sql.DB
}

func NewIndicatorRepository(db *sql.DB) *IndicatorRepository {
	return &IndicatorRepository{db: db}
}

const indicatorColumns = `
	id, timestamp, indicator_type, indicator_value, confidence_level,
	threat_category, description, source, first_seen, last_seen, active, metadata`

func (r *IndicatorRepository) Add(ctx context.Context, rec *models.ThreatIntelRecord) (*models.ThreatIntelRecord, error) {
	query := `
		INSERT INTO threat_intelligence (
			indicator_type, indicator_value, confidence_level,
			threat_category, description, source, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING` + indicatorColumns

	metadata := rec.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := toJSON(metadata)
	if err != nil {
		return nil, err
	}

	confidence := rec.ConfidenceLevel
	if confidence == "" {
		confidence = models.ConfidenceMedium
	}

	var stored *models.ThreatIntelRecord
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		got, err := scanIndicator(tx.QueryRowContext(
			ctx, query,
			rec.IndicatorType,
			rec.IndicatorValue,
			confidence,
			rec.ThreatCategory,
			rec.Description,
			rec.Source,
			metadataJSON,
		))
		if err != nil {
			return err
		}
		stored = got
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add threat indicator: %w", err)
	}

	return stored, nil
}

// FindActive returns nil, nil when the value is not a known active indicator.
func (r *IndicatorRepository) FindActive(ctx context.Context, value, indicatorType string) (*models.ThreatIntelRecord, error) {
	query := `SELECT` + indicatorColumns + ` FROM threat_intelligence WHERE indicator_value = $1 AND active = TRUE`
	args := []interface{}{value}

	if indicatorType != "" {
		args = append(args, indicatorType)
		query += " AND indicator_type = $2"
	}
	query += " ORDER BY last_seen DESC LIMIT 1"

	rec, err := scanIndicator(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check indicator: %w", err)
	}

	return rec, nil
}

func (r *IndicatorRepository) List(ctx context.Context, filter models.IndicatorFilter) ([]models.ThreatIntelRecord, error) {
	query := `SELECT` + indicatorColumns + ` FROM threat_intelligence WHERE 1=1`
	args := []interface{}{}

	if filter.ActiveOnly {
		query += " AND active = TRUE"
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND indicator_type = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		query += fmt.Sprintf(" AND indicator_value ILIKE '%%' || $%d || '%%'", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query threat indicators: %w", err)
	}
	defer rows.Close()

	records := []models.ThreatIntelRecord{}
	for rows.Next() {
		rec, err := scanIndicator(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

func scanIndicator(s scanner) (*models.ThreatIntelRecord, error) {
	var rec models.ThreatIntelRecord
	var metadataJSON []byte

	err := s.Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.IndicatorType,
		&rec.IndicatorValue,
		&rec.ConfidenceLevel,
		&rec.ThreatCategory,
		&rec.Description,
		&rec.Source,
		&rec.FirstSeen,
		&rec.LastSeen,
		&rec.Active,
		&metadataJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan threat indicator: %w", err)
	}

	rec.Metadata = decodeMap(metadataJSON)
	return &rec, nil
}
