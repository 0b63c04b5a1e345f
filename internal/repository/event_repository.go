package repository

import (
	"context"
	"database/sql"
	"fmt"

	"NetIntelAPI/internal/models"
)

// IEventRepository persists security events.
type IEventRepository interface {
	Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.SecurityEvent, error)
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	id, timestamp, event_type, severity, source_ip, destination_ip,
	source_port, destination_port, protocol, payload_size, user_agent,
	country_code, city, latitude, longitude, risk_score,
	threat_indicators, metadata, status`

// Create inserts the event and returns the stored row.
func (r *EventRepository) Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	query := `
		INSERT INTO security_events (
			event_type, severity, source_ip, destination_ip,
			source_port, destination_port, protocol, payload_size,
			user_agent, country_code, city, latitude, longitude,
			risk_score, threat_indicators, metadata, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		RETURNING` + eventColumns

	indicators := event.ThreatIndicators
	if indicators == nil {
		indicators = []string{}
	}
	indicatorsJSON, err := toJSON(indicators)
	if err != nil {
		return nil, err
	}

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := toJSON(metadata)
	if err != nil {
		return nil, err
	}

	severity := event.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	status := event.Status
	if status == "" {
		status = models.StatusActive
	}

	var stored *models.SecurityEvent
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(
			ctx, query,
			event.EventType,
			severity,
			nullIP(event.SourceIP),
			nullIP(event.DestinationIP),
			event.SourcePort,
			event.DestinationPort,
			event.Protocol,
			event.PayloadSize,
			event.UserAgent,
			event.CountryCode,
			event.City,
			event.Latitude,
			event.Longitude,
			event.RiskScore,
			indicatorsJSON,
			metadataJSON,
			status,
		)
		e, err := scanEvent(row)
		if err != nil {
			return err
		}
		stored = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create security event: %w", err)
	}

	return stored, nil
}

// List returns events newest first. Empty filter fields are ignored.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.SecurityEvent, error) {
	query := `SELECT` + eventColumns + ` FROM security_events WHERE 1=1`
	args := []interface{}{}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	add("severity", filter.Severity)
	add("source_ip", filter.SourceIP)
	add("event_type", filter.EventType)
	add("status", filter.Status)

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query security events: %w", err)
	}
	defer rows.Close()

	events := []models.SecurityEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}

	return events, rows.Err()
}

func scanEvent(s scanner) (*models.SecurityEvent, error) {
	var e models.SecurityEvent
	var indicatorsJSON, metadataJSON []byte

	err := s.Scan(
		&e.ID,
		&e.Timestamp,
		&e.EventType,
		&e.Severity,
		&e.SourceIP,
		&e.DestinationIP,
		&e.SourcePort,
		&e.DestinationPort,
		&e.Protocol,
		&e.PayloadSize,
		&e.UserAgent,
		&e.CountryCode,
		&e.City,
		&e.Latitude,
		&e.Longitude,
		&e.RiskScore,
		&indicatorsJSON,
		&metadataJSON,
		&e.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan security event: %w", err)
	}

	e.ThreatIndicators = decodeStrings(indicatorsJSON)
	e.Metadata = decodeMap(metadataJSON)
	return &e, nil
}
