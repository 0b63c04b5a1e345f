package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"NetIntelAPI/internal/models"
)

type ISessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) (*models.UserSession, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error)
	TouchActivity(ctx context.Context, sessionID string) (bool, error)
}

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, session_id, user_id, ip_address, user_agent, login_time,
	last_activity, status, location_data, risk_factors, payload`

func (r *SessionRepository) Create(ctx context.Context, session *models.UserSession) (*models.UserSession, error) {
	query := `
		INSERT INTO user_sessions (
			session_id, user_id, ip_address, user_agent,
			location_data, risk_factors, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING` + sessionColumns

	location := session.LocationData
	if location == nil {
		location = map[string]interface{}{}
	}
	locationJSON, err := toJSON(location)
	if err != nil {
		return nil, err
	}

	risk := session.RiskFactors
	if risk == nil {
		risk = map[string]interface{}{}
	}
	riskJSON, err := toJSON(risk)
	if err != nil {
		return nil, err
	}

	payload := session.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payloadJSON, err := toJSON(payload)
	if err != nil {
		return nil, err
	}

	var stored *models.UserSession
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		s, err := scanSession(tx.QueryRowContext(
			ctx, query,
			session.SessionID,
			session.UserID,
			nullIP(session.IPAddress),
			session.UserAgent,
			locationJSON,
			riskJSON,
			payloadJSON,
		))
		if err != nil {
			return err
		}
		stored = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return stored, nil
}

// GetBySessionID returns nil, nil when the session does not exist.
func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	query := `SELECT` + sessionColumns + ` FROM user_sessions WHERE session_id = $1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

func (r *SessionRepository) TouchActivity(ctx context.Context, sessionID string) (bool, error) {
	query := `UPDATE user_sessions SET last_activity = CURRENT_TIMESTAMP WHERE session_id = $1`

	var affected int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, sessionID)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to update session activity: %w", err)
	}

	return affected > 0, nil
}

func scanSession(s scanner) (*models.UserSession, error) {
	var us models.UserSession
	var locationJSON, riskJSON, payloadJSON []byte

	err := s.Scan(
		&us.ID,
		&us.SessionID,
		&us.UserID,
		&us.IPAddress,
		&us.UserAgent,
		&us.LoginTime,
		&us.LastActivity,
		&us.Status,
		&locationJSON,
		&riskJSON,
		&payloadJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	us.LocationData = decodeMap(locationJSON)
	us.RiskFactors = decodeMap(riskJSON)
	us.Payload = decodeMap(payloadJSON)
	return &us, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
