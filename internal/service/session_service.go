package service

import (
	"context"
	"fmt"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/repository"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, data map[string]interface{}) (*models.UserSession, error)
	Get(ctx context.Context, id string) (*models.UserSession, error)
	Delete(ctx context.Context, id string) bool
}

type SessionService struct {
	repo  repository.ISessionRepository
	cache *cache.Cache
	log   *logger.Logger
}

func NewSessionService(repo repository.ISessionRepository, c *cache.Cache, log *logger.Logger) *SessionService {
	return &SessionService{repo: repo, cache: c, log: log.With("sessions")}
}

func (s *SessionService) Create(ctx context.Context, data map[string]interface{}) (*models.UserSession, error) {
	if len(data) == 0 {
		return nil, invalid("body", "No session data provided")
	}
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}

	session := &models.UserSession{
		SessionID:    uuid.NewString(),
		UserID:       stringField(data, "user_id"),
		IPAddress:    stringField(data, "ip_address"),
		UserAgent:    stringField(data, "user_agent"),
		LocationData: mapField(data, "location_data"),
		RiskFactors:  mapField(data, "risk_factors"),
		Payload:      data,
	}

	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.cache.CacheSession(ctx, created.SessionID, created)
	s.log.Debug("Created session %s", created.SessionID)
	return created, nil
}

// Get serves the cached copy first. A durable hit refreshes last_activity
// and is cached again.
func (s *SessionService) Get(ctx context.Context, id string) (*models.UserSession, error) {
	var cached models.UserSession
	if s.cache.Session(ctx, id, &cached) {
		return &cached, nil
	}

	if s.repo != nil {
		session, err := s.repo.GetBySessionID(ctx, id)
		if err != nil {
			return nil, err
		}
		if session != nil {
			if _, err := s.repo.TouchActivity(ctx, id); err != nil {
				s.log.Warn("Failed to touch session %s: %v", id, err)
			}
			s.cache.CacheSession(ctx, id, session)
			return session, nil
		}
	}

	return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
}

// Delete evicts the cached copy only; the durable row is kept for audit.
func (s *SessionService) Delete(ctx context.Context, id string) bool {
	return s.cache.DeleteSession(ctx, id)
}

func stringField(data map[string]interface{}, key string) *string {
	v, ok := data[key].(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func mapField(data map[string]interface{}, key string) map[string]interface{} {
	v, _ := data[key].(map[string]interface{})
	return v
}
