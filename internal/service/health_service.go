package service

import (
	"context"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/database"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/mqtt"
)

const Version = "1.0.0"

// BrokerStatus is the part of the MQTT bridge the health check needs.
type BrokerStatus interface {
	IsConnected() bool
	Health() mqtt.HealthStatus
}

type HealthService struct {
	db     *database.Database
	cache  *cache.Cache
	broker BrokerStatus
}

// NewHealthService builds the health reporter. db and broker may be nil.
func NewHealthService(db *database.Database, c *cache.Cache, broker BrokerStatus) *HealthService {
	return &HealthService{db: db, cache: c, broker: broker}
}

// Check always reports healthy; the services block carries the detail.
func (s *HealthService) Check(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Services: models.HealthServices{
			Redis:    s.cache.IsConnected(ctx),
			Database: s.db.Health(ctx) == nil,
		},
		CacheStats: s.cache.Stats(ctx),
	}

	if s.broker != nil {
		connected := s.broker.IsConnected()
		resp.Services.MQTT = &connected
	}

	return resp
}

// Ready reports whether the durable store answers, with the pool counters
// and, when a broker is configured, its connection history.
func (s *HealthService) Ready(ctx context.Context) (bool, map[string]interface{}) {
	detail := map[string]interface{}{}
	if s.broker != nil {
		detail["mqtt"] = s.broker.Health()
	}

	if s.db == nil {
		detail["database"] = "disabled"
		return true, detail
	}
	if s.db.Health(ctx) != nil {
		detail["database"] = "unavailable"
		return false, detail
	}

	st := s.db.Stats()
	detail["database"] = "ok"
	detail["open_connections"] = st.OpenConnections
	detail["in_use"] = st.InUse
	detail["idle"] = st.Idle
	return true, detail
}
