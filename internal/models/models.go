// internal/models/models.go

package models

import (
	"time"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"

	PeriodRealtime = "realtime"
	PeriodHourly   = "hourly"
	PeriodDaily    = "daily"
	PeriodWeekly   = "weekly"
	PeriodMonthly  = "monthly"
)

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

func ValidPeriod(p string) bool {
	switch p {
	case PeriodRealtime, PeriodHourly, PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

func ValidConfidence(c string) bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// SecurityEvent is a row of security_events.
type SecurityEvent struct {
	ID               int64                  `json:"id" db:"id"`
	Timestamp        time.Time              `json:"timestamp" db:"timestamp"`
	EventType        string                 `json:"event_type" db:"event_type"`
	Severity         string                 `json:"severity" db:"severity"`
	SourceIP         *string                `json:"source_ip" db:"source_ip"`
	DestinationIP    *string                `json:"destination_ip" db:"destination_ip"`
	SourcePort       *int                   `json:"source_port" db:"source_port"`
	DestinationPort  *int                   `json:"destination_port" db:"destination_port"`
	Protocol         *string                `json:"protocol" db:"protocol"`
	PayloadSize      *int                   `json:"payload_size" db:"payload_size"`
	UserAgent        *string                `json:"user_agent" db:"user_agent"`
	CountryCode      *string                `json:"country_code" db:"country_code"`
	City             *string                `json:"city" db:"city"`
	Latitude         *float64               `json:"latitude" db:"latitude"`
	Longitude        *float64               `json:"longitude" db:"longitude"`
	RiskScore        int                    `json:"risk_score" db:"risk_score"`
	ThreatIndicators []string               `json:"threat_indicators" db:"threat_indicators"`
	Metadata         map[string]interface{} `json:"metadata" db:"metadata"`
	Status           string                 `json:"status" db:"status"`
}

type EventFilter struct {
	Severity  string
	SourceIP  string
	EventType string
	Status    string
	Limit     int
	Offset    int
}

// NetworkMetric is a row of network_analytics.
type NetworkMetric struct {
	ID          int64                  `json:"id" db:"id"`
	Timestamp   time.Time              `json:"timestamp" db:"timestamp"`
	MetricName  string                 `json:"metric_name" db:"metric_name"`
	MetricValue float64                `json:"metric_value" db:"metric_value"`
	MetricUnit  *string                `json:"metric_unit" db:"metric_unit"`
	Source      *string                `json:"source" db:"source"`
	Tags        map[string]interface{} `json:"tags" db:"tags"`
	Period      string                 `json:"period" db:"period"`
}

type MetricFilter struct {
	MetricName string
	Period     string
	Limit      int
}

// ThreatIndicator is the API shape of an indicator, as kept in memory and in the cache.
type ThreatIndicator struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	Confidence  string    `json:"confidence"`
	Category    string    `json:"category,omitempty"`
	Source      string    `json:"source,omitempty"`
	Active      bool      `json:"active"`
}

// ThreatIntelRecord is a row of threat_intelligence.
type ThreatIntelRecord struct {
	ID              int64                  `json:"id" db:"id"`
	Timestamp       time.Time              `json:"timestamp" db:"timestamp"`
	IndicatorType   string                 `json:"indicator_type" db:"indicator_type"`
	IndicatorValue  string                 `json:"indicator_value" db:"indicator_value"`
	ConfidenceLevel string                 `json:"confidence_level" db:"confidence_level"`
	ThreatCategory  *string                `json:"threat_category" db:"threat_category"`
	Description     *string                `json:"description" db:"description"`
	Source          *string                `json:"source" db:"source"`
	FirstSeen       time.Time              `json:"first_seen" db:"first_seen"`
	LastSeen        time.Time              `json:"last_seen" db:"last_seen"`
	Active          bool                   `json:"active" db:"active"`
	Metadata        map[string]interface{} `json:"metadata" db:"metadata"`
}

type IndicatorFilter struct {
	Type       string
	Search     string
	ActiveOnly bool
	Limit      int
}

// UserSession is a row of user_sessions and the cached session payload.
type UserSession struct {
	ID           int64                  `json:"id,omitempty" db:"id"`
	SessionID    string                 `json:"session_id" db:"session_id"`
	UserID       *string                `json:"user_id" db:"user_id"`
	IPAddress    *string                `json:"ip_address" db:"ip_address"`
	UserAgent    *string                `json:"user_agent" db:"user_agent"`
	LoginTime    time.Time              `json:"login_time" db:"login_time"`
	LastActivity time.Time              `json:"last_activity" db:"last_activity"`
	Status       string                 `json:"status" db:"status"`
	LocationData map[string]interface{} `json:"location_data" db:"location_data"`
	RiskFactors  map[string]interface{} `json:"risk_factors" db:"risk_factors"`
	Payload      map[string]interface{} `json:"payload,omitempty" db:"payload"`
}

type HealthServices struct {
	Redis    bool  `json:"redis"`
	Database bool  `json:"database"`
	MQTT     *bool `json:"mqtt,omitempty"`
}

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Services   HealthServices         `json:"services"`
	CacheStats map[string]interface{} `json:"cache_stats"`
}
