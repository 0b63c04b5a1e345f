package models

import "time"

// Alert statuses
const (
	StatusActive        = "active"
	StatusResolved      = "resolved"
	StatusInvestigating = "investigating"
	StatusStale         = "stale"
)

// Alert lives only in process memory; ids start at 1 and never repeat.
type Alert struct {
	ID            int       `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Severity      string    `json:"severity"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	SourceIP      string    `json:"source_ip"`
	DestinationIP string    `json:"destination_ip"`
	Status        string    `json:"status"`
}

type AlertInput struct {
	Severity      string `json:"severity"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	SourceIP      string `json:"source_ip"`
	DestinationIP string `json:"destination_ip"`
}

// TrafficData is a client supplied traffic sample. Missing numbers are zero.
type TrafficData struct {
	SourceIP           string        `json:"source_ip,omitempty"`
	DestinationIP      string        `json:"destination_ip,omitempty"`
	ConnectionCount    int           `json:"connection_count,omitempty"`
	FailedAuthAttempts int           `json:"failed_auth_attempts,omitempty"`
	UnusualPorts       []interface{} `json:"unusual_ports,omitempty"`
	Protocol           string        `json:"protocol,omitempty"`
	SourcePort         *int          `json:"source_port,omitempty"`
	DestinationPort    *int          `json:"destination_port,omitempty"`
	CountryCode        string        `json:"country_code,omitempty"`
	City               string        `json:"city,omitempty"`
}

type Analysis struct {
	Timestamp       time.Time `json:"timestamp"`
	RiskScore       int       `json:"risk_score"`
	ThreatsDetected []string  `json:"threats_detected"`
	Recommendations []string  `json:"recommendations"`
}

type AnalysisResult struct {
	Analysis
	AnalysisID       string `json:"analysis_id"`
	StoredInDatabase bool   `json:"stored_in_database"`
}

type AnalysisHistoryEntry struct {
	Timestamp            time.Time   `json:"timestamp"`
	RiskScore            float64     `json:"risk_score"`
	SourceIP             string      `json:"source_ip"`
	ConnectionCount      interface{} `json:"connection_count"`
	FailedAuthAttempts   interface{} `json:"failed_auth_attempts"`
	ThreatsDetectedCount interface{} `json:"threats_detected_count"`
	RecommendationsCount interface{} `json:"recommendations_count"`
}

type NetworkStats struct {
	TotalConnections      int       `json:"total_connections"`
	SuspiciousConnections int       `json:"suspicious_connections"`
	BlockedAttempts       int       `json:"blocked_attempts"`
	LastUpdated           time.Time `json:"last_updated"`
}

// MockEvent is a generated event for the live feed; it is never stored.
type MockEvent struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	SourceIP    string    `json:"source_ip"`
	Severity    string    `json:"severity"`
	RiskScore   int       `json:"risk_score"`
	Description string    `json:"description"`
}
