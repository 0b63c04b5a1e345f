package models

import "time"

type NetworkStatus struct {
	Status       string       `json:"status"`
	Stats        NetworkStats `json:"stats"`
	ActiveAlerts int          `json:"active_alerts"`
	LastUpdated  time.Time    `json:"last_updated"`
}

type AlertList struct {
	Alerts []Alert `json:"alerts"`
	Total  int     `json:"total"`
	Active int     `json:"active"`
}

// MetricInput is the body of POST /api/analytics/metrics. MetricValue is a
// pointer so that a missing value can be told apart from zero.
type MetricInput struct {
	MetricName  string                 `json:"metric_name"`
	MetricValue *float64               `json:"metric_value"`
	MetricUnit  *string                `json:"metric_unit"`
	Source      *string                `json:"source"`
	Tags        map[string]interface{} `json:"tags"`
	Period      string                 `json:"period"`
}

// IndicatorInput is the body of POST /api/threats/indicators.
type IndicatorInput struct {
	Type        *string                `json:"type"`
	Value       *string                `json:"value"`
	Description *string                `json:"description"`
	Confidence  string                 `json:"confidence"`
	Category    string                 `json:"category"`
	Source      string                 `json:"source"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type ThreatCheck struct {
	Value     string           `json:"value"`
	Known     bool             `json:"known"`
	Indicator *ThreatIndicator `json:"indicator,omitempty"`
	Source    string           `json:"source"`
	CheckedAt time.Time        `json:"checked_at"`
}

type InferenceBatchItem struct {
	RequestID     int                    `json:"request_id"`
	InferenceType string                 `json:"inference_type"`
	Status        string                 `json:"status"`
	Result        map[string]interface{} `json:"result"`
}

type InferenceBatch struct {
	BatchID          string               `json:"batch_id"`
	TotalRequests    int                  `json:"total_requests"`
	Results          []InferenceBatchItem `json:"results"`
	ProcessingTimeMs int                  `json:"processing_time_ms"`
}

type InferenceModel struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Description    string   `json:"description"`
	SupportedTypes []string `json:"supported_types"`
	Status         string   `json:"status"`
}

// SearchRequest is the body of POST /api/embeddings/search. Either Query or
// Data must be present; Data is described the same way stored records are.
type SearchRequest struct {
	Query         string                 `json:"query"`
	Data          map[string]interface{} `json:"data"`
	Type          string                 `json:"type"`
	Filter        map[string]string      `json:"filter"`
	Limit         int                    `json:"limit"`
	MinSimilarity *float64               `json:"min_similarity"`
}

type SearchResult struct {
	Query   string            `json:"query"`
	Type    string            `json:"type"`
	Results []SimilarityMatch `json:"results"`
	Total   int               `json:"total"`
}

type EmbeddingAnalysis struct {
	Analysis          Analysis          `json:"analysis"`
	TextDescription   string            `json:"text_description"`
	SimilarAnalyses   []SimilarityMatch `json:"similar_analyses"`
	EmbeddingID       int64             `json:"embedding_id"`
	StoredInDatabase  bool              `json:"stored_in_database"`
	AverageSimilarity float64           `json:"average_similarity"`
}

// GuidanceInput describes the analysis guidance is requested for. When
// Traffic is set and RiskScore is nil the analysis is computed first.
type GuidanceInput struct {
	SourceIP        string                 `json:"source_ip"`
	RiskScore       *int                   `json:"risk_score"`
	ThreatsDetected []string               `json:"threats_detected"`
	Recommendations []string               `json:"recommendations"`
	Context         map[string]interface{} `json:"context"`
	Traffic         *TrafficData           `json:"traffic_data"`
}

type GuidanceResponse struct {
	GuidanceRecord
	Stored   bool `json:"stored_in_database"`
	Embedded bool `json:"embedded"`
}

// SimilarGuidanceRequest is the body of POST /api/guidance/similar.
type SimilarGuidanceRequest struct {
	Query           string   `json:"query"`
	SourceIP        string   `json:"source_ip"`
	RiskScore       int      `json:"risk_score"`
	ThreatsDetected []string `json:"threats_detected"`
	Limit           int      `json:"limit"`
	MinSimilarity   *float64 `json:"min_similarity"`
}
