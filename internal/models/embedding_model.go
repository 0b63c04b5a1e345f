package models

import "time"

// Embedding kinds, one table each.
const (
	KindTraffic  = "traffic"
	KindEvent    = "event"
	KindMetric   = "metric"
	KindGuidance = "guidance"
)

func ValidEmbeddingKind(k string) bool {
	switch k {
	case KindTraffic, KindEvent, KindMetric:
		return true
	}
	return false
}

type TrafficEmbedding struct {
	ID                  int64                  `json:"id"`
	AnalysisType        string                 `json:"analysis_type"`
	SourceData          map[string]interface{} `json:"source_data"`
	TextDescription     string                 `json:"text_description"`
	Embedding           []float32              `json:"-"`
	RiskScore           int                    `json:"risk_score"`
	SimilarityThreshold float64                `json:"similarity_threshold"`
	Metadata            map[string]interface{} `json:"metadata"`
	CreatedAt           time.Time              `json:"created_at"`
}

type EventEmbedding struct {
	ID              int64                  `json:"id"`
	EventType       string                 `json:"event_type"`
	Severity        string                 `json:"severity"`
	SourceIP        *string                `json:"source_ip"`
	RiskScore       int                    `json:"risk_score"`
	TextDescription string                 `json:"text_description"`
	Embedding       []float32              `json:"-"`
	Metadata        map[string]interface{} `json:"metadata"`
	CreatedAt       time.Time              `json:"created_at"`
}

type MetricEmbedding struct {
	ID              int64                  `json:"id"`
	MetricName      string                 `json:"metric_name"`
	MetricValue     float64                `json:"metric_value"`
	Source          *string                `json:"source"`
	TextDescription string                 `json:"text_description"`
	Embedding       []float32              `json:"-"`
	Metadata        map[string]interface{} `json:"metadata"`
	CreatedAt       time.Time              `json:"created_at"`
}

// GuidanceRecord is a stored LLM answer. Embedding is nil when the embedder was unavailable.
type GuidanceRecord struct {
	ID               int64                  `json:"id"`
	RequestID        string                 `json:"request_id"`
	SourceIP         string                 `json:"source_ip"`
	RiskScore        int                    `json:"risk_score"`
	ThreatsDetected  []string               `json:"threats_detected"`
	Recommendations  []string               `json:"recommendations"`
	Guidance         string                 `json:"guidance"`
	Embedding        []float32              `json:"-"`
	ModelUsed        string                 `json:"model_used"`
	ResponseTokens   int                    `json:"response_tokens"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	Metadata         map[string]interface{} `json:"metadata"`
	CreatedAt        time.Time              `json:"created_at"`
}

// SimilarityQuery drives a nearest-neighbour lookup. Filter keys are column names.
type SimilarityQuery struct {
	Vector        []float32
	Filter        map[string]string
	Limit         int
	MinSimilarity float64
}

type SimilarityMatch struct {
	ID              int64                  `json:"id"`
	Kind            string                 `json:"kind"`
	TextDescription string                 `json:"text_description"`
	RiskScore       int                    `json:"risk_score"`
	Similarity      float64                `json:"similarity"`
	Attributes      map[string]interface{} `json:"attributes,omitempty"`
	Metadata        map[string]interface{} `json:"metadata"`
	CreatedAt       time.Time              `json:"created_at"`
}

type EmbeddingTableStats struct {
	Count        int64   `json:"count"`
	AvgRiskScore float64 `json:"avg_risk_score"`
}
