package service

import (
	"context"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/embedding"
	"NetIntelAPI/internal/guidance"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/repository"

	"github.com/google/uuid"
)

// Advisor produces free-text remediation advice. *guidance.Client satisfies it.
type Advisor interface {
	Enabled() bool
	Model() string
	Generate(ctx context.Context, req guidance.Request) (*guidance.Result, error)
}

type IGuidanceService interface {
	Generate(ctx context.Context, in models.GuidanceInput) (*models.GuidanceResponse, error)
	Similar(ctx context.Context, req models.SimilarGuidanceRequest) ([]models.SimilarityMatch, error)
	History(ctx context.Context, limit int, sourceIP string) ([]models.GuidanceRecord, error)
}

type GuidanceService struct {
	advisor       Advisor
	embedder      Embedder
	repo          repository.IGuidanceRepository
	monitor       *monitor.Monitor
	cache         *cache.Cache
	minSimilarity float64
	log           *logger.Logger
	now           func() time.Time
}

func NewGuidanceService(
	advisor Advisor,
	embedder Embedder,
	repo repository.IGuidanceRepository,
	mon *monitor.Monitor,
	c *cache.Cache,
	minSimilarity float64,
	log *logger.Logger,
) *GuidanceService {
	return &GuidanceService{
		advisor:       advisor,
		embedder:      embedder,
		repo:          repo,
		monitor:       mon,
		cache:         c,
		minSimilarity: minSimilarity,
		log:           log.With("guidance"),
		now:           time.Now,
	}
}

func (s *GuidanceService) embedderReady() bool {
	return s.embedder != nil && s.embedder.Enabled()
}

// Generate asks the advisor about one analysis. The answer is returned even
// when embedding or storing it fails.
func (s *GuidanceService) Generate(ctx context.Context, in models.GuidanceInput) (*models.GuidanceResponse, error) {
	if in.RiskScore == nil && in.Traffic == nil {
		return nil, invalid("risk_score", "Missing required field: risk_score or traffic_data")
	}
	if s.advisor == nil || !s.advisor.Enabled() {
		return nil, ErrAdvisorUnavailable
	}

	if in.RiskScore == nil {
		analysis := s.monitor.Score(ctx, in.Traffic, s.cache)
		in.RiskScore = &analysis.RiskScore
		if len(in.ThreatsDetected) == 0 {
			in.ThreatsDetected = analysis.ThreatsDetected
		}
		if len(in.Recommendations) == 0 {
			in.Recommendations = analysis.Recommendations
		}
		if in.SourceIP == "" {
			in.SourceIP = in.Traffic.SourceIP
		}
	}

	answer, err := s.advisor.Generate(ctx, guidance.Request{
		SourceIP:        in.SourceIP,
		RiskScore:       *in.RiskScore,
		ThreatsDetected: in.ThreatsDetected,
		Recommendations: in.Recommendations,
		Context:         in.Context,
	})
	if err != nil {
		return nil, err
	}

	rec := models.GuidanceRecord{
		RequestID:        uuid.NewString(),
		SourceIP:         valueOrUnknown(in.SourceIP),
		RiskScore:        *in.RiskScore,
		ThreatsDetected:  nonNil(in.ThreatsDetected),
		Recommendations:  nonNil(in.Recommendations),
		Guidance:         answer.Text,
		ModelUsed:        s.advisor.Model(),
		ResponseTokens:   answer.Tokens,
		ProcessingTimeMs: answer.Elapsed.Milliseconds(),
		Metadata: map[string]interface{}{
			"generated_at": s.now().UTC().Format(time.RFC3339),
		},
		CreatedAt: s.now(),
	}
	if in.Context != nil {
		rec.Metadata["context"] = in.Context
	}

	resp := &models.GuidanceResponse{}

	if s.embedderReady() {
		text := embedding.DescribeGuidance(&rec)
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			s.log.Warn("Failed to embed guidance %s: %v", rec.RequestID, err)
		} else {
			rec.Embedding = vector
			rec.Metadata["embedding_model"] = s.embedder.Model()
			rec.Metadata["embedding_dimensions"] = len(vector)
			rec.Metadata["text_description"] = text
			resp.Embedded = true
		}
	}

	if s.repo != nil {
		if err := s.repo.Insert(ctx, &rec); err != nil {
			s.log.Error("Failed to store guidance %s: %v", rec.RequestID, err)
		} else {
			resp.Stored = true
		}
	}

	resp.GuidanceRecord = rec
	return resp, nil
}

func (s *GuidanceService) Similar(ctx context.Context, req models.SimilarGuidanceRequest) ([]models.SimilarityMatch, error) {
	query := req.Query
	if query == "" {
		if req.RiskScore == 0 && len(req.ThreatsDetected) == 0 && req.SourceIP == "" {
			return nil, invalid("query", "Missing required field: query")
		}
		query = embedding.DescribeGuidance(&models.GuidanceRecord{
			SourceIP:        req.SourceIP,
			RiskScore:       req.RiskScore,
			ThreatsDetected: req.ThreatsDetected,
		})
	}
	if !s.embedderReady() {
		return nil, ErrEmbedderUnavailable
	}
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	minSim := s.minSimilarity
	if req.MinSimilarity != nil {
		minSim = *req.MinSimilarity
	}

	q := models.SimilarityQuery{Vector: vector, Limit: limit, MinSimilarity: minSim}
	if req.SourceIP != "" && req.Query != "" {
		q.Filter = map[string]string{"source_ip": req.SourceIP}
	}
	return s.repo.Similar(ctx, q)
}

func (s *GuidanceService) History(ctx context.Context, limit int, sourceIP string) ([]models.GuidanceRecord, error) {
	if s.repo == nil {
		return []models.GuidanceRecord{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Recent(ctx, limit, sourceIP)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
