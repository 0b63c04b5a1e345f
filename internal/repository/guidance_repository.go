package repository

import (
	"context"
	"database/sql"
	"fmt"

	"NetIntelAPI/internal/models"

	"github.com/pgvector/pgvector-go"
)

type IGuidanceRepository interface {
	Insert(ctx context.Context, rec *models.GuidanceRecord) error
	Recent(ctx context.Context, limit int, sourceIP string) ([]models.GuidanceRecord, error)
	Similar(ctx context.Context, q models.SimilarityQuery) ([]models.SimilarityMatch, error)
}

type GuidanceRepository struct {
	db *sql.DB
}

func NewGuidanceRepository(db *sql.DB) *GuidanceRepository {
	return &GuidanceRepository{db: db}
}

func (r *GuidanceRepository) Insert(ctx context.Context, rec *models.GuidanceRecord) error {
	query := `
		INSERT INTO guidance_responses (
			request_id, source_ip, risk_score, threats_detected, recommendations,
			guidance, embedding, model_used, response_tokens, processing_time_ms, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	threats := rec.ThreatsDetected
	if threats == nil {
		threats = []string{}
	}
	threatsJSON, err := toJSON(threats)
	if err != nil {
		return err
	}

	recs := rec.Recommendations
	if recs == nil {
		recs = []string{}
	}
	recsJSON, err := toJSON(recs)
	if err != nil {
		return err
	}

	metadataJSON, err := toJSON(rec.Metadata)
	if err != nil {
		return err
	}

	// NULL embedding when the embedder was unavailable.
	var vector interface{}
	if len(rec.Embedding) > 0 {
		vector = pgvector.NewVector(rec.Embedding)
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(
			ctx, query,
			rec.RequestID,
			nullString(rec.SourceIP),
			rec.RiskScore,
			threatsJSON,
			recsJSON,
			rec.Guidance,
			vector,
			rec.ModelUsed,
			rec.ResponseTokens,
			rec.ProcessingTimeMs,
			metadataJSON,
		).Scan(&rec.ID, &rec.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to store guidance: %w", err)
	}
	return nil
}

func (r *GuidanceRepository) Recent(ctx context.Context, limit int, sourceIP string) ([]models.GuidanceRecord, error) {
	query := `
		SELECT id, request_id, COALESCE(source_ip, ''), risk_score, threats_detected,
		       recommendations, guidance, COALESCE(model_used, ''), COALESCE(response_tokens, 0),
		       COALESCE(processing_time_ms, 0), metadata, created_at
		FROM guidance_responses
	`
	args := []interface{}{}

	if sourceIP != "" {
		args = append(args, sourceIP)
		query += " WHERE source_ip = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query guidance history: %w", err)
	}
	defer rows.Close()

	records := []models.GuidanceRecord{}
	for rows.Next() {
		var g models.GuidanceRecord
		var threatsJSON, recsJSON, metadataJSON []byte

		err := rows.Scan(
			&g.ID,
			&g.RequestID,
			&g.SourceIP,
			&g.RiskScore,
			&threatsJSON,
			&recsJSON,
			&g.Guidance,
			&g.ModelUsed,
			&g.ResponseTokens,
			&g.ProcessingTimeMs,
			&metadataJSON,
			&g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guidance: %w", err)
		}

		g.ThreatsDetected = decodeStrings(threatsJSON)
		g.Recommendations = decodeStrings(recsJSON)
		g.Metadata = decodeMap(metadataJSON)
		records = append(records, g)
	}

	return records, rows.Err()
}

func (r *GuidanceRepository) Similar(ctx context.Context, q models.SimilarityQuery) ([]models.SimilarityMatch, error) {
	return searchVectors(ctx, r.db, models.KindGuidance, q)
}
