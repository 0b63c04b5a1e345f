package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"NetIntelAPI/internal/models"

	"github.com/pgvector/pgvector-go"
)

type IEmbeddingRepository interface {
	InsertTraffic(ctx context.Context, rec *models.TrafficEmbedding) error
	InsertEvent(ctx context.Context, rec *models.EventEmbedding) error
	InsertMetric(ctx context.Context, rec *models.MetricEmbedding) error
	Search(ctx context.Context, kind string, q models.SimilarityQuery) ([]models.SimilarityMatch, error)
	Stats(ctx context.Context) (map[string]models.EmbeddingTableStats, error)
}

type EmbeddingRepository struct {
	db *sql.DB
}

func NewEmbeddingRepository(db *sql.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

// vectorTable describes one table searchable by cosine distance.
type vectorTable struct {
	name     string
	textCol  string
	riskExpr string
	attrs    []string
	// filters lists the columns a caller may filter on by equality.
	filters map[string]bool
}

var vectorTables = map[string]vectorTable{
	models.KindTraffic: {
		name:     "traffic_analysis_embeddings",
		textCol:  "text_description",
		riskExpr: "risk_score",
		attrs:    []string{"analysis_type"},
		filters:  map[string]bool{"analysis_type": true},
	},
	models.KindEvent: {
		name:     "security_event_embeddings",
		textCol:  "text_description",
		riskExpr: "risk_score",
		attrs:    []string{"event_type", "severity", "source_ip"},
		filters:  map[string]bool{"event_type": true, "severity": true, "source_ip": true},
	},
	models.KindMetric: {
		name:     "network_metric_embeddings",
		textCol:  "text_description",
		riskExpr: "0",
		attrs:    []string{"metric_name", "metric_value", "source"},
		filters:  map[string]bool{"metric_name": true, "source": true},
	},
	models.KindGuidance: {
		name:     "guidance_responses",
		textCol:  "guidance",
		riskExpr: "risk_score",
		attrs:    []string{"request_id", "source_ip", "model_used"},
		filters:  map[string]bool{"source_ip": true, "model_used": true},
	},
}

func (r *EmbeddingRepository) InsertTraffic(ctx context.Context, rec *models.TrafficEmbedding) error {
	query := `
		INSERT INTO traffic_analysis_embeddings (
			analysis_type, source_data, text_description, embedding,
			risk_score, similarity_threshold, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	sourceJSON, err := toJSON(rec.SourceData)
	if err != nil {
		return err
	}
	metadataJSON, err := toJSON(rec.Metadata)
	if err != nil {
		return err
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(
			ctx, query,
			rec.AnalysisType,
			sourceJSON,
			rec.TextDescription,
			pgvector.NewVector(rec.Embedding),
			rec.RiskScore,
			rec.SimilarityThreshold,
			metadataJSON,
		).Scan(&rec.ID, &rec.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to store traffic embedding: %w", err)
	}
	return nil
}

func (r *EmbeddingRepository) InsertEvent(ctx context.Context, rec *models.EventEmbedding) error {
	query := `
		INSERT INTO security_event_embeddings (
			event_type, severity, source_ip, risk_score,
			text_description, embedding, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	metadataJSON, err := toJSON(rec.Metadata)
	if err != nil {
		return err
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(
			ctx, query,
			rec.EventType,
			rec.Severity,
			nullIP(rec.SourceIP),
			rec.RiskScore,
			rec.TextDescription,
			pgvector.NewVector(rec.Embedding),
			metadataJSON,
		).Scan(&rec.ID, &rec.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to store event embedding: %w", err)
	}
	return nil
}

func (r *EmbeddingRepository) InsertMetric(ctx context.Context, rec *models.MetricEmbedding) error {
	query := `
		INSERT INTO network_metric_embeddings (
			metric_name, metric_value, source, text_description, embedding, metadata
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	metadataJSON, err := toJSON(rec.Metadata)
	if err != nil {
		return err
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(
			ctx, query,
			rec.MetricName,
			rec.MetricValue,
			rec.Source,
			rec.TextDescription,
			pgvector.NewVector(rec.Embedding),
			metadataJSON,
		).Scan(&rec.ID, &rec.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to store metric embedding: %w", err)
	}
	return nil
}

func (r *EmbeddingRepository) Search(ctx context.Context, kind string, q models.SimilarityQuery) ([]models.SimilarityMatch, error) {
	return searchVectors(ctx, r.db, kind, q)
}

// Stats reports row count and mean risk per searchable kind.
func (r *EmbeddingRepository) Stats(ctx context.Context) (map[string]models.EmbeddingTableStats, error) {
	stats := make(map[string]models.EmbeddingTableStats, len(vectorTables))

	for _, kind := range sortedKinds() {
		t := vectorTables[kind]
		query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(AVG(%s), 0) FROM %s`, t.riskExpr, t.name)

		var s models.EmbeddingTableStats
		if err := r.db.QueryRowContext(ctx, query).Scan(&s.Count, &s.AvgRiskScore); err != nil {
			return nil, fmt.Errorf("failed to read %s stats: %w", t.name, err)
		}
		stats[kind] = s
	}

	return stats, nil
}

func sortedKinds() []string {
	kinds := make([]string, 0, len(vectorTables))
	for k := range vectorTables {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// searchVectors orders rows by ascending cosine distance and drops anything
// below the similarity floor. Filter keys outside the table's allow list are ignored.
func searchVectors(ctx context.Context, db *sql.DB, kind string, q models.SimilarityQuery) ([]models.SimilarityMatch, error) {
	t, ok := vectorTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown embedding kind: %s", kind)
	}

	attrCols := make([]string, len(t.attrs))
	for i, a := range t.attrs {
		attrCols[i] = a + "::text"
	}

	args := []interface{}{pgvector.NewVector(q.Vector), q.MinSimilarity}
	where := []string{"embedding IS NOT NULL", "1 - (embedding <=> $1) >= $2"}

	keys := make([]string, 0, len(q.Filter))
	for k := range q.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !t.filters[k] {
			continue
		}
		args = append(args, q.Filter[k])
		where = append(where, fmt.Sprintf("%s = $%d", k, len(args)))
	}

	args = append(args, q.Limit)
	query := fmt.Sprintf(`
		SELECT id, %s, %s, metadata, created_at, %s, 1 - (embedding <=> $1) AS similarity
		FROM %s
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d`,
		t.textCol, t.riskExpr, strings.Join(attrCols, ", "), t.name,
		strings.Join(where, " AND "), len(args),
	)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", t.name, err)
	}
	defer rows.Close()

	matches := []models.SimilarityMatch{}
	for rows.Next() {
		var m models.SimilarityMatch
		var metadataJSON []byte
		attrs := make([]sql.NullString, len(t.attrs))

		dest := []interface{}{&m.ID, &m.TextDescription, &m.RiskScore, &metadataJSON, &m.CreatedAt}
		for i := range attrs {
			dest = append(dest, &attrs[i])
		}
		dest = append(dest, &m.Similarity)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s match: %w", t.name, err)
		}

		m.Kind = kind
		m.Metadata = decodeMap(metadataJSON)
		m.Attributes = make(map[string]interface{}, len(t.attrs))
		for i, a := range t.attrs {
			if attrs[i].Valid {
				m.Attributes[a] = attrs[i].String
			}
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}
