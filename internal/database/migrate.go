package database

import (
	"context"
	"fmt"
)

const baseSchema = `
CREATE TABLE IF NOT EXISTS security_events (
	id SERIAL PRIMARY KEY,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	event_type VARCHAR(100) NOT NULL,
	severity VARCHAR(20) NOT NULL,
	source_ip INET,
	destination_ip INET,
	source_port INTEGER,
	destination_port INTEGER,
	protocol VARCHAR(10),
	payload_size INTEGER,
	user_agent TEXT,
	country_code VARCHAR(3),
	city VARCHAR(100),
	latitude DECIMAL(10, 8),
	longitude DECIMAL(11, 8),
	risk_score INTEGER DEFAULT 0,
	threat_indicators JSONB,
	metadata JSONB,
	status VARCHAR(20) DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS network_analytics (
	id SERIAL PRIMARY KEY,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	metric_name VARCHAR(100) NOT NULL,
	metric_value DECIMAL(15, 2) NOT NULL,
	metric_unit VARCHAR(20),
	source VARCHAR(100),
	tags JSONB,
	period VARCHAR(20) DEFAULT 'realtime'
);

CREATE TABLE IF NOT EXISTS threat_intelligence (
	id SERIAL PRIMARY KEY,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	indicator_type VARCHAR(50) NOT NULL,
	indicator_value TEXT NOT NULL,
	confidence_level VARCHAR(20) DEFAULT 'medium',
	threat_category VARCHAR(100),
	description TEXT,
	source VARCHAR(100),
	first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	active BOOLEAN DEFAULT TRUE,
	metadata JSONB
);

CREATE TABLE IF NOT EXISTS user_sessions (
	id SERIAL PRIMARY KEY,
	session_id VARCHAR(255) UNIQUE NOT NULL,
	user_id VARCHAR(100),
	ip_address INET,
	user_agent TEXT,
	login_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_activity TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	logout_time TIMESTAMP,
	session_duration INTEGER,
	status VARCHAR(20) DEFAULT 'active',
	location_data JSONB,
	risk_factors JSONB,
	payload JSONB
);

CREATE INDEX IF NOT EXISTS idx_security_events_timestamp ON security_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_security_events_source_ip ON security_events(source_ip);
CREATE INDEX IF NOT EXISTS idx_security_events_severity ON security_events(severity);
CREATE INDEX IF NOT EXISTS idx_threat_intelligence_value ON threat_intelligence(indicator_value);
CREATE INDEX IF NOT EXISTS idx_threat_intelligence_active ON threat_intelligence(active);
CREATE INDEX IF NOT EXISTS idx_network_analytics_timestamp ON network_analytics(timestamp);
CREATE INDEX IF NOT EXISTS idx_network_analytics_name ON network_analytics(metric_name, period);
CREATE INDEX IF NOT EXISTS idx_user_sessions_session_id ON user_sessions(session_id);
`

// vectorSchema is formatted with the embedding dimension.
const vectorSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS traffic_analysis_embeddings (
	id SERIAL PRIMARY KEY,
	analysis_type VARCHAR(50) NOT NULL,
	source_data JSONB,
	text_description TEXT NOT NULL,
	embedding vector(%[1]d) NOT NULL,
	risk_score INTEGER DEFAULT 0,
	similarity_threshold DOUBLE PRECISION DEFAULT 0.8,
	metadata JSONB,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS security_event_embeddings (
	id SERIAL PRIMARY KEY,
	event_type VARCHAR(100),
	severity VARCHAR(20),
	source_ip INET,
	risk_score INTEGER DEFAULT 0,
	text_description TEXT NOT NULL,
	embedding vector(%[1]d) NOT NULL,
	metadata JSONB,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS network_metric_embeddings (
	id SERIAL PRIMARY KEY,
	metric_name VARCHAR(100),
	metric_value DOUBLE PRECISION,
	source VARCHAR(100),
	text_description TEXT NOT NULL,
	embedding vector(%[1]d) NOT NULL,
	metadata JSONB,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS guidance_responses (
	id SERIAL PRIMARY KEY,
	request_id VARCHAR(64) NOT NULL,
	source_ip VARCHAR(64),
	risk_score INTEGER DEFAULT 0,
	threats_detected JSONB,
	recommendations JSONB,
	guidance TEXT NOT NULL,
	embedding vector(%[1]d),
	model_used VARCHAR(100),
	response_tokens INTEGER,
	processing_time_ms BIGINT,
	metadata JSONB,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_traffic_embeddings_vec ON traffic_analysis_embeddings USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_event_embeddings_vec ON security_event_embeddings USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_metric_embeddings_vec ON network_metric_embeddings USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_guidance_embeddings_vec ON guidance_responses USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_guidance_created ON guidance_responses(created_at);
`

// Migrate creates every table idempotently inside one transaction.
func (d *Database) Migrate(ctx context.Context, dimensions int) error {
	if dimensions < 1 {
		return fmt.Errorf("invalid embedding dimensions: %d", dimensions)
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, baseSchema); err != nil {
		return fmt.Errorf("failed to create base schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(vectorSchema, dimensions)); err != nil {
		return fmt.Errorf("failed to create vector schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}
