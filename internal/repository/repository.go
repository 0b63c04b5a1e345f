package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
)

// Repositories bundles every store. Fields stay nil when no database is configured.
type Repositories struct {
	Events     IEventRepository
	Metrics    IMetricRepository
	Indicators IIndicatorRepository
	Sessions   ISessionRepository
	Embeddings IEmbeddingRepository
	Guidance   IGuidanceRepository
}

func New(db *sql.DB) *Repositories {
	return &Repositories{
		Events:     NewEventRepository(db),
		Metrics:    NewMetricRepository(db),
		Indicators: NewIndicatorRepository(db),
		Sessions:   NewSessionRepository(db),
		Embeddings: NewEmbeddingRepository(db),
		Guidance:   NewGuidanceRepository(db),
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func toJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return b, nil
}

func decodeMap(raw []byte) map[string]interface{} {
	m := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}
	if m == nil {
		m = map[string]interface{}{}
	}
	return m
}

func decodeStrings(raw []byte) []string {
	s := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &s)
	}
	if s == nil {
		s = []string{}
	}
	return s
}

// nullIP maps anything that is not a parseable address to NULL so INET columns accept it.
func nullIP(s *string) interface{} {
	if s == nil || net.ParseIP(*s) == nil {
		return nil
	}
	return *s
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
