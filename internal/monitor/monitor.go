// Package monitor holds the in-memory security state of the process: the alert
// list, the indicator list, the current network statistics and the rule set
// used to score traffic samples.
package monitor

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"NetIntelAPI/internal/models"
)

var (
	ErrAlertNotFound     = errors.New("alert not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Option func(*Monitor)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithSeed makes the mock generators deterministic.
func WithSeed(seed uint64) Option {
	return func(m *Monitor) { m.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

type Monitor struct {
	mu              sync.RWMutex
	alerts          []models.Alert
	nextAlertID     int
	indicators      []models.ThreatIndicator
	nextIndicatorID int
	stats           models.NetworkStats

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		nextAlertID:     1,
		nextIndicatorID: 1,
		now:             time.Now,
		rng:             rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.stats.LastUpdated = m.now()
	return m
}

// AddAlert appends a new active alert and returns a copy of it.
func (m *Monitor) AddAlert(in models.AlertInput) models.Alert {
	if in.Severity == "" {
		in.Severity = models.SeverityMedium
	}
	if in.Type == "" {
		in.Type = "unknown"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	alert := models.Alert{
		ID:            m.nextAlertID,
		Timestamp:     m.now(),
		Severity:      in.Severity,
		Type:          in.Type,
		Description:   in.Description,
		SourceIP:      in.SourceIP,
		DestinationIP: in.DestinationIP,
		Status:        models.StatusActive,
	}
	m.nextAlertID++
	m.alerts = append(m.alerts, alert)

	return alert
}

// Alerts returns the alerts matching status ("" or "all" for every alert) and
// the number of active alerts overall.
func (m *Monitor) Alerts(status string) ([]models.Alert, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Alert, 0, len(m.alerts))
	active := 0
	for _, a := range m.alerts {
		if a.Status == models.StatusActive {
			active++
		}
		if status == "" || status == "all" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, active
}

func (m *Monitor) ActiveAlerts() int {
	_, active := m.Alerts(models.StatusActive)
	return active
}

// UpdateStatus moves an active alert to status. Only active alerts can change;
// requesting the current status is accepted without change.
func (m *Monitor) UpdateStatus(id int, status string) (models.Alert, error) {
	switch status {
	case models.StatusActive, models.StatusResolved, models.StatusInvestigating:
	default:
		return models.Alert{}, ErrInvalidStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.alerts {
		a := &m.alerts[i]
		if a.ID != id {
			continue
		}
		if a.Status == status {
			return *a, nil
		}
		if a.Status != models.StatusActive {
			return *a, ErrInvalidTransition
		}
		a.Status = status
		return *a, nil
	}

	return models.Alert{}, ErrAlertNotFound
}

// MarkStale flags active alerts raised before cutoff and returns how many changed.
func (m *Monitor) MarkStale(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for i := range m.alerts {
		if m.alerts[i].Status == models.StatusActive && m.alerts[i].Timestamp.Before(cutoff) {
			m.alerts[i].Status = models.StatusStale
			n++
		}
	}
	return n
}

func (m *Monitor) AddIndicator(ind models.ThreatIndicator) models.ThreatIndicator {
	if ind.Confidence == "" {
		ind.Confidence = models.ConfidenceMedium
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ind.ID = m.nextIndicatorID
	ind.Timestamp = m.now()
	ind.Active = true
	m.nextIndicatorID++
	m.indicators = append(m.indicators, ind)

	return ind
}

func (m *Monitor) Indicators() []models.ThreatIndicator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ThreatIndicator, len(m.indicators))
	copy(out, m.indicators)
	return out
}

func (m *Monitor) Stats() models.NetworkStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Touch refreshes the last_updated stamp of the current statistics.
func (m *Monitor) Touch() models.NetworkStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.LastUpdated = m.now()
	return m.stats
}
