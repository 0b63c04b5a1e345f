package monitor

import (
	"fmt"
	"sort"
	"time"

	"NetIntelAPI/internal/models"
)

var mockIPs = []string{
	"192.168.1.45", "10.0.0.123", "172.16.0.78", "192.168.1.102",
	"203.0.113.15", "198.51.100.67", "192.168.0.234", "10.1.1.89",
	"172.20.0.156", "192.168.2.78", "10.0.1.45", "172.18.0.123",
}

var eventTypes = []string{
	"Suspicious Login Attempt", "Port Scan Detected", "Data Exfiltration",
	"Failed Authentication", "Brute Force Attack", "Malware Detection",
	"Anomalous Traffic Pattern", "Unauthorized Access Attempt",
	"DDoS Attack", "SQL Injection Attempt", "Cross-Site Scripting",
	"Privilege Escalation Attempt",
}

var severities = []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh}

const mockEventWindow = 2 * time.Hour

func (m *Monitor) intRange(lo, hi int) int {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return lo + m.rng.IntN(hi-lo+1)
}

func (m *Monitor) floatRange(lo, hi float64) float64 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return lo + m.rng.Float64()*(hi-lo)
}

func pick[T any](m *Monitor, items []T) T {
	return items[m.intRange(0, len(items)-1)]
}

// GenerateStats produces a fresh random snapshot and makes it current.
func (m *Monitor) GenerateStats() models.NetworkStats {
	total := m.intRange(800, 1500)
	stats := models.NetworkStats{
		TotalConnections:      total,
		SuspiciousConnections: int(float64(total) * m.floatRange(0.05, 0.15)),
		BlockedAttempts:       int(float64(total) * m.floatRange(0.02, 0.08)),
		LastUpdated:           m.now(),
	}

	m.mu.Lock()
	m.stats = stats
	m.mu.Unlock()

	return stats
}

// MockEvents returns count random events from the past two hours, newest first.
func (m *Monitor) MockEvents(count int) []models.MockEvent {
	if count < 0 {
		count = 0
	}
	now := m.now()

	events := make([]models.MockEvent, count)
	for i := range events {
		offset := time.Duration(m.intRange(0, int(mockEventWindow/time.Second))) * time.Second
		events[i] = models.MockEvent{
			ID:          m.intRange(1000, 9999),
			Timestamp:   now.Add(-offset),
			EventType:   pick(m, eventTypes),
			SourceIP:    pick(m, mockIPs),
			Severity:    pick(m, severities),
			RiskScore:   m.intRange(20, 95),
			Description: fmt.Sprintf("Security event detected from %s", pick(m, mockIPs)),
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
	return events
}

// Suggestions lists source addresses worth analysing, taken from fresh mock events.
func (m *Monitor) Suggestions() []string {
	events := m.MockEvents(3)
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.SourceIP
	}
	return out
}
