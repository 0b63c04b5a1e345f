package monitor

import (
	"context"

	"NetIntelAPI/internal/models"
)

// ThreatLookup reports whether an address is a known threat.
type ThreatLookup interface {
	IsKnownThreat(ctx context.Context, value string) bool
}

const (
	KnownThreatWeight   = 80
	HighVolumeWeight    = 30
	FailedAuthWeight    = 50
	UnusualPortsWeight  = 20
	highVolumeThreshold = 1000
	failedAuthThreshold = 10
	knownThreatPrefix   = "Known threat IP: "
	knownThreatAction   = "Block IP immediately"
)

type rule struct {
	weight         int
	threat         string
	recommendation string
	match          func(t *models.TrafficData) bool
}

var rules = []rule{
	{
		weight:         HighVolumeWeight,
		threat:         "High connection volume",
		recommendation: "Investigate source IP for DDoS activity",
		match:          func(t *models.TrafficData) bool { return t.ConnectionCount > highVolumeThreshold },
	},
	{
		weight:         FailedAuthWeight,
		threat:         "Multiple failed authentication attempts",
		recommendation: "Implement rate limiting and block suspicious IPs",
		match:          func(t *models.TrafficData) bool { return t.FailedAuthAttempts > failedAuthThreshold },
	},
	{
		weight:         UnusualPortsWeight,
		threat:         "Unusual port activity detected",
		recommendation: "Review firewall rules and port access",
		match:          func(t *models.TrafficData) bool { return len(t.UnusualPorts) > 0 },
	},
}

// Score applies every rule to the sample and sums the weights of those that
// fire. lookup may be nil, in which case the known-threat rule never fires.
func (m *Monitor) Score(ctx context.Context, t *models.TrafficData, lookup ThreatLookup) models.Analysis {
	analysis := models.Analysis{
		Timestamp:       m.now(),
		ThreatsDetected: []string{},
		Recommendations: []string{},
	}
	if t == nil {
		return analysis
	}

	if lookup != nil && t.SourceIP != "" && lookup.IsKnownThreat(ctx, t.SourceIP) {
		analysis.RiskScore += KnownThreatWeight
		analysis.ThreatsDetected = append(analysis.ThreatsDetected, knownThreatPrefix+t.SourceIP)
		analysis.Recommendations = append(analysis.Recommendations, knownThreatAction)
	}

	for _, r := range rules {
		if !r.match(t) {
			continue
		}
		analysis.RiskScore += r.weight
		analysis.ThreatsDetected = append(analysis.ThreatsDetected, r.threat)
		analysis.Recommendations = append(analysis.Recommendations, r.recommendation)
	}

	return analysis
}
