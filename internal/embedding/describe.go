package embedding

import (
	"fmt"
	"sort"
	"strings"

	"NetIntelAPI/internal/models"
)

const (
	guidanceExcerptRunes = 1000
	guidanceDescMaxRunes = 2048
)

// DescribeTraffic renders a traffic analysis as the sentence list that gets embedded.
func DescribeTraffic(data map[string]interface{}) string {
	parts := []string{
		fmt.Sprintf("Traffic analysis of type: %v", valueOr(data, "analysis_type", "unknown")),
	}

	if stats, ok := data["network_stats"].(map[string]interface{}); ok {
		parts = append(parts, fmt.Sprintf(
			"Network statistics: %v total connections, %v suspicious connections, %v blocked attempts",
			valueOr(stats, "total_connections", 0),
			valueOr(stats, "suspicious_connections", 0),
			valueOr(stats, "blocked_attempts", 0),
		))
	}

	parts = append(parts, fmt.Sprintf("Risk assessment: %v risk score", valueOr(data, "risk_score", 0)))

	parts = appendIf(parts, data, "source_ip", "Source IP")
	parts = appendIf(parts, data, "destination_ip", "Destination IP")
	parts = appendIf(parts, data, "protocol", "Protocol")
	parts = appendIf(parts, data, "source_port", "Source port")
	parts = appendIf(parts, data, "destination_port", "Destination port")

	if indicators := stringList(data["threat_indicators"]); len(indicators) > 0 {
		parts = append(parts, "Threat indicators detected: "+strings.Join(indicators, ", "))
	}

	parts = appendIf(parts, data, "country_code", "Geographic origin")
	parts = appendIf(parts, data, "city", "City")
	parts = appendIf(parts, data, "timestamp", "Analysis timestamp")

	return strings.Join(parts, ". ")
}

func DescribeEvent(data map[string]interface{}) string {
	parts := []string{
		fmt.Sprintf("Security event: %v with %v severity",
			valueOr(data, "event_type", "unknown"), valueOr(data, "severity", models.SeverityMedium)),
	}

	parts = appendIf(parts, data, "source_ip", "Source IP")
	parts = appendIf(parts, data, "destination_ip", "Destination IP")
	parts = append(parts, fmt.Sprintf("Risk score: %v", valueOr(data, "risk_score", 0)))
	parts = appendIf(parts, data, "protocol", "Protocol")
	parts = appendIf(parts, data, "source_port", "Source port")
	parts = appendIf(parts, data, "destination_port", "Destination port")
	parts = appendIf(parts, data, "country_code", "Country")
	parts = appendIf(parts, data, "city", "City")
	parts = appendIf(parts, data, "user_agent", "User agent")

	return strings.Join(parts, ". ")
}

func DescribeMetric(data map[string]interface{}) string {
	parts := []string{
		strings.TrimRight(fmt.Sprintf("Network metric: %v = %v %v",
			valueOr(data, "metric_name", "unknown"),
			valueOr(data, "metric_value", 0),
			valueOr(data, "metric_unit", "")), " "),
	}

	parts = appendIf(parts, data, "source", "Source")
	parts = appendIf(parts, data, "period", "Period")

	if tags, ok := data["tags"].(map[string]interface{}); ok && len(tags) > 0 {
		keys := make([]string, 0, len(tags))
		for k := range tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s: %v", k, tags[k])
		}
		parts = append(parts, "Tags: "+strings.Join(pairs, ", "))
	}

	return strings.Join(parts, ". ")
}

// DescribeGuidance summarises a guidance answer together with the analysis it
// was produced for. The result never exceeds 2048 runes.
func DescribeGuidance(rec *models.GuidanceRecord) string {
	sourceIP := rec.SourceIP
	if sourceIP == "" {
		sourceIP = "Unknown"
	}

	excerpt := rec.Guidance
	if r := []rune(excerpt); len(r) > guidanceExcerptRunes {
		excerpt = string(r[:guidanceExcerptRunes]) + truncatedSuffix
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Network Security Guidance Analysis:\n")
	fmt.Fprintf(&b, "Source IP: %s\n", sourceIP)
	fmt.Fprintf(&b, "Risk Score: %d/100\n", rec.RiskScore)
	fmt.Fprintf(&b, "Threats Detected: %s\n", joinOr(rec.ThreatsDetected, "None detected"))
	fmt.Fprintf(&b, "Current Recommendations: %s\n\n", joinOr(rec.Recommendations, "None"))
	fmt.Fprintf(&b, "AI Guidance Summary:\n%s\n\n", excerpt)
	fmt.Fprintf(&b, "Analysis Context:\n")
	fmt.Fprintf(&b, "This guidance was generated for a network security incident with risk score %d.\n", rec.RiskScore)
	fmt.Fprintf(&b, "The response provides actionable recommendations for addressing the identified threats.")

	desc := b.String()
	if len([]rune(desc)) <= guidanceDescMaxRunes {
		return desc
	}

	threats := rec.ThreatsDetected
	if len(threats) > 3 {
		threats = threats[:3]
	}
	essential := fmt.Sprintf("Network Security Guidance: IP %s, Risk %d/100, Threats: %s",
		sourceIP, rec.RiskScore, joinOr(threats, "None"))

	room := guidanceDescMaxRunes - len([]rune(essential)) - 50
	if room <= 0 {
		short, _ := Truncate(essential, guidanceDescMaxRunes)
		return short
	}
	if r := []rune(excerpt); len(r) > room {
		excerpt = string(r[:room])
	}
	return essential + ". Guidance: " + excerpt + truncatedSuffix
}

func valueOr(data map[string]interface{}, key string, fallback interface{}) interface{} {
	if v, ok := data[key]; ok && v != nil {
		return v
	}
	return fallback
}

func appendIf(parts []string, data map[string]interface{}, key, label string) []string {
	if v, ok := data[key]; ok && v != nil {
		return append(parts, fmt.Sprintf("%s: %v", label, v))
	}
	return parts
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
