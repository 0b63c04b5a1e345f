package mqtt

import (
	"time"
)

type HealthStatus struct {
	Connected       bool      `json:"connected"`
	Broker          string    `json:"broker"`
	LastConnected   time.Time `json:"last_connected,omitempty"`
	LastDisconnect  time.Time `json:"last_disconnect,omitempty"`
	TrafficTopic    string    `json:"traffic_topic,omitempty"` // empty unless subscribed
	SamplesReceived uint64    `json:"samples_received"`
	SamplesRejected uint64    `json:"samples_rejected"`
	SamplesFailed   uint64    `json:"samples_failed"`
	AlertsPublished uint64    `json:"alerts_published"`
}

func (c *Client) Health() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := HealthStatus{
		Connected:       c.connected && c.client.IsConnected(),
		Broker:          c.cfg.BrokerURL(),
		LastConnected:   c.lastConnected,
		LastDisconnect:  c.lastDisconnect,
		SamplesReceived: c.received.Load(),
		SamplesRejected: c.rejected.Load(),
		SamplesFailed:   c.failed.Load(),
		AlertsPublished: c.published.Load(),
	}
	if c.traffic != nil {
		status.TrafficTopic = c.cfg.TrafficTopic
	}
	return status
}
