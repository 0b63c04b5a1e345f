package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	operationTimeout      = 5 * time.Second
	trafficHandlerTimeout = 30 * time.Second
)

var errNotConnected = errors.New("not connected to broker")

// TrafficHandler scores a traffic sample received from the broker.
type TrafficHandler func(ctx context.Context, traffic *models.TrafficData) error

// Client bridges the broker and the API. Traffic samples arrive on
// TrafficTopic, raised alerts leave on AlertTopic.
type Client struct {
	client mqtt.Client
	cfg    *config.MQTTConfig
	log    *logger.Logger

	mu             sync.RWMutex
	connected      bool
	lastConnected  time.Time
	lastDisconnect time.Time
	traffic        TrafficHandler

	received  atomic.Uint64
	rejected  atomic.Uint64
	failed    atomic.Uint64
	published atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(cfg *config.MQTTConfig, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mqtt config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:    cfg,
		log:    log.With("mqtt"),
		ctx:    ctx,
		cancel: cancel,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL())
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	// Clean sessions drop subscriptions on reconnect; onConnect restores the traffic one.
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		c.log.Warn("Attempting to reconnect to MQTT broker...")
	})

	c.client = mqtt.NewClient(opts)

	return c, nil
}

func (c *Client) Connect() error {
	c.log.Info("Connecting to MQTT broker: %s", c.cfg.BrokerURL())

	token := c.client.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return fmt.Errorf("connection timeout after %v", c.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	c.mu.Lock()
	c.connected = true
	c.lastConnected = time.Now()
	c.mu.Unlock()

	c.log.Info("Successfully connected to MQTT broker")
	return nil
}

// Disconnect cancels in-flight traffic scoring and closes the connection.
func (c *Client) Disconnect() error {
	c.log.Info("Disconnecting from MQTT broker")

	c.cancel()

	c.mu.Lock()
	c.connected = false
	c.lastDisconnect = time.Now()
	c.mu.Unlock()

	c.client.Disconnect(250)
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// PublishAlert mirrors an alert onto the alert topic as JSON.
func (c *Client) PublishAlert(alert interface{}) error {
	if !c.IsConnected() {
		return errNotConnected
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	token := c.client.Publish(c.cfg.AlertTopic, c.cfg.QoS, c.cfg.RetainMessages, payload)
	if err := wait(token, "publish", c.cfg.AlertTopic); err != nil {
		return err
	}

	c.published.Add(1)
	c.log.Debug("Published alert to %s (%d bytes)", c.cfg.AlertTopic, len(payload))
	return nil
}

// SubscribeTraffic feeds JSON samples published on the traffic topic into h.
// Malformed payloads are counted and dropped.
func (c *Client) SubscribeTraffic(h TrafficHandler) error {
	if !c.IsConnected() {
		return errNotConnected
	}

	c.mu.Lock()
	c.traffic = h
	c.mu.Unlock()

	token := c.client.Subscribe(c.cfg.TrafficTopic, c.cfg.QoS, c.onTraffic)
	if err := wait(token, "subscribe", c.cfg.TrafficTopic); err != nil {
		c.mu.Lock()
		c.traffic = nil
		c.mu.Unlock()
		return err
	}

	c.log.Info("Scoring traffic samples from %s", c.cfg.TrafficTopic)
	return nil
}

// UnsubscribeTraffic is a no-op when no subscription is active.
func (c *Client) UnsubscribeTraffic() error {
	c.mu.Lock()
	subscribed := c.traffic != nil
	c.traffic = nil
	c.mu.Unlock()

	if !subscribed || !c.IsConnected() {
		return nil
	}
	return wait(c.client.Unsubscribe(c.cfg.TrafficTopic), "unsubscribe", c.cfg.TrafficTopic)
}

func (c *Client) onTraffic(_ mqtt.Client, msg mqtt.Message) {
	c.mu.RLock()
	h := c.traffic
	c.mu.RUnlock()
	if h == nil {
		return
	}

	c.received.Add(1)

	var traffic models.TrafficData
	if err := json.Unmarshal(msg.Payload(), &traffic); err != nil {
		c.rejected.Add(1)
		c.log.Warn("Dropping malformed traffic sample on %s: %v", msg.Topic(), err)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, trafficHandlerTimeout)
	defer cancel()

	if err := h(ctx, &traffic); err != nil {
		c.failed.Add(1)
		c.log.Error("Failed to score traffic sample from %s: %v", msg.Topic(), err)
	}
}

func (c *Client) onConnect(client mqtt.Client) {
	c.mu.Lock()
	c.connected = true
	c.lastConnected = time.Now()
	resubscribe := c.traffic != nil
	c.mu.Unlock()

	c.log.Info("MQTT connection established")

	if resubscribe {
		token := client.Subscribe(c.cfg.TrafficTopic, c.cfg.QoS, c.onTraffic)
		if err := wait(token, "subscribe", c.cfg.TrafficTopic); err != nil {
			c.log.Error("Failed to restore traffic subscription: %v", err)
		}
	}
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.mu.Lock()
	c.connected = false
	c.lastDisconnect = time.Now()
	c.mu.Unlock()

	c.log.Error("MQTT connection lost: %v", err)
}

func wait(token mqtt.Token, op, topic string) error {
	if !token.WaitTimeout(operationTimeout) {
		return fmt.Errorf("%s timeout for topic: %s", op, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s failed for topic %s: %w", op, topic, err)
	}
	return nil
}
