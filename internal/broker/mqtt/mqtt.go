// Package mqtt implements broker.Publisher over an MQTT connection using
// github.com/eclipse/paho.mqtt.golang.
//
// The paho client runs its own background network loop (keepalive, automatic
// reconnect); the pipeline only ever calls Publish, which enqueues the message
// and waits for the client-side acknowledgement.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/DuoDuoJuZi/Myurujisu/internal/broker"
)

// Compile-time assertion that Publisher implements broker.Publisher.
var _ broker.Publisher = (*Publisher)(nil)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultClientID       = "muelsyse"
)

// Config holds the MQTT connection settings.
type Config struct {
	// BrokerURL is the broker address, e.g. "tcp://192.168.1.10:1883".
	BrokerURL string

	// Topic is the topic every payload is published to.
	Topic string

	// Username and Password authenticate the client. May be empty for
	// brokers with anonymous access.
	Username string
	Password string

	// ClientID identifies this client to the broker. Default "muelsyse".
	ClientID string
}

// Publisher publishes device-control payloads to a single MQTT topic.
// Safe for concurrent use; the underlying paho client serialises the wire
// protocol internally.
type Publisher struct {
	client pahomqtt.Client
	topic  string
}

// Connect creates the MQTT client and blocks until the initial connection is
// established (or the connect timeout elapses). The client keeps itself
// connected afterwards via paho's auto-reconnect loop.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.BrokerURL == "" {
		return nil, errors.New("mqtt: BrokerURL must not be empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("mqtt: Topic must not be empty")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultConnectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", cfg.BrokerURL, err)
	}

	return &Publisher{client: client, topic: cfg.Topic}, nil
}

// Publish implements broker.Publisher. QoS 1 ensures the broker sees the
// payload at least once; retained is false because a light command is an
// event, not a state.
func (p *Publisher) Publish(ctx context.Context, payload string) error {
	token := p.client.Publish(p.topic, 1, false, payload)

	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt: publish to %s: %w", p.topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker, allowing up to 250 ms for in-flight
// messages to drain.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
