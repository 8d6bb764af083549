package natsx

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectMessageCreated carries every successfully persisted message, in its
// enriched broadcast form. Downstream consumers (push notifications, search
// indexers) subscribe here; the websocket fan-out never depends on it.
const SubjectMessageCreated = "chat.message.created"

type Config struct {
	Servers       []string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// Producer publishes gateway events to NATS core subjects.
type Producer struct {
	nc *nats.Conn
}

func NewProducer(cfg Config) (*Producer, error) {
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, err
	}
	return &Producer{nc: nc}, nil
}

// PublishJSON marshals v and publishes it to subject. Fire-and-forget.
func (p *Producer) PublishJSON(subject string, v any) error {
	if p == nil || p.nc == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.nc.Publish(subject, data)
}

func (p *Producer) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
