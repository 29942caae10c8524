// Package events publishes domain events to downstream consumers (billing, notifications).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// SubjectBlockAllocated is published after a reservation commits.
const SubjectBlockAllocated = "capacity.block.allocated"

// Publisher sends a JSON payload on a subject. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// NATSPublisher publishes on a shared NATS connection.
type NATSPublisher struct {
	nc *nats.Conn
}

// Connect dials NATS with reconnect settings suitable for a long-running API process.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("sunshare-api"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	return p.nc.Publish(subject, data)
}

// Status reports the connection state for health checks.
func (p *NATSPublisher) Status() string {
	if p.nc.IsConnected() {
		return "connected"
	}
	if p.nc.IsReconnecting() {
		return "reconnecting"
	}
	return "disconnected"
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// Nop discards every event. Used when NATS_URL is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, interface{}) error { return nil }

func (Nop) Status() string { return "disabled" }
