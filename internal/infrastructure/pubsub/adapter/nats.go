package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/pubsub/port"
)

// NatsRelay publishes envelopes on a core NATS subject. Delivery is fire-and-forget,
// matching the hub's no-retry broadcast contract; clients reload history after a gap.
type NatsRelay struct {
	nc      *nats.Conn
	subject string
	log     zerolog.Logger
}

func NewNatsRelay(url string, subject string, log zerolog.Logger) (*NatsRelay, error) {
	nc, err := nats.Connect(url, nats.Name("startup-backend-relay"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsRelay{nc: nc, subject: subject, log: log}, nil
}

var _ port.Relay = (*NatsRelay)(nil)

func (r *NatsRelay) Publish(_ context.Context, env port.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("relay: encode: %w", err)
	}
	if err := r.nc.Publish(r.subject, b); err != nil {
		return fmt.Errorf("failed to publish to subject '%s': %w", r.subject, err)
	}
	return nil
}

func (r *NatsRelay) Subscribe(ctx context.Context, fn func(port.Envelope)) error {
	sub, err := r.nc.Subscribe(r.subject, func(m *nats.Msg) {
		var env port.Envelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			r.log.Warn().Err(err).Str("subject", m.Subject).Msg("relay: dropping malformed envelope")
			return
		}
		fn(env)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject '%s': %w", r.subject, err)
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (r *NatsRelay) Close() error {
	if r.nc == nil {
		return nil
	}
	return r.nc.Drain()
}
