package apps

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/odvcencio/lattice/pkg/bus"
	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/command"
)

// Envelope is the JSON form of a mirrored event.
type Envelope struct {
	Topic   string          `json:"topic"`
	Source  string          `json:"source,omitempty"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Mirror copies broadcast events to an external bus under
// "<prefix>.<topic>" and feeds events published under
// "<prefix>.inbound.<topic>" back in. A nil Mirror does nothing.
type Mirror struct {
	bus     bus.MessageBus
	prefix  string
	limiter *rate.Limiter
	log     *logging.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// MirrorOptions configures NewMirror.
type MirrorOptions struct {
	Prefix string
	// RatePerSecond caps publishes; excess events are dropped. Zero means
	// unlimited.
	RatePerSecond float64
	Logger        *logging.Logger
	Metrics       *telemetry.Metrics
}

// NewMirror wraps b.
func NewMirror(b bus.MessageBus, opts MirrorOptions) *Mirror {
	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = max(int(opts.RatePerSecond), 1)
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "lattice"
	}
	return &Mirror{
		bus:     b,
		prefix:  prefix,
		limiter: rate.NewLimiter(limit, burst),
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// Subject returns the outbound subject for topic.
func (m *Mirror) Subject(topic string) string {
	return m.prefix + "." + topic
}

// Publish encodes ev and sends it without waiting for delivery. Events over
// the rate limit are dropped.
func (m *Mirror) Publish(ctx context.Context, ev command.Event) error {
	if m == nil {
		return nil
	}
	if !m.limiter.Allow() {
		m.metrics.BusDropped()
		return nil
	}
	data, err := m.encode(ev)
	if err == nil {
		err = m.bus.Publish(ctx, m.Subject(ev.Topic), data)
	}
	m.metrics.BusPublished(err)
	if err != nil {
		err = lerrors.Wrap(err, lerrors.ErrCodeBusPublish, "mirror publish failed").WithContext("topic", ev.Topic)
		m.log.Warn(logging.CategoryBus, "publish_failed", err.Error(), map[string]any{"topic": ev.Topic})
		return err
	}
	return nil
}

func (m *Mirror) encode(ev command.Event) ([]byte, error) {
	env := Envelope{Topic: ev.Topic, Source: string(ev.Source), Time: m.now()}
	if ev.Payload != nil {
		p, err := json.Marshal(ev.Payload)
		if err != nil {
			return nil, err
		}
		env.Payload = p
	}
	return json.Marshal(env)
}

// Subscribe forwards inbound events to out until ctx is done. Payloads
// arrive as json.RawMessage; subscribers decode what they expect.
func (m *Mirror) Subscribe(ctx context.Context, out chan<- command.Event) (bus.Subscription, error) {
	inbound := m.prefix + ".inbound."
	sub, err := m.bus.Subscribe(ctx, inbound+">", func(msg *bus.Message) {
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			m.log.Warn(logging.CategoryBus, "decode_failed", "inbound event is not an envelope",
				map[string]any{"subject": msg.Subject, "error": err.Error()})
			return
		}
		if env.Topic == "" {
			env.Topic = strings.TrimPrefix(msg.Subject, inbound)
		}
		ev := command.Event{Topic: env.Topic, Source: command.AppID(env.Source)}
		if len(env.Payload) > 0 {
			ev.Payload = env.Payload
		}
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, lerrors.Wrap(err, lerrors.ErrCodeBusConnect, "subscribe to inbound events").WithContext("subject", inbound+">")
	}
	return sub, nil
}
