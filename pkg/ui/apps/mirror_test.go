package apps

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/odvcencio/lattice/pkg/bus"
	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/telemetry"
	"github.com/odvcencio/lattice/pkg/ui/command"
)

func TestMirrorPublishesEnvelope(t *testing.T) {
	ctrl := gomock.NewController(t)
	mb := NewMockMessageBus(ctrl)

	var got Envelope
	mb.EXPECT().
		Publish(gomock.Any(), "lattice.jobs.progress", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte) error {
			return json.Unmarshal(data, &got)
		})

	m := NewMirror(mb, MirrorOptions{Prefix: "lattice"})
	err := m.Publish(context.Background(), command.Event{
		Topic:   "jobs.progress",
		Source:  "jobs",
		Payload: map[string]int{"done": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "jobs.progress", got.Topic)
	assert.Equal(t, "jobs", got.Source)
	assert.JSONEq(t, `{"done":3}`, string(got.Payload))
}

func TestMirrorWrapsBusErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	mb := NewMockMessageBus(ctrl)
	mb.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection lost"))

	m := NewMirror(mb, MirrorOptions{Metrics: telemetry.NewMetrics()})
	err := m.Publish(context.Background(), command.Event{Topic: "x"})
	require.Error(t, err)
	assert.True(t, lerrors.IsCode(err, lerrors.ErrCodeBusPublish))
}

func TestMirrorRejectsUnencodablePayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	mb := NewMockMessageBus(ctrl)

	m := NewMirror(mb, MirrorOptions{})
	err := m.Publish(context.Background(), command.Event{Topic: "x", Payload: func() {}})
	assert.Error(t, err)
}

func TestMirrorDropsOverRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mb := NewMockMessageBus(ctrl)
	mb.EXPECT().Publish(gomock.Any(), "lattice.tick", gomock.Any()).Return(nil).Times(1)

	m := NewMirror(mb, MirrorOptions{RatePerSecond: 1})
	for range 3 {
		require.NoError(t, m.Publish(context.Background(), command.Event{Topic: "tick"}))
	}
}

func TestNilMirrorIsNoop(t *testing.T) {
	var m *Mirror
	assert.NoError(t, m.Publish(context.Background(), command.Event{Topic: "x"}))
}

func TestMirrorSubscribeForwardsInbound(t *testing.T) {
	b := bus.NewMemoryBus()
	defer b.Close()
	m := NewMirror(b, MirrorOptions{Prefix: "lattice"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan command.Event, 1)
	sub, err := m.Subscribe(ctx, events)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, b.Publish(ctx, "lattice.inbound.deploy.done", []byte(`{"source":"ci","payload":{"ok":true}}`)))

	select {
	case ev := <-events:
		assert.Equal(t, "deploy.done", ev.Topic)
		assert.Equal(t, command.AppID("ci"), ev.Source)
		assert.JSONEq(t, `{"ok":true}`, string(ev.Payload.(json.RawMessage)))
	case <-time.After(time.Second):
		t.Fatal("inbound event not forwarded")
	}
}

func TestOrchestratorMirrorsAppPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	mb := NewMockMessageBus(ctrl)
	mb.EXPECT().Publish(gomock.Any(), "lattice.greet", gomock.Any()).Return(nil).Times(1)

	o := New(Options{Mirror: NewMirror(mb, MirrorOptions{})})
	o.Register(probe("a", &probeApp{keys: map[string]command.Command[string]{
		"p": command.Publish[string]{Topic: "greet", Payload: "hi"},
	}}))
	require.NoError(t, o.Start("a", nil))

	press(o, 'p')
	// Injected events are delivered but not mirrored back out.
	o.Inject(command.Event{Topic: "greet", Payload: "from outside"})
}
