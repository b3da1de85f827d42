package brain

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/greenbrain-iot/greenbrain/internal/model/messages"
	"github.com/greenbrain-iot/greenbrain/pkg/mqttbus"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

var _ mqtt.Message = (*fakeMessage)(nil)

type stubConsumer struct {
	handler mqttbus.Handler
}

func (c *stubConsumer) ConsumeMessage(ctx context.Context) { <-ctx.Done() }
func (c *stubConsumer) SetHandler(h mqttbus.Handler)       { c.handler = h }

var _ mqttbus.IConsumer = (*stubConsumer)(nil)

type fakePublisher struct {
	topics   []string
	payloads []string
}

func (p *fakePublisher) Publish(topic, payload string) error {
	return p.PublishToQos(topic, 0, false, payload)
}

func (p *fakePublisher) PublishToQos(topic string, qos byte, retained bool, payload string) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) Close() {}

var _ mqttbus.IPublisher = (*fakePublisher)(nil)

func newTestService(t *testing.T) (*Service, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	svc, err := NewService(
		&stubConsumer{}, &stubConsumer{}, pub,
		&fakeWeatherClient{obs: Observation{Condition: "Clear", Temp: 31, Humidity: 70}},
		nil, "",
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	// Deterministic clock: each cycle is one second apart.
	base := time.Unix(1000, 0)
	n := 0
	svc.clock = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return svc, pub
}

func telemetryMsg(deviceID string, soil float64) *fakeMessage {
	payload, _ := json.Marshal(map[string]any{
		"device_id":       deviceID,
		"soil_moisture":   soil,
		"temperature":     28.0,
		"light_intensity": 500.0,
		"nitrogen":        50.0,
		"phosphorus":      50.0,
		"potassium":       50.0,
	})
	return &fakeMessage{topic: "sensor/data/" + deviceID, payload: payload}
}

func TestService_PublishesAfterWarmup(t *testing.T) {
	svc, pub := newTestService(t)

	if err := svc.handleSample("sensor/data/plant-1", telemetryMsg("plant-1", 30)); err != nil {
		t.Fatalf("first sample: %v", err)
	}
	if len(pub.topics) != 0 {
		t.Fatalf("published during warmup: %v", pub.topics)
	}

	if err := svc.handleSample("sensor/data/plant-1", telemetryMsg("plant-1", 31)); err != nil {
		t.Fatalf("second sample: %v", err)
	}
	if len(pub.topics) != 1 {
		t.Fatalf("publishes = %d, want 1", len(pub.topics))
	}
	if pub.topics[0] != "event/systemUpdate/plant-1" {
		t.Errorf("topic = %q, want event/systemUpdate/plant-1", pub.topics[0])
	}

	var evt messages.SystemUpdateEvent
	if err := json.Unmarshal([]byte(pub.payloads[0]), &evt); err != nil {
		t.Fatalf("published payload is not a decision record: %v", err)
	}
	if evt.DeviceID != "plant-1" {
		t.Errorf("device_id = %q", evt.DeviceID)
	}
	if evt.System.AlgorithmState != LabelCriticalPulse {
		t.Errorf("state = %q, want %q", evt.System.AlgorithmState, LabelCriticalPulse)
	}
}

func TestService_DropsRedeliveredPayload(t *testing.T) {
	svc, pub := newTestService(t)

	msg := telemetryMsg("plant-1", 30)
	svc.handleSample(msg.Topic(), msg)
	// Identical payload again, as after a QoS 1 redelivery.
	svc.handleSample(msg.Topic(), msg)

	// Only the first delivery fed the window, so the device was still
	// warming up; the distinct sample below completes the window.
	svc.handleSample("sensor/data/plant-1", telemetryMsg("plant-1", 31))
	if len(pub.topics) != 1 {
		t.Fatalf("publishes = %d, want 1 (redelivery must not count as a sample)", len(pub.topics))
	}
	var evt messages.SystemUpdateEvent
	if err := json.Unmarshal([]byte(pub.payloads[0]), &evt); err != nil {
		t.Fatal(err)
	}
	if evt.Sensors.Soil != 30.5 {
		t.Errorf("avg soil = %v, want 30.5 over two distinct samples", evt.Sensors.Soil)
	}
}

func TestService_BadPayloadIsSwallowed(t *testing.T) {
	svc, pub := newTestService(t)

	err := svc.handleSample("sensor/data/plant-1", &fakeMessage{
		topic:   "sensor/data/plant-1",
		payload: []byte("{not json"),
	})
	if err != nil {
		t.Fatalf("bad payload must not error the subscription: %v", err)
	}
	if len(pub.topics) != 0 {
		t.Error("bad payload must not publish")
	}
}

func TestService_DeviceIDFromTopicFallback(t *testing.T) {
	svc, pub := newTestService(t)

	for i, soil := range []float64{30, 31} {
		payload, _ := json.Marshal(map[string]any{
			"soil_moisture":   soil,
			"temperature":     28.0,
			"light_intensity": 500.0,
			"nitrogen":        50.0,
			"phosphorus":      50.0,
			"potassium":       50.0,
		})
		msg := &fakeMessage{topic: "sensor/data/greenhouse-7", payload: payload}
		if err := svc.handleSample(msg.Topic(), msg); err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
	}
	if len(pub.topics) != 1 || pub.topics[0] != "event/systemUpdate/greenhouse-7" {
		t.Fatalf("topics = %v, want the id lifted from the topic", pub.topics)
	}
}

func TestService_DevicesAreIsolated(t *testing.T) {
	svc, pub := newTestService(t)

	// plant-1 completes warmup; plant-2 has a single sample.
	svc.handleSample("sensor/data/plant-1", telemetryMsg("plant-1", 30))
	svc.handleSample("sensor/data/plant-2", telemetryMsg("plant-2", 90))
	svc.handleSample("sensor/data/plant-1", telemetryMsg("plant-1", 32))

	if len(pub.topics) != 1 || pub.topics[0] != "event/systemUpdate/plant-1" {
		t.Fatalf("topics = %v, want one decision for plant-1 only", pub.topics)
	}
}

func TestService_ManualOverrideIsNoOp(t *testing.T) {
	svc, pub := newTestService(t)

	payload, _ := json.Marshal(messages.ManualControlEvent{
		DeviceID: "plant-1",
		Action:   messages.ActionPumpOn,
	})
	err := svc.handleManual("control/manual/plant-1", &fakeMessage{
		topic:   "control/manual/plant-1",
		payload: payload,
	})
	if err != nil {
		t.Fatalf("manual handler: %v", err)
	}
	if len(pub.topics) != 0 {
		t.Error("manual override must not publish or actuate anything")
	}
	if st := svc.brainFor("plant-1").pump.State().Status; st != "idle" {
		t.Errorf("pump status = %q, want untouched idle", st)
	}
}

func TestDeviceFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"sensor/data/plant-1", "plant-1"},
		{"sensor/data/zone/plant-2", "plant-2"},
		{"sensor", ""},
	}
	for _, tt := range tests {
		if got := deviceFromTopic(tt.topic); got != tt.want {
			t.Errorf("deviceFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestService_RequiresCollaborators(t *testing.T) {
	if _, err := NewService(nil, nil, &fakePublisher{}, &fakeWeatherClient{}, nil, ""); err == nil {
		t.Error("expected error for nil telemetry consumer")
	}
	if _, err := NewService(&stubConsumer{}, nil, nil, &fakeWeatherClient{}, nil, ""); err == nil {
		t.Error("expected error for nil publisher")
	}
}
