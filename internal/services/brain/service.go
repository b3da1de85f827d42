package brain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/greenbrain-iot/greenbrain/internal/model/messages"
	"github.com/greenbrain-iot/greenbrain/pkg/dedup"
	"github.com/greenbrain-iot/greenbrain/pkg/mqttbus"
)

const cycleTimeout = 5 * time.Second

// Service routes telemetry to per-device Brains and publishes the
// resulting decision records. Ordering within a device comes from the
// Brain's cycle lock; devices never share state.
type Service struct {
	telemetry mqttbus.IConsumer
	manual    mqttbus.IConsumer
	publisher mqttbus.IPublisher
	wclient   WeatherClient
	metrics   *Metrics
	deduper   *dedup.Deduper

	updateTopicTmpl string
	clock           func() time.Time

	mu     sync.Mutex
	brains map[string]*Brain
}

// NewService wires the consumers to the service handlers.
func NewService(
	telemetry mqttbus.IConsumer,
	manual mqttbus.IConsumer,
	publisher mqttbus.IPublisher,
	wclient WeatherClient,
	metrics *Metrics,
	updateTopicTmpl string,
) (*Service, error) {
	if telemetry == nil || publisher == nil {
		return nil, errors.New("telemetry consumer and publisher are required")
	}
	if wclient == nil {
		return nil, errors.New("weather client is nil")
	}
	if updateTopicTmpl == "" {
		updateTopicTmpl = "event/systemUpdate/{device}"
	}

	s := &Service{
		telemetry:       telemetry,
		manual:          manual,
		publisher:       publisher,
		wclient:         wclient,
		metrics:         metrics,
		deduper:         dedup.New(10*time.Minute, 20000),
		updateTopicTmpl: updateTopicTmpl,
		clock:           time.Now,
		brains:          make(map[string]*Brain),
	}
	telemetry.SetHandler(s.handleSample)
	if manual != nil {
		manual.SetHandler(s.handleManual)
	}
	return s, nil
}

// Start runs the consumers until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.telemetry.ConsumeMessage(ctx)
	if s.manual != nil {
		go s.manual.ConsumeMessage(ctx)
	}
	<-ctx.Done()
}

func (s *Service) brainFor(deviceID string) *Brain {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.brains[deviceID]; ok {
		return b
	}
	b := NewBrain(deviceID, s.wclient, s.metrics)
	s.brains[deviceID] = b
	return b
}

func (s *Service) handleSample(topic string, msg mqtt.Message) error {
	// Telemetry arrives at QoS 1; drop redeliveries before touching state.
	h := sha256.Sum256(msg.Payload())
	if !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var sample messages.SensorSample
	if err := json.Unmarshal(msg.Payload(), &sample); err != nil {
		log.Printf("brain: bad telemetry payload on %s: %v", topic, err)
		s.countCycle(CycleRejected)
		return nil
	}

	deviceID := sample.DeviceID
	if deviceID == "" {
		deviceID = deviceFromTopic(topic)
	}
	if deviceID == "" {
		log.Printf("brain: telemetry without device id on %s", topic)
		s.countCycle(CycleRejected)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	evt, err := s.brainFor(deviceID).Cycle(ctx, &sample, s.clock())
	if err != nil {
		log.Printf("brain: cycle rejected for %s: %v", deviceID, err)
		s.countCycle(CycleRejected)
		return nil
	}
	if evt == nil {
		// Warming up: buffers fed, no decision yet.
		s.countCycle(CycleWarmup)
		return nil
	}
	s.countCycle(CycleProcessed)

	b, err := json.Marshal(evt)
	if err != nil {
		log.Printf("brain: marshal decision for %s: %v", deviceID, err)
		return nil
	}
	out := strings.Replace(s.updateTopicTmpl, "{device}", deviceID, 1)
	if err := s.publisher.PublishToQos(out, 1, false, string(b)); err != nil {
		log.Printf("brain: publish decision for %s: %v", deviceID, err)
		return err
	}
	log.Printf("decision: %s state=%q pump=%v alert=%q",
		deviceID, evt.System.AlgorithmState, evt.System.PumpActive, evt.System.Alert)
	return nil
}

// handleManual acknowledges manual control requests. The capability is
// deliberately unimplemented: the request is validated and logged but the
// pump controller is never touched.
func (s *Service) handleManual(topic string, msg mqtt.Message) error {
	var req messages.ManualControlEvent
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		log.Printf("brain: bad manual control payload on %s: %v", topic, err)
		return nil
	}
	switch req.Action {
	case messages.ActionPumpOn:
		log.Printf("brain: manual %s request for %s acknowledged (override not implemented)",
			req.Action, req.DeviceID)
		if s.metrics != nil {
			s.metrics.ManualOverrides.Inc()
		}
	default:
		log.Printf("brain: unknown manual action %q on %s", req.Action, topic)
	}
	return nil
}

func (s *Service) countCycle(result string) {
	if s.metrics != nil {
		s.metrics.Cycles.WithLabelValues(result).Inc()
	}
}

// deviceFromTopic extracts the device id from "sensor/data/{device}".
func deviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-1]
}
