package sensor_simulator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/greenbrain-iot/greenbrain/internal/model"
	"github.com/greenbrain-iot/greenbrain/pkg/dedup"
	"github.com/greenbrain-iot/greenbrain/pkg/mqttbus"
)

// Simulator publishes synthetic telemetry for one device and tracks the
// decision records coming back so the generated soil moisture reacts to
// the pump: a closed loop against a running brain service.
type Simulator struct {
	mu         sync.Mutex
	deviceID   string
	dataTopic  string
	generator  *DataGenerator
	publisher  mqttbus.IPublisher
	consumer   mqttbus.IConsumer
	deduper    *dedup.Deduper
	pumpActive bool
}

func NewSimulator(consumer mqttbus.IConsumer, publisher mqttbus.IPublisher,
	gen *DataGenerator, deviceID, dataTopic string) *Simulator {
	s := &Simulator{
		deviceID:  deviceID,
		dataTopic: dataTopic,
		generator: gen,
		publisher: publisher,
		consumer:  consumer,
		deduper:   dedup.New(2*time.Minute, 10000),
	}
	if consumer != nil {
		consumer.SetHandler(s.handleUpdate)
	}
	return s
}

// Start publishes a sample every interval until ctx is cancelled.
func (s *Simulator) Start(ctx context.Context, interval time.Duration) {
	if s.consumer != nil {
		go s.consumer.ConsumeMessage(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.publisher.Close()
			return
		case <-ticker.C:
			sample := s.generator.Next(s.deviceID, s.isPumpActive())
			payload, _ := json.Marshal(sample)
			log.Printf("sim: pub device=%s soil=%.1f%% pump=%v",
				s.deviceID, *sample.SoilMoisture, s.isPumpActive())
			if err := s.publisher.PublishToQos(s.dataTopic, 1, false, string(payload)); err != nil {
				log.Printf("sim: publish error: %v", err)
			}
		}
	}
}

func (s *Simulator) handleUpdate(topic string, msg mqtt.Message) error {
	// QoS 1 redeliveries carry the same payload, same hash.
	h := sha256.Sum256(msg.Payload())
	if !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var evt model.SystemUpdateEvent
	if err := json.Unmarshal(msg.Payload(), &evt); err != nil {
		log.Printf("sim: bad decision record on %s: %v", topic, err)
		return nil
	}
	if evt.DeviceID != s.deviceID && !strings.HasSuffix(topic, "/"+s.deviceID) {
		return nil // another device's record
	}

	s.mu.Lock()
	prev := s.pumpActive
	s.pumpActive = evt.System.PumpActive
	s.mu.Unlock()
	if prev != evt.System.PumpActive {
		log.Printf("sim: device=%s pump %v -> %v (%s)",
			s.deviceID, prev, evt.System.PumpActive, evt.System.AlgorithmState)
	}
	return nil
}

func (s *Simulator) isPumpActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pumpActive
}
