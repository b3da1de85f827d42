package recorder

import (
	"encoding/json"
	"errors"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/greenbrain-iot/greenbrain/internal/model/messages"
)

const updateTopicPrefix = "event/systemUpdate/"

// MQTTHandler decodes published decision records and hands them to a sink.
type MQTTHandler struct {
	sink func(messages.SystemUpdateEvent)
}

func NewMQTTHandler(sink func(messages.SystemUpdateEvent)) *MQTTHandler {
	return &MQTTHandler{sink: sink}
}

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	if !strings.HasPrefix(m.Topic(), updateTopicPrefix) {
		return nil // ignore other topics
	}
	evt, err := DecodeUpdate(m.Topic(), m.Payload())
	if err != nil {
		return err
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

// DecodeUpdate parses a decision record, falling back to the topic suffix
// for the device id when the payload omits it.
func DecodeUpdate(topic string, payload []byte) (messages.SystemUpdateEvent, error) {
	var evt messages.SystemUpdateEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return messages.SystemUpdateEvent{}, err
	}
	if evt.DeviceID == "" {
		evt.DeviceID = strings.TrimPrefix(topic, updateTopicPrefix)
	}
	if evt.DeviceID == "" {
		return messages.SystemUpdateEvent{}, errors.New("system update: missing device id")
	}
	return evt, nil
}

// UpdateToPoint normalizes a decision record into an InfluxDB point.
func UpdateToPoint(evt messages.SystemUpdateEvent) *write.Point {
	tags := map[string]string{
		"device_id":       evt.DeviceID,
		"algorithm_state": evt.System.AlgorithmState,
	}
	fields := map[string]interface{}{
		"soil":             evt.Sensors.Soil,
		"temp":             evt.Sensors.Temp,
		"light":            evt.Sensors.Light,
		"npk":              evt.Sensors.NPK,
		"outside_temp":     evt.Weather.Temp,
		"outside_humidity": evt.Weather.Humidity,
		"condition":        evt.Weather.Condition,
		"vpd":              evt.Weather.VPD,
		"pump_active":      evt.System.PumpActive,
		"alert":            evt.System.Alert,
		"battery_level":    int64(evt.System.BatteryLevel),
	}
	return influxdb2.NewPoint("system_update", tags, fields, evt.Timestamp)
}
