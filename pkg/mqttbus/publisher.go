package mqttbus

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher publishes messages to broker topics.
type IPublisher interface {
	Publish(topic, payload string) error
	PublishToQos(topic string, qos byte, retained bool, payload string) error
	Close()
}

// Publisher wraps the shared MQTT client for publishing.
type Publisher struct {
	client mqtt.Client
}

var _ IPublisher = (*Publisher)(nil)

func NewPublisher(client mqtt.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends payload at QoS 0.
func (p *Publisher) Publish(topic, payload string) error {
	return p.PublishToQos(topic, 0, false, payload)
}

// PublishToQos sends payload with an explicit QoS and retained flag.
func (p *Publisher) PublishToQos(topic string, qos byte, retained bool, payload string) error {
	token := p.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		log.Println("mqttbus: publisher disconnected")
	}
}
