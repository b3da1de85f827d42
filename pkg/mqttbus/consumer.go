package mqttbus

import (
	"context"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Handler processes one inbound message. Returning an error logs it;
// the subscription stays up either way.
type Handler func(topic string, message mqtt.Message) error

// IConsumer subscribes to a topic and feeds messages to a handler.
type IConsumer interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(h Handler)
}

// Consumer subscribes to a single topic filter on the shared client.
type Consumer struct {
	client  mqtt.Client
	topic   string
	qos     byte
	handler Handler
}

var _ IConsumer = (*Consumer)(nil)

// NewConsumer creates a consumer; the handler may be nil and injected
// later with SetHandler.
func NewConsumer(client mqtt.Client, topic string, qos byte, handler Handler) *Consumer {
	return &Consumer{client: client, topic: topic, qos: qos, handler: handler}
}

func (c *Consumer) SetHandler(h Handler) {
	c.handler = h
}

// ConsumeMessage subscribes and blocks until ctx is cancelled, then
// unsubscribes.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	token := c.client.Subscribe(c.topic, c.qos, func(_ mqtt.Client, message mqtt.Message) {
		if c.handler == nil {
			log.Printf("mqttbus: no handler set for topic %s", c.topic)
			return
		}
		if err := c.handler(message.Topic(), message); err != nil {
			log.Printf("mqttbus: error handling message on %s: %v", message.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("mqttbus: error subscribing to %s: %v", c.topic, token.Error())
		return
	}
	log.Printf("mqttbus: subscribed to %s (qos=%d)", c.topic, c.qos)

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}
