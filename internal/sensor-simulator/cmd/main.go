package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sensorSimulator "github.com/greenbrain-iot/greenbrain/internal/sensor-simulator"
	"github.com/greenbrain-iot/greenbrain/pkg/mqttbus"
)

func main() {
	deviceID := flag.String("device-id", "plant-1", "unique device identifier")
	clientID := flag.String("client-id", "sensor-sim-1", "MQTT client ID")
	host := flag.String("mqtt-host", "localhost", "MQTT broker host")
	port := flag.Int("mqtt-port", 1883, "MQTT broker port")
	interval := flag.Duration("interval", 10*time.Second, "publish interval")
	seed := flag.Float64("soil-seed", 45.0, "initial soil moisture percent")
	decay := flag.Float64("decay", 0.15, "idle moisture decay, percent per minute")
	flag.Parse()

	cfg := &mqttbus.Config{
		Host:     *host,
		Port:     *port,
		User:     "guest",
		Password: "guest",
		ClientID: *clientID,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mqttbus.NewConn(cfg, ctx)
	if err != nil {
		log.Fatalf("sim: mqtt connect: %v", err)
	}

	publisher := mqttbus.NewPublisher(client)
	consumer := mqttbus.NewConsumer(client, "event/systemUpdate/"+*deviceID, 1, nil)

	generator := sensorSimulator.NewDataGenerator(*decay, time.Now().UnixNano())
	generator.SeedMoisture(*seed)

	sim := sensorSimulator.NewSimulator(consumer, publisher, generator, *deviceID, "sensor/data/"+*deviceID)
	sim.Start(ctx, *interval)
}
