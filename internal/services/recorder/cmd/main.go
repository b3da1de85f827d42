package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"

	"github.com/greenbrain-iot/greenbrain/internal/model/messages"
	"github.com/greenbrain-iot/greenbrain/internal/services/recorder"
	"github.com/greenbrain-iot/greenbrain/pkg/dedup"
	"github.com/greenbrain-iot/greenbrain/pkg/mqttbus"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	_ = godotenv.Load()

	cfg := struct {
		Bus mqttbus.Config

		InfluxURL    string
		InfluxToken  string
		InfluxOrg    string
		InfluxBucket string

		Topic         string
		BatchSize     int
		FlushInterval time.Duration

		HTTPPort       int
		ShutdownGrace  time.Duration
		ReadinessGrace time.Duration
	}{
		Bus: mqttbus.Config{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "recorder-service"),
		},

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "greenbrain"),
		InfluxBucket: envStr("INFLUX_BUCKET", "decisions"),

		Topic:         envStr("UPDATE_SUB_TOPIC", "event/systemUpdate/#"),
		BatchSize:     envInt("WRITE_BATCH_SIZE", 10),
		FlushInterval: time.Duration(envInt("WRITE_FLUSH_INTERVAL_MS", 200)) * time.Millisecond,

		HTTPPort:       envInt("HTTP_PORT", 8081),
		ShutdownGrace:  5 * time.Second,
		ReadinessGrace: 2 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === InfluxDB ===
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writeAPI := influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket)
	writer := recorder.NewWriter(writeAPI)

	// === MQTT ===
	client, err := mqttbus.NewConn(&cfg.Bus, ctx)
	if err != nil {
		log.Fatalf("recorder: mqtt connection error: %v", err)
	}
	defer mqttbus.CloseConn(client)

	// === HTTP ===
	mux := http.NewServeMux()
	mux.Handle("/healthz", recorder.NewHealthHandler(client, influx, writer))
	mux.Handle("/readyz", recorder.NewReadyHandler(client, influx, writer, cfg.ReadinessGrace))
	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("recorder: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("recorder: http server error: %v", err)
		}
	}()

	// === Consumer ===
	h := recorder.NewMQTTHandler(func(evt messages.SystemUpdateEvent) {
		writeAPI.WritePoint(recorder.UpdateToPoint(evt))
		writer.MarkIngest(evt.System.AlgorithmState)
	})

	// Decision records arrive at QoS 1; drop redeliveries by payload hash.
	d := dedup.New(10*time.Minute, 20000)

	log.Printf("recorder: subscribing to %s", cfg.Topic)
	if token := client.Subscribe(cfg.Topic, 1, func(_ mqtt.Client, m mqtt.Message) {
		hh := sha256.Sum256(m.Payload())
		if !d.ShouldProcess(hex.EncodeToString(hh[:])) {
			return
		}
		if err := h.Handle("", m); err != nil {
			log.Printf("recorder: handle error on %s: %v", m.Topic(), err)
		}
	}); token.Wait() && token.Error() != nil {
		log.Fatalf("recorder: subscribe error on %s: %v", cfg.Topic, token.Error())
	}

	<-ctx.Done()
	log.Printf("recorder: shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shCancel()
	_ = hs.Shutdown(shCtx)

	// allow a final flush
	time.Sleep(cfg.FlushInterval + 100*time.Millisecond)
}
