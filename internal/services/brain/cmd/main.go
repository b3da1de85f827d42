package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"os/signal"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenbrain-iot/greenbrain/internal/services/brain"
	"github.com/greenbrain-iot/greenbrain/pkg/mqttbus"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatalf("brain: config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === MQTT ===
	mqCfg := &mqttbus.Config{
		Host:     cfg.MQTT.Host,
		Port:     cfg.MQTT.Port,
		User:     cfg.MQTT.User,
		Password: cfg.MQTT.Password,
		ClientID: cfg.MQTT.ClientID,
	}
	client, err := mqttbus.NewConn(mqCfg, ctx)
	if err != nil {
		log.Fatalf("brain: mqtt connection error: %v", err)
	}
	defer mqttbus.CloseConn(client)

	telemetry := mqttbus.NewConsumer(client, cfg.Topics.Telemetry, 1, nil)
	manual := mqttbus.NewConsumer(client, cfg.Topics.Manual, 0, nil)
	publisher := mqttbus.NewPublisher(client)

	// === Weather collaborator ===
	wclient := brain.NewOWMClient(brain.OWMConfig{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		City:    cfg.Weather.City,
		Timeout: time.Duration(cfg.Weather.TimeoutMS) * time.Millisecond,
	})

	// === Metrics / health HTTP ===
	reg := prometheus.NewRegistry()
	metrics := brain.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", healthHandler(client))
	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("brain: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("brain: http server error: %v", err)
		}
	}()

	svc, err := brain.NewService(telemetry, manual, publisher, wclient, metrics, cfg.Topics.Update)
	if err != nil {
		log.Fatalf("brain: service init error: %v", err)
	}

	log.Println("brain: service running")
	svc.Start(ctx)

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = hs.Shutdown(shCtx)
}

func healthHandler(client mqtt.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if client == nil || !client.IsConnectionOpen() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("mqtt disconnected"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
}
