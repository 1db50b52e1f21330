package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/transitpulse/bustracker/internal/auth"
	"github.com/transitpulse/bustracker/internal/config"
	"github.com/transitpulse/bustracker/internal/db"
	"github.com/transitpulse/bustracker/internal/handlers"
	"github.com/transitpulse/bustracker/internal/ingest"
	"github.com/transitpulse/bustracker/internal/journey"
	"github.com/transitpulse/bustracker/internal/metrics"
	"github.com/transitpulse/bustracker/internal/middleware"
	"github.com/transitpulse/bustracker/internal/proximity"
	"github.com/transitpulse/bustracker/internal/stats"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET not set, using the default development secret")
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	store := db.NewMongoStore(client.Database(cfg.MongoDB))
	log.Info("Connected to MongoDB")

	collector := metrics.NewCollector()
	journeys := journey.NewService(store, collector)
	statsEngine := stats.NewEngine(store)

	matrix := proximity.NewORSClient(cfg.ORSAPIKey)
	if !matrix.Configured() {
		log.Warn("OpenRouteService API key not configured, proximity queries will use the haversine fallback")
	}
	estimator := proximity.NewEstimator(store, matrix, collector, cfg.MatrixTimeout)

	journeyHandler := handlers.NewJourneyHandler(journeys, statsEngine)
	proximityHandler := handlers.NewProximityHandler(estimator)
	authMiddleware := middleware.NewAuthMiddleware(auth.NewService(cfg.JWTSecret))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/journeys", journeyHandler.Start)
	mux.HandleFunc("POST /api/journeys/{id}/board", journeyHandler.Board)
	mux.HandleFunc("POST /api/journeys/{id}/track", journeyHandler.Track)
	mux.HandleFunc("POST /api/journeys/{id}/complete", journeyHandler.Complete)
	mux.HandleFunc("POST /api/journeys/{id}/cancel", journeyHandler.Cancel)
	mux.HandleFunc("POST /api/journeys/{id}/next-stop", journeyHandler.NextStop)
	mux.HandleFunc("POST /api/journeys/{id}/previous-stop", journeyHandler.PreviousStop)
	mux.HandleFunc("GET /api/journeys/{id}/progress", journeyHandler.Progress)
	mux.HandleFunc("GET /api/journeys/{id}/stats", journeyHandler.Stats)
	mux.HandleFunc("GET /api/stops/{id}/approaching", proximityHandler.Approaching)
	mux.Handle("GET /metrics", collector.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if cfg.MQTTBrokerURL != "" {
		subscriber, err := ingest.NewSubscriber(cfg.MQTTBrokerURL, cfg.MQTTTopic, journeys)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		if err := subscriber.Start(); err != nil {
			log.WithError(err).Fatal("Failed to subscribe to position topic")
		}
		defer subscriber.Stop()
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: authMiddleware.Authenticate(mux),
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")
	server.Shutdown(context.Background())
}
