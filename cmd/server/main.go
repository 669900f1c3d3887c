package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-bulk-sender/internal/api"
	"whatsapp-bulk-sender/internal/config"
	"whatsapp-bulk-sender/internal/contact"
	"whatsapp-bulk-sender/internal/database"
	"whatsapp-bulk-sender/internal/delivery"
	"whatsapp-bulk-sender/internal/dispatch"
	"whatsapp-bulk-sender/internal/logging"
	"whatsapp-bulk-sender/internal/session"
	"whatsapp-bulk-sender/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	deliveryClient, err := delivery.NewClient(cfg.DispatchWebhookURL, cfg.DeliveryTimeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DISPATCH_WEBHOOK_URL")
	}
	pacer, err := dispatch.NewPacer(cfg.Pacing, cfg.PaceInterval, cfg.RatePerSec, cfg.RateBurst)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid pacing config")
	}
	policy, err := dispatch.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid FAILURE_POLICY")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := contact.NewFetcher(
		database.NewClientStore(db),
		nil,
		contact.FallbackConfig{Enabled: cfg.DevFallback, Size: cfg.DevFallbackSize},
		log,
	)
	csvIngestor := contact.NewCSVIngestor(log, cfg.CSVEligibleOnly)
	engine := dispatch.NewEngine(deliveryClient, pacer, policy, log)
	sess := session.New(fetcher, csvIngestor, engine, log)

	hub := ws.NewHub(ctx.Done(), log)
	go hub.Run()
	events, unsubscribe := engine.Subscribe(64)
	defer unsubscribe()
	go hub.Forward(events)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	contactHandler := api.NewContactHandler(sess)
	broadcastHandler := api.NewBroadcastHandler(ctx, sess, engine, cfg.AttachmentBaseURL)
	r := api.NewRouter(contactHandler, broadcastHandler, func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info().Str("port", cfg.Port).Str("db", cfg.DBDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to run server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sess.Cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
