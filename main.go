package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"imobot/config"
	"imobot/controllers"
	"imobot/db"
	"imobot/eventlog"
	"imobot/gateway"
	"imobot/logger"
	"imobot/pipeline"
	"imobot/router"
	"imobot/sessions"
	"imobot/store"
	"imobot/workers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Get(getenv("CONFIG_PATH", "config/config.json"))

	log, err := logger.New(cfg.Environment, cfg.LogPath)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db.SetConfigurations(cfg)
	database, err := db.Connect()
	if err != nil {
		log.Fatal("falha ao conectar no banco", zap.Error(err))
	}
	defer database.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	events := eventlog.New(cfg.EventLogCapacity)
	gw := gateway.NewClient(log)
	channels := store.Channels{DB: database}
	channelGateway := store.ChannelGateway{Channels: channels, Client: gw}

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Sessions:     sessions.NewStore(),
		Leads:        store.Leads{DB: database},
		Tasks:        store.Tasks{DB: database},
		Deals:        store.Deals{DB: database},
		Automations:  store.Automations{DB: database},
		Conversation: store.Conversations{DB: database},
		Channels:     channelGateway,
		Sender:       channelGateway,
		Flags: pipeline.Flags{
			CreateLeads: cfg.CreateLeads,
			CreateTasks: cfg.CreateTasks,
			CreateDeals: cfg.CreateDeals,
		},
		Log: log,
	})

	var source workers.EventSource = workers.LocalSource{Log: events}
	if cfg.RelayURL != "" {
		// modo relay: drena o receptor de outra instância em vez do log local
		source = eventlog.RelayClient{BaseURL: cfg.RelayURL, APIKey: cfg.RelayAPIKey}
		log.Info("poller em modo relay", zap.String("url", cfg.RelayURL))
	}

	pollers := workers.NewPollerManager(
		time.Duration(cfg.PollIntervalMs)*time.Millisecond,
		source,
		orch,
		log,
	)

	controllers.Setup(controllers.Deps{
		Log:      log,
		Events:   events,
		Pipeline: orch,
		Gateway:  gw,
		Pollers:  pollers,
	})

	r := gin.New()
	r.Use(db.SetDBtoContext(database))
	router.Initialize(r, log)

	// canais já configurados voltam a ser drenados depois de um restart
	if rows, err := channels.All(); err != nil {
		log.Warn("falha ao listar canais configurados", zap.Error(err))
	} else {
		for _, row := range rows {
			pollers.Ensure(row.Channel)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("imobot ouvindo", zap.String("port", cfg.ApiPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		pollers.StopAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("servidor encerrou com erro", zap.Error(err))
	}
	log.Info("servidor encerrado")
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
