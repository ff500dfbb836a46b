package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Keoroanthony/go-food-delivery/configs"
	"github.com/Keoroanthony/go-food-delivery/internal/auth"
	"github.com/Keoroanthony/go-food-delivery/internal/db"
	"github.com/Keoroanthony/go-food-delivery/internal/handlers"
	"github.com/Keoroanthony/go-food-delivery/internal/logging"
	"github.com/Keoroanthony/go-food-delivery/internal/metrics"
	"github.com/Keoroanthony/go-food-delivery/internal/notifier"
	"github.com/Keoroanthony/go-food-delivery/internal/orders"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.IsProduction())
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	conn, err := db.Init(cfg.Database)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	store := db.NewStore(conn)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	dispatcher := newDispatcher(cfg, log)

	svc := orders.NewService(orders.Deps{
		Users:       store,
		Restaurants: store,
		Meals:       store,
		Coupons:     store,
		Blocks:      store,
		Orders:      store,
		Listeners:   []orders.Listener{m, dispatcher},
		Logger:      log.Named("orders"),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(log.Named("http")), m.Middleware())

	// ── session store ──
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions(auth.SessionName, sessionStore))

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	if cfg.OIDC.Issuer != "" {
		oidcAuth, err := auth.NewOIDC(context.Background(), cfg.OIDC, store, log.Named("auth"))
		if err != nil {
			log.Fatal("OIDC init failed", zap.Error(err))
		}
		r.GET("/auth/login", oidcAuth.Login)
		r.GET("/auth/callback", oidcAuth.Callback)
	} else {
		log.Warn("OIDC_ISSUER not set, login endpoints disabled")
	}

	// ── protected API ──
	api := r.Group("/api")
	api.Use(auth.RequireAuth(store))
	handlers.NewOrderHandler(svc, log.Named("orders"), m).Register(api)
	handlers.NewOwnerHandler(store, log.Named("owner"), m).Register(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	dispatcher.Wait()
	if err := dispatcher.Close(); err != nil {
		log.Warn("event publisher close failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// newDispatcher wires every notification channel that is configured.
func newDispatcher(cfg *config.Config, log *zap.Logger) *notifier.Dispatcher {
	var senders []notifier.Sender

	atCfg := config.LoadAfricaTalkingConfig()
	if atCfg.Username != "" && atCfg.APIKey != "" {
		senders = append(senders, notifier.NewSMSSender(atCfg, &http.Client{Timeout: 10 * time.Second}))
	} else {
		log.Warn("Africa's Talking credentials not set, SMS disabled")
	}

	emailCfg := config.LoadEmailConfig()
	if emailCfg.SenderEmail != "" {
		email, err := notifier.NewEmailSender(context.Background(), emailCfg)
		if err != nil {
			log.Warn("email disabled", zap.Error(err))
		} else {
			senders = append(senders, email)
		}
	} else {
		log.Warn("AWS_SENDER_ADDRESS not set, email disabled")
	}

	var events *notifier.EventPublisher
	if cfg.Kafka.Enabled() {
		events = notifier.NewEventPublisher(cfg.Kafka)
	}

	return notifier.NewDispatcher(log.Named("notifier"), events, senders...)
}
