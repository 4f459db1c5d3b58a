package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/httpx"
	kafkax "github.com/Jeffzycode/LittleLemonAPI/internal/kafka"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/redisx"
	"github.com/Jeffzycode/LittleLemonAPI/internal/tracking"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

var bootstrapAdmin string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&bootstrapAdmin, "bootstrap-admin", "", "create this superuser if missing and log a token for it")
}

func runServe() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	be, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer be.close()

	issuer := auth.NewIssuer(cfg.JWTSecret)
	us := &users.Service{Store: be.store, Log: log}
	if bootstrapAdmin != "" {
		if err := ensureAdmin(ctx, us, issuer, bootstrapAdmin); err != nil {
			return err
		}
	}

	// Events
	var sink orders.EventSink = orders.NopSink{}
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		pub := kafkax.NewPublisher(log)
		for _, topic := range []string{orders.TopicOrderPlaced, orders.TopicOrderUpdated} {
			p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024, log)
			p.Start(ctx)
			producers = append(producers, p)
			pub.Route(topic, p)
		}
		sink = pub
	} else {
		log.Info("KAFKA_BROKERS empty; order events are not published")
	}

	d := httpx.Deps{
		Menu:         &menu.Service{Store: be.store},
		Cart:         &cart.Service{Store: be.store, Menu: be.store},
		Placer:       &orders.Placer{Store: be.store, Events: sink, Log: log, Service: cfg.ServiceName},
		Lifecycle:    &orders.Lifecycle{Store: be.store, Users: be.store, Events: sink, Log: log, Service: cfg.ServiceName},
		Orders:       &orders.Reader{Store: be.store},
		Users:        us,
		Authenticate: auth.Middleware(issuer, us, log),
		Ready:        be.ping,
		Log:          log,
		PageSize:     cfg.DefaultPageSize,
		MaxPageSize:  cfg.MaxPageSize,
	}

	// Redis
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			log.WithError(err).Warn("redis not reachable; continuing")
		}
		d.Idempotency = &redisx.Idempotency{RDB: rdb}
		d.Tracker = &tracking.Tracker{Cache: tracking.RedisCache{RDB: rdb}, Service: cfg.ServiceName, Log: log}
	} else {
		log.Info("REDIS_ADDR empty; idempotency keys and status cache disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "driver": cfg.StoreDriver}).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-errCh:
		return err
	}
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	for _, p := range producers {
		p.Close()
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
	return nil
}

func ensureAdmin(ctx context.Context, us *users.Service, issuer *auth.Issuer, name string) error {
	id, err := us.IdentityByUsername(ctx, name)
	if apperr.Is(err, apperr.KindNotFound) {
		u, cerr := us.Create(ctx, users.NewUser{Username: name, Superuser: true})
		if cerr != nil {
			return cerr
		}
		id, err = u.Identity(), nil
	}
	if err != nil {
		return err
	}
	tok, err := issuer.Mint(id.UserID, cfg.JWTTTL)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"user": name, "token": tok}).Warn("bootstrap admin token")
	return nil
}
