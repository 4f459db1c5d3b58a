package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/config"
	kafkax "github.com/Jeffzycode/LittleLemonAPI/internal/kafka"
	"github.com/Jeffzycode/LittleLemonAPI/internal/logging"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/redisx"
	"github.com/Jeffzycode/LittleLemonAPI/internal/tracking"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if len(cfg.KafkaBrokers) == 0 || cfg.RedisAddr == "" {
		log.Fatal("tracker needs KAFKA_BROKERS and REDIS_ADDR")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.WithError(err).Fatal("redis ping")
	}

	tr := &tracking.Tracker{
		Cache:   tracking.RedisCache{RDB: rdb},
		Service: cfg.ServiceName + "-tracker",
		Log:     log,
	}

	topics := []string{orders.TopicOrderPlaced, orders.TopicOrderUpdated}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.TrackerGroup, topics, cfg.TrackerWorkers, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.WithFields(logrus.Fields{
			"group":   cfg.TrackerGroup,
			"topics":  topics,
			"workers": cfg.TrackerWorkers,
		}).Info("tracker consumer started")
		if err := cons.Start(ctx, tr.Handle); err != nil {
			log.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	<-done
}
