package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/k2302/golang-order-matching/api"
	"github.com/k2302/golang-order-matching/audit"
	"github.com/k2302/golang-order-matching/config"
	"github.com/k2302/golang-order-matching/engine"
	"github.com/k2302/golang-order-matching/events"
	"github.com/k2302/golang-order-matching/intake"
	"github.com/k2302/golang-order-matching/logging"
	"github.com/k2302/golang-order-matching/pricefmt"
	"github.com/k2302/golang-order-matching/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer zlog.Sync()

	codec := pricefmt.NewCodec(cfg.PriceScale)

	snapStore, err := snapshot.Open(cfg.SnapshotDataDir, zlog)
	if err != nil {
		zlog.Fatal("snapshot store open failed", zap.Error(err))
	}
	defer snapStore.Close()

	kafkaSink, err := events.NewKafkaSink(cfg.KafkaBrokers, events.Topics{
		Trades: cfg.KafkaTradeTopic,
		Orders: cfg.KafkaOrderTopic,
		Ticks:  cfg.KafkaTickTopic,
		Errors: cfg.KafkaErrorTopic,
	}, zlog)
	if err != nil {
		zlog.Fatal("kafka sink init failed", zap.Error(err))
	}
	defer kafkaSink.Close()

	wsHub := events.NewWSHub(zlog)
	tradeSink := snapshot.NewTradeSink(snapStore, zlog)

	auditLog, err := audit.Open(cfg.MySQLDSN, zlog)
	if err != nil {
		zlog.Fatal("audit log open failed", zap.Error(err))
	}
	defer auditLog.Close()
	if err := auditLog.EnsureSchema(); err != nil {
		zlog.Fatal("audit schema failed", zap.Error(err))
	}

	emitter := events.NewEmitter(1024, zlog, kafkaSink, wsHub, tradeSink, auditLog)
	eng := engine.New(zlog, emitter)

	dispatcher := intake.NewDispatcher(eng, codec, zlog)
	pool := intake.NewPool(cfg.KafkaBrokers, cfg.KafkaIntakeTopic, cfg.KafkaGroupID, cfg.IntakeWorkers, dispatcher, zlog)

	server := api.NewServer(eng, codec, wsHub, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emitterDone := make(chan struct{})
	go func() {
		emitter.Run(ctx)
		close(emitterDone)
	}()
	go pool.Run(ctx)

	if cfg.SnapshotEnabled {
		sweeper := snapshot.NewSweeper(snapStore, eng, time.Duration(cfg.SnapshotIntervalSecond)*time.Second, zlog)
		go sweeper.Run(ctx)
	}

	httpServer := &http.Server{Addr: cfg.HTTPListenAddr, Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		zlog.Info("shutdown signal received, draining")
		if err := httpServer.Shutdown(context.Background()); err != nil {
			zlog.Error("http server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("http intake façade listening", zap.String("addr", cfg.HTTPListenAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("http server failed", zap.Error(err))
	}
	<-emitterDone
}
