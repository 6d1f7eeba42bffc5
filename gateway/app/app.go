package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/bookhub/gateway/config"
	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/handler"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/Astemirdum/bookhub/gateway/internal/reconciler"
	"github.com/Astemirdum/bookhub/gateway/internal/server"
	"github.com/Astemirdum/bookhub/gateway/internal/service/library"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/Astemirdum/bookhub/pkg/kafka"
	"github.com/Astemirdum/bookhub/pkg/logger"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "gateway")

	var sinks []broker.Sink
	var producer sarama.AsyncProducer
	if cfg.Kafka.Enabled() {
		var err error
		producer, err = kafka.NewAsyncProducer(cfg.Kafka)
		if err != nil {
			log.DPanic("kafka", zap.Error(err))
		} else {
			eventLog := kafka.NewEventLog(producer, cfg.Kafka.Topic)
			go func() {
				for perr := range eventLog.Errors() {
					log.Warn("kafka delivery", zap.Error(perr))
				}
			}()
			sinks = append(sinks, broker.NewEventLogSink(eventLog))
		}
	}
	events := broker.New(log, sinks...)

	sessions := session.NewRegistry()
	librarySvc := library.NewService(log, cfg,
		library.OnUnauthorized(func(ctx context.Context, err error) {
			if s, ok := session.FromContext(ctx); ok {
				sessions.Drop(s.Token)
				log.Info("session dropped", zap.String("user", s.User.Email), zap.Error(err))
			}
		}),
	)
	catalog := view.NewCatalog()
	returns := reconciler.New(librarySvc, catalog, events, notify.NewLog(log), log)

	h := handler.New(log, librarySvc, returns, events, catalog, sessions)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ", zap.String("addr", srv.Addr()))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	// open event streams end when their subscriptions close
	events.Close()
	if err := srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Warn("kafka close", zap.Error(err))
		}
	}
	log.Info("Graceful shutdown finished")
	_ = log.Sync()
}
