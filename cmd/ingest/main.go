// Command ingest is the Ingest Core: it consumes raw-telemetry, batches
// records to the time-series store, and maintains the live geo index and
// pub/sub channel the fan-out core reads from.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	redislib "github.com/redis/go-redis/v9"

	"github.com/opentraffic/citysim/internal/config"
	"github.com/opentraffic/citysim/internal/ingest"
	"github.com/opentraffic/citysim/internal/obs"
)

func main() {
	config.Load()
	common := config.LoadCommon()
	logger := obs.NewLogger("ingest", common.LogLevel)

	batchSize, err := config.GetInt("INGEST_BATCH_SIZE", 100)
	if err != nil {
		logger.WithError(err).Fatal("invalid INGEST_BATCH_SIZE")
	}
	groupID := os.Getenv("INGEST_GROUP_ID")
	if groupID == "" {
		groupID = "ingest-core"
	}
	metricsPort, err := config.GetInt("INGEST_METRICS_PORT", 9102)
	if err != nil {
		logger.WithError(err).Fatal("invalid INGEST_METRICS_PORT")
	}

	logger.WithFields(log.Fields{
		"batch_size": batchSize,
		"group_id":   groupID,
	}).Info("starting ingest core")

	metrics := obs.NewIngestMetrics()
	serveMetrics(metricsPort, logger)

	ctx, cancel := context.WithCancel(context.Background())

	batcher, err := ingest.NewBatcher(ctx, common.PostgresURL, batchSize, metrics)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize cold store")
	}

	opt, err := redislib.ParseURL(common.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("invalid REDIS_URL")
	}
	redisClient := redislib.NewClient(opt)
	hot := ingest.NewHotPath(redisClient)

	processor := &ingest.Processor{Batcher: batcher, Hot: hot, Log: logger, Metrics: metrics}

	consumer, err := ingest.NewConsumer(strings.Split(common.KafkaBrokers, ","), groupID, processor, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to start bus consumer")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutdown signal received, stopping consumer")
		cancel()
	}()

	if err := consumer.Run(ctx, "raw-telemetry"); err != nil {
		logger.WithError(err).Error("consumer loop exited with error")
	}

	_ = consumer.Close()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := batcher.Close(flushCtx); err != nil {
		logger.WithError(err).Error("final cold-path flush failed")
	}
	_ = redisClient.Close()

	logger.Info("ingest core exited")
}

func serveMetrics(port int, logger *log.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obs.Handler())
	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.WithError(err).Warn("metrics server stopped")
		}
	}()
}
