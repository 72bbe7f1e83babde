// Command fanout is the Fan-out Core: it bridges the hot-path pub/sub
// channel to viewer sockets and serves the static road geometry.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	redislib "github.com/redis/go-redis/v9"

	"github.com/opentraffic/citysim/internal/config"
	"github.com/opentraffic/citysim/internal/fanout"
	"github.com/opentraffic/citysim/internal/graph"
	"github.com/opentraffic/citysim/internal/obs"
)

func main() {
	config.Load()
	common := config.LoadCommon()
	logger := obs.NewLogger("fanout", common.LogLevel)

	roadNetworkPath := os.Getenv("ROAD_NETWORK_PATH")
	if roadNetworkPath == "" {
		roadNetworkPath = "assets/berlin.osm.pbf"
	}
	mode := fanout.WSMode(os.Getenv("FANOUT_WS_MODE"))
	if mode != fanout.ModePoll {
		mode = fanout.ModePush
	}
	port := os.Getenv("FANOUT_PORT")
	if port == "" {
		port = "8090"
	}

	logger.WithFields(log.Fields{
		"road_network": roadNetworkPath,
		"ws_mode":      mode,
		"port":         port,
	}).Info("starting fan-out core")

	g, err := graph.LoadFromFile(roadNetworkPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load road network")
	}

	opt, err := redislib.ParseURL(common.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("invalid REDIS_URL")
	}
	redisClient := redislib.NewClient(opt)

	metrics := obs.NewFanoutMetrics()
	hub := fanout.NewHub(metrics)
	srv := fanout.NewServer(g, hub, redisClient, mode, logger, metrics)

	ctx, cancel := context.WithCancel(context.Background())

	if mode == fanout.ModePush {
		go fanout.SubscribeToUpdates(ctx, redisClient, hub, logger)
	}

	httpServer := &http.Server{Addr: ":" + port, Handler: srv.Routes()}

	go func() {
		logger.WithField("port", port).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	_ = redisClient.Close()

	logger.Info("fan-out core exited")
}
