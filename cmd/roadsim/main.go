// Command roadsim is the Road Network & Simulation Core: it loads a
// drivable road graph, spawns vehicles onto it, and advances them in
// fixed-rate ticks, publishing their positions to raw-telemetry.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/config"
	"github.com/opentraffic/citysim/internal/graph"
	"github.com/opentraffic/citysim/internal/obs"
	"github.com/opentraffic/citysim/internal/sim"
)

func main() {
	config.Load()
	common := config.LoadCommon()
	logger := obs.NewLogger("sim", common.LogLevel)

	roadNetworkPath := os.Getenv("ROAD_NETWORK_PATH")
	if roadNetworkPath == "" {
		roadNetworkPath = "assets/berlin.osm.pbf"
	}

	fleetSize, err := config.GetInt("SIM_FLEET_SIZE", 1000)
	if err != nil {
		logger.WithError(err).Fatal("invalid SIM_FLEET_SIZE")
	}
	timeScale, err := config.GetFloat("SIM_TIME_SCALE", 10)
	if err != nil {
		logger.WithError(err).Fatal("invalid SIM_TIME_SCALE")
	}
	broadcastEvery, err := config.GetInt("SIM_BROADCAST_EVERY", 30)
	if err != nil {
		logger.WithError(err).Fatal("invalid SIM_BROADCAST_EVERY")
	}
	metricsAddr, err := config.GetInt("SIM_METRICS_PORT", 9101)
	if err != nil {
		logger.WithError(err).Fatal("invalid SIM_METRICS_PORT")
	}

	logger.WithFields(log.Fields{
		"road_network":    roadNetworkPath,
		"fleet_size":      fleetSize,
		"time_scale":      timeScale,
		"broadcast_every": broadcastEvery,
	}).Info("starting simulation core")

	g, err := graph.LoadFromFile(roadNetworkPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load road network")
	}

	metrics := obs.NewSimMetrics()
	serveMetrics(metricsAddr, logger)

	vehicles := sim.Spawn(g, fleetSize, logger)

	producer, err := sim.NewProducer(strings.Split(common.KafkaBrokers, ","), "raw-telemetry", logger, metrics)
	if err != nil {
		logger.WithError(err).Fatal("failed to start bus producer")
	}
	defer producer.Close()

	sched := &sim.Scheduler{
		Graph:          g,
		Vehicles:       vehicles,
		Producer:       producer,
		TimeScale:      timeScale,
		BroadcastEvery: broadcastEvery,
		Log:            logger,
		Metrics:        metrics,
	}

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutdown signal received")
		cancel()
	}()

	sched.Run(ctx)
	logger.Info("simulation core exited")
}
