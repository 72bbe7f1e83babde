package fanout

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/graph"
	"github.com/opentraffic/citysim/internal/obs"
)

// WSMode selects /ws's behavior: push (Mode A, broadcast hub fed by
// pub/sub) or poll (Mode B, per-connection viewport query).
type WSMode string

const (
	ModePush WSMode = "push"
	ModePoll WSMode = "poll"
)

// Server serves /health, /map, /ws, and /metrics.
type Server struct {
	Graph    *graph.RoadGraph
	Snapshot []RoadSegment
	Hub      *Hub
	Redis    *redis.Client
	Mode     WSMode
	Log      *log.Entry
	Metrics  *obs.FanoutMetrics

	upgrader websocket.Upgrader
}

// NewServer wires a Server with a permissive WebSocket upgrader, matching
// the reference's permissive CORS policy.
func NewServer(g *graph.RoadGraph, hub *Hub, redisClient *redis.Client, mode WSMode, logger *log.Entry, metrics *obs.FanoutMetrics) *Server {
	return &Server{
		Graph:    g,
		Snapshot: BuildRoadSnapshot(g),
		Hub:      hub,
		Redis:    redisClient,
		Mode:     mode,
		Log:      logger,
		Metrics:  metrics,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// corsMiddleware adds permissive CORS headers, matching spec.md's "CORS
// permissive" requirement.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Routes returns the HTTP handler for all four endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", corsMiddleware(http.HandlerFunc(s.handleHealth)))
	mux.Handle("/map", corsMiddleware(http.HandlerFunc(s.handleMap)))
	mux.Handle("/ws", corsMiddleware(http.HandlerFunc(s.handleWS)))
	mux.Handle("/metrics", obs.Handler())
	return mux
}

type healthResponse struct {
	Status       string `json:"status"`
	MapLoaded    bool   `json:"map_loaded"`
	TotalRoads   int    `json:"total_roads"`
	VisibleRoads int    `json:"visible_roads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.Graph.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		MapLoaded:    stats.EdgeCount > 0,
		TotalRoads:   stats.EdgeCount,
		VisibleRoads: stats.EdgeCount,
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if s.Metrics != nil {
		s.Metrics.ActiveSockets.Inc()
		defer s.Metrics.ActiveSockets.Dec()
	}

	switch s.Mode {
	case ModePoll:
		s.serveModeB(conn, r)
	default:
		s.serveModeA(conn)
	}
}

func (s *Server) serveModeA(conn *websocket.Conn) {
	ch, unsubscribe := s.Hub.Subscribe()
	defer unsubscribe()

	// Detect client disconnect by reading (and discarding) incoming frames.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for payload := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
		if s.Metrics != nil {
			s.Metrics.MessagesSent.Inc()
		}
	}
}

func (s *Server) serveModeB(conn *websocket.Conn, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	radiusKm, err3 := strconv.ParseFloat(r.URL.Query().Get("radius_km"), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"lat, lon, radius_km are required"}`))
		return
	}

	ctx := r.Context()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ServeViewport(ctx, s.Redis, lat, lon, radiusKm, func(payload []byte) error {
		err := conn.WriteMessage(websocket.TextMessage, payload)
		if err == nil && s.Metrics != nil {
			s.Metrics.MessagesSent.Inc()
		}
		return err
	}, s.Log)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
