package monitor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"

	"github.com/gin-gonic/gin"
)

var _ interfaces.IDataExchanger = (*MonitorServer)(nil)

// -----------------------------------------------------------------------------
// MonitorServer
//
// Operator-facing HTTP sidecar: a small REST API for health/status checks
// plus a websocket feed of live market data snapshots. It never touches the
// trading wire protocol; it observes.
// -----------------------------------------------------------------------------

type MonitorServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Transport interfaces.ITransport

	engine *gin.Engine
	server *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MarketData
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Latest snapshot per symbol, for the REST API and for priming new
	// websocket clients.
	quotes     map[string]models.MarketData
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewMonitorServer(cfg *models.MConfig, log *logger.Logger, transport interfaces.ITransport) *MonitorServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &MonitorServer{
		Config:    cfg,
		Logger:    log,
		Transport: transport,
		engine:    gin.Default(),
		clients:   make(map[*Client]struct{}),
		// Buffered so a burst of quote updates never blocks the publisher.
		broadcast:  make(chan models.MarketData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		quotes:     make(map[string]models.MarketData),
	}

	// CORS for local dashboards only.
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/status", s.getStatus)
	s.engine.GET("/api/config", s.getConfig)

	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func (s *MonitorServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Monitor.Host, s.Config.Monitor.Port)
	s.Logger.Info("Monitor listening on %s", addr)

	go s.runHub()

	s.server = &http.Server{Addr: addr, Handler: s.engine}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("monitor server: %v", err)
		}
	}()
	return nil
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) Stop() error {
	close(s.done)

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *MonitorServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	symbols := len(s.quotes)
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":           "ok",
		"ws_connections":   connections,
		"symbols_tracked":  symbols,
		"client_connected": s.Transport != nil && s.Transport.IsConnected(),
	})
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getStatus(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	quotes := make(map[string]wsQuote, len(s.quotes))
	for symbol, q := range s.quotes {
		quotes[symbol] = newWsQuote(q)
	}
	c.JSON(200, gin.H{"quotes": quotes})
}

// -----------------------------------------------------------------------------

func (s *MonitorServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"name":            s.Config.Name,
		"host":            s.Config.Host,
		"port":            s.Config.Port,
		"max_frame_bytes": s.Config.Framing.MaxFrameBytes,
		"db_type":         s.Config.Storage.DBType,
	})
}

// -----------------------------------------------------------------------------
// Wire representation of a quote on the websocket feed and status API.
// -----------------------------------------------------------------------------

type wsQuote struct {
	Symbol    string  `json:"symbol"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Last      float64 `json:"last"`
	Volume    uint64  `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

func newWsQuote(q models.MarketData) wsQuote {
	return wsQuote{
		Symbol:    models.UnpackSymbol(q.Symbol),
		Bid:       q.Bid,
		Ask:       q.Ask,
		Last:      q.Last,
		Volume:    q.Volume,
		Timestamp: q.Timestamp,
	}
}
