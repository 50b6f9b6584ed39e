package server

import (
	"context"
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-server/src/logger"
	"trading-server/src/models"
	"trading-server/src/services"
	"trading-server/src/transport"
)

// -----------------------------------------------------------------------------
// Full-stack test: a real TLS client against the framed transport, request
// loop, facade and services.
// -----------------------------------------------------------------------------

func startServer(t *testing.T) (*transport.TLSTransport, *services.MarketDataService) {
	t.Helper()

	dir := t.TempDir()
	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	require.NoError(t, transport.GenerateDevCertificate(certPath, keyPath))

	cfg := &models.MConfig{
		Name:     "e2e",
		Host:     "127.0.0.1",
		Port:     0,
		LogLevel: "ERROR",
		TLS:      models.MTLSConfig{CertFile: certPath, KeyFile: keyPath},
	}
	log := logger.NewLogger("ERROR", "e2e")

	tr, err := transport.NewTLSTransport(cfg, log)
	require.NoError(t, err)
	require.NoError(t, tr.Start())
	t.Cleanup(func() { tr.Stop() })

	marketData := services.NewMarketDataService(log, nil)
	registry := NewCommandRegistry()
	RegisterDefaultCommands(registry,
		marketData,
		services.NewCalculationService(log),
		services.NewManipulationService(log),
		services.NewReportService(log),
	)
	facade := NewTradingServerFacade(marketData,
		services.NewCalculationService(log),
		services.NewManipulationService(log),
		services.NewReportService(log),
		registry, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go NewRequestLoop(tr, facade, log).Run(ctx)

	return tr, marketData
}

func roundTrip(t *testing.T, conn *tls.Conn, req models.MRequest) models.MResponse {
	t.Helper()

	frame, err := transport.EncodeFrame(models.EncodeRequest(req), 1<<20)
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)

	payload, err := transport.ReadFrame(conn, 1<<20)
	require.NoError(t, err)
	resp, err := models.DecodeResponse(payload)
	require.NoError(t, err)
	return resp
}

// -----------------------------------------------------------------------------

func TestEndToEndRequestCycle(t *testing.T) {
	tr, marketData := startServer(t)

	marketData.Publish(models.MarketData{
		Symbol: models.PackSymbol("AAPL"),
		Bid:    187.29, Ask: 187.31, Last: 187.30,
		Volume: 1000, Timestamp: 1724500000000000,
	})

	conn, err := tls.Dial("tcp", tr.Addr(), &tls.Config{InsecureSkipVerify: true})
	require.NoError(t, err)
	defer conn.Close()

	// Known request type reaches its service.
	resp := roundTrip(t, conn, models.MRequest{Type: models.GetMarketData})
	require.True(t, resp.Success, resp.Message)

	snapshots, err := models.DecodeMarketDataSlice(resp.Data)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "AAPL", models.UnpackSymbol(snapshots[0].Symbol))

	// Unknown request type comes back as a failure on the same session.
	resp = roundTrip(t, conn, models.MRequest{Type: models.RequestType(250)})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Unknown request type: ")

	// The session survives the failure; a malformed service payload is a
	// client-level failure, not an internal error.
	resp = roundTrip(t, conn, models.MRequest{Type: models.Manipulate, Payload: []byte{0}})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "payload too short")
}
