package services

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
)

var _ interfaces.IMarketDataService = (*MarketDataService)(nil)

// -----------------------------------------------------------------------------
// MarketDataService
//
// In-memory quote book keyed by symbol. Publish updates the book and fans the
// snapshot out to the optional data exchanger (the websocket hub); GetData
// answers client snapshot requests.
//
// GET_MARKET_DATA payload:
//
//	empty                          → snapshot of every known symbol (sorted)
//	[ u16 BE len ][ symbol ]       → snapshot of one symbol
//
// Response data: back-to-back packed MarketData records.
// -----------------------------------------------------------------------------

type MarketDataService struct {
	Logger    *logger.Logger
	Exchanger interfaces.IDataExchanger // optional; nil disables fan-out

	mu            sync.RWMutex
	quotes        map[string]models.MarketData
	subscriptions map[string]int
}

// -----------------------------------------------------------------------------

func NewMarketDataService(log *logger.Logger, exchanger interfaces.IDataExchanger) *MarketDataService {
	return &MarketDataService{
		Logger:        log,
		Exchanger:     exchanger,
		quotes:        make(map[string]models.MarketData),
		subscriptions: make(map[string]int),
	}
}

// -----------------------------------------------------------------------------

// Publish stores the latest snapshot for its symbol and broadcasts it to the
// data exchanger, if one is attached.
func (s *MarketDataService) Publish(data models.MarketData) {
	symbol := models.UnpackSymbol(data.Symbol)

	s.mu.Lock()
	s.quotes[symbol] = data
	s.mu.Unlock()

	if s.Exchanger != nil {
		s.Exchanger.Broadcast(data)
	}
}

// -----------------------------------------------------------------------------

// GetData answers a snapshot request. An unknown symbol is a client-level
// failure, not an internal error.
func (s *MarketDataService) GetData(request models.MRequest) (models.MResponse, error) {
	symbol, ok := decodeSymbolFilter(request.Payload)
	if !ok {
		return models.MResponse{Success: false, Message: "malformed market data request payload"}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if symbol != "" {
		quote, found := s.quotes[symbol]
		if !found {
			return models.MResponse{Success: false, Message: "no market data for symbol " + symbol}, nil
		}
		return models.MResponse{
			Success: true,
			Message: "1 snapshot",
			Data:    models.EncodeMarketDataSlice([]models.MarketData{quote}),
		}, nil
	}

	symbols := make([]string, 0, len(s.quotes))
	for sym := range s.quotes {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	snapshots := make([]models.MarketData, 0, len(symbols))
	for _, sym := range symbols {
		snapshots = append(snapshots, s.quotes[sym])
	}

	return models.MResponse{
		Success: true,
		Message: pluralSnapshots(len(snapshots)),
		Data:    models.EncodeMarketDataSlice(snapshots),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *MarketDataService) Subscribe(symbol string) {
	s.mu.Lock()
	s.subscriptions[symbol]++
	count := s.subscriptions[symbol]
	s.mu.Unlock()
	s.Logger.Debug("subscribe %s (now %d)", symbol, count)
}

// -----------------------------------------------------------------------------

func (s *MarketDataService) Unsubscribe(symbol string) {
	s.mu.Lock()
	if s.subscriptions[symbol] > 0 {
		s.subscriptions[symbol]--
	}
	if s.subscriptions[symbol] == 0 {
		delete(s.subscriptions, symbol)
	}
	s.mu.Unlock()
	s.Logger.Debug("unsubscribe %s", symbol)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// decodeSymbolFilter parses the optional symbol filter. Empty payload means
// "all symbols". The bool result is false for a malformed payload.
func decodeSymbolFilter(payload []byte) (string, bool) {
	if len(payload) == 0 {
		return "", true
	}
	if len(payload) < 2 {
		return "", false
	}
	n := int(binary.BigEndian.Uint16(payload[:2]))
	if len(payload) != 2+n || n == 0 {
		return "", false
	}
	return string(payload[2 : 2+n]), true
}

// -----------------------------------------------------------------------------

func pluralSnapshots(n int) string {
	if n == 1 {
		return "1 snapshot"
	}
	return fmt.Sprintf("%d snapshots", n)
}
