package services

import (
	"encoding/binary"
	"fmt"
	"sort"

	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
)

var _ interfaces.IManipulationService = (*ManipulationService)(nil)

// -----------------------------------------------------------------------------
// ManipulationService
//
// Stateless filtering and reshaping of trade record sets supplied in the
// request payload.
//
// MANIPULATE payload (filter):
//
//	[ u8 side | 0xFF ][ u16 BE symLen ][ symbol ][ packed trades ]
//
// side 0xFF means "any side"; symLen 0 means "any symbol". Response data:
// the trades that pass both filters, packed back-to-back.
//
// Transform payload: packed trades only. Response data: packed positions,
// one net position per symbol, sorted by symbol.
// -----------------------------------------------------------------------------

// SideAny disables side filtering in a Manipulate request.
const SideAny uint8 = 0xFF

type ManipulationService struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewManipulationService(log *logger.Logger) *ManipulationService {
	return &ManipulationService{Logger: log}
}

// -----------------------------------------------------------------------------

// Manipulate filters the supplied trades by side and/or symbol.
func (s *ManipulationService) Manipulate(request models.MRequest) (models.MResponse, error) {
	payload := request.Payload
	if len(payload) < 3 {
		return models.MResponse{Success: false, Message: "manipulation request payload too short"}, nil
	}

	side := payload[0]
	symLen := int(binary.BigEndian.Uint16(payload[1:3]))
	payload = payload[3:]
	if len(payload) < symLen {
		return models.MResponse{Success: false, Message: "manipulation request truncated inside symbol filter"}, nil
	}
	symbol := string(payload[:symLen])
	payload = payload[symLen:]

	if side != models.SideBuy && side != models.SideSell && side != SideAny {
		return models.MResponse{Success: false, Message: fmt.Sprintf("invalid side filter %d", side)}, nil
	}

	trades, err := models.DecodeTradeSlice(payload)
	if err != nil {
		return models.MResponse{Success: false, Message: err.Error()}, nil
	}

	kept := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if side != SideAny && t.Side != side {
			continue
		}
		if symbol != "" && models.UnpackSymbol(t.Symbol) != symbol {
			continue
		}
		kept = append(kept, t)
	}

	s.Logger.Debug("filter kept %d of %d trades", len(kept), len(trades))

	return models.MResponse{
		Success: true,
		Message: fmt.Sprintf("%d of %d trades matched", len(kept), len(trades)),
		Data:    models.EncodeTradeSlice(kept),
	}, nil
}

// -----------------------------------------------------------------------------

// Transform collapses the supplied trades into one net position per symbol.
// Buys add quantity, sells subtract; AvgPrice is the volume-weighted entry
// price of the accumulating side. The position timestamp is the latest trade
// timestamp seen for that symbol.
func (s *ManipulationService) Transform(request models.MRequest) (models.MResponse, error) {
	trades, err := models.DecodeTradeSlice(request.Payload)
	if err != nil {
		return models.MResponse{Success: false, Message: err.Error()}, nil
	}

	type accum struct {
		quantity  int64
		notional  float64
		volume    float64
		timestamp int64
	}
	bySymbol := make(map[string]*accum)

	for _, t := range trades {
		symbol := models.UnpackSymbol(t.Symbol)
		a, ok := bySymbol[symbol]
		if !ok {
			a = &accum{}
			bySymbol[symbol] = a
		}
		qty := int64(t.Quantity)
		if t.Side == models.SideSell {
			qty = -qty
		}
		a.quantity += qty
		a.notional += t.Price * float64(t.Quantity)
		a.volume += float64(t.Quantity)
		if t.Timestamp > a.timestamp {
			a.timestamp = t.Timestamp
		}
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	positions := make([]models.Position, 0, len(symbols))
	for _, symbol := range symbols {
		a := bySymbol[symbol]
		avg := 0.0
		if a.volume > 0 {
			avg = a.notional / a.volume
		}
		positions = append(positions, models.Position{
			Symbol:    models.PackSymbol(symbol),
			Quantity:  a.quantity,
			AvgPrice:  avg,
			Timestamp: a.timestamp,
		})
	}

	return models.MResponse{
		Success: true,
		Message: fmt.Sprintf("%d positions from %d trades", len(positions), len(trades)),
		Data:    models.EncodePositionSlice(positions),
	}, nil
}
