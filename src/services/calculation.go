package services

import (
	"encoding/binary"
	"fmt"
	"math"

	"trading-server/src/interfaces"
	"trading-server/src/logger"
	"trading-server/src/models"
)

var _ interfaces.ICalculationService = (*CalculationService)(nil)

// -----------------------------------------------------------------------------
// CalculationService
//
// Stateless financial calculations over record sets supplied in the request
// payload.
//
// CALCULATE payload:
//
//	[ u8 operation ][ packed records ]
//
//	operation 0: VWAP           — records are Trades
//	operation 1: unrealised P&L — records are Positions
//	operation 2: net exposure   — records are Orders
//
// Response data: one little-endian float64 result.
// -----------------------------------------------------------------------------

const (
	CalcVwap          uint8 = 0
	CalcUnrealisedPnl uint8 = 1
	CalcNetExposure   uint8 = 2
)

type CalculationService struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCalculationService(log *logger.Logger) *CalculationService {
	return &CalculationService{Logger: log}
}

// -----------------------------------------------------------------------------

func (s *CalculationService) Calculate(request models.MRequest) (models.MResponse, error) {
	if len(request.Payload) < 1 {
		return models.MResponse{Success: false, Message: "calculation request missing operation byte"}, nil
	}
	op := request.Payload[0]
	body := request.Payload[1:]

	var (
		result float64
		label  string
		err    error
	)
	switch op {
	case CalcVwap:
		label = "VWAP"
		result, err = s.vwap(body)
	case CalcUnrealisedPnl:
		label = "unrealised P&L"
		result, err = s.unrealisedPnl(body)
	case CalcNetExposure:
		label = "net exposure"
		result, err = s.netExposure(body)
	default:
		return models.MResponse{Success: false, Message: fmt.Sprintf("unknown calculation operation %d", op)}, nil
	}
	if err != nil {
		return models.MResponse{Success: false, Message: err.Error()}, nil
	}

	s.Logger.Debug("%s = %f", label, result)

	var data [8]byte
	binary.LittleEndian.PutUint64(data[:], math.Float64bits(result))
	return models.MResponse{
		Success: true,
		Message: label,
		Data:    data[:],
	}, nil
}

// -----------------------------------------------------------------------------

// vwap computes the volume-weighted average price over the supplied trades.
func (s *CalculationService) vwap(body []byte) (float64, error) {
	trades, err := models.DecodeTradeSlice(body)
	if err != nil {
		return 0, err
	}
	if len(trades) == 0 {
		return 0, fmt.Errorf("VWAP requires at least one trade")
	}

	var notional, volume float64
	for _, t := range trades {
		notional += t.Price * float64(t.Quantity)
		volume += float64(t.Quantity)
	}
	if volume == 0 {
		return 0, fmt.Errorf("VWAP undefined for zero total volume")
	}
	return notional / volume, nil
}

// -----------------------------------------------------------------------------

// unrealisedPnl sums the unrealised P&L over the supplied positions.
func (s *CalculationService) unrealisedPnl(body []byte) (float64, error) {
	positions, err := models.DecodePositionSlice(body)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range positions {
		total += p.UnrealisedPnl
	}
	return total, nil
}

// -----------------------------------------------------------------------------

// netExposure computes signed notional over the supplied orders: buys add,
// sells subtract.
func (s *CalculationService) netExposure(body []byte) (float64, error) {
	orders, err := models.DecodeOrderSlice(body)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, o := range orders {
		notional := o.Price * float64(o.Quantity)
		if o.Side == models.SideSell {
			notional = -notional
		}
		total += notional
	}
	return total, nil
}
