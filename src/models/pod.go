package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// -----------------------------------------------------------------------------
// POD wire records
//
// Fixed-size, tightly packed records serialised byte-for-byte into request
// and response payloads. Field order matches the declared struct order with
// no padding; multi-byte fields are little-endian (both peers are assumed
// little-endian — see DESIGN.md). Symbols are 32-byte null-terminated UTF-8
// with a zeroed tail. Timestamps are Unix epoch microseconds.
// -----------------------------------------------------------------------------

// SymbolLen is the fixed on-wire size of an instrument symbol, including
// the terminating null byte.
const SymbolLen = 32

// On-wire record sizes in bytes.
const (
	MarketDataSize = SymbolLen + 8 + 8 + 8 + 8 + 8     // 72
	OrderSize      = 8 + SymbolLen + 8 + 8 + 1 + 1 + 8 // 66
	PositionSize   = SymbolLen + 8 + 8 + 8 + 8         // 64
	TradeSize      = 8 + 8 + SymbolLen + 8 + 8 + 1 + 8 // 73
)

// Order / trade side values.
const (
	SideBuy  uint8 = 0
	SideSell uint8 = 1
)

// Order type values.
const (
	OrderTypeMarket uint8 = 0
	OrderTypeLimit  uint8 = 1
	OrderTypeStop   uint8 = 2
)

// -----------------------------------------------------------------------------
// Record types
// -----------------------------------------------------------------------------

// MarketData is a point-in-time snapshot of a tradeable instrument.
type MarketData struct {
	Symbol    [SymbolLen]byte
	Bid       float64
	Ask       float64
	Last      float64
	Volume    uint64
	Timestamp int64
}

// Order represents a trading order submitted by the client.
type Order struct {
	OrderID   uint64
	Symbol    [SymbolLen]byte
	Price     float64
	Quantity  uint64
	Side      uint8
	Type      uint8
	Timestamp int64
}

// Position is the current open position for a single instrument.
// Quantity is signed: positive = long, negative = short.
type Position struct {
	Symbol        [SymbolLen]byte
	Quantity      int64
	AvgPrice      float64
	UnrealisedPnl float64
	Timestamp     int64
}

// Trade is an immutable record of a completed fill.
type Trade struct {
	TradeID   uint64
	OrderID   uint64
	Symbol    [SymbolLen]byte
	Price     float64
	Quantity  uint64
	Side      uint8
	Timestamp int64
}

// -----------------------------------------------------------------------------
// Symbol helpers
// -----------------------------------------------------------------------------

// PackSymbol converts a symbol string into its fixed 32-byte on-wire form.
// Longer symbols are truncated to SymbolLen-1 bytes so the terminating null
// is always present; the unused tail is zero.
func PackSymbol(s string) [SymbolLen]byte {
	var out [SymbolLen]byte
	copy(out[:SymbolLen-1], s)
	return out
}

// -----------------------------------------------------------------------------

// UnpackSymbol converts a fixed 32-byte symbol back into a string,
// dropping the null terminator and the zeroed tail.
func UnpackSymbol(sym [SymbolLen]byte) string {
	if i := bytes.IndexByte(sym[:], 0); i >= 0 {
		return string(sym[:i])
	}
	return string(sym[:])
}

// -----------------------------------------------------------------------------
// MarketData codec
// -----------------------------------------------------------------------------

// Marshal appends the record's packed wire form to dst and returns the
// extended slice.
func (m MarketData) Marshal(dst []byte) []byte {
	dst = append(dst, m.Symbol[:]...)
	dst = appendF64(dst, m.Bid)
	dst = appendF64(dst, m.Ask)
	dst = appendF64(dst, m.Last)
	dst = appendU64(dst, m.Volume)
	dst = appendU64(dst, uint64(m.Timestamp))
	return dst
}

// -----------------------------------------------------------------------------

// UnmarshalMarketData decodes one record from exactly MarketDataSize bytes.
func UnmarshalMarketData(b []byte) (MarketData, error) {
	if len(b) != MarketDataSize {
		return MarketData{}, fmt.Errorf("MarketData record must be %d bytes, got %d", MarketDataSize, len(b))
	}
	var m MarketData
	copy(m.Symbol[:], b[:SymbolLen])
	b = b[SymbolLen:]
	m.Bid, b = takeF64(b)
	m.Ask, b = takeF64(b)
	m.Last, b = takeF64(b)
	m.Volume, b = takeU64(b)
	ts, _ := takeU64(b)
	m.Timestamp = int64(ts)
	return m, nil
}

// -----------------------------------------------------------------------------
// Order codec
// -----------------------------------------------------------------------------

func (o Order) Marshal(dst []byte) []byte {
	dst = appendU64(dst, o.OrderID)
	dst = append(dst, o.Symbol[:]...)
	dst = appendF64(dst, o.Price)
	dst = appendU64(dst, o.Quantity)
	dst = append(dst, o.Side, o.Type)
	dst = appendU64(dst, uint64(o.Timestamp))
	return dst
}

// -----------------------------------------------------------------------------

// UnmarshalOrder decodes one record from exactly OrderSize bytes.
func UnmarshalOrder(b []byte) (Order, error) {
	if len(b) != OrderSize {
		return Order{}, fmt.Errorf("Order record must be %d bytes, got %d", OrderSize, len(b))
	}
	var o Order
	o.OrderID, b = takeU64(b)
	copy(o.Symbol[:], b[:SymbolLen])
	b = b[SymbolLen:]
	o.Price, b = takeF64(b)
	o.Quantity, b = takeU64(b)
	o.Side, o.Type = b[0], b[1]
	b = b[2:]
	ts, _ := takeU64(b)
	o.Timestamp = int64(ts)
	return o, nil
}

// -----------------------------------------------------------------------------
// Position codec
// -----------------------------------------------------------------------------

func (p Position) Marshal(dst []byte) []byte {
	dst = append(dst, p.Symbol[:]...)
	dst = appendU64(dst, uint64(p.Quantity))
	dst = appendF64(dst, p.AvgPrice)
	dst = appendF64(dst, p.UnrealisedPnl)
	dst = appendU64(dst, uint64(p.Timestamp))
	return dst
}

// -----------------------------------------------------------------------------

// UnmarshalPosition decodes one record from exactly PositionSize bytes.
func UnmarshalPosition(b []byte) (Position, error) {
	if len(b) != PositionSize {
		return Position{}, fmt.Errorf("Position record must be %d bytes, got %d", PositionSize, len(b))
	}
	var p Position
	copy(p.Symbol[:], b[:SymbolLen])
	b = b[SymbolLen:]
	qty, b := takeU64(b)
	p.Quantity = int64(qty)
	p.AvgPrice, b = takeF64(b)
	p.UnrealisedPnl, b = takeF64(b)
	ts, _ := takeU64(b)
	p.Timestamp = int64(ts)
	return p, nil
}

// -----------------------------------------------------------------------------
// Trade codec
// -----------------------------------------------------------------------------

func (t Trade) Marshal(dst []byte) []byte {
	dst = appendU64(dst, t.TradeID)
	dst = appendU64(dst, t.OrderID)
	dst = append(dst, t.Symbol[:]...)
	dst = appendF64(dst, t.Price)
	dst = appendU64(dst, t.Quantity)
	dst = append(dst, t.Side)
	dst = appendU64(dst, uint64(t.Timestamp))
	return dst
}

// -----------------------------------------------------------------------------

// UnmarshalTrade decodes one record from exactly TradeSize bytes.
func UnmarshalTrade(b []byte) (Trade, error) {
	if len(b) != TradeSize {
		return Trade{}, fmt.Errorf("Trade record must be %d bytes, got %d", TradeSize, len(b))
	}
	var t Trade
	t.TradeID, b = takeU64(b)
	t.OrderID, b = takeU64(b)
	copy(t.Symbol[:], b[:SymbolLen])
	b = b[SymbolLen:]
	t.Price, b = takeF64(b)
	t.Quantity, b = takeU64(b)
	t.Side = b[0]
	b = b[1:]
	ts, _ := takeU64(b)
	t.Timestamp = int64(ts)
	return t, nil
}

// -----------------------------------------------------------------------------
// Slice codecs — records are transmitted back-to-back with no count prefix;
// the payload length must be an exact multiple of the record size.
// -----------------------------------------------------------------------------

// EncodeMarketDataSlice serialises records back-to-back.
func EncodeMarketDataSlice(records []MarketData) []byte {
	buf := make([]byte, 0, len(records)*MarketDataSize)
	for _, r := range records {
		buf = r.Marshal(buf)
	}
	return buf
}

// -----------------------------------------------------------------------------

// DecodeMarketDataSlice parses back-to-back records.
func DecodeMarketDataSlice(b []byte) ([]MarketData, error) {
	if len(b)%MarketDataSize != 0 {
		return nil, fmt.Errorf("payload length %d is not a multiple of MarketData size %d", len(b), MarketDataSize)
	}
	records := make([]MarketData, 0, len(b)/MarketDataSize)
	for len(b) > 0 {
		r, err := UnmarshalMarketData(b[:MarketDataSize])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
		b = b[MarketDataSize:]
	}
	return records, nil
}

// -----------------------------------------------------------------------------

// EncodeOrderSlice serialises records back-to-back.
func EncodeOrderSlice(records []Order) []byte {
	buf := make([]byte, 0, len(records)*OrderSize)
	for _, r := range records {
		buf = r.Marshal(buf)
	}
	return buf
}

// -----------------------------------------------------------------------------

// DecodeOrderSlice parses back-to-back records.
func DecodeOrderSlice(b []byte) ([]Order, error) {
	if len(b)%OrderSize != 0 {
		return nil, fmt.Errorf("payload length %d is not a multiple of Order size %d", len(b), OrderSize)
	}
	records := make([]Order, 0, len(b)/OrderSize)
	for len(b) > 0 {
		r, err := UnmarshalOrder(b[:OrderSize])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
		b = b[OrderSize:]
	}
	return records, nil
}

// -----------------------------------------------------------------------------

// EncodePositionSlice serialises records back-to-back.
func EncodePositionSlice(records []Position) []byte {
	buf := make([]byte, 0, len(records)*PositionSize)
	for _, r := range records {
		buf = r.Marshal(buf)
	}
	return buf
}

// -----------------------------------------------------------------------------

// DecodePositionSlice parses back-to-back records.
func DecodePositionSlice(b []byte) ([]Position, error) {
	if len(b)%PositionSize != 0 {
		return nil, fmt.Errorf("payload length %d is not a multiple of Position size %d", len(b), PositionSize)
	}
	records := make([]Position, 0, len(b)/PositionSize)
	for len(b) > 0 {
		r, err := UnmarshalPosition(b[:PositionSize])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
		b = b[PositionSize:]
	}
	return records, nil
}

// -----------------------------------------------------------------------------

// EncodeTradeSlice serialises records back-to-back.
func EncodeTradeSlice(records []Trade) []byte {
	buf := make([]byte, 0, len(records)*TradeSize)
	for _, r := range records {
		buf = r.Marshal(buf)
	}
	return buf
}

// -----------------------------------------------------------------------------

// DecodeTradeSlice parses back-to-back records.
func DecodeTradeSlice(b []byte) ([]Trade, error) {
	if len(b)%TradeSize != 0 {
		return nil, fmt.Errorf("payload length %d is not a multiple of Trade size %d", len(b), TradeSize)
	}
	records := make([]Trade, 0, len(b)/TradeSize)
	for len(b) > 0 {
		r, err := UnmarshalTrade(b[:TradeSize])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
		b = b[TradeSize:]
	}
	return records, nil
}

// -----------------------------------------------------------------------------
// Primitive helpers
// -----------------------------------------------------------------------------

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func appendF64(dst []byte, v float64) []byte {
	return appendU64(dst, math.Float64bits(v))
}

func takeU64(b []byte) (uint64, []byte) {
	return binary.LittleEndian.Uint64(b[:8]), b[8:]
}

func takeF64(b []byte) (float64, []byte) {
	v, rest := takeU64(b)
	return math.Float64frombits(v), rest
}
