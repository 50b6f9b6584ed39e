package models

import (
	"encoding/binary"
	"fmt"
)

// -----------------------------------------------------------------------------
// Request Types
// -----------------------------------------------------------------------------

// RequestType identifies the intended operation of an incoming client request.
// It is the key the CommandRegistry dispatches on. Extend this enum whenever a
// new business operation must be exposed to the client, and register the
// corresponding command factory during bootstrap.
type RequestType uint32

const (
	GetMarketData  RequestType = 0 // Fetch current market data snapshots.
	Calculate      RequestType = 1 // Run a financial calculation (e.g. VWAP, P&L).
	Manipulate     RequestType = 2 // Filter or transform trading data.
	GenerateReport RequestType = 3 // Generate a structured report (e.g. end-of-day).
)

// -----------------------------------------------------------------------------

func (t RequestType) String() string {
	switch t {
	case GetMarketData:
		return "GET_MARKET_DATA"
	case Calculate:
		return "CALCULATE"
	case Manipulate:
		return "MANIPULATE"
	case GenerateReport:
		return "GENERATE_REPORT"
	default:
		return fmt.Sprintf("RequestType(%d)", uint32(t))
	}
}

// -----------------------------------------------------------------------------
// MRequest
// -----------------------------------------------------------------------------

// MRequest is a decoded client request: a typed operation plus an opaque,
// operation-specific payload. It is constructed by DecodeRequest and never
// mutated afterwards.
type MRequest struct {
	Type    RequestType
	Payload []byte
}

// -----------------------------------------------------------------------------
// Wire codec
//
// A request travels inside a transport frame as:
//
//	[ u32 big-endian RequestType ][ payload bytes ]
//
// The payload layout is owned by the service the request is dispatched to;
// the dispatch layer treats it as opaque.
// -----------------------------------------------------------------------------

const requestHeaderSize = 4

// -----------------------------------------------------------------------------

// EncodeRequest serialises a request into a frame payload.
func EncodeRequest(req MRequest) []byte {
	buf := make([]byte, requestHeaderSize+len(req.Payload))
	binary.BigEndian.PutUint32(buf[:requestHeaderSize], uint32(req.Type))
	copy(buf[requestHeaderSize:], req.Payload)
	return buf
}

// -----------------------------------------------------------------------------

// DecodeRequest parses a frame payload into a request.
func DecodeRequest(data []byte) (MRequest, error) {
	if len(data) < requestHeaderSize {
		return MRequest{}, fmt.Errorf("request too short: %d bytes (want at least %d)", len(data), requestHeaderSize)
	}

	req := MRequest{
		Type: RequestType(binary.BigEndian.Uint32(data[:requestHeaderSize])),
	}
	if len(data) > requestHeaderSize {
		req.Payload = make([]byte, len(data)-requestHeaderSize)
		copy(req.Payload, data[requestHeaderSize:])
	}
	return req, nil
}
