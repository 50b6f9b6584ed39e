package transport

import (
	"encoding/binary"
	"fmt"
	"io"

	"trading-server/src/helpers"
)

// -----------------------------------------------------------------------------
// Length-prefix framing
//
// Every message on the wire is:
//
//	[ 4-byte big-endian uint32 payload length ][ <length> bytes payload ]
//
// The length prefix counts only payload bytes. A zero length is legal and
// encodes an empty-payload message. The maxFrame cap exists so a peer cannot
// force unbounded allocation by advertising a huge length.
// -----------------------------------------------------------------------------

// FrameHeaderSize is the size of the length prefix in bytes.
const FrameHeaderSize = 4

// -----------------------------------------------------------------------------

// EncodeFrame builds a complete wire frame (header + payload) in a single
// buffer so the transport can emit it with one write.
func EncodeFrame(payload []byte, maxFrame uint32) ([]byte, error) {
	if uint32(len(payload)) > maxFrame {
		return nil, &helpers.FrameTooLargeError{TradingServerError: helpers.TradingServerError{
			Message: fmt.Sprintf("payload of %d bytes exceeds frame cap of %d", len(payload), maxFrame),
		}}
	}

	frame := make([]byte, FrameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[:FrameHeaderSize], uint32(len(payload)))
	copy(frame[FrameHeaderSize:], payload)
	return frame, nil
}

// -----------------------------------------------------------------------------

// ReadFrame reads exactly one frame from the stream: 4 header bytes, then
// the advertised number of payload bytes. A stream that ends mid-frame
// yields ShortReadError; an advertised length above maxFrame yields
// FrameTooLargeError before any payload allocation.
func ReadFrame(r io.Reader, maxFrame uint32) ([]byte, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, shortRead("frame header", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > maxFrame {
		return nil, &helpers.FrameTooLargeError{TradingServerError: helpers.TradingServerError{
			Message: fmt.Sprintf("advertised length %d exceeds frame cap of %d", length, maxFrame),
		}}
	}
	if length == 0 {
		return []byte{}, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, shortRead("frame payload", err)
	}
	return payload, nil
}

// -----------------------------------------------------------------------------

func shortRead(what string, err error) error {
	return &helpers.ShortReadError{TradingServerError: helpers.TradingServerError{
		Message: fmt.Sprintf("stream ended while reading %s", what),
		Cause:   err,
	}}
}
