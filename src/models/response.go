package models

import (
	"encoding/binary"
	"fmt"
)

// -----------------------------------------------------------------------------
// MResponse
// -----------------------------------------------------------------------------

// MResponse is the server's reply to a single request. It is produced either
// by the command that handled the request or by the facade's error path, and
// serialised into a transport frame before transmission.
type MResponse struct {
	// Success indicates whether the operation completed successfully.
	Success bool

	// Message is a human-readable status or error message. May be empty
	// on success.
	Message string

	// Data is the opaque binary result payload.
	Data []byte
}

// -----------------------------------------------------------------------------
// Wire codec
//
// A response travels inside a transport frame as:
//
//	[ u8 success ][ u32 big-endian message length ][ message UTF-8 ][ data bytes ]
// -----------------------------------------------------------------------------

// EncodeResponse serialises a response into a frame payload.
func EncodeResponse(resp MResponse) []byte {
	msg := []byte(resp.Message)
	buf := make([]byte, 0, 1+4+len(msg)+len(resp.Data))

	if resp.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(msg)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, msg...)
	buf = append(buf, resp.Data...)
	return buf
}

// -----------------------------------------------------------------------------

// DecodeResponse parses a frame payload into a response.
func DecodeResponse(data []byte) (MResponse, error) {
	if len(data) < 5 {
		return MResponse{}, fmt.Errorf("response too short: %d bytes (want at least 5)", len(data))
	}

	resp := MResponse{Success: data[0] == 1}

	msgLen := binary.BigEndian.Uint32(data[1:5])
	rest := data[5:]
	if uint32(len(rest)) < msgLen {
		return MResponse{}, fmt.Errorf("response message truncated: have %d bytes, header says %d", len(rest), msgLen)
	}

	resp.Message = string(rest[:msgLen])
	if len(rest) > int(msgLen) {
		resp.Data = make([]byte, len(rest)-int(msgLen))
		copy(resp.Data, rest[msgLen:])
	}
	return resp, nil
}
