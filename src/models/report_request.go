package models

import (
	"encoding/binary"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// MReportRequest
// -----------------------------------------------------------------------------

// MReportRequest carries the parameters required to identify and scope a
// report: the report type (e.g. "EndOfDay") and the inclusive date range.
// The GENERATE_REPORT command factory decodes it from the generic request
// payload before constructing the report command.
type MReportRequest struct {
	// ReportType identifies which report to generate (e.g. "EndOfDay").
	ReportType string

	// DateFrom is the inclusive start date in ISO 8601 format (YYYY-MM-DD).
	DateFrom string

	// DateTo is the inclusive end date in ISO 8601 format (YYYY-MM-DD).
	DateTo string
}

// -----------------------------------------------------------------------------
// Wire codec
//
// The GENERATE_REPORT request payload holds three length-prefixed strings:
//
//	[ u16 BE len ][ reportType ][ u16 BE len ][ dateFrom ][ u16 BE len ][ dateTo ]
// -----------------------------------------------------------------------------

// EncodeReportRequest serialises a report request into a request payload.
func EncodeReportRequest(req MReportRequest) []byte {
	buf := make([]byte, 0, 6+len(req.ReportType)+len(req.DateFrom)+len(req.DateTo))
	buf = appendLenPrefixed(buf, req.ReportType)
	buf = appendLenPrefixed(buf, req.DateFrom)
	buf = appendLenPrefixed(buf, req.DateTo)
	return buf
}

// -----------------------------------------------------------------------------

// DecodeReportRequest parses a request payload into a report request.
func DecodeReportRequest(data []byte) (MReportRequest, error) {
	var req MReportRequest
	var err error

	if req.ReportType, data, err = readLenPrefixed(data, "reportType"); err != nil {
		return MReportRequest{}, err
	}
	if req.DateFrom, data, err = readLenPrefixed(data, "dateFrom"); err != nil {
		return MReportRequest{}, err
	}
	if req.DateTo, data, err = readLenPrefixed(data, "dateTo"); err != nil {
		return MReportRequest{}, err
	}
	if len(data) != 0 {
		return MReportRequest{}, fmt.Errorf("report request has %d trailing bytes", len(data))
	}
	return req, nil
}

// -----------------------------------------------------------------------------

// Validate checks the report request invariants: a non-empty report type,
// both dates valid ISO 8601 calendar dates, and dateFrom <= dateTo.
func (r MReportRequest) Validate() error {
	if r.ReportType == "" {
		return fmt.Errorf("report type cannot be empty")
	}
	if _, err := time.Parse("2006-01-02", r.DateFrom); err != nil {
		return fmt.Errorf("invalid dateFrom %q: want YYYY-MM-DD", r.DateFrom)
	}
	if _, err := time.Parse("2006-01-02", r.DateTo); err != nil {
		return fmt.Errorf("invalid dateTo %q: want YYYY-MM-DD", r.DateTo)
	}
	// Lexicographic order equals chronological order for valid ISO dates.
	if r.DateFrom > r.DateTo {
		return fmt.Errorf("dateFrom %s is after dateTo %s", r.DateFrom, r.DateTo)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func appendLenPrefixed(buf []byte, s string) []byte {
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(len(s)))
	buf = append(buf, lenBytes[:]...)
	return append(buf, s...)
}

// -----------------------------------------------------------------------------

func readLenPrefixed(data []byte, field string) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, fmt.Errorf("report request truncated before %s length", field)
	}
	n := int(binary.BigEndian.Uint16(data[:2]))
	data = data[2:]
	if len(data) < n {
		return "", nil, fmt.Errorf("report request truncated inside %s: have %d bytes, want %d", field, len(data), n)
	}
	return string(data[:n]), data[n:], nil
}
