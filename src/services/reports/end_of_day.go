package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"trading-server/src/interfaces"
	"trading-server/src/models"
	"trading-server/src/utils"
)

var _ IReport = (*EndOfDayReport)(nil)

// -----------------------------------------------------------------------------
// EndOfDayReport
//
// Per-symbol trading summary over an inclusive date range: trade count,
// bought/sold volume, net quantity and VWAP, computed from the persisted
// trade log. Only trading days (per the exchange calendar) count toward the
// day total in the header.
//
// Intermediate rows are pipe-delimited "symbol|trades|bought|sold|net|vwap";
// Format renders them fixed-width.
// -----------------------------------------------------------------------------

type EndOfDayReport struct {
	Store    interfaces.ITradeStore
	DateFrom string
	DateTo   string
}

// -----------------------------------------------------------------------------

func NewEndOfDayReport(store interfaces.ITradeStore, req models.MReportRequest) *EndOfDayReport {
	return &EndOfDayReport{
		Store:    store,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
}

// -----------------------------------------------------------------------------

// FetchData loads the trades in range and flattens them to pipe-delimited
// rows: "symbol|side|price|quantity".
func (r *EndOfDayReport) FetchData() (ReportData, error) {
	trades, err := r.Store.TradesBetween(r.DateFrom, r.DateTo)
	if err != nil {
		return nil, err
	}

	rows := make(ReportData, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, fmt.Sprintf("%s|%d|%g|%d",
			models.UnpackSymbol(t.Symbol), t.Side, t.Price, t.Quantity))
	}
	return rows, nil
}

// -----------------------------------------------------------------------------

// ComputeReport aggregates the raw rows into one summary row per symbol,
// sorted by symbol: "symbol|trades|bought|sold|net|vwap".
func (r *EndOfDayReport) ComputeReport(data ReportData) (ReportData, error) {
	type summary struct {
		trades   int
		bought   uint64
		sold     uint64
		notional float64
		volume   float64
	}
	bySymbol := make(map[string]*summary)

	for _, row := range data {
		parts := strings.Split(row, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("malformed report row %q", row)
		}
		symbol := parts[0]
		side, err1 := strconv.ParseUint(parts[1], 10, 8)
		price, err2 := strconv.ParseFloat(parts[2], 64)
		quantity, err3 := strconv.ParseUint(parts[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("malformed report row %q", row)
		}

		s, ok := bySymbol[symbol]
		if !ok {
			s = &summary{}
			bySymbol[symbol] = s
		}
		s.trades++
		if uint8(side) == models.SideSell {
			s.sold += quantity
		} else {
			s.bought += quantity
		}
		s.notional += price * float64(quantity)
		s.volume += float64(quantity)
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	rows := make(ReportData, 0, len(symbols))
	for _, symbol := range symbols {
		s := bySymbol[symbol]
		vwap := 0.0
		if s.volume > 0 {
			vwap = s.notional / s.volume
		}
		net := int64(s.bought) - int64(s.sold)
		rows = append(rows, fmt.Sprintf("%s|%d|%d|%d|%d|%.4f",
			symbol, s.trades, s.bought, s.sold, net, vwap))
	}
	return rows, nil
}

// -----------------------------------------------------------------------------

// Format renders the summary rows fixed-width under a header block.
func (r *EndOfDayReport) Format(computed ReportData) (Report, error) {
	lines := Report{
		fmt.Sprintf("End of Day Report  %s to %s", r.DateFrom, r.DateTo),
		fmt.Sprintf("Trading days in range: %d", r.tradingDays()),
		fmt.Sprintf("%-12s %8s %10s %10s %10s %12s", "SYMBOL", "TRADES", "BOUGHT", "SOLD", "NET", "VWAP"),
	}

	for _, row := range computed {
		parts := strings.Split(row, "|")
		if len(parts) != 6 {
			return nil, fmt.Errorf("malformed summary row %q", row)
		}
		lines = append(lines, fmt.Sprintf("%-12s %8s %10s %10s %10s %12s",
			parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]))
	}

	if len(computed) == 0 {
		lines = append(lines, "(no trades in range)")
	}
	return lines, nil
}

// -----------------------------------------------------------------------------

// tradingDays counts exchange trading days in the inclusive range, on the
// default (NYSE) calendar. Unparseable dates yield 0; Validate upstream
// should have rejected them already.
func (r *EndOfDayReport) tradingDays() int {
	from, err := time.Parse("2006-01-02", r.DateFrom)
	if err != nil {
		return 0
	}
	to, err := time.Parse("2006-01-02", r.DateTo)
	if err != nil {
		return 0
	}

	cal := utils.GetCalendar("")
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if cal.IsTradingDay(d) {
			count++
		}
	}
	return count
}
