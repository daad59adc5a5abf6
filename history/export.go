package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/chinmay1088/harbor/chains/ethereum"
)

// DateLayout is the long date-time format used in exports.
const DateLayout = "Jan 2, 2006, 3:04:05 PM"

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Hash", "To", "Value", "Status", "Gas Used", "Date"}

// WriteCSV writes records as CSV with CSVHeader first. Value is in the
// native unit and dates are rendered in loc.
func WriteCSV(w io.Writer, records []Record, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Hash,
			r.To,
			ethereum.WeiToEther(r.Value).String(),
			r.Status(),
			strconv.FormatUint(r.GasUsed, 10),
			formatDate(r.Timestamp, loc),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", r.Hash, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

type exportRecord struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	ValueWei  string `json:"value_wei"`
	Symbol    string `json:"symbol"`
	Status    string `json:"status"`
	GasUsed   uint64 `json:"gas_used"`
	GasLimit  uint64 `json:"gas_limit"`
	Timestamp string `json:"timestamp"`
	Explorer  string `json:"explorer,omitempty"`
}

// WriteJSON writes records as an indented JSON array. txURL, when non-nil,
// supplies the explorer link of each hash.
func WriteJSON(w io.Writer, records []Record, symbol string, txURL func(hash string) string) error {
	out := make([]exportRecord, 0, len(records))
	for _, r := range records {
		rec := exportRecord{
			Hash:     r.Hash,
			From:     r.From,
			To:       r.To,
			Value:    ethereum.WeiToEther(r.Value).String(),
			ValueWei: weiString(r),
			Symbol:   symbol,
			Status:   r.Status(),
			GasUsed:  r.GasUsed,
			GasLimit: r.GasLimit,
		}
		if !r.Timestamp.IsZero() {
			rec.Timestamp = r.Timestamp.UTC().Format(time.RFC3339)
		}
		if txURL != nil {
			rec.Explorer = txURL(r.Hash)
		}
		out = append(out, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func weiString(r Record) string {
	if r.Value == nil {
		return "0"
	}
	return r.Value.String()
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.In(loc).Format(DateLayout)
}
