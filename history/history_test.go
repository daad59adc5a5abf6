package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chinmay1088/harbor/api"
	"github.com/chinmay1088/harbor/chains"
	"github.com/chinmay1088/harbor/errs"
	"github.com/ethereum/go-ethereum/common"
)

var owner = common.HexToAddress("0x000000000000000000000000000000000000aaaa")

const other = "0x000000000000000000000000000000000000bbbb"

// sevenRecords has three records addressed to owner.
func sevenRecords() []Record {
	ownerHex := strings.ToLower(owner.Hex())
	var out []Record
	for i := 0; i < 7; i++ {
		r := Record{
			Hash:      fmt.Sprintf("0xhash%d", i),
			From:      ownerHex,
			To:        other,
			Value:     big.NewInt(int64(i) * 1e17),
			GasUsed:   21000,
			GasLimit:  21000,
			Timestamp: time.Unix(1700000000+int64(i), 0),
		}
		if i%2 == 1 {
			// mixed case on purpose
			r.From, r.To = other, owner.Hex()
		}
		out = append(out, r)
	}
	return out
}

func TestView_Scenario(t *testing.T) {
	v := NewView(sevenRecords(), owner)
	v.SetDirection(Incoming)

	if got := len(v.Filtered()); got != 3 {
		t.Fatalf("incoming = %d, want 3", got)
	}

	v.SetReveal(5)
	if v.HasMore() {
		t.Error("show more should be hidden when 3 < 5")
	}

	v.SetReveal(2)
	if !v.HasMore() {
		t.Fatal("show more should be visible with reveal 2")
	}
	if got := len(v.Visible()); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}
	v.ShowMore()
	if got := len(v.Visible()); got != 3 {
		t.Errorf("after show more visible = %d, want 3", got)
	}
	if v.HasMore() {
		t.Error("nothing left to reveal")
	}
}

func TestView_Filters(t *testing.T) {
	records := sevenRecords()
	tests := []struct {
		name      string
		direction Direction
		search    string
		want      int
	}{
		{"all", All, "", 7},
		{"incoming", Incoming, "", 3},
		{"outgoing", Outgoing, "", 4},
		{"search hash", All, "HASH4", 1},
		{"search recipient", All, "BBBB", 4},
		{"direction then search", Incoming, "hash1", 1},
		{"search excludes", Outgoing, "hash1", 0},
		{"search ignores sender", Incoming, "bbbb", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(records, owner)
			v.SetDirection(tt.direction)
			v.SetSearch(tt.search)
			if got := len(v.Filtered()); got != tt.want {
				t.Errorf("Filtered() = %d, want %d", got, tt.want)
			}
		})
	}

	// the source list is never touched
	if len(records) != 7 || records[0].Hash != "0xhash0" {
		t.Error("view mutated its input")
	}
}

func TestView_DefaultReveal(t *testing.T) {
	v := NewView(sevenRecords(), owner)
	if v.Reveal() != RevealStep || len(v.Visible()) != 5 || !v.HasMore() {
		t.Errorf("reveal=%d visible=%d hasMore=%v", v.Reveal(), len(v.Visible()), v.HasMore())
	}
	v.SetReveal(0)
	if v.Reveal() != 1 {
		t.Errorf("reveal clamp = %d", v.Reveal())
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("IN"); err != nil || d != Incoming {
		t.Errorf("ParseDirection(IN) = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error")
	}
}

func TestWriteCSV_FullList(t *testing.T) {
	records := sevenRecords()
	records[2].IsError = true

	v := NewView(records, owner)
	v.SetDirection(Incoming)
	v.SetSearch("hash1")
	v.SetReveal(1)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, v.All(), time.UTC); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1+len(records) {
		t.Fatalf("rows = %d, want header + %d", len(rows), len(records))
	}
	if strings.Join(rows[0], ",") != "Hash,To,Value,Status,Gas Used,Date" {
		t.Errorf("header = %v", rows[0])
	}

	row := rows[1+2]
	if row[2] != "0.2" || row[3] != "Failed" || row[4] != "21000" {
		t.Errorf("row = %v", row)
	}
	if row[5] != "Nov 14, 2023, 10:13:22 PM" {
		t.Errorf("date = %q", row[5])
	}
	if rows[1][3] != "Success" {
		t.Errorf("status = %q", rows[1][3])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, sevenRecords()[:2], "ETH", func(h string) string { return "https://x/tx/" + h })
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[1]["value"] != "0.1" || out[1]["explorer"] != "https://x/tx/0xhash1" {
		t.Errorf("out = %v", out)
	}
}

func TestFetchHistory(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("apikey") != "KEY" {
			t.Errorf("apikey = %q", r.URL.Query().Get("apikey"))
		}
		_, _ = w.Write([]byte(`{"status":"1","message":"OK","result":[
			{"hash":"0x1","from":"0xbbbb","to":"0xaaaa","value":"1000000000000000000","gas":"21000","gasUsed":"21000","isError":"0","timeStamp":"1700000000"},
			{"hash":"0x2","from":"0xaaaa","to":"0xcccc","value":"bogus","gas":"60000","gasUsed":"45000","isError":"1","timeStamp":"1690000000"}
		]}`))
	}))
	defer srv.Close()

	cfgs := chains.DefaultChains()
	for i := range cfgs {
		if cfgs[i].ChainID == chains.Ethereum {
			cfgs[i].ExplorerAPIURL = srv.URL
			cfgs[i].ExplorerAPIKey = "KEY"
		}
	}
	reg, err := chains.NewRegistry(cfgs...)
	if err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(reg, api.NewClient(nil), nil)
	res, err := f.FetchHistory(context.Background(), owner, chains.Ethereum)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if !res.Supported || len(res.Records) != 2 {
		t.Fatalf("res = %+v", res)
	}
	first, second := res.Records[0], res.Records[1]
	if first.Value.String() != "1000000000000000000" || first.IsError || first.Timestamp.Unix() != 1700000000 {
		t.Errorf("first = %+v", first)
	}
	if second.Value.Sign() != 0 || !second.IsError || second.GasLimit != 60000 || second.GasUsed != 45000 {
		t.Errorf("second = %+v", second)
	}

	// unknown chain and a chain without explorer make no request
	for _, id := range []int64{424242, chains.Base} {
		res, err := f.FetchHistory(context.Background(), owner, id)
		if err != nil || res.Supported || res.Records == nil || len(res.Records) != 0 {
			t.Errorf("chain %d: res=%+v err=%v", id, res, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("explorer calls = %d, want 1", calls.Load())
	}
}

func TestFetchHistory_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`))
	}))
	defer srv.Close()

	cfgs := []chains.ChainConfig{{ChainID: 1, Name: "test", ExplorerAPIURL: srv.URL}}
	reg, _ := chains.NewRegistry(cfgs...)

	res, err := NewFetcher(reg, api.NewClient(nil), nil).FetchHistory(context.Background(), owner, 1)
	if !errs.IsKind(err, errs.TransientFetch) {
		t.Fatalf("expected TransientFetch, got %v", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("records = %v", res.Records)
	}
}
