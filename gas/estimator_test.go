package gas

import (
	"context"
	"errors"
	"math/big"
	"testing"

	goeth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"
)

type fakeFees struct {
	baseFee   *big.Int
	headerErr error
	gasPrice  *big.Int
	priceErr  error
	tip       *big.Int
	tipErr    error
}

func (f *fakeFees) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	if f.headerErr != nil {
		return nil, f.headerErr
	}
	return &types.Header{Number: big.NewInt(1), BaseFee: f.baseFee}, nil
}

func (f *fakeFees) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.gasPrice, f.priceErr
}

func (f *fakeFees) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return f.tip, f.tipErr
}

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.GWei))
}

func TestEstimateFees(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeFees
		want   Estimate
	}{
		{
			name:   "london",
			client: &fakeFees{baseFee: gwei(100), tip: gwei(2)},
			want:   Estimate{Low: "90", Medium: "100", Fast: "112"},
		},
		{
			name:   "tip unavailable counts as zero",
			client: &fakeFees{baseFee: gwei(10), tipErr: errors.New("method not found")},
			want:   Estimate{Low: "9", Medium: "10", Fast: "11"},
		},
		{
			name:   "legacy chain falls back to gas price",
			client: &fakeFees{gasPrice: gwei(5), tip: new(big.Int)},
			want:   Estimate{Low: "4.5", Medium: "5", Fast: "5.5"},
		},
		{
			name:   "everything fails",
			client: &fakeFees{headerErr: errors.New("timeout"), priceErr: errors.New("timeout")},
			want:   Unavailable(),
		},
	}

	e := NewEstimator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.EstimateFees(context.Background(), tt.client)
			if got != tt.want {
				t.Errorf("EstimateFees = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimateFees_Ordering(t *testing.T) {
	e := NewEstimator(nil)
	for _, base := range []int64{1, 7, 33, 250} {
		est := e.EstimateFees(context.Background(), &fakeFees{baseFee: gwei(base), tip: gwei(1)})
		low := decimal.RequireFromString(est.Low)
		med := decimal.RequireFromString(est.Medium)
		fast := decimal.RequireFromString(est.Fast)
		if low.GreaterThan(med) || med.GreaterThan(fast) {
			t.Errorf("base %d: tiers out of order: %+v", base, est)
		}
	}
}

func TestResolvePrice(t *testing.T) {
	est := Estimate{Low: "9", Medium: "10", Fast: "11.5"}

	tests := []struct {
		name    string
		est     Estimate
		tier    Tier
		custom  string
		want    string
		wantErr bool
	}{
		{"medium", est, Medium, "", "10000000000", false},
		{"fast", est, Fast, "", "11500000000", false},
		{"custom", est, Custom, "1.5", "1500000000", false},
		{"custom with fees unavailable", Unavailable(), Custom, "3", "3000000000", false},
		{"custom from estimate", Estimate{Custom: "2"}, Custom, "", "2000000000", false},
		{"preset with fees unavailable", Unavailable(), Low, "", "", true},
		{"bad custom", est, Custom, "abc", "", true},
		{"zero custom", est, Custom, "0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePrice(tt.est, tt.tier, tt.custom)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePrice: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ResolvePrice = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := ResolvePrice(Unavailable(), Medium, ""); !errors.Is(err, ErrFeesUnavailable) {
		t.Errorf("expected ErrFeesUnavailable, got %v", err)
	}
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]Tier{"low": Low, "": Medium, "FAST": Fast, "custom": Custom} {
		got, err := ParseTier(in)
		if err != nil || got != want {
			t.Errorf("ParseTier(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseTier("warp"); err == nil {
		t.Error("expected error for unknown tier")
	}
}

type recordingEstimator struct {
	msg   goeth.CallMsg
	calls int
	gas   uint64
	err   error
}

func (r *recordingEstimator) EstimateGas(_ context.Context, msg goeth.CallMsg) (uint64, error) {
	r.calls++
	r.msg = msg
	return r.gas, r.err
}

func TestEstimateLimit_Token(t *testing.T) {
	contract := common.HexToAddress("0x00000000000000000000000000000000000000c0")
	rec := &recordingEstimator{gas: 51234}
	e := NewEstimator(nil)

	limit := e.EstimateLimit(context.Background(), rec, Intent{
		Recipient: "0x00000000000000000000000000000000000000b0",
		Amount:    "2.5",
		Token:     &TokenRef{Contract: contract, Decimals: 6},
	})
	if limit != 51234 {
		t.Fatalf("limit = %s", limit)
	}
	if rec.msg.To == nil || *rec.msg.To != contract {
		t.Fatalf("estimate sent to %v, want token contract", rec.msg.To)
	}
	// last word of the calldata is the scaled amount
	amount := new(big.Int).SetBytes(rec.msg.Data[len(rec.msg.Data)-32:])
	if amount.Int64() != 2_500_000 {
		t.Errorf("encoded amount = %s, want 2500000", amount)
	}
}

func TestEstimateLimit_TokenDecimals(t *testing.T) {
	tests := []struct {
		decimals int
		amount   string
		want     string
	}{
		{0, "7", "7"},
		{18, "1", "1000000000000000000"},
	}
	for _, tt := range tests {
		rec := &recordingEstimator{gas: 60000}
		NewEstimator(nil).EstimateLimit(context.Background(), rec, Intent{
			Recipient: "0x00000000000000000000000000000000000000b0",
			Amount:    tt.amount,
			Token:     &TokenRef{Contract: common.HexToAddress("0xc0"), Decimals: tt.decimals},
		})
		amount := new(big.Int).SetBytes(rec.msg.Data[len(rec.msg.Data)-32:])
		if amount.String() != tt.want {
			t.Errorf("decimals %d: encoded amount = %s, want %s", tt.decimals, amount, tt.want)
		}
	}
}

func TestEstimateLimit_Unavailable(t *testing.T) {
	e := NewEstimator(nil)
	tests := []struct {
		name   string
		client *recordingEstimator
		intent Intent
		calls  int
	}{
		{"rpc error", &recordingEstimator{err: errors.New("execution reverted")}, Intent{Recipient: "0x00000000000000000000000000000000000000b0", Amount: "1"}, 1},
		{"bad recipient", &recordingEstimator{gas: 21000}, Intent{Recipient: "nope", Amount: "1"}, 0},
		{"bad amount", &recordingEstimator{gas: 21000}, Intent{Recipient: "0x00000000000000000000000000000000000000b0", Amount: "0"}, 0},
		{"amount too large", &recordingEstimator{gas: 21000}, Intent{Recipient: "0x00000000000000000000000000000000000000b0", Amount: "1e2000000000"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := e.EstimateLimit(context.Background(), tt.client, tt.intent)
			if limit.Available() || limit.String() != NotAvailable {
				t.Errorf("limit = %s, want %s", limit, NotAvailable)
			}
			if tt.client.calls != tt.calls {
				t.Errorf("client calls = %d, want %d", tt.client.calls, tt.calls)
			}
		})
	}
}

func TestEstimateLimit_SimulatedNative(t *testing.T) {
	key, _ := crypto.GenerateKey()
	from := crypto.PubkeyToAddress(key.PublicKey)
	backend := simulated.NewBackend(types.GenesisAlloc{
		from: {Balance: new(big.Int).Mul(big.NewInt(10), big.NewInt(params.Ether))},
	})
	defer backend.Close()

	client := backend.Client()
	e := NewEstimator(nil)

	limit := e.EstimateLimit(context.Background(), client, Intent{
		From:      from,
		Recipient: "0x00000000000000000000000000000000000000b0",
		Amount:    "0.25",
	})
	if uint64(limit) != params.TxGas {
		t.Errorf("limit = %s, want %d", limit, params.TxGas)
	}

	est := e.EstimateFees(context.Background(), client)
	if !est.Available() {
		t.Fatalf("fees unavailable on simulated backend: %+v", est)
	}
}
