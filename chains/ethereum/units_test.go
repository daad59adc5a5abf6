package ethereum

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0x742d35Cc6634C0532925a3b844Bc454e4438f44e", false},
		{"  0x742d35cc6634c0532925a3b844bc454e4438f44e ", false},
		{"0x742d35", true},
		{"hello", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseAddress(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAddress(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	for _, in := range []string{"0", "-1", "abc", ""} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) expected error", in)
		}
	}
	d, err := ParseAmount("0.5")
	if err != nil || !d.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("ParseAmount(0.5) = %s, %v", d, err)
	}
}

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     string
		wantErr  bool
	}{
		{"1", 18, "1000000000000000000", false},
		{"0.5", 18, "500000000000000000", false},
		{"1.5", 6, "1500000", false},
		{"0.0000001", 6, "", true},
		{"12", 0, "12", false},
	}
	for _, tt := range tests {
		got, err := ToBaseUnits(decimal.RequireFromString(tt.amount), tt.decimals)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ToBaseUnits(%s, %d) expected error", tt.amount, tt.decimals)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ToBaseUnits(%s, %d): %v", tt.amount, tt.decimals, err)
		}
		if got.String() != tt.want {
			t.Errorf("ToBaseUnits(%s, %d) = %s, want %s", tt.amount, tt.decimals, got, tt.want)
		}
	}
}

func TestFromBaseUnitsAndDisplay(t *testing.T) {
	wei, _ := new(big.Int).SetString("1234567890123456789", 10)
	if got := FormatDisplay(WeiToEther(wei)); got != "1.234568" {
		t.Errorf("FormatDisplay = %s, want 1.234568", got)
	}
	if got := FormatDisplay(FromBaseUnits(nil, 18)); got != "0.000000" {
		t.Errorf("nil balance = %s", got)
	}
}

func TestToBaseUnits_Bounds(t *testing.T) {
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	overflow := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(5))

	got, err := ToBaseUnits(FromBaseUnits(maxUint256, 18), 18)
	if err != nil || got.Cmp(maxUint256) != 0 {
		t.Errorf("max uint256 = %v, %v", got, err)
	}

	tests := []struct {
		name     string
		amount   decimal.Decimal
		decimals int32
	}{
		{"just above uint256", FromBaseUnits(overflow, 18), 18},
		{"huge exponent", decimal.RequireFromString("1e2000000000"), 18},
		{"tiny exponent", decimal.RequireFromString("1e-2000000000"), 18},
		{"79 integer digits", decimal.RequireFromString("1e78"), 0},
		{"negative decimals", decimal.NewFromInt(1), -1},
		{"decimals above uint8", decimal.NewFromInt(1), 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			if v, err := ToBaseUnits(tt.amount, tt.decimals); err == nil {
				t.Errorf("expected error, got %s", v)
			}
			if d := time.Since(start); d > time.Second {
				t.Errorf("took %s", d)
			}
		})
	}

	if _, err := ToBaseUnits(decimal.RequireFromString("1e2000000000"), 18); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("err = %v, want ErrAmountTooLarge", err)
	}
}

func TestResolveDecimals(t *testing.T) {
	zero, six, bad := 0, 6, 300
	if got := ResolveDecimals(nil); got != NativeDecimals {
		t.Errorf("missing decimals = %d", got)
	}
	if got := ResolveDecimals(&zero); got != 0 {
		t.Errorf("reported zero = %d, want 0", got)
	}
	if got := ResolveDecimals(&six); got != 6 {
		t.Errorf("reported six = %d", got)
	}
	if got := ResolveDecimals(&bad); got != NativeDecimals {
		t.Errorf("out of range = %d", got)
	}
}

func TestGweiConversions(t *testing.T) {
	wei, err := GweiToWei(decimal.RequireFromString("1.5"))
	if err != nil || wei.String() != "1500000000" {
		t.Errorf("GweiToWei(1.5) = %s, %v", wei, err)
	}
	if wei, err := GweiToWei(decimal.RequireFromString("1e-2000000000")); err != nil || wei.Sign() != 0 {
		t.Errorf("sub-wei price = %s, %v", wei, err)
	}
	if _, err := GweiToWei(decimal.RequireFromString("1e2000000000")); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("huge price err = %v", err)
	}
	if got := WeiToGwei(big.NewInt(2_000_000_000)); !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("WeiToGwei = %s", got)
	}
}

func TestPackTransfer(t *testing.T) {
	to := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	data, err := PackTransfer(to, big.NewInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	// selector + two 32 byte words
	if len(data) != 4+64 {
		t.Fatalf("len(data) = %d", len(data))
	}
	if common.Bytes2Hex(data[:4]) != "a9059cbb" {
		t.Errorf("selector = %x, want a9059cbb", data[:4])
	}
	if EstimateGasLimit(data) != TokenTransferGas || EstimateGasLimit(nil) != NativeTransferGas {
		t.Error("unexpected fallback gas limits")
	}

	overflow := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(5))
	if _, err := PackTransfer(to, overflow); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("overflowing amount err = %v", err)
	}
	if _, err := PackTransfer(to, big.NewInt(-1)); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestSignTransaction(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	to := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	tx := NewTransaction(0, to, big.NewInt(1), NativeTransferGas, big.NewInt(1_000_000_000), nil)
	if err := ValidateTransaction(tx); err != nil {
		t.Fatal(err)
	}

	chainID := big.NewInt(11155111)
	signed, err := SignTransaction(tx, chainID, key)
	if err != nil {
		t.Fatal(err)
	}
	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil {
		t.Fatal(err)
	}
	if from != crypto.PubkeyToAddress(key.PublicKey) {
		t.Errorf("sender = %s", from.Hex())
	}

	if err := ValidateTransaction(NewTransaction(0, to, nil, 0, big.NewInt(1), nil)); err == nil {
		t.Error("expected zero gas limit error")
	}
}
