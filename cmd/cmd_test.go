package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/chinmay1088/harbor/chains"
	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/transfer"
)

func TestReadLine_Sequential(t *testing.T) {
	in := strings.NewReader("first\nsecond\r\nthird")
	for _, want := range []string{"first", "second", "third", ""} {
		got, err := readLine(in)
		if err != nil {
			t.Fatalf("readLine: %v", err)
		}
		if got != want {
			t.Errorf("readLine = %q, want %q", got, want)
		}
	}
}

func TestReadNewPassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"ok", "correct horse\ncorrect horse\n", ""},
		{"too short", "short\nshort\n", "at least"},
		{"mismatch", "password-one\npassword-two\n", "do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			pw, err := readNewPassword(strings.NewReader(tt.input), &out)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if pw != "correct horse" {
					t.Errorf("password = %q", pw)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errs.New(errs.Validation, "refresh", "not connected"), true},
		{errs.New(errs.TransientFetch, "balances", "timeout"), true},
		{errs.New(errs.UserRejection, "sign", "rejected"), true},
		{fmt.Errorf("wrapped: %w", errs.New(errs.UnsupportedNetwork, "select chain", "unknown")), true},
		{errs.New(errs.SubmissionFailure, "send", "nonce too low"), false},
		{fmt.Errorf("plain"), false},
	}
	for _, tt := range tests {
		if got := recoverable(tt.err); got != tt.want {
			t.Errorf("recoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestResolveAsset(t *testing.T) {
	a := &app{chain: chains.ChainConfig{Name: "Polygon", ChainID: 137, NativeSymbol: "POL"}}
	tests := map[string]string{
		"pol":    transfer.NativeAsset,
		"POL":    transfer.NativeAsset,
		"native": transfer.NativeAsset,
		"usdc":   "USDC",
	}
	for in, want := range tests {
		if got := resolveAsset(a, in); got != want {
			t.Errorf("resolveAsset(%q) = %q, want %q", in, got, want)
		}
	}
	if got := displayAsset(a, transfer.NativeAsset); got != "POL" {
		t.Errorf("displayAsset = %q, want POL", got)
	}
}

func TestChainLabelAndTruncate(t *testing.T) {
	c := chains.ChainConfig{Name: "Sepolia", ChainID: 11155111, Testnet: true}
	if got := chainLabel(c); got != "Sepolia (11155111) [testnet]" {
		t.Errorf("chainLabel = %q", got)
	}
	if got := truncateAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94"); got != "0x9858...aEda94" {
		t.Errorf("truncateAddress = %q", got)
	}
	if got := truncateAddress("0x1234"); got != "0x1234" {
		t.Errorf("short address changed: %q", got)
	}
}
