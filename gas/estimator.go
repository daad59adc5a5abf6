// Package gas derives the low/medium/fast fee tiers and per-transfer gas
// limits shown before a transfer is sent.
package gas

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/chinmay1088/harbor/chains/ethereum"
	"github.com/chinmay1088/harbor/logging"
	goeth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NotAvailable is shown in place of a tier or limit that could not be estimated.
const NotAvailable = "N/A"

// ErrFeesUnavailable is returned when a preset tier is chosen but fee data
// could not be fetched.
var ErrFeesUnavailable = errors.New("fee data unavailable")

// Estimate holds the fee tiers as gwei decimal strings.
type Estimate struct {
	Low    string
	Medium string
	Fast   string
	Custom string // user supplied override in gwei, empty when unset
}

// Unavailable is the estimate used when fee data cannot be fetched.
func Unavailable() Estimate {
	return Estimate{Low: NotAvailable, Medium: NotAvailable, Fast: NotAvailable}
}

// Available reports whether the preset tiers hold real values.
func (e Estimate) Available() bool {
	return e.Medium != "" && e.Medium != NotAvailable
}

// Tier selects which fee level a transfer pays.
type Tier int

const (
	Medium Tier = iota
	Low
	Fast
	Custom
)

func (t Tier) String() string {
	switch t {
	case Low:
		return "low"
	case Fast:
		return "fast"
	case Custom:
		return "custom"
	default:
		return "medium"
	}
}

// ParseTier parses low, medium, fast or custom.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "slow":
		return Low, nil
	case "", "medium", "normal":
		return Medium, nil
	case "fast":
		return Fast, nil
	case "custom":
		return Custom, nil
	}
	return Medium, fmt.Errorf("unknown gas tier %q, use low, medium, fast or custom", s)
}

// FeeReader is the part of a chain client fee estimation needs.
type FeeReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
}

// Estimator computes fee tiers and gas limits. It holds no state besides
// its logger; every result is a function of the client and the inputs.
type Estimator struct {
	log *zap.Logger
}

// NewEstimator creates an estimator.
func NewEstimator(log *zap.Logger) *Estimator {
	log = logging.OrNop(log)
	return &Estimator{log: log}
}

// EstimateFees reads the latest base fee (or the legacy gas price on chains
// without one) and the priority fee, and derives:
//
//	medium = base
//	low    = 90% of base
//	fast   = 110% of base + priority
//
// A missing priority fee counts as zero. If the base fee cannot be read every
// tier is NotAvailable.
func (e *Estimator) EstimateFees(ctx context.Context, client FeeReader) Estimate {
	if client == nil {
		return Unavailable()
	}

	base, err := baseFee(ctx, client)
	if err != nil {
		e.log.Warn("fee data unavailable", zap.Error(err))
		return Unavailable()
	}

	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil || tip == nil {
		e.log.Debug("priority fee unavailable, using zero", zap.Error(err))
		tip = new(big.Int)
	}

	low := new(big.Int).Mul(base, big.NewInt(90))
	low.Quo(low, big.NewInt(100))

	fast := new(big.Int).Mul(base, big.NewInt(110))
	fast.Quo(fast, big.NewInt(100))
	fast.Add(fast, tip)

	est := Estimate{
		Low:    ethereum.WeiToGwei(low).String(),
		Medium: ethereum.WeiToGwei(base).String(),
		Fast:   ethereum.WeiToGwei(fast).String(),
	}
	e.log.Debug("fee tiers",
		zap.String("low", est.Low),
		zap.String("medium", est.Medium),
		zap.String("fast", est.Fast))
	return est
}

func baseFee(ctx context.Context, client FeeReader) (*big.Int, error) {
	header, err := client.HeaderByNumber(ctx, nil)
	if err == nil && header != nil && header.BaseFee != nil {
		return new(big.Int).Set(header.BaseFee), nil
	}

	// pre-London chains have no base fee
	price, perr := client.SuggestGasPrice(ctx)
	if perr != nil {
		if err != nil {
			return nil, fmt.Errorf("failed to get latest header: %w", err)
		}
		return nil, fmt.Errorf("failed to get gas price: %w", perr)
	}
	if price == nil {
		return nil, errors.New("empty gas price")
	}
	return price, nil
}

// ResolvePrice converts the chosen tier into a gas price in wei. Custom reads
// customGwei and works even when the preset tiers are NotAvailable.
func ResolvePrice(est Estimate, tier Tier, customGwei string) (*big.Int, error) {
	var gwei string
	switch tier {
	case Custom:
		if strings.TrimSpace(customGwei) == "" {
			customGwei = est.Custom
		}
		d, err := decimal.NewFromString(strings.TrimSpace(customGwei))
		if err != nil || !d.IsPositive() {
			return nil, fmt.Errorf("invalid custom gas price %q", customGwei)
		}
		price, err := ethereum.GweiToWei(d)
		if err != nil {
			return nil, fmt.Errorf("invalid custom gas price %q: %w", customGwei, err)
		}
		if price.Sign() <= 0 {
			return nil, fmt.Errorf("custom gas price %q is below one wei", customGwei)
		}
		return price, nil
	case Low:
		gwei = est.Low
	case Fast:
		gwei = est.Fast
	default:
		gwei = est.Medium
	}

	if gwei == "" || gwei == NotAvailable {
		return nil, fmt.Errorf("%s tier: %w", tier, ErrFeesUnavailable)
	}
	d, err := decimal.NewFromString(gwei)
	if err != nil {
		return nil, fmt.Errorf("invalid %s tier %q: %w", tier, gwei, err)
	}
	price, err := ethereum.GweiToWei(d)
	if err != nil {
		return nil, fmt.Errorf("invalid %s tier %q: %w", tier, gwei, err)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("%s tier resolves to zero gas price", tier)
	}
	return price, nil
}

// Limit is a gas limit; LimitUnavailable means estimation failed.
type Limit uint64

// LimitUnavailable is the sentinel for a failed estimate.
const LimitUnavailable Limit = 0

// Available reports whether the estimate succeeded.
func (l Limit) Available() bool { return l != LimitUnavailable }

func (l Limit) String() string {
	if !l.Available() {
		return NotAvailable
	}
	return strconv.FormatUint(uint64(l), 10)
}

// Intent is the transfer a gas limit is estimated for. Token is nil for a
// native transfer.
type Intent struct {
	From      common.Address
	Recipient string
	Amount    string
	Token     *TokenRef
}

// TokenRef identifies the ERC-20 being sent.
type TokenRef struct {
	Contract common.Address
	Decimals int // as resolved by ethereum.ResolveDecimals; zero is a valid value
}

// EstimateLimit estimates the gas a transfer needs. Invalid input and RPC
// failures both yield LimitUnavailable.
func (e *Estimator) EstimateLimit(ctx context.Context, client goeth.GasEstimator, intent Intent) Limit {
	if client == nil {
		return LimitUnavailable
	}
	msg, err := callMsg(intent)
	if err != nil {
		e.log.Debug("gas limit not estimated", zap.Error(err))
		return LimitUnavailable
	}

	limit, err := client.EstimateGas(ctx, msg)
	if err != nil {
		e.log.Warn("gas limit estimation failed", zap.Error(err))
		return LimitUnavailable
	}
	return Limit(limit)
}

// callMsg builds the message estimated for intent: a plain value transfer, or
// transfer(recipient, amount) on the token contract.
func callMsg(intent Intent) (goeth.CallMsg, error) {
	to, err := ethereum.ParseAddress(intent.Recipient)
	if err != nil {
		return goeth.CallMsg{}, err
	}
	amount, err := ethereum.ParseAmount(intent.Amount)
	if err != nil {
		return goeth.CallMsg{}, err
	}

	if intent.Token == nil {
		value, err := ethereum.EtherToWei(amount)
		if err != nil {
			return goeth.CallMsg{}, err
		}
		return goeth.CallMsg{From: intent.From, To: &to, Value: value}, nil
	}

	raw, err := ethereum.ToBaseUnits(amount, int32(intent.Token.Decimals))
	if err != nil {
		return goeth.CallMsg{}, err
	}
	data, err := ethereum.PackTransfer(to, raw)
	if err != nil {
		return goeth.CallMsg{}, err
	}
	contract := intent.Token.Contract
	return goeth.CallMsg{From: intent.From, To: &contract, Data: data}, nil
}
