// Package transfer validates, signs and broadcasts native and ERC-20
// transfers and follows them until they are mined.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/chinmay1088/harbor/balances"
	"github.com/chinmay1088/harbor/chains/ethereum"
	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/gas"
	"github.com/chinmay1088/harbor/logging"
	"github.com/chinmay1088/harbor/wallet"
	goeth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// NativeAsset selects the chain's native currency.
const NativeAsset = "NATIVE"

// Reasons reported with Rejected and Failed outcomes.
const (
	ReasonNotConnected     = "not connected"
	ReasonInvalidRecipient = "invalid recipient"
	ReasonInvalidAmount    = "invalid amount"
	ReasonClientNotReady   = "client not ready"
	ReasonInFlight         = "submission in flight"
	ReasonTokenNotFound    = "token not found"
	ReasonUserRejected     = "rejected by user"
	ReasonReverted         = "transaction reverted"
)

const (
	DefaultPollInterval   = 3 * time.Second
	DefaultConfirmTimeout = 2 * time.Minute
)

// PendingTransfer is what the user asked to send.
type PendingTransfer struct {
	Recipient  string
	Amount     string
	Asset      string // NativeAsset or a token symbol
	Tier       gas.Tier
	CustomGwei string
}

// IsNative reports whether the transfer moves the native currency.
func (p PendingTransfer) IsNative() bool {
	return p.Asset == "" || strings.EqualFold(p.Asset, NativeAsset)
}

// Status of a transfer.
type Status int

const (
	Submitted Status = iota
	Confirmed
	Rejected
	Failed
)

func (s Status) String() string {
	switch s {
	case Submitted:
		return "submitted"
	case Confirmed:
		return "confirmed"
	case Rejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Outcome is a lifecycle event of one submission. Err carries the errs.Kind
// for Rejected and Failed outcomes.
type Outcome struct {
	Status Status
	Hash   common.Hash
	Reason string
	Err    error
}

// Phase of the executor.
type Phase int

const (
	Idle Phase = iota
	Validating
	Submitting
	AwaitingConfirmation
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case AwaitingConfirmation:
		return "awaiting confirmation"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// TokenLookup finds a held token by symbol. *state.Store implements it.
type TokenLookup interface {
	Token(symbol string) (balances.TokenBalance, bool)
}

// Config wires an Executor.
type Config struct {
	Wallet    wallet.Connector
	Client    ethereum.Client // nil until the chain client is connected
	ChainID   int64
	Tokens    TokenLookup
	Estimator *gas.Estimator
	Log       *zap.Logger

	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

// Executor runs one submission at a time.
type Executor struct {
	cfg Config
	log *zap.Logger

	mu    sync.Mutex
	phase Phase
}

// NewExecutor creates an executor in the Idle phase.
func NewExecutor(cfg Config) *Executor {
	cfg.Log = logging.OrNop(cfg.Log)
	if cfg.Estimator == nil {
		cfg.Estimator = gas.NewEstimator(cfg.Log)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfirmTimeout
	}
	return &Executor{cfg: cfg, log: cfg.Log}
}

// State returns the current phase.
func (e *Executor) State() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Executor) setPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	e.mu.Unlock()
}

// Submit validates p, then signs and broadcasts it.
//
// The first outcome is returned directly. When it is Submitted, the returned
// channel later delivers exactly one Confirmed or Failed outcome and is then
// closed; otherwise the channel is nil. Submit returns Rejected with
// ReasonInFlight while an earlier submission is still being processed.
func (e *Executor) Submit(ctx context.Context, p PendingTransfer) (Outcome, <-chan Outcome) {
	e.mu.Lock()
	if e.phase != Idle && e.phase != Done {
		e.mu.Unlock()
		return rejected(ReasonInFlight, errs.Validation), nil
	}
	e.phase = Validating
	e.mu.Unlock()

	to, amount, out, ok := e.validate(p)
	if !ok {
		e.setPhase(Done)
		return out, nil
	}

	e.setPhase(Submitting)
	tx, out, ok := e.send(ctx, p, to, amount)
	if !ok {
		e.setPhase(Done)
		return out, nil
	}

	e.setPhase(AwaitingConfirmation)
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		final := e.awaitReceipt(ctx, tx.Hash())
		e.setPhase(Done)
		ch <- final
	}()

	return Outcome{Status: Submitted, Hash: tx.Hash()}, ch
}

// validate checks, in order: wallet connected, recipient, amount, client.
// No network call is made.
func (e *Executor) validate(p PendingTransfer) (common.Address, string, Outcome, bool) {
	if e.cfg.Wallet == nil || !e.cfg.Wallet.IsConnected() {
		return common.Address{}, "", rejected(ReasonNotConnected, errs.Validation), false
	}
	to, err := ethereum.ParseAddress(p.Recipient)
	if err != nil {
		return common.Address{}, "", rejected(ReasonInvalidRecipient, errs.Validation), false
	}
	if _, err := ethereum.ParseAmount(p.Amount); err != nil {
		return common.Address{}, "", rejected(ReasonInvalidAmount, errs.Validation), false
	}
	if e.cfg.Client == nil {
		return common.Address{}, "", rejected(ReasonClientNotReady, errs.Validation), false
	}
	return to, strings.TrimSpace(p.Amount), Outcome{}, true
}

func (e *Executor) send(ctx context.Context, p PendingTransfer, to common.Address, amountStr string) (*types.Transaction, Outcome, bool) {
	client := e.cfg.Client
	from := e.cfg.Wallet.Address()
	amount, _ := ethereum.ParseAmount(amountStr)

	// gas price first so a custom tier works without fee data
	var fees gas.Estimate
	if p.Tier != gas.Custom {
		fees = e.cfg.Estimator.EstimateFees(ctx, client)
	}
	gasPrice, err := gas.ResolvePrice(fees, p.Tier, p.CustomGwei)
	if err != nil {
		return nil, failed(err), false
	}

	var (
		target common.Address
		value  = new(big.Int)
		data   []byte
		intent = gas.Intent{From: from, Recipient: to.Hex(), Amount: amountStr}
	)
	if p.IsNative() {
		target = to
		value, err = ethereum.EtherToWei(amount)
		if err != nil {
			return nil, failed(err), false
		}
	} else {
		if e.cfg.Tokens == nil {
			return nil, failedReason(ReasonTokenNotFound), false
		}
		token, ok := e.cfg.Tokens.Token(p.Asset)
		if !ok {
			return nil, failedReason(ReasonTokenNotFound), false
		}
		raw, err := ethereum.ToBaseUnits(amount, int32(token.Decimals))
		if err != nil {
			return nil, failed(err), false
		}
		data, err = ethereum.PackTransfer(to, raw)
		if err != nil {
			return nil, failed(err), false
		}
		target = token.ContractAddress
		intent.Token = &gas.TokenRef{Contract: token.ContractAddress, Decimals: token.Decimals}
	}

	limit := e.cfg.Estimator.EstimateLimit(ctx, client, intent)
	gasLimit := uint64(limit)
	if !limit.Available() {
		gasLimit = ethereum.EstimateGasLimit(data)
		e.log.Warn("using fallback gas limit", zap.Uint64("gas_limit", gasLimit))
	}

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, failed(fmt.Errorf("failed to get nonce: %w", err)), false
	}

	tx := ethereum.NewTransaction(nonce, target, value, gasLimit, gasPrice, data)
	if err := ethereum.ValidateTransaction(tx); err != nil {
		return nil, failed(err), false
	}

	signed, err := e.cfg.Wallet.SignTx(ctx, tx, big.NewInt(e.cfg.ChainID))
	if err != nil {
		if errors.Is(err, wallet.ErrUserRejected) {
			return nil, rejected(ReasonUserRejected, errs.UserRejection), false
		}
		return nil, failed(err), false
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, failed(err), false
	}

	e.log.Info("transaction broadcast",
		zap.String("hash", signed.Hash().Hex()),
		zap.Int64("chain_id", e.cfg.ChainID),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas_limit", gasLimit),
		zap.String("gas_price", gasPrice.String()))
	return signed, Outcome{}, true
}

// awaitReceipt polls for the receipt of hash until it is mined, ctx ends or
// the confirm timeout passes.
func (e *Executor) awaitReceipt(ctx context.Context, hash common.Hash) Outcome {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := e.cfg.Client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				out := failedReason(ReasonReverted)
				out.Hash = hash
				return out
			}
			e.log.Info("transaction confirmed",
				zap.String("hash", hash.Hex()),
				zap.Uint64("gas_used", receipt.GasUsed))
			return Outcome{Status: Confirmed, Hash: hash}
		case err != nil && !errors.Is(err, goeth.NotFound):
			if ctx.Err() == nil {
				e.log.Debug("receipt lookup failed, retrying", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			out := failed(fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err()))
			out.Hash = hash
			return out
		case <-ticker.C:
		}
	}
}

func rejected(reason string, kind errs.Kind) Outcome {
	return Outcome{
		Status: Rejected,
		Reason: reason,
		Err:    errs.New(kind, "submit transfer", reason),
	}
}

// failed keeps the underlying error text verbatim as the reason.
func failed(err error) Outcome {
	return Outcome{
		Status: Failed,
		Reason: err.Error(),
		Err:    errs.Wrap(errs.SubmissionFailure, "submit transfer", err),
	}
}

func failedReason(reason string) Outcome {
	return Outcome{
		Status: Failed,
		Reason: reason,
		Err:    errs.New(errs.SubmissionFailure, "submit transfer", reason),
	}
}
