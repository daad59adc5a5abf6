// Package session loads everything shown for the connected wallet into a
// state.Store: balances, fee tiers and history, fetched concurrently.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/chinmay1088/harbor/balances"
	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/gas"
	"github.com/chinmay1088/harbor/history"
	"github.com/chinmay1088/harbor/logging"
	"github.com/chinmay1088/harbor/notify"
	"github.com/chinmay1088/harbor/state"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Parts selects what a refresh loads.
type Parts uint8

const (
	Balances Parts = 1 << iota
	Fees
	History

	All = Balances | Fees | History
)

// Client is what the balance and fee fetches read from.
type Client interface {
	balances.BalanceReader
	gas.FeeReader
}

// BalanceFetcher is implemented by *balances.Aggregator.
type BalanceFetcher interface {
	FetchBalances(ctx context.Context, client balances.BalanceReader, address common.Address, chainID int64) (balances.Result, error)
}

// FeeEstimator is implemented by *gas.Estimator.
type FeeEstimator interface {
	EstimateFees(ctx context.Context, client gas.FeeReader) gas.Estimate
}

// HistoryFetcher is implemented by *history.Fetcher.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, address common.Address, chainID int64) (history.Result, error)
}

// Refresher fans fetches out and commits their results through the store.
type Refresher struct {
	store    *state.Store
	balances BalanceFetcher
	fees     FeeEstimator
	history  HistoryFetcher
	notifier notify.Notifier
	log      *zap.Logger
}

// NewRefresher wires a refresher. A nil notifier drops notices.
func NewRefresher(store *state.Store, b BalanceFetcher, f FeeEstimator, h HistoryFetcher, n notify.Notifier, log *zap.Logger) *Refresher {
	if n == nil {
		n = notify.Discard{}
	}
	log = logging.OrNop(log)
	return &Refresher{store: store, balances: b, fees: f, history: h, notifier: n, log: log}
}

// Connect makes key current, clearing whatever was shown before, and loads parts.
func (r *Refresher) Connect(ctx context.Context, client Client, key state.Key, parts Parts) error {
	r.store.Switch(key)
	r.notifier.Notify(notify.Notice{
		Level:       notify.Info,
		Title:       "Connecting",
		Description: fmt.Sprintf("%s on chain %d", key.Address.Hex(), key.ChainID),
	})
	return r.Refresh(ctx, client, parts)
}

// Refresh reloads parts for the current key. The fetches run concurrently and
// independently: one failing does not cancel the others. Results that arrive
// after the key changed are discarded. The first error is returned once every
// fetch has finished.
func (r *Refresher) Refresh(ctx context.Context, client Client, parts Parts) error {
	snap := r.store.Snapshot()
	if !snap.Connected {
		return errs.New(errs.Validation, "refresh", "not connected")
	}
	if client == nil && parts&(Balances|Fees) != 0 {
		return errs.New(errs.Validation, "refresh", "client not ready")
	}

	ticket := r.store.Begin()
	key := ticket.Key

	var g errgroup.Group
	if parts&Balances != 0 {
		g.Go(func() error { return r.loadBalances(ctx, client, ticket) })
	}
	if parts&Fees != 0 {
		g.Go(func() error {
			est := r.fees.EstimateFees(ctx, client)
			r.commit(ticket, "fees", func(s *state.Snapshot) {
				s.Fees = est
				s.FeesLoaded = true
			})
			if !est.Available() {
				r.notifier.Notify(notify.Notice{Level: notify.Warning, Title: "Gas prices unavailable"})
			}
			return nil
		})
	}
	if parts&History != 0 {
		g.Go(func() error { return r.loadHistory(ctx, ticket) })
	}

	err := g.Wait()
	if err == nil && r.store.Current(ticket) {
		r.notifier.Notify(notify.Notice{
			Level:       notify.Success,
			Title:       "Connected",
			Description: key.Address.Hex(),
		})
	}
	return err
}

func (r *Refresher) loadBalances(ctx context.Context, client Client, t state.Ticket) error {
	res, err := r.balances.FetchBalances(ctx, client, t.Key.Address, t.Key.ChainID)
	if !r.commit(t, "balances", func(s *state.Snapshot) {
		s.NativeBalance = res.Native
		s.Tokens = res.Tokens
		s.TokensLoaded = err == nil
		s.Unsupported = err == nil && !res.Supported
	}) {
		return nil
	}

	if err != nil {
		r.notifier.Notify(notify.Notice{Level: notify.Error, Title: "Failed to load balances", Description: errs.Message(err)})
		return err
	}
	if !res.Supported {
		r.notifier.Notify(notify.Notice{Level: notify.Warning, Title: "Token balances not supported on this network"})
	}
	return nil
}

func (r *Refresher) loadHistory(ctx context.Context, t state.Ticket) error {
	res, err := r.history.FetchHistory(ctx, t.Key.Address, t.Key.ChainID)
	if !r.commit(t, "history", func(s *state.Snapshot) {
		s.History = res.Records
		s.HistoryLoaded = err == nil
		s.HistorySupported = res.Supported
	}) {
		return nil
	}

	if err != nil {
		r.notifier.Notify(notify.Notice{Level: notify.Error, Title: "Failed to load transactions", Description: errs.Message(err)})
		return err
	}
	if !res.Supported {
		r.notifier.Notify(notify.Notice{Level: notify.Warning, Title: "Transaction history not supported on this network"})
	}
	return nil
}

func (r *Refresher) commit(t state.Ticket, what string, fn func(*state.Snapshot)) bool {
	if r.store.Commit(t, fn) {
		return true
	}
	r.log.Debug("dropped stale fetch", zap.String("part", what), zap.Int64("chain_id", t.Key.ChainID))
	return false
}

// Poll refreshes parts every interval until ctx is done, calling onUpdate
// with a snapshot after each round. Errors are reported through the
// notifier and do not stop polling.
func (r *Refresher) Poll(ctx context.Context, client Client, interval time.Duration, parts Parts, onUpdate func(state.Snapshot)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.Refresh(ctx, client, parts); err != nil {
			if errs.IsKind(err, errs.Validation) {
				return err
			}
			r.log.Debug("poll round failed", zap.Error(err))
		}
		if onUpdate != nil {
			onUpdate(r.store.Snapshot())
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
