package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chinmay1088/harbor/api"
	"github.com/chinmay1088/harbor/balances"
	"github.com/chinmay1088/harbor/chains"
	"github.com/chinmay1088/harbor/chains/ethereum"
	"github.com/chinmay1088/harbor/config"
	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/gas"
	"github.com/chinmay1088/harbor/history"
	"github.com/chinmay1088/harbor/logging"
	"github.com/chinmay1088/harbor/notify"
	"github.com/chinmay1088/harbor/session"
	"github.com/chinmay1088/harbor/state"
	"github.com/chinmay1088/harbor/wallet"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// commandTimeout bounds the network work of a single command.
const commandTimeout = 90 * time.Second

// app is what every command works with: resolved config, the selected
// chain, the wallet and the shared API client.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	api      *api.Client
	wallet   *wallet.Manager
	chain    chains.ChainConfig
	out      io.Writer
	notifier notify.Notifier
	store    *state.Store
}

func newApp(cmd *cobra.Command, opts ...wallet.Option) (*app, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	log := logging.New(verbose, quiet)

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	chainID, _ := cmd.Flags().GetInt64("chain")
	if chainID == 0 {
		chainID = config.SelectedChain(dir)
	}
	chain, err := cfg.Registry.Lookup(chainID)
	if err != nil {
		return nil, errs.Wrap(errs.UnsupportedNetwork, "select chain",
			fmt.Errorf("%w. Run 'harbor chain' to pick a supported chain", err))
	}

	out := cmd.OutOrStdout()
	var n notify.Notifier = notify.NewConsole(out)
	if quiet {
		n = notify.Discard{}
	}

	return &app{
		cfg:      cfg,
		log:      log,
		api:      api.NewClient(log),
		wallet:   wallet.NewManager(dir, opts...),
		chain:    chain,
		out:      out,
		notifier: n,
		store:    state.NewStore(log),
	}, nil
}

// requireUnlocked fails unless a wallet exists and a session is active.
func (a *app) requireUnlocked() error {
	if !a.wallet.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'harbor init' first")
	}
	if !a.wallet.IsConnected() {
		return fmt.Errorf("wallet is locked. Run 'harbor unlock' first")
	}
	return nil
}

func (a *app) dial(ctx context.Context) (*ethclient.Client, error) {
	client, err := ethereum.Dial(ctx, a.chain.RPCURL, a.chain.ChainID)
	if err != nil {
		return nil, errs.Wrap(errs.TransientFetch, "connect", err)
	}
	return client, nil
}

func (a *app) estimator() *gas.Estimator {
	return gas.NewEstimator(a.log)
}

func (a *app) refresher() *session.Refresher {
	agg := balances.NewAggregator(a.cfg.Registry, a.api, balances.Sources{
		AnkrURL:       a.cfg.AnkrURL,
		AlchemyAPIKey: a.cfg.AlchemyAPIKey,
	}, a.log)
	fetcher := history.NewFetcher(a.cfg.Registry, a.api, a.log)
	return session.NewRefresher(a.store, agg, a.estimator(), fetcher, a.notifier, a.log)
}

// connect makes the wallet's address on the selected chain current and loads parts.
func (a *app) connect(ctx context.Context, client session.Client, parts session.Parts) error {
	key := state.Key{Address: a.wallet.Address(), ChainID: a.chain.ChainID}
	return a.refresher().Connect(ctx, client, key, parts)
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// chainLabel is the chain name with its id, e.g. "Sepolia (11155111)".
func chainLabel(c chains.ChainConfig) string {
	label := fmt.Sprintf("%s (%d)", c.Name, c.ChainID)
	if c.Testnet {
		label += " [testnet]"
	}
	return label
}

// recoverable reports whether err is one of the kinds a command reports and
// then exits cleanly from.
func recoverable(err error) bool {
	var e *errs.Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case errs.Validation, errs.UnsupportedNetwork, errs.UserRejection, errs.TransientFetch:
		return true
	}
	return false
}

// truncateAddress shortens long addresses for display
func truncateAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-6:]
}
