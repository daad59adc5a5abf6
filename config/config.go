// Package config resolves the harbor home directory, API keys and per-chain
// overrides into an immutable chain registry.
//
// Precedence for every value is: process environment, then .env files, then
// ~/.harbor/config.toml, then the built-in chain table.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chinmay1088/harbor/chains"
	"github.com/joho/godotenv"
)

const (
	dirName        = ".harbor"
	configFileName = "config.toml"
	envFileName    = ".env"
	chainFileName  = "chain.txt"

	EnvHome            = "HARBOR_HOME"
	EnvEtherscanAPIKey = "HARBOR_ETHERSCAN_API_KEY"
	EnvAlchemyAPIKey   = "HARBOR_ALCHEMY_API_KEY"
	EnvAnkrURL         = "HARBOR_ANKR_URL"
	EnvRPCPrefix       = "HARBOR_RPC_"
	EnvExplorerPrefix  = "HARBOR_EXPLORER_KEY_"
)

const (
	DefaultAnkrURL      = "https://rpc.ankr.com/multichain"
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
)

// ChainOverride is a [chains.<id>] table in config.toml.
type ChainOverride struct {
	RPCURL         string `toml:"rpc_url"`
	ExplorerAPIURL string `toml:"explorer_api_url"`
	ExplorerAPIKey string `toml:"explorer_api_key"`
}

// File mirrors config.toml.
type File struct {
	EtherscanAPIKey string                   `toml:"etherscan_api_key"`
	AlchemyAPIKey   string                   `toml:"alchemy_api_key"`
	AnkrURL         string                   `toml:"ankr_url"`
	CoinGeckoURL    string                   `toml:"coingecko_url"`
	Chains          map[string]ChainOverride `toml:"chains"`
}

// Config is the resolved runtime configuration.
type Config struct {
	HomeDir       string
	AlchemyAPIKey string
	AnkrURL       string
	CoinGeckoURL  string
	Registry      *chains.Registry
}

// Dir returns the harbor home directory, ~/.harbor unless HARBOR_HOME is set.
func Dir() (string, error) {
	if d := os.Getenv(EnvHome); d != "" {
		return d, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, dirName), nil
}

// Load reads the .env files of dir and of the working directory, then
// config.toml from dir, and builds the registry.
func Load(dir string) (*Config, error) {
	dotenv := map[string]string{}
	for _, p := range []string{filepath.Join(dir, envFileName), envFileName} {
		vals, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		// later files win, so the working directory .env overrides the home one
		for k, v := range vals {
			dotenv[k] = v
		}
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	var file File
	path := filepath.Join(dir, configFileName)
	if _, err := toml.DecodeFile(path, &file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return resolve(dir, file, lookup)
}

func resolve(dir string, file File, lookup func(string) string) (*Config, error) {
	overrides := make(map[int64]ChainOverride, len(file.Chains))
	for key, o := range file.Chains {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %q in config: %w", key, err)
		}
		overrides[id] = o
	}

	globalKey := firstNonEmpty(lookup(EnvEtherscanAPIKey), file.EtherscanAPIKey)

	defaults := chains.DefaultChains()
	known := make(map[int64]bool, len(defaults))
	for i := range defaults {
		c := &defaults[i]
		known[c.ChainID] = true
		o := overrides[c.ChainID]
		id := strconv.FormatInt(c.ChainID, 10)

		c.RPCURL = firstNonEmpty(lookup(EnvRPCPrefix+id), o.RPCURL, c.RPCURL)
		c.ExplorerAPIURL = firstNonEmpty(o.ExplorerAPIURL, c.ExplorerAPIURL)
		c.ExplorerAPIKey = firstNonEmpty(lookup(EnvExplorerPrefix+id), o.ExplorerAPIKey, globalKey)
	}
	for id := range overrides {
		if !known[id] {
			return nil, fmt.Errorf("config overrides unknown chain id %d: %w", id, chains.ErrUnsupportedNetwork)
		}
	}

	registry, err := chains.NewRegistry(defaults...)
	if err != nil {
		return nil, err
	}

	return &Config{
		HomeDir:       dir,
		AlchemyAPIKey: firstNonEmpty(lookup(EnvAlchemyAPIKey), file.AlchemyAPIKey),
		AnkrURL:       firstNonEmpty(lookup(EnvAnkrURL), file.AnkrURL, DefaultAnkrURL),
		CoinGeckoURL:  firstNonEmpty(file.CoinGeckoURL, DefaultCoinGeckoURL),
		Registry:      registry,
	}, nil
}

// Path joins name onto the home directory.
func (c *Config) Path(name ...string) string {
	return filepath.Join(append([]string{c.HomeDir}, name...)...)
}

// SelectedChain returns the chain id stored in chain.txt, or the default chain
// when the file is missing or unreadable.
func SelectedChain(dir string) int64 {
	data, err := os.ReadFile(filepath.Join(dir, chainFileName))
	if err != nil {
		return chains.DefaultChainID
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || id <= 0 {
		return chains.DefaultChainID
	}
	return id
}

// SaveSelectedChain writes chainID to chain.txt.
func SaveSelectedChain(dir string, chainID int64) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(dir, chainFileName)
	if err := os.WriteFile(path, []byte(strconv.FormatInt(chainID, 10)), 0600); err != nil {
		return fmt.Errorf("failed to write chain file: %w", err)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
