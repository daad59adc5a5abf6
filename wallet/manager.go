// Package wallet holds the encrypted recovery phrase, the unlock session and
// the signing handle the rest of harbor talks to.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chinmay1088/harbor/crypto"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	VaultFile   = "wallet.vault"
	SessionFile = "session.json"

	// SessionDuration is how long an unlock lasts.
	SessionDuration = 30 * time.Minute
)

var (
	// ErrUserRejected is returned by SignTx when the user declines to sign.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrLocked is returned when a key is needed and no session is active.
	ErrLocked = errors.New("wallet is locked")
	// ErrNoWallet is returned when no vault exists yet.
	ErrNoWallet = errors.New("no wallet found")
	// ErrWalletExists is returned when creating a vault over an existing one.
	ErrWalletExists = errors.New("wallet already exists")
)

// Connector is the capability the transfer and refresh code consume: the
// current address, whether a wallet is connected, and a signing handle.
type Connector interface {
	Address() common.Address
	IsConnected() bool
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// ConfirmFunc asks the user to approve tx before it is signed.
type ConfirmFunc func(ctx context.Context, tx *types.Transaction, chainID *big.Int) (bool, error)

type sessionData struct {
	Token      string    `json:"token"`
	Mnemonic   string    `json:"mnemonic"`
	Address    string    `json:"address"`
	Expiration time.Time `json:"expiration"`
}

// Manager handles the vault, the session and key derivation.
type Manager struct {
	vaultPath   string
	sessionPath string
	kdf         crypto.KDFParams
	ttl         time.Duration
	confirm     ConfirmFunc
	now         func() time.Time

	mu       sync.RWMutex
	mnemonic string
	key      *ecdsa.PrivateKey
}

// Option configures a Manager.
type Option func(*Manager)

// WithKDF sets the scrypt costs of new vaults.
func WithKDF(kdf crypto.KDFParams) Option {
	return func(m *Manager) { m.kdf = kdf }
}

// WithConfirm sets the prompt run before every signature.
func WithConfirm(fn ConfirmFunc) Option {
	return func(m *Manager) { m.confirm = fn }
}

// WithSessionDuration overrides SessionDuration.
func WithSessionDuration(d time.Duration) Option {
	return func(m *Manager) { m.ttl = d }
}

// WithClock overrides time.Now for session expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager storing its files in dir.
func NewManager(dir string, opts ...Option) *Manager {
	m := &Manager{
		vaultPath:   filepath.Join(dir, VaultFile),
		sessionPath: filepath.Join(dir, SessionFile),
		kdf:         crypto.DefaultKDF,
		ttl:         SessionDuration,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// VaultExists checks if a vault file exists.
func (m *Manager) VaultExists() bool {
	_, err := os.Stat(m.vaultPath)
	return err == nil
}

// Initialize creates a wallet with a fresh phrase and unlocks it.
func (m *Manager) Initialize(password string) (string, error) {
	mnemonic, err := NewMnemonic()
	if err != nil {
		return "", err
	}
	if err := m.Import(mnemonic, password); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// Import stores an existing phrase under password and unlocks it.
func (m *Manager) Import(mnemonic, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.VaultExists() {
		return ErrWalletExists
	}

	mnemonic = NormalizeMnemonic(mnemonic)
	key, err := DeriveKey(mnemonic, DerivationPath)
	if err != nil {
		return err
	}

	vault, err := crypto.NewVaultWithParams(mnemonic, password, m.kdf)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}
	data, err := vault.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.vaultPath), 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(m.vaultPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}

	m.mnemonic, m.key = mnemonic, key
	return m.writeSession()
}

// Unlock opens the vault with password and starts a session.
func (m *Manager) Unlock(password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.vaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoWallet
	}
	if err != nil {
		return fmt.Errorf("failed to read vault file: %w", err)
	}
	vault, err := crypto.ParseVault(data)
	if err != nil {
		return err
	}
	mnemonic, err := vault.Open(password)
	if err != nil {
		return err
	}
	key, err := DeriveKey(mnemonic, DerivationPath)
	if err != nil {
		return err
	}

	m.mnemonic, m.key = mnemonic, key
	return m.writeSession()
}

// Lock forgets the keys and removes the session.
func (m *Manager) Lock() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mnemonic, m.key = "", nil
	if err := os.Remove(m.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// IsConnected reports whether a key is loaded or a live session exists.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureKey() == nil
}

// Address returns the account address, or the zero address when locked.
func (m *Manager) Address() common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensureKey() != nil {
		return common.Address{}
	}
	return AddressOf(m.key)
}

// Mnemonic returns the recovery phrase of an unlocked wallet.
func (m *Manager) Mnemonic() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureKey(); err != nil {
		return "", err
	}
	return m.mnemonic, nil
}

// SignTx asks for confirmation, when a prompt is configured, and signs tx
// for chainID. A declined prompt returns ErrUserRejected.
func (m *Manager) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	m.mu.Lock()
	err := m.ensureKey()
	key := m.key
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if m.confirm != nil {
		ok, err := m.confirm(ctx, tx, chainID)
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return nil, ErrUserRejected
		}
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// ensureKey loads the key from the session file if needed. m.mu must be held.
func (m *Manager) ensureKey() error {
	if m.key != nil {
		return nil
	}

	data, err := os.ReadFile(m.sessionPath)
	if err != nil {
		return ErrLocked
	}
	var s sessionData
	if err := json.Unmarshal(data, &s); err != nil {
		_ = os.Remove(m.sessionPath)
		return ErrLocked
	}
	if m.now().After(s.Expiration) {
		_ = os.Remove(m.sessionPath)
		return ErrLocked
	}

	key, err := DeriveKey(s.Mnemonic, DerivationPath)
	if err != nil {
		_ = os.Remove(m.sessionPath)
		return ErrLocked
	}
	m.mnemonic, m.key = s.Mnemonic, key
	return nil
}

// writeSession persists the unlocked state. m.mu must be held.
func (m *Manager) writeSession() error {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}

	data, err := json.Marshal(sessionData{
		Token:      hex.EncodeToString(token),
		Mnemonic:   m.mnemonic,
		Address:    AddressOf(m.key).Hex(),
		Expiration: m.now().Add(m.ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(m.sessionPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
