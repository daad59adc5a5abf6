// Package state holds the per-session view of the connected wallet: the
// (address, chain) pair being shown and the balances, fees and history
// fetched for it.
//
// Every fetch takes a Ticket before it starts and hands it back on Commit.
// A ticket issued for an earlier pair, or before a later Switch, is stale and
// its result is dropped, so a slow response can never overwrite data for the
// pair that replaced it.
package state

import (
	"strings"
	"sync"
	"time"

	"github.com/chinmay1088/harbor/balances"
	"github.com/chinmay1088/harbor/gas"
	"github.com/chinmay1088/harbor/history"
	"github.com/chinmay1088/harbor/logging"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Key identifies what is being displayed.
type Key struct {
	Address common.Address
	ChainID int64
}

// Ticket is captured when a fetch is issued.
type Ticket struct {
	Key Key
	Gen uint64
}

// Snapshot is a copy of everything known about the current key.
type Snapshot struct {
	Key       Key
	Connected bool

	NativeBalance string // empty until loaded or after a failed fetch
	Tokens        []balances.TokenBalance
	TokensLoaded  bool
	Unsupported   bool // chain has no token source

	Fees       gas.Estimate
	FeesLoaded bool

	History          []history.Record
	HistoryLoaded    bool
	HistorySupported bool

	UpdatedAt time.Time
}

// Store is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	gen  uint64
	snap Snapshot
	log  *zap.Logger
}

// NewStore returns an empty, disconnected store.
func NewStore(log *zap.Logger) *Store {
	log = logging.OrNop(log)
	return &Store{log: log}
}

// Switch makes key current. Data held for the previous key is cleared
// immediately and every outstanding ticket becomes stale.
func (s *Store) Switch(key Key) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.snap = Snapshot{Key: key, Connected: true}
	s.log.Debug("switched",
		zap.String("address", key.Address.Hex()),
		zap.Int64("chain_id", key.ChainID),
		zap.Uint64("gen", s.gen))
	return Ticket{Key: key, Gen: s.gen}
}

// Disconnect clears everything and invalidates outstanding tickets.
func (s *Store) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.snap = Snapshot{}
}

// Begin returns a ticket for the current key.
func (s *Store) Begin() Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Ticket{Key: s.snap.Key, Gen: s.gen}
}

// Current reports whether t was issued for the current key and generation.
func (s *Store) Current(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current(t)
}

func (s *Store) current(t Ticket) bool {
	return s.snap.Connected && t.Gen == s.gen && t.Key == s.snap.Key
}

// Commit applies fn to the snapshot if t is still current. It returns false
// and leaves the store untouched for stale tickets.
func (s *Store) Commit(t Ticket, fn func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(t) {
		s.log.Debug("discarding stale result",
			zap.Uint64("ticket_gen", t.Gen),
			zap.Uint64("current_gen", s.gen),
			zap.Int64("ticket_chain", t.Key.ChainID))
		return false
	}
	fn(&s.snap)
	s.snap.UpdatedAt = time.Now()
	return true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := s.snap
	cp.Tokens = append([]balances.TokenBalance(nil), s.snap.Tokens...)
	cp.History = append([]history.Record(nil), s.snap.History...)
	return cp
}

// Token looks up a held token by symbol, case-insensitively.
func (s *Store) Token(symbol string) (balances.TokenBalance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tok := range s.snap.Tokens {
		if strings.EqualFold(tok.Symbol, symbol) {
			return tok, true
		}
	}
	return balances.TokenBalance{}, false
}
