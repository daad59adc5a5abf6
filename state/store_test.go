package state

import (
	"sync"
	"testing"

	"github.com/chinmay1088/harbor/balances"
	"github.com/ethereum/go-ethereum/common"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func TestCommit_CurrentTicket(t *testing.T) {
	s := NewStore(nil)
	ticket := s.Switch(Key{Address: addrA, ChainID: 1})

	ok := s.Commit(ticket, func(snap *Snapshot) {
		snap.NativeBalance = "1.000000"
	})
	if !ok {
		t.Fatal("commit with current ticket was rejected")
	}
	if got := s.Snapshot().NativeBalance; got != "1.000000" {
		t.Errorf("NativeBalance = %q", got)
	}
}

func TestCommit_StaleAfterSwitch(t *testing.T) {
	s := NewStore(nil)
	old := s.Switch(Key{Address: addrA, ChainID: 1})
	s.Commit(old, func(snap *Snapshot) { snap.NativeBalance = "5.000000" })

	s.Switch(Key{Address: addrA, ChainID: 56})
	if got := s.Snapshot().NativeBalance; got != "" {
		t.Fatalf("balance for previous chain still visible: %q", got)
	}

	if s.Commit(old, func(snap *Snapshot) { snap.NativeBalance = "9.000000" }) {
		t.Fatal("stale ticket was committed")
	}
	if got := s.Snapshot().NativeBalance; got != "" {
		t.Errorf("stale result leaked: %q", got)
	}
}

func TestCommit_SameKeyNewGeneration(t *testing.T) {
	s := NewStore(nil)
	key := Key{Address: addrA, ChainID: 1}
	first := s.Switch(key)
	second := s.Switch(key)

	if s.Current(first) {
		t.Error("ticket from before re-switch should be stale")
	}
	if !s.Current(second) {
		t.Error("latest ticket should be current")
	}
}

func TestCommit_Disconnected(t *testing.T) {
	s := NewStore(nil)
	if s.Commit(s.Begin(), func(*Snapshot) {}) {
		t.Error("commit on a disconnected store should fail")
	}

	ticket := s.Switch(Key{Address: addrB, ChainID: 1})
	s.Disconnect()
	if s.Commit(ticket, func(*Snapshot) {}) {
		t.Error("commit after disconnect should fail")
	}
}

func TestToken(t *testing.T) {
	s := NewStore(nil)
	ticket := s.Switch(Key{Address: addrA, ChainID: 1})
	s.Commit(ticket, func(snap *Snapshot) {
		snap.Tokens = []balances.TokenBalance{{Symbol: "USDC", Decimals: 6}}
	})

	tok, ok := s.Token("usdc")
	if !ok || tok.Decimals != 6 {
		t.Errorf("Token(usdc) = %+v, %v", tok, ok)
	}
	if _, ok := s.Token("DAI"); ok {
		t.Error("unexpected DAI")
	}

	// snapshot copies must not alias store memory
	snap := s.Snapshot()
	snap.Tokens[0].Symbol = "XXX"
	if _, ok := s.Token("USDC"); !ok {
		t.Error("snapshot mutation leaked into store")
	}
}

func TestConcurrentCommits(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key{Address: addrA, ChainID: int64(i%3 + 1)}
			ticket := s.Switch(key)
			s.Commit(ticket, func(snap *Snapshot) { snap.NativeBalance = "1" })
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	if !snap.Connected {
		t.Error("store should be connected")
	}
}
