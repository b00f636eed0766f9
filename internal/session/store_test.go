package session

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/snapshot"
)

func TestSessionStateReplace(t *testing.T) {
	store := NewStore()
	if got := store.Session(); got.Status != StatusDisconnected {
		t.Fatalf("initial status = %v, want disconnected", got.Status)
	}

	account := common.HexToAddress("0xaa")
	store.SetSession(State{Status: StatusConnected, Account: account, ChainID: big.NewInt(1)})

	got := store.Session()
	if got.Status != StatusConnected || got.Account != account || got.ChainID.Uint64() != 1 {
		t.Fatalf("session = %+v", got)
	}
}

func TestDisconnectClearsSnapshot(t *testing.T) {
	store := NewStore()
	gen := store.NextGeneration()
	if !store.ReplaceSnapshot(snapshot.Snapshot{Generation: gen}) {
		t.Fatal("replace with current generation must succeed")
	}

	store.SetSession(State{Status: StatusDisconnected})
	if _, ok := store.Snapshot(); ok {
		t.Fatal("snapshot must be cleared on disconnect")
	}
	if len(store.Actions()) != 0 {
		t.Fatal("pending actions must be cleared on disconnect")
	}
}

// An aggregation started against a superseded bind must not overwrite the
// snapshot written by the newer bind.
func TestStaleGenerationSuppressed(t *testing.T) {
	store := NewStore()

	oldGen := store.NextGeneration()
	newGen := store.NextGeneration()

	fresh := snapshot.Snapshot{Generation: newGen}
	fresh.Token.Available = true
	fresh.Token.Balance = "7.000000000000000000"
	if !store.ReplaceSnapshot(fresh) {
		t.Fatal("fresh snapshot must be accepted")
	}

	stale := snapshot.Snapshot{Generation: oldGen}
	stale.Token.Balance = "1.000000000000000000"
	if store.ReplaceSnapshot(stale) {
		t.Fatal("stale snapshot must be rejected")
	}
	if store.ReplaceSections(stale, snapshot.SectionToken) {
		t.Fatal("stale section refresh must be rejected")
	}

	snap, ok := store.Snapshot()
	if !ok || snap.Token.Balance != "7.000000000000000000" {
		t.Fatalf("stored snapshot = %+v, want the fresh one", snap.Token)
	}
}

func TestReplaceSectionsPartial(t *testing.T) {
	store := NewStore()
	gen := store.NextGeneration()

	full := snapshot.Snapshot{Generation: gen}
	full.Token.Available = true
	full.Token.Balance = "1.000000000000000000"
	full.Staking.Available = true
	full.Staking.Staked = "2.000000000000000000"
	if !store.ReplaceSnapshot(full) {
		t.Fatal("full snapshot must be accepted")
	}

	partial := snapshot.Snapshot{Generation: gen}
	partial.Staking.Available = true
	partial.Staking.Staked = "5.000000000000000000"
	if !store.ReplaceSections(partial, snapshot.SectionStaking) {
		t.Fatal("section refresh must be accepted")
	}

	snap, _ := store.Snapshot()
	if snap.Staking.Staked != "5.000000000000000000" {
		t.Fatalf("staking section not replaced: %+v", snap.Staking)
	}
	if snap.Token.Balance != "1.000000000000000000" {
		t.Fatalf("token section must be untouched: %+v", snap.Token)
	}
}

func TestPendingActions(t *testing.T) {
	store := NewStore()
	idx := store.PutAction(PendingAction{Kind: "stake", State: ActionSubmitted})
	store.UpdateAction(idx, PendingAction{Kind: "stake", State: ActionConfirmed})

	actions := store.Actions()
	if len(actions) != 1 || actions[0].State != ActionConfirmed {
		t.Fatalf("actions = %+v", actions)
	}
}
