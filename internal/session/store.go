package session

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/snapshot"
)

// Status is the wallet session state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	// StatusRebinding covers the window between an account or chain change
	// and the completion of the new contract bind. Reads during this window
	// are served from the previous snapshot; writes from superseded binds
	// are rejected by the generation check.
	StatusRebinding
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusRebinding:
		return "rebinding"
	default:
		return "disconnected"
	}
}

// State is the current session: account and chain id are set iff connected
// (or rebinding, which keeps the last known values).
type State struct {
	Status  Status
	Account common.Address
	ChainID *big.Int
}

// ActionState tracks an in-flight write.
type ActionState int

const (
	ActionSubmitted ActionState = iota
	ActionConfirming
	ActionConfirmed
	ActionFailed
)

func (s ActionState) String() string {
	switch s {
	case ActionConfirming:
		return "confirming"
	case ActionConfirmed:
		return "confirmed"
	case ActionFailed:
		return "failed"
	default:
		return "submitted"
	}
}

// PendingAction is a user-initiated write in flight. Never persisted.
type PendingAction struct {
	Kind        string
	TxHash      common.Hash
	State       ActionState
	Detail      string
	SubmittedAt time.Time
}

// Store holds the process-wide session state: connection status, the current
// snapshot, pending actions, and the active view. Every mutation replaces a
// whole subtree so readers never observe a torn value, and snapshot writes
// are fenced by a bind generation so a superseded aggregation cannot
// overwrite fresh state.
type Store struct {
	mu         sync.RWMutex
	state      State
	generation uint64
	snap       snapshot.Snapshot
	hasSnap    bool
	pending    []PendingAction
	activeView snapshot.Section
}

func NewStore() *Store {
	return &Store{activeView: snapshot.SectionToken}
}

// Session returns the current session state.
func (s *Store) Session() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	if state.ChainID != nil {
		state.ChainID = new(big.Int).Set(state.ChainID)
	}
	return state
}

// SetSession replaces the session state wholesale.
func (s *Store) SetSession(state State) {
	s.mu.Lock()
	if state.ChainID != nil {
		state.ChainID = new(big.Int).Set(state.ChainID)
	}
	s.state = state
	if state.Status == StatusDisconnected {
		s.hasSnap = false
		s.snap = snapshot.Snapshot{}
		s.pending = nil
	}
	s.mu.Unlock()
}

// NextGeneration opens a new bind generation. Every snapshot produced by an
// earlier generation becomes stale immediately: last bind wins, not last
// response.
func (s *Store) NextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Generation returns the current bind generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// ReplaceSnapshot installs a full snapshot. It reports false, leaving state
// untouched, when the snapshot was read against a superseded generation.
func (s *Store) ReplaceSnapshot(snap snapshot.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Generation != s.generation {
		return false
	}
	s.snap = snap
	s.hasSnap = true
	return true
}

// ReplaceSections merges only the named sections of snap into the stored
// snapshot, subject to the same generation fence. Each section is replaced
// wholesale, never field by field.
func (s *Store) ReplaceSections(snap snapshot.Snapshot, sections ...snapshot.Section) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Generation != s.generation {
		return false
	}
	if !s.hasSnap {
		s.snap = snapshot.Snapshot{
			Generation: snap.Generation,
			Account:    snap.Account,
		}
		s.hasSnap = true
	}
	s.snap.TakenAt = snap.TakenAt
	for _, section := range sections {
		switch section {
		case snapshot.SectionToken:
			s.snap.Token = snap.Token
		case snapshot.SectionStaking:
			s.snap.Staking = snap.Staking
		case snapshot.SectionVesting:
			s.snap.Vesting = snap.Vesting
		case snapshot.SectionLiquidity:
			s.snap.Liquidity = snap.Liquidity
		case snapshot.SectionOracle:
			s.snap.Oracle = snap.Oracle
		}
	}
	return true
}

// Snapshot returns the stored snapshot and whether one exists.
func (s *Store) Snapshot() (snapshot.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.hasSnap
}

// ActiveView returns the section the UI currently displays.
func (s *Store) ActiveView() snapshot.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeView
}

func (s *Store) SetActiveView(section snapshot.Section) {
	s.mu.Lock()
	s.activeView = section
	s.mu.Unlock()
}

// PutAction appends a pending action and returns its index for updates.
func (s *Store) PutAction(action PendingAction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, action)
	return len(s.pending) - 1
}

// UpdateAction replaces the action at index wholesale.
func (s *Store) UpdateAction(index int, action PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pending) {
		return
	}
	s.pending[index] = action
}

// Actions returns a copy of the pending action list.
func (s *Store) Actions() []PendingAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PendingAction, len(s.pending))
	copy(out, s.pending)
	return out
}
