package tui

import (
	"context"
	"math/big"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/app"
	"astradash/internal/config"
	"astradash/internal/session"
	"astradash/internal/snapshot"
)

func keyMsg(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// sessionModel builds a model over a connected session whose snapshot records
// the given contract owner.
func sessionModel(t *testing.T, account, owner common.Address) model {
	t.Helper()
	a := app.New(config.Config{}, nil, nil)
	a.Store().SetSession(session.State{
		Status:  session.StatusConnected,
		Account: account,
		ChainID: big.NewInt(1),
	})
	if !a.Store().ReplaceSnapshot(snapshot.Snapshot{
		Liquidity: snapshot.LiquiditySection{Available: true, Owner: owner},
		Oracle:    snapshot.OracleSection{Available: true, Owner: owner},
	}) {
		t.Fatal("install snapshot")
	}
	return initialModel(context.Background(), a)
}

// Admin actions are refused locally when the session account is not the
// contract owner: nothing is submitted and the status line says why.
func TestAdminKeysRefusedForNonOwner(t *testing.T) {
	account := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	owner := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	for _, key := range []string{"t", "p", "a"} {
		m := sessionModel(t, account, owner)
		next, _ := m.Update(keyMsg(key))
		got := next.(model)
		if got.busy || got.entering {
			t.Fatalf("key %q must not start an action for a non-owner", key)
		}
		if got.statusMessage == "" {
			t.Fatalf("key %q must explain the refusal", key)
		}
	}
}

func TestAdminKeysOpenForOwner(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	m := sessionModel(t, owner, owner)
	next, _ := m.Update(keyMsg("p"))
	if got := next.(model); !got.entering {
		t.Fatal("owner must reach the params form")
	}

	m = sessionModel(t, owner, owner)
	next, _ = m.Update(keyMsg("a"))
	if got := next.(model); !got.entering {
		t.Fatal("owner must reach the add-liquidity form")
	}

	m = sessionModel(t, owner, owner)
	next, _ = m.Update(keyMsg("t"))
	if got := next.(model); !got.busy {
		t.Fatal("owner trigger must submit")
	}
}

// While the owner is unknown the gate stays closed rather than guessing.
func TestAdminKeysClosedBeforeOwnerRead(t *testing.T) {
	account := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	m := sessionModel(t, account, common.Address{})
	next, _ := m.Update(keyMsg("t"))
	if got := next.(model); got.busy {
		t.Fatal("trigger must stay gated until the owner is read")
	}
}
