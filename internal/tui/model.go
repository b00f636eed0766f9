package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/app"
	"astradash/internal/dispatch"
	"astradash/internal/snapshot"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}
type uiTickMsg time.Time
type refreshDoneMsg struct{}
type connectDoneMsg struct{ err error }
type actionDoneMsg struct {
	kind dispatch.Kind
	err  error
}

// --- Model ---

type model struct {
	app      *app.App
	ctx      context.Context
	width    int
	height   int
	spinner  spinner.Model
	busy     bool
	busyText string

	statusMessage string
	showHelp      bool

	sections   []snapshot.Section
	sectionIdx int

	// form state for actions that take input
	formKind   dispatch.Kind
	formInputs []textinput.Model
	formIdx    int
	entering   bool
}

// formLabels maps an action to its input fields, in entry order.
func formLabels(kind dispatch.Kind) []string {
	switch kind {
	case dispatch.KindStake, dispatch.KindWithdraw:
		return []string{"Amount"}
	case dispatch.KindAddLiquidity:
		return []string{"Token amount", "ETH amount"}
	case dispatch.KindSetParams:
		return []string{"Window (seconds)", "Burn amount"}
	default:
		return nil
	}
}

// ownedBy reports whether the session account matches the recorded contract
// owner. A zero owner has not been read yet, so the gate stays closed.
func (m model) ownedBy(owner common.Address) bool {
	if owner == (common.Address{}) {
		return false
	}
	return m.app.Store().Session().Account == owner
}

func (m model) liquidityOwner() common.Address {
	snap, ok := m.app.Store().Snapshot()
	if !ok {
		return common.Address{}
	}
	return snap.Liquidity.Owner
}

func (m model) oracleOwner() common.Address {
	snap, ok := m.app.Store().Snapshot()
	if !ok {
		return common.Address{}
	}
	return snap.Oracle.Owner
}

func initialModel(ctx context.Context, a *app.App) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		app:      a,
		ctx:      ctx,
		spinner:  s,
		sections: snapshot.AllSections(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }),
	)
}

func (m *model) beginForm(kind dispatch.Kind) {
	labels := formLabels(kind)
	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = label
		inputs[i].Width = 30
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	m.formKind = kind
	m.formInputs = inputs
	m.formIdx = 0
	m.entering = true
}

func (m *model) formParams() dispatch.Params {
	var params dispatch.Params
	switch m.formKind {
	case dispatch.KindStake, dispatch.KindWithdraw:
		params.Amount = m.formInputs[0].Value()
	case dispatch.KindAddLiquidity:
		params.Amount = m.formInputs[0].Value()
		params.ETHAmount = m.formInputs[1].Value()
	case dispatch.KindSetParams:
		params.WindowSeconds = parseSeconds(m.formInputs[0].Value())
		params.BurnAmount = m.formInputs[1].Value()
	}
	return params
}
