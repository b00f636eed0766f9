package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"astradash/internal/dispatch"
	"astradash/internal/session"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case connectDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.statusMessage = errorMessage(msg.err)
		} else {
			m.statusMessage = "Wallet connected"
		}
		cmds = append(cmds, clearStatusAfter(3*time.Second))

	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.statusMessage = errorMessage(msg.err)
		} else {
			m.statusMessage = fmt.Sprintf("%s confirmed", msg.kind)
		}
		cmds = append(cmds, clearStatusAfter(3*time.Second))

	case uiTickMsg:
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))

	case clearStatusMsg:
		m.statusMessage = ""

	case tea.KeyMsg:
		if m.entering {
			return m.updateForm(msg)
		}

		if m.showHelp {
			switch msg.String() {
			case "q", "esc", "?":
				m.showHelp = false
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.app.Close()
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil

		case "w":
			if m.app.Store().Session().Status == session.StatusDisconnected && !m.busy {
				m.busy = true
				m.busyText = "Connecting wallet"
				cmds = append(cmds, m.connectCmd())
			}
		case "d":
			if m.app.Store().Session().Status != session.StatusDisconnected {
				m.app.Disconnect()
				m.statusMessage = "Disconnected"
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}

		case "c":
			state := m.app.Store().Session()
			if state.Status != session.StatusDisconnected {
				if err := clipboard.WriteAll(state.Account.Hex()); err != nil {
					m.statusMessage = "Failed to copy to clipboard"
				} else {
					m.statusMessage = "Address copied to clipboard"
				}
				cmds = append(cmds, clearStatusAfter(2*time.Second))
			}

		case "r":
			cmds = append(cmds, m.refreshCmd())

		case "tab", "right", "l":
			m.sectionIdx = (m.sectionIdx + 1) % len(m.sections)
			m.app.Store().SetActiveView(m.sections[m.sectionIdx])
		case "shift+tab", "left", "h":
			m.sectionIdx--
			if m.sectionIdx < 0 {
				m.sectionIdx = len(m.sections) - 1
			}
			m.app.Store().SetActiveView(m.sections[m.sectionIdx])

		case "s":
			if m.connected() {
				m.beginForm(dispatch.KindStake)
			}
		case "x":
			if m.connected() {
				m.beginForm(dispatch.KindWithdraw)
			}
		case "g":
			cmds = append(cmds, m.maybeAction(dispatch.KindClaim, dispatch.Params{}, "Claiming rewards")...)
		case "a":
			if !m.connected() {
				break
			}
			if !m.ownedBy(m.liquidityOwner()) {
				m.statusMessage = "Add liquidity is owner-only"
				cmds = append(cmds, clearStatusAfter(3*time.Second))
				break
			}
			m.beginForm(dispatch.KindAddLiquidity)
		case "v":
			cmds = append(cmds, m.maybeAction(dispatch.KindRelease, dispatch.Params{}, "Releasing vested tokens")...)
		case "t":
			if m.connected() && !m.ownedBy(m.oracleOwner()) {
				m.statusMessage = "Oracle trigger is owner-only"
				cmds = append(cmds, clearStatusAfter(3*time.Second))
				break
			}
			cmds = append(cmds, m.maybeAction(dispatch.KindTriggerOracle, dispatch.Params{}, "Triggering oracle check")...)
		case "p":
			if !m.connected() {
				break
			}
			if !m.ownedBy(m.oracleOwner()) {
				m.statusMessage = "Oracle params are owner-only"
				cmds = append(cmds, clearStatusAfter(3*time.Second))
				break
			}
			m.beginForm(dispatch.KindSetParams)
		}
	}

	if m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.entering = false
		return m, nil
	case "enter":
		if m.formIdx < len(m.formInputs)-1 {
			m.formInputs[m.formIdx].Blur()
			m.formIdx++
			m.formInputs[m.formIdx].Focus()
			return m, nil
		}
		params := m.formParams()
		kind := m.formKind
		m.entering = false
		m.busy = true
		m.busyText = fmt.Sprintf("Submitting %s", kind)
		return m, m.actionCmd(kind, params)
	case "tab", "down":
		if len(m.formInputs) > 1 {
			m.formInputs[m.formIdx].Blur()
			m.formIdx = (m.formIdx + 1) % len(m.formInputs)
			m.formInputs[m.formIdx].Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.formIdx], cmd = m.formInputs[m.formIdx].Update(msg)
	return m, cmd
}

func (m model) connected() bool {
	return m.app.Store().Session().Status == session.StatusConnected
}

func (m *model) maybeAction(kind dispatch.Kind, params dispatch.Params, busyText string) []tea.Cmd {
	if !m.connected() || m.busy {
		return nil
	}
	m.busy = true
	m.busyText = busyText
	return []tea.Cmd{m.actionCmd(kind, params)}
}

func (m model) connectCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return connectDoneMsg{err: a.Connect(ctx)}
	}
}

func (m model) actionCmd(kind dispatch.Kind, params dispatch.Params) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		_, err := a.Execute(ctx, kind, params)
		return actionDoneMsg{kind: kind, err: err}
	}
}

func (m model) refreshCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	section := m.sections[m.sectionIdx]
	return func() tea.Msg {
		a.RefreshSections(ctx, section)
		return refreshDoneMsg{}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return clearStatusMsg{} })
}
