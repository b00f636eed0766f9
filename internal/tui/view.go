package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/session"
	"astradash/internal/snapshot"
)

func (m model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}
	if m.entering {
		return m.viewForm()
	}

	state := m.app.Store().Session()

	var b strings.Builder
	b.WriteString(m.viewHeader(state))
	b.WriteString("\n\n")

	if state.Status == session.StatusDisconnected {
		b.WriteString(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			"No wallet session.",
			"",
			subtleStyle.Render("(w) connect wallet • (q) quit • (?) help"),
		)))
		b.WriteString("\n")
		b.WriteString(m.viewStatusLine())
		return b.String()
	}

	b.WriteString(m.viewTabs())
	b.WriteString("\n")

	snap, ok := m.app.Store().Snapshot()
	if !ok {
		b.WriteString(boxStyle.Render("Loading on-chain data..."))
	} else {
		b.WriteString(m.viewSection(snap))
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	b.WriteString("\n")
	b.WriteString(m.viewStatusLine())
	return b.String()
}

func (m model) viewHeader(state session.State) string {
	title := titleStyle.Render(fmt.Sprintf("AstraDash %s", Version))

	var status string
	switch state.Status {
	case session.StatusConnecting:
		status = warnStyle.Render("connecting...")
	case session.StatusRebinding:
		status = warnStyle.Render(fmt.Sprintf("%s rebinding...", shortenAddress(state.Account)))
	case session.StatusConnected:
		chain := ""
		if state.ChainID != nil {
			chain = fmt.Sprintf(" chain %d", state.ChainID.Uint64())
		}
		status = infoStyle.Render(shortenAddress(state.Account) + chain)
	default:
		status = subtleStyle.Render("disconnected")
	}

	if m.busy {
		status += "  " + m.spinner.View() + subtleStyle.Render(m.busyText)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
}

func (m model) viewTabs() string {
	var tabs []string
	for i, section := range m.sections {
		label := string(section)
		if i == m.sectionIdx {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, tabs...)
}

func (m model) viewSection(snap snapshot.Snapshot) string {
	switch m.sections[m.sectionIdx] {
	case snapshot.SectionToken:
		return m.viewToken(snap.Token)
	case snapshot.SectionStaking:
		return m.viewStaking(snap.Staking)
	case snapshot.SectionVesting:
		return m.viewVesting(snap.Vesting)
	case snapshot.SectionLiquidity:
		return m.viewLiquidity(snap.Liquidity)
	case snapshot.SectionOracle:
		return m.viewOracle(snap.Oracle)
	}
	return ""
}

func unavailable(what string) string {
	return boxStyle.Render(errStyle.Render(what + " data unavailable"))
}

func (m model) viewToken(s snapshot.TokenSection) string {
	if !s.Available {
		return unavailable("Token")
	}
	name := s.Name
	if s.Symbol != "" {
		name = fmt.Sprintf("%s (%s)", s.Name, s.Symbol)
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(name),
		"",
		fmt.Sprintf("Balance       %s", s.Balance),
		fmt.Sprintf("ETH balance   %s", s.ETHBalance),
		fmt.Sprintf("Total supply  %s", s.TotalSupply),
	))
}

func (m model) viewStaking(s snapshot.StakingSection) string {
	if !s.Available {
		return unavailable("Staking")
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Staking"),
		"",
		fmt.Sprintf("Staked          %s", s.Staked),
		fmt.Sprintf("Pending reward  %s", s.PendingReward),
		fmt.Sprintf("Pool total      %s", s.TotalStaked),
		fmt.Sprintf("Pool share      %.2f%%", s.SharePercent),
		fmt.Sprintf("Last update     %s", formatUnix(s.LastUpdated)),
		"",
		subtleStyle.Render("(s) stake • (x) withdraw • (g) claim"),
	))
}

func (m model) viewVesting(s snapshot.VestingSection) string {
	if !s.Available {
		return unavailable("Vesting")
	}
	if !s.HasSchedule {
		return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Vesting"),
			"",
			"No vesting schedule for this account.",
		))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Vesting"),
		"",
		fmt.Sprintf("Total       %s", s.TotalAmount),
		fmt.Sprintf("Released    %s  (%.2f%%)", s.Released, s.ProgressPercent),
		fmt.Sprintf("Releasable  %s", s.Releasable),
		fmt.Sprintf("Start       %s", formatUnix(s.StartTime)),
		fmt.Sprintf("Lock        %s", formatDuration(s.LockDuration)),
		fmt.Sprintf("Release     %s", formatDuration(s.ReleaseDuration)),
		"",
		subtleStyle.Render("(v) release vested tokens"),
	))
}

func (m model) viewLiquidity(s snapshot.LiquiditySection) string {
	if !s.Available {
		return unavailable("Liquidity")
	}
	lines := []string{
		titleStyle.Render("Liquidity"),
		"",
	}
	if s.HasPair {
		lines = append(lines,
			fmt.Sprintf("Pair           %s", shortenAddress(s.PairAddress)),
			fmt.Sprintf("Token reserve  %s", s.TokenReserve),
			fmt.Sprintf("ETH reserve    %s", s.ETHReserve),
		)
		if s.HasSpotPrice {
			lines = append(lines, fmt.Sprintf("Spot price     %.8f ETH", s.SpotPrice))
		}
	} else {
		lines = append(lines, "Pair not created yet.")
	}
	hint := "(a) add liquidity"
	if !m.ownedBy(s.Owner) {
		hint = "add liquidity is owner-only"
	}
	lines = append(lines,
		fmt.Sprintf("Last added     %s", formatUnix(s.LastAddedAt)),
		fmt.Sprintf("Manager owner  %s", shortenAddress(s.Owner)),
		"",
		subtleStyle.Render(hint),
	)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m model) viewOracle(s snapshot.OracleSection) string {
	if !s.Available {
		return unavailable("Oracle")
	}
	trigger := errStyle.Render(fmt.Sprintf("next in %s", formatDuration(s.TimeUntilNext)))
	if s.CanTrigger {
		trigger = infoStyle.Render("eligible now")
	}
	hint := "(t) trigger check • (p) set params"
	if !m.ownedBy(s.Owner) {
		hint = "trigger and params are owner-only"
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Oracle Monitor"),
		"",
		fmt.Sprintf("Last checked    %s", formatUnix(s.LastChecked)),
		fmt.Sprintf("Window          %s", formatDuration(s.WindowSeconds)),
		fmt.Sprintf("Burn amount     %s", s.BurnAmount),
		fmt.Sprintf("Last liquidity  %s", s.LastLiquidity),
		fmt.Sprintf("Trigger         %s", trigger),
		"",
		subtleStyle.Render(hint),
	))
}

func (m model) viewForm() string {
	var inputs []string
	labels := formLabels(m.formKind)
	for i, label := range labels {
		inputs = append(inputs, fmt.Sprintf("%-18s %s", label, m.formInputs[i].View()))
	}
	return lipgloss.Place(
		m.width, m.height, lipgloss.Center, lipgloss.Center,
		boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(fmt.Sprintf("Action: %s", m.formKind)),
			"",
			strings.Join(inputs, "\n"),
			"",
			subtleStyle.Render("Enter to next/submit • Esc to cancel"),
		)),
	)
}

func (m model) viewHelp() string {
	return lipgloss.Place(
		m.width, m.height, lipgloss.Center, lipgloss.Center,
		boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Help"),
			"",
			"w        connect wallet",
			"d        disconnect",
			"tab/←/→  switch section",
			"r        refresh current section",
			"c        copy account address",
			"s        stake tokens",
			"x        withdraw stake",
			"g        claim staking rewards",
			"a        add liquidity",
			"v        release vested tokens",
			"t        trigger oracle check",
			"p        set oracle params (owner only)",
			"q        quit",
			"",
			subtleStyle.Render("(q/esc/?) close help"),
		)),
	)
}

func (m model) viewFooter() string {
	pending := m.app.Store().Actions()
	if len(pending) == 0 {
		return subtleStyle.Render("(w)allet • (d)isconnect • (r)efresh • (?) help • (q)uit")
	}
	last := pending[len(pending)-1]
	line := fmt.Sprintf("%s %s", last.Kind, last.State)
	if last.TxHash != (common.Hash{}) {
		line += " " + shortenHash(last.TxHash.Hex())
	}
	return subtleStyle.Render(line)
}

func (m model) viewStatusLine() string {
	if m.statusMessage == "" {
		return ""
	}
	return infoStyle.Render(m.statusMessage)
}
