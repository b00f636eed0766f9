package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"astradash/internal/app"
)

// Start runs the terminal UI until the user quits or ctx is cancelled.
func Start(ctx context.Context, a *app.App, version string) error {
	Version = version
	p := tea.NewProgram(
		initialModel(ctx, a),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
