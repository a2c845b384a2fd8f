package chat

import (
	"github.com/kingabzpro/RegRadar/internal/agent"
	"github.com/kingabzpro/RegRadar/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive chat and blocks until the user quits.
func Run(a *agent.Agent, cfg *config.Config) error {
	p := tea.NewProgram(New(a, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
