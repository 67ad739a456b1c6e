package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mharris/quotly/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	p := tea.NewProgram(tui.NewModel(ctx.Service, ctx.Templates), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
