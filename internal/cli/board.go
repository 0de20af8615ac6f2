package cli

import (
	"github.com/spf13/cobra"

	"github.com/tgienger/kanban/internal/ui"
	"github.com/tgienger/kanban/internal/ui/views"
)

// runBoard opens the interactive board
func (s *session) runBoard(cmd *cobra.Command, args []string) error {
	var settings views.Settings = ui.NewMemorySettings()
	if s.app.DB != nil {
		settings = s.app.DB
	}
	return ui.Run(s.app, settings)
}
