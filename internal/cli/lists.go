package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/kanban/internal/store"
)

// newListCmd builds ls/add/rm for one reference list
func (s *session) newListCmd(
	use, noun string,
	names func(*store.ListStore) []string,
	add, remove func(*store.ListStore, string) store.Result,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage the %s list", noun),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: fmt.Sprintf("List %ss", noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range names(s.app.Lists) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Add a %s", noun),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return check(add(s.app.Lists, name), fmt.Sprintf("add %s %q", noun, name))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: fmt.Sprintf("Remove a %s; tasks keep the name", noun),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return check(remove(s.app.Lists, name), fmt.Sprintf("remove %s %q", noun, name))
		},
	})

	return cmd
}
