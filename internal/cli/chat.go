package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/kanban/internal/ui/styles"
)

func (s *session) newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Per-task chat threads",
	}

	var author string
	send := &cobra.Command{
		Use:   "send <id> <text>",
		Short: "Send a message to a task's thread",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}
			_, res := s.app.Chat.Send(task.ID, strings.Join(args[1:], " "), author)
			return check(res, "send")
		},
	}
	send.Flags().StringVar(&author, "author", "", "Author name (defaults to You)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a task's thread, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// threads outlive their task, so accept ids that no longer resolve
			taskID := args[0]
			if task, err := s.resolveTask(args[0]); err == nil {
				taskID = task.ID
			}
			w := cmd.OutOrStdout()
			for _, m := range s.app.Chat.ByTask(taskID) {
				fmt.Fprintf(w, "[%s] %s: %s\n", m.CreatedAt.Local().Format(time.DateTime), m.Author, m.Text)
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks, most recent conversation first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, task := range s.app.Chat.Rank(s.app.Tasks.Tasks()) {
				last, ok := s.app.Chat.LastForTask(task.ID)
				if !ok {
					fmt.Fprintf(w, "%s  %s\n", task.ID, task.Title)
					continue
				}
				fmt.Fprintf(w, "%s  %s  (%s: %s)\n", task.ID, task.Title, last.Author, styles.Truncate(last.Text, 40))
			}
			return nil
		},
	}

	cmd.AddCommand(send, show, list)
	return cmd
}
