package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tgienger/kanban/internal/models"
)

func (s *session) taskCommands() []*cobra.Command {
	return []*cobra.Command{
		s.newAddCmd(),
		s.newLsCmd(),
		s.newShowCmd(),
		s.newMvCmd(),
		s.newRmCmd(),
		s.newEditCmd(),
		s.newCommentCmd(),
		s.newAttachCmd(),
		s.newDetachCmd(),
	}
}

func (s *session) newAddCmd() *cobra.Command {
	var column, priority, description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := parseColumn(column)
			if err != nil {
				return err
			}
			prio, err := parsePriority(priority)
			if err != nil {
				return err
			}
			task, res := s.app.Tasks.Create(strings.Join(args, " "), col, prio, description)
			if err := check(res, "add task"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&column, "column", "c", string(models.ColumnTodo), "Column: todo, in-progress or done")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.PriorityMedium), "Priority: low, medium or high")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	return cmd
}

func (s *session) newLsCmd() *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List tasks by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			columns := models.Columns
			if column != "" {
				col, err := parseColumn(column)
				if err != nil {
					return err
				}
				columns = []models.Column{col}
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "COLUMN", "PRIORITY", "TITLE", "ASSIGNEE", "PROJECT")
			for _, col := range columns {
				for task := range s.app.Tasks.ByColumn(col) {
					title := task.Title
					if task.Blocked {
						title += " [blocked]"
					}
					t.Row(task.ID, string(task.Column), string(task.Priority), title, task.Assignee, task.Project)
				}
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, t.Render())

			counts := s.app.Tasks.CountByColumn()
			parts := make([]string, len(columns))
			for i, col := range columns {
				parts[i] = fmt.Sprintf("%s: %d", col, counts[col])
			}
			fmt.Fprintln(w, strings.Join(parts, "  "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&column, "column", "c", "", "Only list this column")
	return cmd
}

func (s *session) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its comments and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}
			writeTask(cmd.OutOrStdout(), task, s.app.Lists.HasMember, s.app.Lists.HasProject)
			return nil
		},
	}
}

func writeTask(w io.Writer, task models.Task, knownMember, knownProject func(string) bool) {
	fmt.Fprintf(w, "%s\n", task.Title)
	fmt.Fprintf(w, "  id:        %s\n", task.ID)
	fmt.Fprintf(w, "  column:    %s\n", task.Column.Title())
	fmt.Fprintf(w, "  priority:  %s\n", task.Priority)
	if task.Assignee != "" {
		fmt.Fprintf(w, "  assignee:  %s%s\n", task.Assignee, staleMark(task.Assignee, knownMember))
	}
	if task.Project != "" {
		fmt.Fprintf(w, "  project:   %s%s\n", task.Project, staleMark(task.Project, knownProject))
	}
	if task.Blocked {
		fmt.Fprintln(w, "  blocked:   yes")
	}
	fmt.Fprintf(w, "  created:   %s\n", task.CreatedAt.Local().Format(time.DateTime))
	if task.Description != "" {
		fmt.Fprintf(w, "\n%s\n", task.Description)
	}
	if len(task.Comments) > 0 {
		fmt.Fprintf(w, "\nComments (%d)\n", len(task.Comments))
		for _, c := range task.Comments {
			fmt.Fprintf(w, "  [%s] %s: %s\n", c.CreatedAt.Local().Format(time.DateTime), c.Author, c.Text)
		}
	}
	if len(task.Attachments) > 0 {
		fmt.Fprintf(w, "\nAttachments (%d)\n", len(task.Attachments))
		for _, a := range task.Attachments {
			fmt.Fprintf(w, "  %s  %s  %s\n", a.ID, a.Name, a.URL)
		}
	}
}

// staleMark flags names that are no longer in their reference list
func staleMark(name string, known func(string) bool) string {
	if known(name) {
		return ""
	}
	return " (not in list)"
}

func (s *session) newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <id> <column>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}
			col, err := parseColumn(args[1])
			if err != nil {
				return err
			}
			return check(s.app.Tasks.Move(task.ID, col), "move task")
		},
	}
}

func (s *session) newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task with its comments and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}
			return check(s.app.Tasks.Remove(task.ID), "remove task")
		},
	}
}

func (s *session) newEditCmd() *cobra.Command {
	var (
		title, description, assignee, project, priority, column string
		blocked, clearAssignee, clearProject                    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}

			var patch models.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("assignee") {
				patch.Assignee = &assignee
			}
			if clearAssignee {
				patch.Assignee = new(string)
			}
			if flags.Changed("project") {
				patch.Project = &project
			}
			if clearProject {
				patch.Project = new(string)
			}
			if flags.Changed("blocked") {
				patch.Blocked = &blocked
			}
			if flags.Changed("priority") {
				p, err := parsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}
			if flags.Changed("column") {
				c, err := parseColumn(column)
				if err != nil {
					return err
				}
				patch.Column = &c
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change")
			}
			return check(s.app.Tasks.Patch(task.ID, patch), "edit task")
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description (empty clears it)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assign to a team member")
	cmd.Flags().StringVar(&project, "project", "", "Set the project")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&column, "column", "", "Column: todo, in-progress or done")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "Mark the task blocked (--blocked=false to unblock)")
	cmd.Flags().BoolVar(&clearAssignee, "clear-assignee", false, "Remove the assignee")
	cmd.Flags().BoolVar(&clearProject, "clear-project", false, "Remove the project")
	cmd.MarkFlagsMutuallyExclusive("assignee", "clear-assignee")
	cmd.MarkFlagsMutuallyExclusive("project", "clear-project")
	return cmd
}

func (s *session) newCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Add a comment to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}
			_, res := s.app.Tasks.AppendComment(task.ID, strings.Join(args[1:], " "))
			return check(res, "comment")
		},
	}
}

func (s *session) newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id> <name> [url]",
		Short: "Attach a named reference to a task",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}
			url := "#"
			if len(args) == 3 {
				url = args[2]
			}
			a, res := s.app.Tasks.AppendAttachment(task.ID, args[1], url)
			if err := check(res, "attach"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
			return nil
		},
	}
}

func (s *session) newDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <id> <attachment-id>",
		Short: "Remove an attachment from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := s.resolveTask(args[0])
			if err != nil {
				return err
			}
			return check(s.app.Tasks.RemoveAttachment(task.ID, args[1]), "detach")
		},
	}
}
