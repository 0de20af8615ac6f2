package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tgienger/kanban/internal/app"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

const skipSession = "skip-session"

// openOptions describes how a command wants its App built
type openOptions struct {
	Ephemeral bool
	Verbose   bool
	// Board commands log to the configured file; everything else logs to LogTo
	Board bool
	LogTo io.Writer
}

// opener builds the App a command runs against and a cleanup to run after Close
type opener func(opts openOptions) (*app.App, func(), error)

// session is the state shared by one command invocation
type session struct {
	ephemeral bool
	verbose   bool
	open      opener

	app     *app.App
	cleanup func()
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd, s := newRootCmd(version, openConfigured)
	// PersistentPostRunE is skipped when a command fails
	err := errors.Join(rootCmd.Execute(), s.close())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// NewRootCmd builds the command tree backed by the configured database
func NewRootCmd(version string) *cobra.Command {
	rootCmd, _ := newRootCmd(version, openConfigured)
	return rootCmd
}

func newRootCmd(version string, open opener) (*cobra.Command, *session) {
	s := &session{open: open}

	rootCmd := &cobra.Command{
		Use:   "kanban",
		Short: "A single-user task board for the terminal",
		Long: `kanban keeps tasks in three columns (todo, in-progress, done) with comments,
attachments and per-task chat threads.

Run without arguments to open the board, or use the subcommands for scripting.`,
		RunE:          s.runBoard,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSession] == "true" {
				return nil
			}
			a, cleanup, err := s.open(openOptions{
				Ephemeral: s.ephemeral,
				Verbose:   s.verbose,
				Board:     cmd == cmd.Root(),
				LogTo:     cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			s.app, s.cleanup = a, cleanup
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}
	rootCmd.Version = version

	rootCmd.PersistentFlags().BoolVar(&s.ephemeral, "ephemeral", false, "Keep state in memory only; nothing is saved")
	rootCmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(s.taskCommands()...)
	rootCmd.AddCommand(s.newChatCmd())
	rootCmd.AddCommand(s.newListCmd("members", "member", (*store.ListStore).Members, (*store.ListStore).AddMember, (*store.ListStore).RemoveMember))
	rootCmd.AddCommand(s.newListCmd("projects", "project", (*store.ListStore).Projects, (*store.ListStore).AddProject, (*store.ListStore).RemoveProject))
	rootCmd.AddCommand(s.newExportCmd())
	rootCmd.AddCommand(s.newStorageCmd())

	return rootCmd, s
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	if s.cleanup != nil {
		s.cleanup()
	}
	s.app, s.cleanup = nil, nil
	return err
}

// openConfigured reads config, builds the logger and opens the database
func openConfigured(opts openOptions) (*app.App, func(), error) {
	cfg, err := app.ReadConfig()
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}

	logTo := opts.LogTo
	cleanup := func() {}
	if opts.Board {
		f, err := app.OpenLogFile(cfg)
		if err != nil {
			return nil, nil, err
		}
		logTo = f
		cleanup = func() { f.Close() }
	}

	log, err := app.NewLogger(cfg, logTo)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if opts.Ephemeral {
		log.Debug().Msg("running with in-memory storage")
		return app.NewWithStorage(cfg, log, store.NewMemoryStorage()), cleanup, nil
	}

	a, err := app.New(cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSession: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kanban %s\n", version)
		},
	}
}

// check turns a no-op result into a command error
func check(res store.Result, what string) error {
	switch res {
	case store.NotFound:
		return fmt.Errorf("%s: not found", what)
	case store.Rejected:
		return fmt.Errorf("%s: rejected", what)
	}
	return nil
}

// resolveTask accepts a full task id or a unique prefix of one
func (s *session) resolveTask(arg string) (models.Task, error) {
	if t, ok := s.app.Tasks.Get(arg); ok {
		return t, nil
	}
	var matches []models.Task
	for _, t := range s.app.Tasks.Tasks() {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("task %q: not found", arg)
	case 1:
		return matches[0], nil
	}
	return models.Task{}, fmt.Errorf("task %q: ambiguous, matches %d tasks", arg, len(matches))
}

func parseColumn(v string) (models.Column, error) {
	c := models.Column(strings.ToLower(v))
	if !c.Valid() {
		return "", fmt.Errorf("unknown column %q (want todo, in-progress or done)", v)
	}
	return c, nil
}

func parsePriority(v string) (models.Priority, error) {
	p := models.Priority(strings.ToLower(v))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", v)
	}
	return p, nil
}
