package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

// boardExport is the whole session state in one document
type boardExport struct {
	Tasks    []models.Task        `json:"tasks" yaml:"tasks"`
	Chat     []models.ChatMessage `json:"chat" yaml:"chat"`
	Members  []string             `json:"members" yaml:"members"`
	Projects []string             `json:"projects" yaml:"projects"`
}

func (s *session) newExportCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board, chat and lists to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := boardExport{
				Tasks:    s.app.Tasks.Tasks(),
				Chat:     s.app.Chat.Messages(),
				Members:  s.app.Lists.Members(),
				Projects: s.app.Lists.Projects(),
			}
			w := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Write YAML instead of JSON")
	return cmd
}

var storeKeys = []string{store.TasksKey, store.ChatKey, store.MembersKey, store.ProjectsKey}

func (s *session) newStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect or reset the saved state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List saved collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if s.app.DB == nil {
				mem, ok := s.app.Storage.(*store.MemoryStorage)
				if !ok {
					return errors.New("no database in ephemeral mode")
				}
				fmt.Fprintln(w, "database: none (in memory)")
				for _, k := range mem.Keys() {
					v, _ := mem.Load(k)
					fmt.Fprintf(w, "%-22s %8d bytes\n", k, len(v))
				}
				return nil
			}
			blobs, err := s.app.DB.ListBlobs()
			if err != nil {
				return fmt.Errorf("list blobs: %w", err)
			}
			fmt.Fprintf(w, "database: %s\n", s.app.DB.Path())
			for _, b := range blobs {
				fmt.Fprintf(w, "%-22s %8d bytes  %s\n", b.Key, b.Size, b.UpdatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset [key...]",
		Short: "Delete saved collections so the next run starts from defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.app.DB == nil {
				return errors.New("no database in ephemeral mode")
			}
			keys := storeKeys
			if len(args) > 0 {
				for _, k := range args {
					if !slices.Contains(storeKeys, k) {
						return fmt.Errorf("unknown key %q", k)
					}
				}
				keys = args
			}
			for _, k := range keys {
				if err := s.app.DB.DeleteBlob(k); err != nil {
					return fmt.Errorf("delete %s: %w", k, err)
				}
				s.app.Log.Info().Str("key", k).Msg("reset collection")
			}
			return nil
		},
	})

	return cmd
}
