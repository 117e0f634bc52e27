package cli

import (
	"zipex-cli/internal/sink"

	"github.com/spf13/cobra"
)

func newLsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <archive>",
		Short: "List the file entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadArchive(cmd.Context(), app, args[0], &sink.MemorySink{})
			if err != nil {
				return writeErr(cmd, err)
			}
			snap := sess.Snapshot()
			return writeOut(cmd, app, map[string]any{
				"data": snap.Entries,
				"meta": map[string]any{
					"archive": snap.Name,
					"format":  snap.Format,
					"count":   len(snap.Entries),
					"prefix":  snap.Prefix,
				},
			})
		},
	}
	return cmd
}
