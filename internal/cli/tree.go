package cli

import (
	"zipex-cli/internal/sink"

	"github.com/spf13/cobra"
)

type treeRow struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Depth       int    `json:"depth"`
	IsDirectory bool   `json:"isDirectory"`
	Expanded    bool   `json:"expanded,omitempty"`
}

func newTreeCmd(app *App) *cobra.Command {
	var expandAll bool
	var rows bool

	cmd := &cobra.Command{
		Use:   "tree <archive>",
		Short: "Show the directory tree of an archive",
		Long: `Show the directory tree of an archive.

By default only the top level is expanded, matching the browser's initial
view. --rows prints the visible rows instead of the nested tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadArchive(cmd.Context(), app, args[0], &sink.MemorySink{})
			if err != nil {
				return writeErr(cmd, err)
			}
			if expandAll {
				if err := sess.ExpandAll(); err != nil {
					return writeErr(cmd, err)
				}
			}
			snap := sess.Snapshot()
			meta := map[string]any{
				"archive": snap.Name,
				"entries": len(snap.Entries),
			}
			if rows {
				out := make([]treeRow, 0, len(snap.Rows))
				for _, r := range snap.Rows {
					out = append(out, treeRow{
						Path:        r.Node.Path,
						Name:        r.Node.Name,
						Depth:       r.Depth,
						IsDirectory: r.Node.IsDirectory,
						Expanded:    r.Expanded,
					})
				}
				return writeOut(cmd, app, map[string]any{"data": out, "meta": meta})
			}
			return writeOut(cmd, app, map[string]any{"data": snap.Tree, "meta": meta})
		},
	}

	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "Expand every directory")
	cmd.Flags().BoolVar(&rows, "rows", false, "Print the visible rows instead of the nested tree")
	return cmd
}
