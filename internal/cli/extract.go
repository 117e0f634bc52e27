package cli

import (
	"errors"
	"fmt"

	"zipex-cli/internal/model"

	"github.com/spf13/cobra"
)

func newExtractCmd(app *App) *cobra.Command {
	var all bool
	var prefix string
	var outDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "extract <archive> [path...]",
		Short: "Save archive entries to a directory",
		Long: `Save archive entries to a directory.

Each entry is written under its file name only, preceded by the export prefix
(default: "<archive base name>_"). Paths are processed one at a time in
ascending order; a failing path does not stop the rest. The exit status is
non-zero when any path failed.`,
		Example: `  zipex extract photos.zip --all --out ./photos
  zipex extract photos.zip a/b.png c/d.json --prefix trip-`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args[1:]
			if all && len(paths) > 0 {
				return writeErr(cmd, errors.New("pass either --all or explicit paths, not both"))
			}
			if !all && len(paths) == 0 {
				return writeErr(cmd, errors.New("nothing to extract: pass entry paths or --all"))
			}

			out := defaultSink(app)
			if cmd.Flags().Changed("out") {
				out.Dir = outDir
			}
			if cmd.Flags().Changed("overwrite") {
				out.Overwrite = overwrite
			}

			sess, err := loadArchive(cmd.Context(), app, args[0], out)
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("prefix") {
				if err := sess.SetPrefix(prefix); err != nil {
					return writeErr(cmd, err)
				}
			}
			if all {
				paths = sess.Paths()
			}

			results, err := sess.DownloadPaths(cmd.Context(), paths)
			if err != nil {
				return writeErr(cmd, err)
			}
			failed := 0
			for _, r := range results {
				if !r.OK() {
					failed++
				}
			}
			dir := out.Dir
			if dir == "" {
				dir = "."
			}
			if werr := writeOut(cmd, app, map[string]any{
				"data": results,
				"meta": map[string]any{
					"archive": args[0],
					"outDir":  dir,
					"prefix":  sess.Prefix(),
					"saved":   len(results) - failed,
					"failed":  failed,
				},
			}); werr != nil {
				return werr
			}
			if failed > 0 {
				return writeErr(cmd, batchFailedError{failed: failed, total: len(results), results: results})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Extract every file entry")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Export file name prefix (default: archive base name + \"_\")")
	cmd.Flags().StringVar(&outDir, "out", "", "Destination directory (default: config outDir or .)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files instead of adding a \" (n)\" suffix")
	return cmd
}

type batchFailedError struct {
	failed  int
	total   int
	results []model.BatchResult
}

func (e batchFailedError) Error() string {
	for _, r := range e.results {
		if !r.OK() {
			return fmt.Sprintf("%d of %d entries failed (first: %s: %v)", e.failed, e.total, r.Path, r.Err)
		}
	}
	return fmt.Sprintf("%d of %d entries failed", e.failed, e.total)
}
