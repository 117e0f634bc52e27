package cli

import (
	"fmt"

	"zipex-cli/internal/handles"
	"zipex-cli/internal/model"
	"zipex-cli/internal/preview"
	"zipex-cli/internal/retrieve"
	"zipex-cli/internal/sink"

	"github.com/spf13/cobra"
)

type previewOut struct {
	Path  string            `json:"path"`
	Kind  model.PreviewKind `json:"kind"`
	MIME  string            `json:"mime"`
	Text  string            `json:"text,omitempty"`
	Bytes int               `json:"bytes,omitempty"`
	Image *preview.Info     `json:"image,omitempty"`
}

func newPreviewCmd(app *App) *cobra.Command {
	var render bool
	var cols int
	var rows int

	cmd := &cobra.Command{
		Use:   "preview <archive> <path>",
		Short: "Preview an image or JSON entry",
		Long: `Preview an image or JSON entry.

JSON entries are validated and pretty-printed; images are decoded and
described. With --render the terminal rendering is printed instead of the
structured output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cols < 1 || rows < 1 {
				return writeErr(cmd, fmt.Errorf("--cols and --rows must be positive"))
			}
			sess, err := loadArchive(cmd.Context(), app, args[0], &sink.MemorySink{})
			if err != nil {
				return writeErr(cmd, err)
			}
			entryPath := args[1]
			res, err := sess.Preview(cmd.Context(), entryPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			if res == nil {
				return writeErr(cmd, model.InvalidOperationError{Op: "preview", Path: entryPath, Reason: "no preview for this file type"})
			}
			defer sess.DismissPreview()

			out := previewOut{
				Path: res.EntryPath,
				Kind: res.Kind,
				MIME: retrieve.MIMEType(res.EntryPath),
			}
			var rendered string
			switch res.Kind {
			case model.KindJSON:
				pretty, err := retrieve.Pretty(res)
				if err != nil {
					return writeErr(cmd, err)
				}
				out.Text = pretty
				if render {
					rendered = preview.RenderJSON(pretty, cols)
				}
			case model.KindImage:
				data, ok := sess.PreviewImage()
				if !ok {
					return writeErr(cmd, model.InvalidOperationError{Op: "preview", Path: entryPath, Reason: "image handle released"})
				}
				s, info, err := preview.RenderImage(data, cols, rows)
				if err != nil {
					return writeErr(cmd, model.MalformedContentError{Path: entryPath, Err: err})
				}
				out.Bytes = len(data)
				if mime := sess.Registry().MIME(handles.Handle(res.Handle)); mime != "" {
					out.MIME = mime
				}
				out.Image = &info
				rendered = s
			}

			if render {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Print the terminal rendering instead of structured output")
	cmd.Flags().IntVar(&cols, "cols", 80, "Rendering width in cells")
	cmd.Flags().IntVar(&rows, "rows", 24, "Rendering height in cells (images only)")
	return cmd
}
