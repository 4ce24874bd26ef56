package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/io"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/render"
)

// Export formats.
const (
	formatJSON = "json"
	formatSVG  = "svg"
	formatPNG  = "png"
)

// layoutCommand groups the layout commands.
func (c *CLI) layoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect, validate and export board layouts",
	}
	cmd.AddCommand(c.layoutShowCommand())
	cmd.AddCommand(c.layoutCheckCommand())
	cmd.AddCommand(c.layoutExportCommand())
	return cmd
}

// loadLayout reads a layout file, or builds the configured seed layout when
// path is empty.
func (c *CLI) loadLayout(path string) (*layout.Store, error) {
	if path != "" {
		return io.ImportJSON(path)
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return cfg.Layout()
}

// =============================================================================
// show
// =============================================================================

func (c *CLI) layoutShowCommand() *cobra.Command {
	var board bool
	cmd := &cobra.Command{
		Use:   "show [layout.json]",
		Short: "List the tiles of a layout",
		Long: `List the tiles of a layout file, or of the configured seed layout when no
file is given. With --board the layout is also drawn as a grid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadLayout(optionalArg(args))
			if err != nil {
				return err
			}
			printLayout(s)
			if board {
				printNewline()
				b := render.NewBoard(render.MinCellWidth*2, render.MinCellHeight+1, grid.Extent(s.Occupants()))
				fmt.Fprintln(out, b.Render(s.Tiles(), s.Grid().Columns, render.Overlay{}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&board, "board", false, "draw the layout as a grid")
	return cmd
}

func printLayout(s *layout.Store) {
	printInfo("%d tiles on a %d-column grid", s.Len(), s.Grid().Columns)
	rows := make([][]string, 0, s.Len())
	for _, t := range s.Tiles() {
		rows = append(rows, []string{
			t.ID,
			string(t.Kind),
			t.Title,
			t.Position.String(),
			fmt.Sprintf("%dx%d", t.Size.Width, t.Size.Height),
			t.Dataset,
		})
	}
	printTable([]string{"ID", "Kind", "Title", "Position", "Size", "Dataset"}, rows, nil)
}

// =============================================================================
// check
// =============================================================================

func (c *CLI) layoutCheckCommand() *cobra.Command {
	var fromClipboard bool
	cmd := &cobra.Command{
		Use:   "check [layout.json]",
		Short: "Validate a layout file",
		Long: `Validate a layout file: every tile must be well formed, inside the grid's
columns and free of overlaps. With --clipboard the layout is read from the
system clipboard instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(optionalArg(args), fromClipboard)
		},
	}
	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "read the layout from the clipboard")
	return cmd
}

func (c *CLI) runCheck(path string, fromClipboard bool) error {
	var (
		s    *layout.Store
		err  error
		name = path
	)
	switch {
	case fromClipboard:
		name = "clipboard"
		var text string
		if text, err = clipboard.ReadAll(); err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		s, err = io.ReadJSON(strings.NewReader(text))
	case path != "":
		s, err = io.ImportJSON(path)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "give a layout file or --clipboard")
	}
	if err != nil {
		printError("%s: %s", name, errors.UserMessage(err))
		return err
	}
	printSuccess("%s is valid", name)
	printDetail("%d tiles, %d columns, %d rows", s.Len(), s.Grid().Columns, grid.Extent(s.Occupants()))
	return nil
}

// =============================================================================
// export
// =============================================================================

type exportOpts struct {
	input     string
	output    string
	format    string
	clipboard bool
}

func (c *CLI) layoutExportCommand() *cobra.Command {
	var opts exportOpts
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a layout as JSON, SVG or PNG",
		Long: `Export a layout as JSON, SVG or PNG.

The layout comes from --input or the configured seed layout. JSON exports can
be re-imported with --input or the dashboard's --layout flag. SVG and PNG
exports are snapshots of tile placement only, not chart data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "layout file (default: configured seed layout)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for json)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "json, svg or png (default: from --output extension, else json)")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "copy the JSON layout to the clipboard")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatJSON, formatSVG, formatPNG}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// exportFormat picks the format from the flag, then the output extension.
func exportFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" {
			format = formatJSON
		}
	}
	switch format {
	case formatJSON, formatSVG, formatPNG:
		return format, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (must be json, svg or png)", format)
}

func (c *CLI) runExport(ctx context.Context, opts exportOpts) error {
	format, err := exportFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if opts.clipboard && format != formatJSON {
		return errors.New(errors.ErrCodeInvalidInput, "--clipboard only copies json")
	}
	if format == formatPNG && opts.output == "" {
		return errors.New(errors.ErrCodeInvalidInput, "png export needs --output")
	}

	s, err := c.loadLayout(opts.input)
	if err != nil {
		return err
	}
	data, err := encodeLayout(ctx, s, format)
	if err != nil {
		return err
	}

	if opts.clipboard {
		if err := clipboard.WriteAll(string(data)); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		printSuccess("Copied layout to clipboard")
		return nil
	}
	if opts.output == "" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Exported %s", format)
	printFile(opts.output)
	if format == formatJSON {
		printNewline()
		printNextStep("Open it", appName+" dashboard --layout "+opts.output)
	}
	return nil
}

func encodeLayout(ctx context.Context, s *layout.Store, format string) ([]byte, error) {
	switch format {
	case formatSVG:
		return render.SVG(ctx, s)
	case formatPNG:
		var buf bytes.Buffer
		if err := render.PNG(s, &buf, render.DefaultPNGOptions); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	var buf bytes.Buffer
	if err := io.WriteJSON(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
