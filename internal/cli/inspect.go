package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/frame"
	"github.com/matzehuels/cardspace/pkg/layout"
	"github.com/matzehuels/cardspace/pkg/render"
	"github.com/matzehuels/cardspace/pkg/render/hierarchy"
)

// =============================================================================
// layout
// =============================================================================

func (c *CLI) layoutCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the baseline placement of every card",
		Long: `Layout prints where every card sits on the shared baseline grid, together
with the colour it shows in the given mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := entity.ParseMode(mode)
			if err != nil {
				return err
			}
			ws, err := c.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			rows := layoutRows(ws.store, m)
			if len(rows) == 0 {
				printWarning("No cards in %s", ws.source)
				return nil
			}
			printTable([]string{"ID", "TITLE", "POSITION", "COLOR"}, rows)
			printDetail("%d cards, %d per row", len(rows), layout.Side(len(rows)))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(entity.ModeTheme), "colour slot: theme, map, alphabetic, category")
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	return cmd
}

func layoutRows(store *entity.Store, m entity.Mode) [][]string {
	var rows [][]string
	for _, t := range layout.Baseline(store.IDs(), layout.DefaultGrid) {
		e, _ := store.Get(t.ID)
		rows = append(rows, []string{t.ID, e.Title, formatVec(t.Position), swatch(e.Color.Get(m))})
	}
	return rows
}

// =============================================================================
// show
// =============================================================================

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <id>",
		Short:             "Print the detail panel of one card",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFirstEntityID,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateEntityID(args[0]); err != nil {
				return err
			}
			ws, err := c.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			e, ok := ws.store.Get(args[0])
			if !ok {
				return errors.New(errors.ErrCodeMissingEntity, "no entity %q", args[0])
			}
			printEntity(e)
			return nil
		},
	}
}

func printEntity(e *entity.Entity) {
	fmt.Fprintln(out, StyleTitle.Render(e.Title))
	printKeyValue("ID", e.ID)
	printKeyValue("Type", string(e.Kind))
	if e.Party != "" {
		printKeyValue("Party", e.Party)
	}
	if e.HasChildren() {
		printKeyValue("Children", strings.Join(e.ChildIDs(), ", "))
	}

	if lines := detailLines(engine.DetailText(e)); len(lines) > 0 {
		fmt.Fprintln(out)
		for _, l := range lines {
			fmt.Fprintln(out, "  "+l)
		}
	}

	var links []string
	for _, u := range engine.DetailLinks(e) {
		if u != "" {
			links = append(links, u)
		}
	}
	if len(links) > 0 {
		fmt.Fprintln(out)
		for _, u := range links {
			fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleLink.Render(u))
		}
	}
}

// =============================================================================
// resolve
// =============================================================================

func (c *CLI) resolveCommand() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "resolve <frame>",
		Short: "Show what selecting a frame reveals",
		Long: `Resolve runs frame selection without animating anything: it prints the
entity whose children would be shown and where each child would be placed.
District frames use --region as the highlighted geography.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFrames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			res, err := frame.Resolve(ws.cat, ws.store, args[0], region)
			if err != nil {
				return err
			}
			printResolution(ws.store, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "highlighted geography for district frames")
	return cmd
}

func printResolution(store *entity.Store, res *frame.Resolution) {
	printKeyValue("Frame", res.Frame)
	printKeyValue("Route", res.Route.String())
	printKeyValue("Parent", res.Key)

	rows := make([][]string, 0, len(res.Cards))
	for i, t := range res.Cards {
		title := ""
		if e, ok := store.Get(t.ID); ok {
			title = e.Title
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), t.ID, title, formatVec(t.Position)})
	}
	if len(rows) > 0 {
		printTable([]string{"#", "ID", "TITLE", "POSITION"}, rows)
	}

	if len(res.Frames) > 0 {
		frames := make([][]string, len(res.Frames))
		for i, t := range res.Frames {
			frames[i] = []string{t.ID, formatVec(t.Position)}
		}
		printTable([]string{"GROUP", "POSITION"}, frames)
	}
	for _, id := range res.Missing {
		printWarning("child %s has no record", id)
	}
}

// =============================================================================
// hierarchy
// =============================================================================

func (c *CLI) hierarchyCommand() *cobra.Command {
	var (
		output string
		opts   hierarchy.Options
		mode   string
		scale  float64
	)

	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Draw the card tree",
		Long: `Hierarchy draws the parent/child structure of the dataset. The output
format follows the file extension of --output: .dot, .svg, .pdf or .png.
Without --output the DOT source is printed. PDF and PNG need rsvg-convert.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if output != "" {
				if err := errors.ValidateFilePath(output); err != nil {
					return err
				}
			}
			if opts.Root != "" {
				if err := errors.ValidateEntityID(opts.Root); err != nil {
					return err
				}
			}
			if mode != "" {
				m, err := entity.ParseMode(mode)
				if err != nil {
					return err
				}
				opts.Mode = m
			}

			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			if opts.Root != "" && !ws.store.Has(opts.Root) {
				return errors.New(errors.ErrCodeMissingEntity, "no entity %q", opts.Root)
			}
			dot := hierarchy.ToDOT(ws.store, opts)
			if output == "" {
				_, err := fmt.Fprint(out, dot)
				return err
			}

			data := []byte(dot)
			format := hierarchy.Format(output)
			if format != "dot" {
				if data, err = hierarchy.RenderSVG(dot); err != nil {
					return err
				}
			}
			switch format {
			case "pdf":
				data, err = render.ToPDF(ctx, data)
			case "png":
				data, err = render.ToPNG(ctx, data, scale)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
			}
			printSuccess("Rendered %s", format)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .svg, .pdf, .png)")
	cmd.Flags().StringVar(&opts.Root, "root", "", "draw only the subtree below this entity")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "levels to draw below the roots (0 = all)")
	cmd.Flags().StringVar(&mode, "mode", "", "fill boxes with this mode's colour")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add content type and child count to labels")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG scale factor")
	_ = cmd.RegisterFlagCompletionFunc("root", c.completeEntityIDs)
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	return cmd
}
