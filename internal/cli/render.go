package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pwgbots/diafram/pkg/draw"
	"github.com/pwgbots/diafram/pkg/export"
	"github.com/pwgbots/diafram/pkg/model"
	"github.com/pwgbots/diafram/pkg/scene"
	"github.com/pwgbots/diafram/pkg/textmetrics"
	"github.com/pwgbots/diafram/pkg/viewport"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "svg", "png"
	opaque      bool     // force function shading fully opaque
	zoom        float64  // fixed zoom factor (0 means default)
	fit         bool     // fit the canvas to the diagram content
	hiddenLinks bool     // reveal hidden-link count arrows on all functions
	commentary  bool     // highlight functions carrying commentary
	tuning      string   // optional TOML file with drawing-constant overrides
	scale       float64  // PNG raster scale factor
	font        string   // font family for text measurement
}

// newRenderCmd creates the render command for drawing a model file.
//
// Default settings:
//   - format: svg
//   - fit: true (canvas sized to the diagram content)
//   - scale: 2 (PNG only)
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		fit:   true,
		scale: 2,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a diagram model to SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png (comma-separated)")
	cmd.Flags().BoolVar(&opts.opaque, "opaque", false, "force opaque function shading")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "fixed zoom factor (0.25-2.0)")
	cmd.Flags().BoolVar(&opts.fit, "fit", opts.fit, "fit the canvas to the diagram content")
	cmd.Flags().BoolVar(&opts.hiddenLinks, "hidden-links", false, "show hidden-link count arrows on all functions")
	cmd.Flags().BoolVar(&opts.commentary, "commentary", false, "highlight functions carrying commentary")
	cmd.Flags().StringVar(&opts.tuning, "tuning", "", "TOML file with drawing-constant overrides")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG raster scale factor")
	cmd.Flags().StringVar(&opts.font, "font", "", "font family for text measurement")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "png": true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg' or 'png')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output has a
// format extension (.svg, .png), it strips that extension. This is used when
// generating multiple files (e.g., plant.svg, plant.png).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the model from input, draws it, and exports the scene to
// the requested formats.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	m, err := model.LoadFile(input)
	if err != nil {
		return err
	}
	functions := m.VisibleFunctions()
	links := m.VisibleLinks()
	notes := m.VisibleNotes()
	logger.Infof("Loaded model: %d functions, %d links, %d notes",
		len(functions), len(links), len(notes))

	tuning := draw.DefaultTuning()
	if opts.tuning != "" {
		tuning, err = draw.LoadTuning(opts.tuning)
		if err != nil {
			return err
		}
		logger.Debugf("Loaded tuning overrides from %s", opts.tuning)
	}

	metrics, err := textmetrics.New()
	if err != nil {
		return err
	}
	if opts.font != "" {
		if err := metrics.ChangeFont(opts.font); err != nil {
			return err
		}
	}

	view := viewport.New()
	orch := draw.New(scene.NewScene(), metrics, view,
		draw.WithTuning(tuning),
		draw.WithViewOptions(draw.ViewOptions{
			HiddenLinks: opts.hiddenLinks,
			Commentary:  opts.commentary,
		}),
		draw.WithLogger(logger),
	)

	if opts.fit {
		view.FitToSize(m, draw.ExtendMargin)
	}
	if opts.zoom != 0 {
		view.SetZoom(opts.zoom)
		logger.Debugf("Zoom set to %.3f", view.Zoom())
	}

	p := newProgress(logger)
	if err := orch.DrawDiagram(ctx, m); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Drew %d functions, %d links", len(functions), len(links)))

	if err := exportAll(ctx, orch.Scene(), input, opts); err != nil {
		return err
	}

	printSuccess("Diagram rendered")
	printStats(len(functions), len(links), len(notes))
	return nil
}

// exportAll writes the scene to every requested format. With a single format
// the --output path is used as-is; with several, file names are derived from
// the base path.
func exportAll(ctx context.Context, sc *scene.Scene, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	var expOpts []export.Option
	if opts.opaque {
		expOpts = append(expOpts, export.WithOpaque())
	}

	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = basePath(opts.output, input) + "." + format
		}

		out, closeOut, err := openOutput(path)
		if err != nil {
			return err
		}

		perFormat := expOpts
		if format == "png" {
			perFormat = append(perFormat, export.WithScale(opts.scale))
		}
		err = export.Write(ctx, sc, export.Format(format), out, perFormat...)
		closeOut()
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}

		logger.Debugf("Generated %s", path)
		printFile(path)
	}
	return nil
}
