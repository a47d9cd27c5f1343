package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dominion/internal/log"
	"dominion/internal/pipeline"
	"dominion/internal/preview"
)

type renderOptions struct {
	output         string
	zoom           int
	width          int
	height         int
	noSwap         bool
	database       string
	metrics        string
	preview        bool
	previewEncoder string
}

func newRenderCommand(ro *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <dump>",
		Short: "Parse a dump and draw its planets to an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.load(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("zoom") {
				cfg.Zoom = opts.zoom
			}
			if flags.Changed("width") {
				cfg.Width = opts.width
			}
			if flags.Changed("height") {
				cfg.Height = opts.height
			}
			if opts.noSwap {
				cfg.SwapRedBlue = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			encoder, err := preview.ParseEncoder(opts.previewEncoder)
			if err != nil {
				return err
			}

			p := pipeline.NewPipeline(pipeline.Options{
				DumpPath:     args[0],
				OutputPath:   opts.output,
				DatabasePath: opts.database,
				MetricsPath:  opts.metrics,
				Config:       cfg,
			})
			res, err := p.Run()
			if err != nil {
				return err
			}

			size := res.Image.Bounds().Size()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d agents, %d planets, %dx%d -> %s\n",
				args[0], res.Store.AgentCount(), res.Store.ObjectCount(), size.X, size.Y, opts.output)

			if opts.preview {
				if err := preview.Show(os.Stdout, res.Image, encoder); err != nil {
					if !errors.Is(err, preview.ErrNotTerminal) {
						return err
					}
					log.Warn("preview skipped", "reason", err)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "out.png", "output image (.png, .bmp, .tiff, .raw)")
	f.IntVarP(&opts.zoom, "zoom", "z", 1, "integer coordinate multiplier")
	f.IntVar(&opts.width, "width", 0, "resample the map to this width (requires --height)")
	f.IntVar(&opts.height, "height", 0, "resample the map to this height (requires --width)")
	f.BoolVar(&opts.noSwap, "no-swap", false, "draw colors without exchanging red and blue")
	f.StringVar(&opts.database, "db", "", "save a snapshot of the parsed records to this SQLite file")
	f.StringVar(&opts.metrics, "metrics", "", "write Prometheus textfile metrics to this path")
	f.BoolVar(&opts.preview, "preview", false, "show the map inline when stdout is a sixel terminal")
	f.StringVar(&opts.previewEncoder, "preview-encoder", string(preview.EncoderRasterm), "sixel encoder: rasterm or sixel")
	return cmd
}
