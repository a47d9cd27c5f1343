package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dominion/internal/dump"
	"dominion/internal/pipeline"
	"dominion/internal/render"
)

func newInspectCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <dump>",
		Short: "Parse a dump and report what was found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.load(cmd)
			if err != nil {
				return err
			}

			p := pipeline.NewPipeline(pipeline.Options{DumpPath: args[0], Config: cfg})
			st, stats, err := p.Ingest()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lines: %d (truncated %d, %d bytes discarded)\n",
				stats.Lines, stats.TruncatedLines, stats.DiscardedBytes)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tSECTIONS\tROWS\tDECODED\tDROPPED")
			for _, kind := range dump.TableKinds {
				rows, decoded, dropped := stats.RowsFor(kind)
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", kind, stats.Sections[kind], rows, decoded, dropped)
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t-\t-\n", dump.TableUnknown, stats.Sections[dump.TableUnknown], stats.SkippedRows)
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(stats.UnknownTables) > 0 {
				fmt.Fprintf(out, "skipped tables: %v\n", stats.UnknownTables)
			}
			if stats.Unterminated > 0 {
				fmt.Fprintf(out, "unterminated sections: %d\n", stats.Unterminated)
			}

			b := render.ComputeBounds(st)
			fmt.Fprintf(out, "agents: %d, planets: %d, sectors: %d\n", st.AgentCount(), st.ObjectCount(), len(st.Sectors()))
			w, h, err := b.CanvasSize(cfg.Zoom)
			if err != nil {
				fmt.Fprintf(out, "bounds: %.2f x %.2f, canvas at zoom %d: %v\n", b.MaxX, b.MaxY, cfg.Zoom, err)
				return nil
			}
			fmt.Fprintf(out, "bounds: %.2f x %.2f, canvas at zoom %d: %dx%d\n", b.MaxX, b.MaxY, cfg.Zoom, w, h)
			return nil
		},
	}
}
