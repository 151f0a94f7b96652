package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"krakviz/internal/chart"
	"krakviz/internal/cli"
	"krakviz/internal/lineage"
	"krakviz/internal/report"
	"krakviz/internal/taxdump"
	"krakviz/internal/version"
	"krakviz/internal/writers"
)

func (a *application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "krakviz",
		Short: "Taxonomic abundance views from Kraken 2 classification output",
		Long: `krakviz rebuilds the taxonomy tree behind a Kraken 2 per-read output file,
using NCBI's fullnamelineage.dmp, and reports it as a ranked table, as
name/parent/value triples, or as a sunburst or icicle chart.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate("krakviz version {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cli.UsageError{Err: err}
	})
	a.global.Bind(root.PersistentFlags())

	root.AddCommand(
		a.listCommand(),
		a.treeCommand(),
		a.chartCommand(),
		a.statsCommand(),
		a.indexCommand(),
		a.fetchCommand(),
	)
	return root
}

// oneFile accepts exactly one classification file argument.
func oneFile(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &cli.UsageError{Err: fmt.Errorf("expected one classification file ('-' for stdin), got %d arguments", len(args))}
	}
	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &cli.UsageError{Err: fmt.Errorf("unexpected argument %q for %q", args[0], cmd.CommandPath())}
	}
	return nil
}

func (a *application) listCommand() *cobra.Command {
	var o cli.ListOptions
	cmd := &cobra.Command{
		Use:   "list FILE",
		Short: "Ranked table of taxa by share of classified reads",
		Args:  oneFile,
		Example: `  krakviz list sample.kraken
  krakviz --taxdb lineage.db list sample.kraken --min-count 0 --top 0 -o tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.File = args[0]
			o.ApplyConfig(cmd.Flags(), a.cfg)
			if err := o.Validate(); err != nil {
				return err
			}
			c, tree, err := a.analyze(cmd.Context(), o.File, o.MinCount)
			if err != nil {
				return err
			}
			rows := report.Ranked(tree, c.TotalClassified(), o.Top)
			return wrapOutput(writers.WriteRanked(o.Output, a.stdout, writers.RankedPayload{Rows: rows, Header: !o.NoHeader}))
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (a *application) treeCommand() *cobra.Command {
	var o cli.TreeOptions
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Assembled name/parent/value triples",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.File = args[0]
			o.ApplyConfig(cmd.Flags(), a.cfg)
			if err := o.Validate(); err != nil {
				return err
			}
			_, tree, err := a.analyze(cmd.Context(), o.File, o.MinCount)
			if err != nil {
				return err
			}
			return wrapOutput(writers.WriteTree(o.Output, a.stdout, writers.TreePayload{Tree: tree, Header: !o.NoHeader}))
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (a *application) chartCommand() *cobra.Command {
	var o cli.ChartOptions
	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Sunburst or icicle chart as a self-contained HTML page",
		Args:  oneFile,
		Example: `  krakviz chart sample.kraken --out sunburst.html
  krakviz chart sample.kraken --kind icicle --title "Run 12" --out icicle.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.File = args[0]
			o.ApplyConfig(cmd.Flags(), a.cfg)
			if err := o.Validate(); err != nil {
				return err
			}
			kind, _ := chart.ParseKind(o.Kind)
			c, tree, err := a.analyze(cmd.Context(), o.File, o.MinCount)
			if err != nil {
				return err
			}
			data := chart.FromTree(tree, c.TotalClassified())
			opts := chart.Options{Title: o.Title, Width: o.Width, Height: o.Height, ColorByValue: !o.NoColor}
			if o.Out == "-" {
				return wrapOutput(chart.Render(a.stdout, kind, data, opts))
			}
			f, err := os.Create(o.Out)
			if err != nil {
				return &outputError{err: fmt.Errorf("create chart: %w", err)}
			}
			err = chart.Render(f, kind, data, opts)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return &outputError{err: fmt.Errorf("write chart %s: %w", o.Out, err)}
			}
			a.log.Info("chart written", zap.String("path", o.Out), zap.String("kind", string(kind)), zap.Int("nodes", tree.Len()))
			return nil
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (a *application) statsCommand() *cobra.Command {
	var o cli.StatsOptions
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Percent classified, unique taxa and count distribution",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.File = args[0]
			if err := o.Validate(); err != nil {
				return err
			}
			c, err := a.readClassification(o.File)
			if err != nil {
				return err
			}
			return wrapOutput(writers.WriteSummary(o.Output, a.stdout, report.Summarize(c, o.Head)))
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (a *application) indexCommand() *cobra.Command {
	var o cli.IndexOptions
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build a sqlite lineage index from fullnamelineage.dmp",
		Args:  noArgs,
		Example: `  krakviz fetch --dir taxdb
  krakviz index --dump taxdb/fullnamelineage.dmp --out taxdb/lineage.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.Dump == "" {
				o.Dump = a.cfg.TaxDB
			}
			if err := o.Validate(); err != nil {
				return err
			}
			store, err := a.loadStore(cmd.Context(), o.Dump)
			if err != nil {
				return err
			}
			err = a.metrics.Time("index", func() error {
				return lineage.WriteIndex(cmd.Context(), o.Out, store)
			})
			if err != nil {
				return &outputError{err: fmt.Errorf("write index %s: %w", o.Out, err)}
			}
			a.log.Info("lineage index written", zap.String("path", o.Out), zap.Int("entries", store.Len()))
			return nil
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (a *application) fetchCommand() *cobra.Command {
	var o cli.FetchOptions
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download NCBI new_taxdump and extract " + lineage.DumpFile,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.ApplyConfig(cmd.Flags(), a.cfg)
			if err := o.Validate(); err != nil {
				return err
			}
			res, err := taxdump.Fetch(cmd.Context(), taxdump.Options{
				URL:    o.URL,
				Dir:    o.Dir,
				Force:  o.Force,
				Logger: a.log,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, res.Path)
			return wrapOutput(err)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}
