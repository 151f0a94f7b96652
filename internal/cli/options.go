// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"krakviz/internal/chart"
	"krakviz/internal/config"
	"krakviz/internal/lineage"
	"krakviz/internal/writers"
)

// UsageError marks bad flags or arguments; the app exits with code 2.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usagef(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// GlobalOptions are the persistent flags shared by every subcommand.
type GlobalOptions struct {
	ConfigPath   string
	TaxDB        string
	DecodePolicy string
	Verbose      bool
	Quiet        bool
	MetricsFile  string
}

// Bind registers the global flags.
func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", config.DefaultPath, "YAML config file (missing file = defaults)")
	fs.StringVar(&o.TaxDB, "taxdb", "", "lineage source: fullnamelineage.dmp (gzip ok) or sqlite index [config taxdb]")
	fs.StringVar(&o.DecodePolicy, "decode-policy", "", "malformed lineage lines: skip | fail [config decode_policy]")
	fs.BoolVarP(&o.Verbose, "verbose", "V", false, "debug logging on stderr")
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "only log errors")
	fs.StringVar(&o.MetricsFile, "metrics-file", "", "write Prometheus metrics of this run to FILE")
}

// ApplyConfig fills unset options from cfg, then lets flags win over it.
func (o *GlobalOptions) ApplyConfig(cfg *config.Config) {
	if o.TaxDB == "" {
		o.TaxDB = cfg.TaxDB
	} else {
		cfg.TaxDB = o.TaxDB
	}
	if o.DecodePolicy == "" {
		o.DecodePolicy = cfg.DecodePolicy
	} else {
		cfg.DecodePolicy = o.DecodePolicy
	}
}

// Validate checks the global flags.
func (o *GlobalOptions) Validate() error {
	if o.Verbose && o.Quiet {
		return usagef("--verbose conflicts with --quiet")
	}
	if o.DecodePolicy != "" {
		if _, err := lineage.ParseDecodePolicy(o.DecodePolicy); err != nil {
			return &UsageError{Err: err}
		}
	}
	return nil
}

// ListOptions drive `krakviz list`.
type ListOptions struct {
	File     string
	MinCount int
	Top      int
	Output   string
	NoHeader bool
}

func (o *ListOptions) Bind(fs *pflag.FlagSet) {
	fs.IntVar(&o.MinCount, "min-count", 0, "keep taxa with more than N reads [config analysis.min_count]")
	fs.IntVarP(&o.Top, "top", "n", 0, "rows to show (0 = all) [config analysis.top]")
	fs.StringVarP(&o.Output, "output", "o", "text", "output format: "+strings.Join(writers.Formats(writers.RankedWriters), " | "))
	fs.BoolVar(&o.NoHeader, "no-header", false, "suppress the header line")
}

func (o *ListOptions) ApplyConfig(fs *pflag.FlagSet, cfg *config.Config) {
	if !fs.Changed("min-count") {
		o.MinCount = cfg.Analysis.MinCount
	}
	if !fs.Changed("top") {
		o.Top = cfg.Analysis.Top
	}
}

func (o *ListOptions) Validate() error {
	if err := checkMinCount(o.MinCount); err != nil {
		return err
	}
	if o.Top < 0 {
		return usagef("--top must be ≥ 0")
	}
	return checkFormat(o.Output, writers.RankedWriters)
}

// TreeOptions drive `krakviz tree`.
type TreeOptions struct {
	File     string
	MinCount int
	Output   string
	NoHeader bool
}

func (o *TreeOptions) Bind(fs *pflag.FlagSet) {
	fs.IntVar(&o.MinCount, "min-count", 0, "keep taxa with more than N reads [config analysis.min_count]")
	fs.StringVarP(&o.Output, "output", "o", "tsv", "output format: "+strings.Join(writers.Formats(writers.TreeWriters), " | "))
	fs.BoolVar(&o.NoHeader, "no-header", false, "suppress the TSV header line")
}

func (o *TreeOptions) ApplyConfig(fs *pflag.FlagSet, cfg *config.Config) {
	if !fs.Changed("min-count") {
		o.MinCount = cfg.Analysis.MinCount
	}
}

func (o *TreeOptions) Validate() error {
	if err := checkMinCount(o.MinCount); err != nil {
		return err
	}
	return checkFormat(o.Output, writers.TreeWriters)
}

// ChartOptions drive `krakviz chart`.
type ChartOptions struct {
	File     string
	Kind     string
	MinCount int
	Title    string
	Width    int
	Height   int
	NoColor  bool
	Out      string
}

func (o *ChartOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Kind, "kind", "k", string(chart.Sunburst), "chart kind: sunburst | icicle")
	fs.IntVar(&o.MinCount, "min-count", 0, "keep taxa with more than N reads [config analysis.min_count]")
	fs.StringVar(&o.Title, "title", "", "chart title [config charts.<kind>.title]")
	fs.IntVar(&o.Width, "width", 0, "chart width in px [config charts.<kind>.width]")
	fs.IntVar(&o.Height, "height", 0, "chart height in px [config charts.<kind>.height]")
	fs.BoolVar(&o.NoColor, "no-color", false, "do not colour nodes by percentage")
	fs.StringVar(&o.Out, "out", "-", "HTML output file ('-' = stdout)")
}

func (o *ChartOptions) ApplyConfig(fs *pflag.FlagSet, cfg *config.Config) {
	if !fs.Changed("min-count") {
		o.MinCount = cfg.Analysis.MinCount
	}
	k, err := chart.ParseKind(o.Kind)
	if err != nil {
		return // reported by Validate
	}
	cc := cfg.Chart(k)
	if !fs.Changed("title") {
		o.Title = cc.Title
	}
	if !fs.Changed("width") {
		o.Width = cc.Width
	}
	if !fs.Changed("height") {
		o.Height = cc.Height
	}
}

func (o *ChartOptions) Validate() error {
	if _, err := chart.ParseKind(o.Kind); err != nil {
		return &UsageError{Err: err}
	}
	if err := checkMinCount(o.MinCount); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return usagef("--width and --height must be ≥ 0")
	}
	if o.Out == "" {
		return usagef("--out must not be empty")
	}
	return nil
}

// StatsOptions drive `krakviz stats`.
type StatsOptions struct {
	File   string
	Head   int
	Output string
}

func (o *StatsOptions) Bind(fs *pflag.FlagSet) {
	fs.IntVar(&o.Head, "head", 0, "also print the first N raw rows (max 100)")
	fs.StringVarP(&o.Output, "output", "o", "text", "output format: "+strings.Join(writers.Formats(writers.SummaryWriters), " | "))
}

func (o *StatsOptions) Validate() error {
	if o.Head < 0 {
		return usagef("--head must be ≥ 0")
	}
	return checkFormat(o.Output, writers.SummaryWriters)
}

// IndexOptions drive `krakviz index`.
type IndexOptions struct {
	Dump string
	Out  string
}

func (o *IndexOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.Dump, "dump", "", "fullnamelineage.dmp to index [--taxdb]")
	fs.StringVar(&o.Out, "out", "", "sqlite index to write (.db, .sqlite, .sqlite3) [*]")
}

func (o *IndexOptions) Validate() error {
	if o.Out == "" {
		return usagef("--out is required")
	}
	if !lineage.IsIndexPath(o.Out) {
		return usagef("--out %q: want a .db, .sqlite or .sqlite3 file", o.Out)
	}
	if o.Dump != "" && lineage.IsIndexPath(o.Dump) {
		return usagef("--dump %q is already an index", o.Dump)
	}
	return nil
}

// FetchOptions drive `krakviz fetch`.
type FetchOptions struct {
	Dir   string
	URL   string
	Force bool
}

func (o *FetchOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.Dir, "dir", "", "target directory [config download.dir]")
	fs.StringVar(&o.URL, "url", "", "archive URL [config download.url]")
	fs.BoolVar(&o.Force, "force", false, "download even if the dump is present")
}

func (o *FetchOptions) ApplyConfig(fs *pflag.FlagSet, cfg *config.Config) {
	if !fs.Changed("dir") {
		o.Dir = cfg.Download.Dir
	}
	if !fs.Changed("url") {
		o.URL = cfg.Download.URL
	}
}

func (o *FetchOptions) Validate() error {
	if o.Dir == "" {
		return usagef("--dir must not be empty")
	}
	if !strings.HasPrefix(o.URL, "http://") && !strings.HasPrefix(o.URL, "https://") {
		return usagef("--url %q: want an http(s) URL", o.URL)
	}
	return nil
}

func checkMinCount(n int) error {
	if n < 0 {
		return usagef("--min-count must be ≥ 0")
	}
	return nil
}

func checkFormat[V any](format string, registry map[string]V) error {
	if _, ok := registry[format]; !ok {
		return usagef("invalid --output %q (want %s)", format, strings.Join(writers.Formats(registry), " | "))
	}
	return nil
}

// IsUsage reports whether err is a *UsageError.
func IsUsage(err error) bool {
	var u *UsageError
	return errors.As(err, &u)
}
