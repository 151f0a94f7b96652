package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"krakviz/internal/cli"
	"krakviz/internal/config"
	"krakviz/internal/diag"
	"krakviz/internal/kraken"
	"krakviz/internal/lineage"
	"krakviz/internal/logging"
	"krakviz/internal/metrics"
	"krakviz/internal/taxtree"
)

// ReasonMalformed tags lineage dump lines dropped under the skip policy.
const ReasonMalformed = "malformed lineage line"

// application is the state of one RunContext call. Everything below the
// command layer receives what it needs explicitly.
type application struct {
	stdout io.Writer
	stderr io.Writer

	global  cli.GlobalOptions
	cfg     *config.Config
	log     *zap.Logger
	runID   string
	metrics *metrics.Metrics
	diags   *diag.Collector
}

// setup runs before every subcommand: config, logger, metrics.
func (a *application) setup(cmd *cobra.Command) error {
	if err := a.global.Validate(); err != nil {
		return err
	}
	cfg, err := config.Load(a.global.ConfigPath)
	if err != nil {
		return err
	}
	a.global.ApplyConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", a.global.ConfigPath, err)
	}
	a.cfg = cfg

	log, err := logging.New(a.stderr, logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: a.global.Verbose,
		Quiet:   a.global.Quiet,
	})
	if err != nil {
		return err
	}
	a.runID = uuid.NewString()
	a.log = log.With(zap.String("run_id", a.runID), zap.String("command", cmd.Name()))
	a.metrics = metrics.New()
	a.diags = diag.NewCollector(a.log)
	a.log.Debug("configuration loaded",
		zap.String("config", a.global.ConfigPath),
		zap.String("taxdb", cfg.TaxDB),
		zap.String("decode_policy", cfg.DecodePolicy))
	return nil
}

func (a *application) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

func (a *application) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *application) writeMetrics() error {
	if a.global.MetricsFile == "" || a.metrics == nil {
		return nil
	}
	if a.diags != nil {
		a.metrics.RecordSkips(a.diags.CountByReason())
	}
	if err := a.metrics.WriteTextfile(a.global.MetricsFile); err != nil {
		return &outputError{err: err}
	}
	return nil
}

func (a *application) skipFunc(source string) lineage.SkipFunc {
	return func(line int, reason string) {
		a.diags.Add(source+":"+strconv.Itoa(line), ReasonMalformed, zap.String("detail", reason))
	}
}

func (a *application) loadStore(ctx context.Context, path string) (*lineage.Store, error) {
	policy, err := lineage.ParseDecodePolicy(a.cfg.DecodePolicy)
	if err != nil {
		return nil, err
	}
	var store *lineage.Store
	err = a.metrics.Time("lineage", func() (err error) {
		store, err = lineage.Open(ctx, path, policy, a.skipFunc(path))
		return err
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w (run 'krakviz fetch' to download the taxonomy)", err)
	}
	if err != nil {
		return nil, err
	}
	a.metrics.LineageEntries.Set(float64(store.Len()))
	a.log.Info("lineage store loaded", zap.String("source", store.Source()), zap.Int("entries", store.Len()))
	return store, nil
}

func (a *application) readClassification(file string) (*kraken.Classification, error) {
	var c *kraken.Classification
	err := a.metrics.Time("read", func() (err error) {
		c, err = kraken.Load(file)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.metrics.RecordClassification(c.Records(), c.Classified(), c.Unclassified())
	a.metrics.RecordTaxa("observed", c.UniqueIDs())
	a.log.Info("classification read",
		zap.String("source", c.Source()),
		zap.Int("records", c.Records()),
		zap.Float64("percent_classified", c.PercentClassified()))
	return c, nil
}

// analyze reads file, filters its observations and assembles the tree.
func (a *application) analyze(ctx context.Context, file string, minCount int) (*kraken.Classification, *taxtree.Tree, error) {
	c, err := a.readClassification(file)
	if err != nil {
		return nil, nil, err
	}
	obs := c.Filter(minCount)
	a.metrics.RecordTaxa("filtered", len(obs))
	a.log.Info("observations after filter", zap.Int("min_count", minCount), zap.Int("taxa", len(obs)))
	if len(obs) == 0 {
		return nil, nil, errNoTaxa
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	store, err := a.loadStore(ctx, a.cfg.TaxDB)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	truncated, err := taxtree.ParseTruncatedPolicy(a.cfg.TruncatedLineage)
	if err != nil {
		return nil, nil, err
	}
	anchors := taxtree.DefaultAnchors()
	if len(a.cfg.Anchors) > 0 {
		anchors = taxtree.NewAnchorSet(a.cfg.Anchors...)
	}

	var tree *taxtree.Tree
	err = a.metrics.Time("assemble", func() (err error) {
		tree, err = taxtree.Assemble(obs, store, taxtree.Options{
			Anchors:     &anchors,
			Truncated:   truncated,
			Diagnostics: a.diags,
			Logger:      a.log,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	a.metrics.RecordTaxa("resolved", tree.Stats.Observed+tree.Stats.Merged)
	a.metrics.RecordTree(tree.Stats.Observed, tree.Stats.Placeholders)
	if n := a.diags.Len(); n > 0 {
		a.log.Info("diagnostics recorded", zap.Int("count", n), zap.Any("by_reason", a.diags.CountByReason()))
	}
	if tree.Len() == 0 {
		return nil, nil, errNoTaxa
	}
	return c, tree, nil
}
