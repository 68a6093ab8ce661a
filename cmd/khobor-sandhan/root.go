package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/khobor-sandhan/internal/announce"
	"github.com/Adda-Baaj/khobor-sandhan/internal/config"
	"github.com/Adda-Baaj/khobor-sandhan/internal/crawler"
	"github.com/Adda-Baaj/khobor-sandhan/internal/domain"
	"github.com/Adda-Baaj/khobor-sandhan/internal/logger"
	"github.com/Adda-Baaj/khobor-sandhan/internal/report"
	"github.com/Adda-Baaj/khobor-sandhan/internal/store"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/httpclient"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/pacer"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/providers"
	"github.com/Adda-Baaj/khobor-sandhan/pkg/publishers"
)

// ledgerRetention bounds how long announced ids are remembered.
const ledgerRetention = 30 * 24 * time.Hour

var rootCmd = &cobra.Command{
	Use:   "khobor-sandhan",
	Short: "Search news for keywords and export the results to a spreadsheet",
	Long: `khobor-sandhan queries a news feed and a paginated news listing for every keyword,
merges and deduplicates the results per keyword, flags articles published in the last 24 hours,
and writes an .xlsx report with an article sheet and a per-keyword summary.

Settings are read from defaults, an optional YAML file (--config), KHOBOR_* environment
variables and flags, later sources overriding earlier ones.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHarvestCmd,
}

var rootConfigPath string

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&rootConfigPath, config.FlagConfig, "", "Path to a YAML config file")
	flags.StringSliceP(config.FlagKeyword, "k", nil, "Keyword to search (repeatable)")
	flags.Int(config.FlagMaxPages, 0, "Listing pages to fetch per keyword")
	flags.StringP(config.FlagOut, "o", "", "Directory the report is written to")
	flags.String(config.FlagLogLevel, "", "Log level (debug, info, warn, error)")
}

func runHarvestCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootConfigPath, cmd.Flags())
	if err != nil {
		return err
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	client := httpclient.NewRestyClientWithOptions(httpclient.Options{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
		Headers:   cfg.HTTP.Headers,
	})

	path, err := harvest(cmd.Context(), cfg, deps{client: client, pacer: pacer.NewRandom(), log: zl})
	if err != nil {
		zl.ErrorObj("harvest failed", "harvest_failed", map[string]any{"error": err})
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

type deps struct {
	client    httpclient.Client
	pacer     pacer.Pacer
	log       logger.Logger
	publishMk func(ctx context.Context, cfg config.AnnounceConfig, log logger.Logger) ([]publishers.Publisher, error)
	now       func() time.Time
}

// harvest crawls every keyword, writes the report and optionally announces new articles.
// It returns the report path.
func harvest(ctx context.Context, cfg *config.Config, d deps) (string, error) {
	if d.log == nil {
		d.log = logger.NopLogger{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.publishMk == nil {
		d.publishMk = buildPublishers
	}

	c := crawler.New(providers.DefaultFetcherRegistry(d.client, d.pacer, d.log), crawler.Options{
		Providers:       cfg.Providers,
		KeywordDelayMin: cfg.KeywordDelay.Min,
		KeywordDelayMax: cfg.KeywordDelay.Max,
		Pacer:           d.pacer,
		Log:             d.log,
	})

	d.log.InfoObj("harvest started", "harvest_start", map[string]any{
		"run_id":    c.RunID(),
		"keywords":  cfg.Keywords,
		"max_pages": cfg.MaxPages,
	})

	articles := c.RunAll(ctx, cfg.Keywords, cfg.MaxPages)
	stamped := report.Stamp(articles, d.now())

	path, err := report.NewWriter(cfg.Output.Dir, cfg.Output.File, d.log).Write(stamped)
	if err != nil {
		return "", err
	}

	if cfg.Announce.Enabled() {
		if err := announceNew(ctx, cfg, d, c.RunID(), stamped); err != nil {
			if cfg.Announce.FailOnError {
				return path, err
			}
			d.log.ErrorObj("announce failed", "announce_failed", map[string]any{"error": err})
		}
	}
	return path, nil
}

func announceNew(ctx context.Context, cfg *config.Config, d deps, runID string, articles []domain.Article) (err error) {
	pubs, err := d.publishMk(ctx, cfg.Announce, d.log)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, publishers.CloseAll(pubs))
	}()

	ledger, err := store.Open(cfg.Announce.StatePath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, ledger.Close())
	}()

	if removed, perr := ledger.Prune(d.now().Add(-ledgerRetention)); perr != nil {
		d.log.WarnObj("ledger prune failed", "ledger_prune_failed", map[string]any{"error": perr})
	} else if removed > 0 {
		d.log.DebugObj("ledger pruned", "ledger_pruned", map[string]any{"removed": removed})
	}

	_, err = announce.New(ledger, pubs, runID, d.log).Announce(ctx, articles)
	return err
}

func buildPublishers(ctx context.Context, cfg config.AnnounceConfig, log logger.Logger) ([]publishers.Publisher, error) {
	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, err
	}
	return publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
}
