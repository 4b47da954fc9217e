package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dhcgn/pgp-sig-extract/config"
	"github.com/dhcgn/pgp-sig-extract/mbox"
	"github.com/dhcgn/pgp-sig-extract/progress"
	"github.com/dhcgn/pgp-sig-extract/stats"
)

var mboxCmd = &cobra.Command{
	Use:   "mbox [mbox file]",
	Short: "Extract signed payloads from every matching message of an mbox archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMbox(cmd, args[0])
		if err != nil {
			return err
		}

		logger, cleanup, err := setupLogger(cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = cleanup()
		}()

		slog.SetDefault(logger)
		logger.Info("starting batch extraction", "mbox", cfg.MboxPath, "out", cfg.OutputDir)

		total, err := mbox.CountMessages(cfg.MboxPath)
		if err != nil {
			return fmt.Errorf("count messages: %w", err)
		}

		bar := progress.New(total, cfg.LogLevel)
		reporter := stats.NewReporter(logger)

		batch, err := mbox.NewBatch(mbox.Options{
			Path:          cfg.MboxPath,
			OutDir:        cfg.OutputDir,
			IncludeHeader: cfg.IncludeHeader,
			IncludeBody:   cfg.IncludeBody,
			ExcludeHeader: cfg.ExcludeHeader,
			ExcludeBody:   cfg.ExcludeBody,
		}, logger, reporter, bar)
		if err != nil {
			return err
		}

		runErr := batch.Run()
		bar.Stop()
		reporter.Log()
		if runErr != nil {
			return runErr
		}

		summary := reporter.Summary()
		if summary.Errors > 0 {
			return fmt.Errorf("%d message(s) failed extraction, last error: %v", summary.Errors, summary.LastError)
		}

		fmt.Printf("Extracted %d signed message(s) into %s\n", summary.Extracted, cfg.OutputDir)
		return nil
	},
}

func init() {
	config.RegisterMboxFlags(mboxCmd)
	rootCmd.AddCommand(mboxCmd)
}
