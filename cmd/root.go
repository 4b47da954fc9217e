package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhcgn/pgp-sig-extract/config"
	"github.com/dhcgn/pgp-sig-extract/extractor"
)

var rootCmd = &cobra.Command{
	Use:   "pgp-sig-extract [email file]",
	Short: "Extract the signed entity and detached signature from a multipart/signed email, byte-for-byte",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadCommon(cmd)
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
		logger.Info("starting extraction", "input", args[0], "out", cfg.OutputDir)

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read input file: %w", err)
		}

		result, err := extractor.Run(raw, cfg.OutputDir, logger)
		if err != nil {
			return err
		}

		logger.Info("extraction complete", "entityBytes", result.EntitySize, "armorBytes", result.ArmorSize)
		fmt.Println("Extraction complete (raw-safe, no reformatting).")
		fmt.Println("Data:      " + result.MessagePath)
		fmt.Println("Signature: " + result.SignaturePath)
		return nil
	},
}

func init() {
	config.RegisterRootFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("pgp-sig-extract-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler), cleanup, nil
}
