package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// DefaultOutputDir is the fixed relative directory the artifacts are
// written to when --out is not given.
const DefaultOutputDir = "extractedSignatureData"

// Config captures all command-line options across the extract, mbox and
// imap commands. Only the fields belonging to the invoked command are
// populated.
type Config struct {
	OutputDir string
	LogLevel  string
	LogDir    string

	MboxPath      string
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string

	IMAPHost           string
	IMAPPort           int
	IMAPUser           string
	IMAPPass           string
	UseTLS             bool
	InsecureSkipVerify bool
	Mailbox            string
	UID                uint32
}

// RegisterRootFlags attaches the flags shared by every command.
func RegisterRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("out", DefaultOutputDir, "Directory the extracted artifacts are written to")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (logging to stdout only when empty)")
}

// RegisterMboxFlags attaches the batch-mode flags.
func RegisterMboxFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArray("include-header", nil, "Regex allow-list applied to message headers (mutually exclusive with exclude flags)")
	flags.StringArray("include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-header", nil, "Regex block-list applied to message headers (mutually exclusive with include flags)")
	flags.StringArray("exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")
}

// RegisterIMAPFlags attaches the mailbox-fetch flags.
func RegisterIMAPFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("imap-host", "", "IMAP server hostname")
	flags.Int("imap-port", 993, "IMAP server port")
	flags.String("imap-user", "", "IMAP username")
	flags.String("imap-pass", "", "IMAP password (falls back to IMAP_PASS env var)")
	flags.Bool("use-tls", true, "Use TLS for the IMAP connection")
	flags.Bool("insecure-skip-verify", false, "Skip TLS certificate verification (not recommended)")
	flags.String("mailbox", "INBOX", "Mailbox to fetch the message from")
	flags.Uint32("uid", 0, "UID of the message to fetch")

	if err := cmd.MarkFlagRequired("imap-host"); err != nil {
		return err
	}
	if err := cmd.MarkFlagRequired("imap-user"); err != nil {
		return err
	}
	return cmd.MarkFlagRequired("uid")
}

// LoadCommon converts the shared flags into a Config with validation.
func LoadCommon(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	outDir, err := flags.GetString("out")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}

	if outDir == "" {
		outDir = DefaultOutputDir
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid --log-level: %s", logLevel)
	}

	return Config{
		OutputDir: filepath.Clean(outDir),
		LogLevel:  logLevel,
		LogDir:    logDir,
	}, nil
}

// LoadMbox extends the common config with the batch-mode flags.
func LoadMbox(cmd *cobra.Command, mboxPath string) (Config, error) {
	cfg, err := LoadCommon(cmd)
	if err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()
	includeHeader, err := flags.GetStringArray("include-header")
	if err != nil {
		return Config{}, err
	}
	includeBody, err := flags.GetStringArray("include-body")
	if err != nil {
		return Config{}, err
	}
	excludeHeader, err := flags.GetStringArray("exclude-header")
	if err != nil {
		return Config{}, err
	}
	excludeBody, err := flags.GetStringArray("exclude-body")
	if err != nil {
		return Config{}, err
	}

	includeActive := len(includeHeader) > 0 || len(includeBody) > 0
	excludeActive := len(excludeHeader) > 0 || len(excludeBody) > 0
	if includeActive && excludeActive {
		return Config{}, fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	if strings.TrimSpace(mboxPath) == "" {
		return Config{}, fmt.Errorf("mbox path is required")
	}

	cfg.MboxPath = mboxPath
	cfg.IncludeHeader = includeHeader
	cfg.IncludeBody = includeBody
	cfg.ExcludeHeader = excludeHeader
	cfg.ExcludeBody = excludeBody
	return cfg, nil
}

// LoadIMAP extends the common config with the mailbox-fetch flags.
func LoadIMAP(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadCommon(cmd)
	if err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()
	imapHost, err := flags.GetString("imap-host")
	if err != nil {
		return Config{}, err
	}
	imapPort, err := flags.GetInt("imap-port")
	if err != nil {
		return Config{}, err
	}
	imapUser, err := flags.GetString("imap-user")
	if err != nil {
		return Config{}, err
	}
	imapPass, err := flags.GetString("imap-pass")
	if err != nil {
		return Config{}, err
	}
	useTLS, err := flags.GetBool("use-tls")
	if err != nil {
		return Config{}, err
	}
	insecureSkipVerify, err := flags.GetBool("insecure-skip-verify")
	if err != nil {
		return Config{}, err
	}
	mailbox, err := flags.GetString("mailbox")
	if err != nil {
		return Config{}, err
	}
	uid, err := flags.GetUint32("uid")
	if err != nil {
		return Config{}, err
	}

	if imapPass == "" {
		imapPass = os.Getenv("IMAP_PASS")
	}

	cfg.IMAPHost = imapHost
	cfg.IMAPPort = imapPort
	cfg.IMAPUser = imapUser
	cfg.IMAPPass = imapPass
	cfg.UseTLS = useTLS
	cfg.InsecureSkipVerify = insecureSkipVerify
	cfg.Mailbox = mailbox
	cfg.UID = uid

	if err := validateIMAP(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateIMAP(cfg Config) error {
	if cfg.IMAPHost == "" {
		return fmt.Errorf("--imap-host is required")
	}
	if cfg.IMAPUser == "" {
		return fmt.Errorf("--imap-user is required")
	}
	if cfg.IMAPPass == "" {
		return fmt.Errorf("IMAP password must be provided via --imap-pass or IMAP_PASS env var")
	}
	if cfg.IMAPPort <= 0 || cfg.IMAPPort > 65535 {
		return fmt.Errorf("--imap-port must be between 1 and 65535")
	}
	if cfg.UID == 0 {
		return fmt.Errorf("--uid must be positive")
	}
	return nil
}
