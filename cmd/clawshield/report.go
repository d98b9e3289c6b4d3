package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clawshield/clawshield/internal/config"
	"github.com/clawshield/clawshield/internal/report"
)

type reportOptions struct {
	configPath string
	logPath    string
	window     time.Duration
	format     string
	outPath    string
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the scan audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file; its logging.scanLog is read when --in is unset")
	flags.StringVar(&opts.logPath, "in", "", "Scan audit log (JSONL)")
	flags.DurationVar(&opts.window, "since", 0, "Only include records newer than this, e.g. 10m or 24h")
	flags.StringVarP(&opts.format, "format", "f", "text", "Output format: text|md|json|yaml")
	flags.StringVarP(&opts.outPath, "out", "o", "", "Write the report to this file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.window < 0 {
		return fmt.Errorf("invalid --since %s: must not be negative", opts.window)
	}

	logPath := opts.logPath
	if logPath == "" {
		cfg, err := config.LoadOrDefault(opts.configPath)
		if err != nil {
			return err
		}
		logPath = cfg.ResolvePath(cfg.Logging.ScanLog)
	}
	if logPath == "" {
		return errors.New("no scan log: pass --in or set logging.scanLog")
	}

	reader := report.Reader{}
	if opts.window > 0 {
		reader.Since = time.Now().Add(-opts.window)
	}
	records, err := reader.Read(logPath)
	if err != nil {
		return fmt.Errorf("read scan log: %w", err)
	}

	summary := report.Summarize(records)
	if opts.outPath == "" {
		return report.Write(cmd.OutOrStdout(), summary, format)
	}

	file, err := os.OpenFile(opts.outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := report.Write(file, summary, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
