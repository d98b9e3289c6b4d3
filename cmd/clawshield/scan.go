package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/clawshield/clawshield/internal/config"
	"github.com/clawshield/clawshield/internal/pack"
	"github.com/clawshield/clawshield/internal/policy"
	"github.com/clawshield/clawshield/internal/render"
	"github.com/clawshield/clawshield/internal/sarif"
	"github.com/clawshield/clawshield/internal/scan"
)

// exitRisk is returned when a scan meets the --fail-on threshold.
const exitRisk = 2

type scanOptions struct {
	configPath   string
	pack         string
	format       string
	explain      string
	network      string
	filesystem   string
	noApprovals  bool
	allowDomains []string
	policyOut    string
	failOn       string
	noColor      bool
}

func newScanCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [file|-]",
		Short: "Scan a file or stdin and print the risk report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			return runScan(cmd, source, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (optional)")
	flags.StringVarP(&opts.pack, "pack", "p", "", "Rule pack: basic|strict|paranoid (default from config)")
	flags.StringVarP(&opts.format, "format", "f", "text", "Output format: text|json|yaml|md|sarif")
	flags.StringVar(&opts.explain, "explain", "simple", "Explanation style: simple|dev")
	flags.StringVar(&opts.network, "network", policy.NetworkRestricted, "Policy network default: restricted|allowed")
	flags.StringVar(&opts.filesystem, "filesystem", policy.FilesystemReadOnly, "Policy filesystem default: read_only|read_write")
	flags.BoolVar(&opts.noApprovals, "no-approvals", false, "Omit approval gates from the policy")
	flags.StringArrayVar(&opts.allowDomains, "allow-domain", nil, "Extra domain for the policy allowlist (repeatable)")
	flags.StringVarP(&opts.policyOut, "policy-out", "o", "", "Write the policy document to this path (.yaml/.yml for YAML)")
	flags.StringVar(&opts.failOn, "fail-on", "", "Exit with status 2 when risk is at least low|medium|high")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runScan(cmd *cobra.Command, source string, opts scanOptions) error {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	explain, err := render.ParseExplain(opts.explain)
	if err != nil {
		return err
	}
	editor, err := buildEditor(opts)
	if err != nil {
		return err
	}

	var failOn scan.Risk
	if opts.failOn != "" {
		risk, ok := scan.ParseRisk(opts.failOn)
		if !ok {
			return fmt.Errorf("invalid --fail-on %q (want low, medium or high)", opts.failOn)
		}
		failOn = risk
	}

	text, err := readInput(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("missing text: input is empty")
	}
	if utf8.RuneCountInString(text) > cfg.Scan.MaxTextChars {
		return fmt.Errorf("input too large: keep it under %d characters", cfg.Scan.MaxTextChars)
	}

	packName := opts.pack
	if packName == "" {
		packName = cfg.Scan.DefaultPack
	}
	if !pack.Known(packName) {
		fmt.Fprintf(cmd.ErrOrStderr(), "unknown pack %q, using %s\n", packName, pack.Basic)
	}
	packCfg := pack.Resolve(packName)

	result := scan.Run(text, packCfg)
	doc := policy.Synthesize(result.Suggested, editor, packCfg)

	if err := writeResult(cmd, format, source, result, doc, render.Options{
		Explain: explain,
		Color:   render.ColorEnabled(cmd.OutOrStdout(), opts.noColor),
	}); err != nil {
		return err
	}

	if opts.policyOut != "" {
		if err := policy.Save(opts.policyOut, doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "policy written to %s\n", opts.policyOut)
	}

	if failOn != "" && result.Risk.AtLeast(failOn) {
		return &exitError{
			code: exitRisk,
			msg:  fmt.Sprintf("risk %s meets --fail-on %s", result.Risk, failOn),
		}
	}
	return nil
}

func buildEditor(opts scanOptions) (policy.Editor, error) {
	switch opts.network {
	case policy.NetworkRestricted, policy.NetworkAllowed:
	default:
		return policy.Editor{}, fmt.Errorf("invalid --network %q (want restricted or allowed)", opts.network)
	}
	switch opts.filesystem {
	case policy.FilesystemReadOnly, policy.FilesystemReadWrite:
	default:
		return policy.Editor{}, fmt.Errorf("invalid --filesystem %q (want read_only or read_write)", opts.filesystem)
	}

	approvals := !opts.noApprovals
	return policy.Editor{
		Network:          opts.network,
		Filesystem:       opts.filesystem,
		ApprovalsEnabled: &approvals,
		AllowlistDomains: opts.allowDomains,
	}, nil
}

func readInput(stdin io.Reader, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func writeResult(cmd *cobra.Command, format render.Format, source string, result scan.Result, doc policy.Document, opts render.Options) error {
	out := cmd.OutOrStdout()
	output := render.Output{Result: result, Policy: doc}

	var data []byte
	var err error
	switch format {
	case render.FormatText:
		return render.Text(out, result, doc, opts)
	case render.FormatMarkdown:
		data = []byte(render.Markdown(result, doc, opts))
	case render.FormatJSON:
		data, err = render.JSON(output)
	case render.FormatYAML:
		data, err = render.YAML(output)
	case render.FormatSARIF:
		data, err = sarif.Encode(sarif.Build(result, source, version))
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
