package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xlukav/larascan/internal/engine"
	"github.com/0xlukav/larascan/internal/model"
	"github.com/0xlukav/larascan/internal/report"
	"github.com/0xlukav/larascan/internal/tui"
)

func AddCommands(root *cobra.Command) {
	root.AddCommand(newScanCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newDetectorsCmd())
}

func newScanCmd() *cobra.Command {
	var (
		format        string
		outputFile    string
		environment   string
		ci            bool
		budgetMs      int
		configPath    string
		failOn        string
		baseline      string
		writeBaseline string
		useTUI        bool
		verbose       bool
	)
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a Laravel project for security issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			log, err := buildLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			eng := engine.New(log)
			result, err := eng.Scan(cmd.Context(), model.ScanRequest{
				Root:        root,
				Environment: environment,
				CI:          ci,
				TimeBudget:  time.Duration(budgetMs) * time.Millisecond,
				ConfigPath:  configPath,
			})
			if err != nil {
				return err
			}

			if baseline != "" {
				b, err := engine.LoadBaseline(baseline)
				if err != nil {
					return fmt.Errorf("load baseline: %w", err)
				}
				engine.ApplyBaseline(result, b)
			}
			if failOn != "" {
				engine.ApplySeverityThreshold(result, model.ParseSeverity(failOn))
			}
			if writeBaseline != "" {
				if err := engine.WriteBaseline(writeBaseline, result); err != nil {
					return err
				}
			}

			if useTUI {
				if err := tui.Run(result); err != nil {
					return err
				}
			} else if err := render(cmd, result, format, outputFile); err != nil {
				return err
			}

			if code := engine.ExitCode(result); code != 0 {
				// cobra prints RunE errors; the verdict is already on screen
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return fmt.Errorf("scan failed with status %s", result.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|sarif")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&environment, "env", "e", "", "Target environment (overrides config)")
	cmd.Flags().BoolVar(&ci, "ci", false, "CI mode: skip detectors that do not run in CI")
	cmd.Flags().IntVar(&budgetMs, "budget-ms", 0, "Time budget for the whole scan in milliseconds (0 = config default)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Explicit config file (default: .larascan.yaml at the scan root)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Only count findings of this severity or higher (info|low|medium|high|critical)")
	cmd.Flags().StringVar(&baseline, "baseline", "", "Baseline file; findings listed there are muted")
	cmd.Flags().StringVar(&writeBaseline, "write-baseline", "", "Write the surviving finding fingerprints to a baseline file")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse findings interactively")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func render(cmd *cobra.Command, result *model.ScanResult, format, outputFile string) error {
	switch format {
	case "json":
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer f.Close()
			return report.WriteJSON(f, result)
		}
		return report.WriteJSON(cmd.OutOrStdout(), result)
	case "sarif":
		data, err := report.ToSARIF(result)
		if err != nil {
			return err
		}
		if outputFile != "" {
			return os.WriteFile(outputFile, append(data, '\n'), 0o644)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case "table":
		report.WriteTable(cmd.OutOrStdout(), result)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
