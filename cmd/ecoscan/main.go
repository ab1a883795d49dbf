// ecoscan measures the environmental footprint of a web page and prints its
// EcoIndex score, either by driving the browser in-process or through the
// ecoscan-sidecar binary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/greenweb/ecoscan/analyzer"
	"github.com/greenweb/ecoscan/browser"
	"github.com/greenweb/ecoscan/ecoindex"
	"github.com/greenweb/ecoscan/log"
	"github.com/greenweb/ecoscan/sidecar"

	"github.com/fatih/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

type config struct {
	ChromePath  string `envconfig:"CHROME_PATH"`
	SidecarPath string `envconfig:"SIDECAR_PATH"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ReportDir   string `envconfig:"REPORT_DIR"`
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		chromePath  string
		sidecarPath string
		includeHTML bool
		asJSON      bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "ecoscan <url>",
		Short: "Measure the environmental footprint of a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			var cfg config
			if err := envconfig.Process("ecoscan", &cfg); err != nil {
				return fmt.Errorf("reading environment: %w", err)
			}
			if chromePath == "" {
				chromePath = cfg.ChromePath
			}
			if sidecarPath == "" {
				sidecarPath = cfg.SidecarPath
			}
			if chromePath == "" {
				return fmt.Errorf("no browser executable: set --chrome or ECOSCAN_CHROME_PATH")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			go func() {
				<-ctx.Done()
				browser.ForceProcessShutdown()
			}()

			logger := log.New(ctx)
			if verbose {
				_ = logger.SetLevel("debug")
			} else if err := logger.SetLevel(cfg.LogLevel); err != nil {
				return fmt.Errorf("invalid log level %q", cfg.LogLevel)
			}

			result, err := measure(ctx, args[0], chromePath, sidecarPath, includeHTML, cfg, logger)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printSummary(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&chromePath, "chrome", "", "path to the Chromium/Chrome executable")
	cmd.Flags().StringVar(&sidecarPath, "sidecar", "", "run the measurement through the ecoscan-sidecar binary")
	cmd.Flags().BoolVar(&includeHTML, "html", false, "generate an HTML report artifact")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func measure(ctx context.Context, url, chromePath, sidecarPath string, includeHTML bool, cfg config, logger *log.Logger) (*analyzer.AnalysisResult, error) {
	if sidecarPath != "" {
		return sidecar.NewRunner(sidecarPath, logger).Run(ctx, url, chromePath, includeHTML)
	}
	opts := analyzer.Options{
		ChromePath:     chromePath,
		GenerateReport: includeHTML,
		ReportDir:      cfg.ReportDir,
	}
	return analyzer.New(opts, logger).Run(ctx, url)
}

func printSummary(cmd *cobra.Command, result *analyzer.AnalysisResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s\n\n", result.URL)
	fmt.Fprintf(out, "  EcoIndex  %s  %.1f/100 (%s)\n",
		gradeColor(result.EcoIndex.Grade).Sprintf(" %s ", result.EcoIndex.Grade),
		result.EcoIndex.Score, result.EcoIndex.Grade.Label())
	fmt.Fprintf(out, "  Impact    %.2f gCO2e, %.2f cl water\n", result.EcoIndex.GHG, result.EcoIndex.Water)
	fmt.Fprintf(out, "  Page      %d DOM elements, %d requests, %.1f kB, TTFB %.0f ms\n",
		result.EcoIndex.DOMElements, result.EcoIndex.Requests, result.EcoIndex.SizeKB, result.TTFBMs)

	if n := result.Analytics.DuplicateStats.DuplicateCount; n > 0 {
		fmt.Fprintf(out, "  Waste     %d duplicated resources, %d bytes wasted\n",
			n, result.Analytics.DuplicateStats.TotalWastedBytes)
	}
	if n := result.Analytics.CacheStats.ProblematicCount; n > 0 {
		fmt.Fprintf(out, "  Cache     %d resources cached for less than a week\n", n)
	}
	if result.HTMLReportPath.Valid {
		fmt.Fprintf(out, "  Report    %s\n", result.HTMLReportPath.String)
	}
}

func gradeColor(g ecoindex.Grade) *color.Color {
	switch g {
	case ecoindex.GradeA, ecoindex.GradeB:
		return color.New(color.BgGreen, color.FgBlack, color.Bold)
	case ecoindex.GradeC, ecoindex.GradeD:
		return color.New(color.BgYellow, color.FgBlack, color.Bold)
	default:
		return color.New(color.BgRed, color.FgWhite, color.Bold)
	}
}
