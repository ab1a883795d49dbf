// Package analyzer runs a complete measurement and assembles the immutable
// analysis result.
package analyzer

import (
	"context"
	"os"
	"time"

	"github.com/greenweb/ecoscan/browser"
	"github.com/greenweb/ecoscan/collector"
	"github.com/greenweb/ecoscan/ecoindex"
	"github.com/greenweb/ecoscan/log"
	"github.com/greenweb/ecoscan/storage"

	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// Options configure one analysis run.
type Options struct {
	// ChromePath is the browser executable used for navigation.
	ChromePath string
	// GenerateReport renders and persists an HTML report artifact.
	GenerateReport bool
	// ReportDir is where report artifacts are written. Defaults to the
	// system temp directory.
	ReportDir string
	// Launch overrides the default browser launch options.
	Launch *browser.LaunchOptions
	// Collect overrides the default navigation protocol timings.
	Collect *collector.Options
}

// Analyzer measures pages. One Analyzer handles one run at a time; each run
// owns its own browser process.
type Analyzer struct {
	opts      Options
	persister storage.FilePersister
	logger    *log.Logger
}

// New returns an Analyzer with the given options.
func New(opts Options, logger *log.Logger) *Analyzer {
	if opts.ReportDir == "" {
		opts.ReportDir = os.TempDir()
	}
	return &Analyzer{
		opts:      opts,
		persister: &storage.LocalFilePersister{},
		logger:    logger,
	}
}

// Run measures url end to end: launch, navigate, extract, score, aggregate.
// The browser process is terminated on every exit path.
func (a *Analyzer) Run(ctx context.Context, url string) (*AnalysisResult, error) {
	launchOpts := browser.DefaultLaunchOptions(a.opts.ChromePath)
	if a.opts.Launch != nil {
		launchOpts = *a.opts.Launch
	}
	collectOpts := collector.DefaultOptions()
	if a.opts.Collect != nil {
		collectOpts = *a.opts.Collect
	}

	b, err := browser.Launch(ctx, launchOpts, a.logger)
	if err != nil {
		return nil, errors.Wrap(err, "launching browser")
	}
	defer b.Close()

	collected, err := collector.New(b, collectOpts, a.logger).Collect(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "collecting %q", url)
	}

	score := ecoindex.Compute(collected.Metrics)
	result := assemble(url, time.Now(), collected, score)

	a.logger.Infof("Analyzer:Run", "url:%q score:%.1f grade:%s", url, score.Value, score.Grade)

	if a.opts.GenerateReport {
		a.attachReport(ctx, result)
	}

	return result, nil
}

// attachReport renders and persists the HTML report and records its path on
// the result. A failed report never fails the run; the result stands on its
// own, with the path left unset.
func (a *Analyzer) attachReport(ctx context.Context, result *AnalysisResult) {
	path, err := writeReport(ctx, a.persister, a.opts.ReportDir, result)
	if err != nil {
		a.logger.Warnf("Analyzer:Run", "report generation failed: %v", err)
		return
	}
	result.HTMLReportPath = null.StringFrom(path)
}
