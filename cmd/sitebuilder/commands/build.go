package commands

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory, overriding output.directory" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, b.Output)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		// Notification is best effort; the build still runs.
		slog.Warn("Notifications disabled", logfields.Error(err))
		notifier = notify.Noop{}
	}
	if closer, ok := notifier.(*notify.NATS); ok {
		defer closer.Close()
	}

	_, err = RunBuild(ctx, cfg, g.Console, notifier)
	return err
}

// RunBuild runs one build, prints its outcome, exports metrics and sends the
// notification. The report is returned even when the build fails.
func RunBuild(ctx context.Context, cfg *config.Config, console *Console, notifier notify.Notifier) (*build.Report, error) {
	console.Println("Building %s into %s", cfg.Site.Title, cfg.Output.Directory)

	var prom *metrics.PrometheusRecorder
	opts := []build.Option{}
	if cfg.Metrics.Textfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, build.WithRecorder(prom))
	}

	report, err := build.New(cfg, opts...).Build(ctx)
	printReport(console, report, err)

	if prom != nil {
		if werr := prom.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(werr))
		}
	}
	if notifier != nil {
		if nerr := notifier.Notify(context.WithoutCancel(ctx), report); nerr != nil {
			slog.Warn("Build notification failed", logfields.BuildID(report.ID), logfields.Error(nerr))
			console.Warn("notification failed: %v", nerr)
		}
	}
	return report, err
}

func printReport(console *Console, report *build.Report, err error) {
	switch report.Outcome {
	case build.OutcomeSuccess:
		console.Success("Built %d pages in %s", report.RenderedPages, report.Duration().Round(time.Millisecond))
	case build.OutcomeWarning:
		console.Success("Built %d pages in %s with %d warnings", report.RenderedPages, report.Duration().Round(time.Millisecond), len(report.Warnings))
		for _, w := range report.Warnings {
			console.Warn("%v", w)
		}
	case build.OutcomeCanceled:
		console.Fail("Build canceled; previous output kept")
		return
	default:
		console.Fail("Build failed; previous output kept")
		if err != nil {
			console.Detail("%v", err)
		}
		return
	}
	console.Detail("documents=%d excluded=%d drafts=%d sitemap=%d static=%d files=%d",
		report.Documents, report.Excluded, report.Drafts, report.SitemapEntries, report.StaticFiles, report.OutputFiles)
}
