package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output string `short:"o" help:"Output directory, overriding output.directory" type:"path"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, w.Output)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		slog.Warn("Notifications disabled", logfields.Error(err))
		notifier = notify.Noop{}
	}
	if closer, ok := notifier.(*notify.NATS); ok {
		defer closer.Close()
	}

	rebuild := func(ctx context.Context) error {
		_, err := RunBuild(ctx, cfg, g.Console, notifier)
		return err
	}
	// A broken initial build is reported; the next change may fix it.
	_ = rebuild(ctx)

	g.Console.Println("Watching %v for changes (Ctrl-C to stop)", watch.Roots(cfg))
	return watch.Run(ctx, cfg, rebuild)
}
