package commands

import (
	"git.home.luguber.info/inful/sitebuilder/internal/build"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/navtree"
)

// NavCmd implements the 'nav' command.
type NavCmd struct {
	Format string `help:"Output format" enum:"text,json" default:"text"`
}

func (n *NavCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, "")
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	tree, _, err := build.New(cfg).Navigation(ctx)
	if err != nil {
		return err
	}

	write := navtree.WriteText
	if n.Format == "json" {
		write = navtree.WriteJSON
	}
	if err := write(g.Console.Out, tree); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to print navigation tree").Build()
	}
	return nil
}
