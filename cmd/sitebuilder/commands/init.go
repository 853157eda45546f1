package commands

import "git.home.luguber.info/inful/sitebuilder/internal/config"

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	g.Console.Println("Writing configuration to %s", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		g.Console.Fail("Initialization failed")
		return err
	}
	g.Console.Success("Initialized; edit %s and run 'sitebuilder build'", root.Config)
	return nil
}
