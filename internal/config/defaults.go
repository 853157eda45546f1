package config

import (
	"runtime"
	"strings"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles site identity defaults.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Documentation Site"
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = "en"
	}
	cfg.Site.Origin = strings.TrimRight(cfg.Site.Origin, "/")
	cfg.Site.RepositoryBlobURL = strings.TrimRight(cfg.Site.RepositoryBlobURL, "/")
	return nil
}

// ContentDefaultApplier handles content location defaults.
type ContentDefaultApplier struct{}

func (ContentDefaultApplier) Domain() string { return "content" }

func (ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Root == "" {
		cfg.Content.Root = "./content"
	}
	return nil
}

// OutputDefaultApplier handles output defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./public"
	}
	if cfg.Output.SitemapPath == "" {
		cfg.Output.SitemapPath = "sitemap.xml"
	}
	cfg.Output.SitemapPath = strings.TrimLeft(cfg.Output.SitemapPath, "/")
	return nil
}

// BuildDefaultApplier handles fan-out limits.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.LoadConcurrency <= 0 {
		cfg.Build.LoadConcurrency = runtime.NumCPU()
	}
	if cfg.Build.RenderConcurrency <= 0 {
		cfg.Build.RenderConcurrency = runtime.NumCPU()
	}
	return nil
}

// NotifyDefaultApplier fills the NATS subject.
type NotifyDefaultApplier struct{}

func (NotifyDefaultApplier) Domain() string { return "notify" }

func (NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "sitebuilder.build"
	}
	return nil
}

// defaultAppliers run in order.
var defaultAppliers = []DefaultApplier{
	SiteDefaultApplier{},
	ContentDefaultApplier{},
	OutputDefaultApplier{},
	BuildDefaultApplier{},
	NotifyDefaultApplier{},
}

// ApplyDefaults runs every domain applier against cfg.
func ApplyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
