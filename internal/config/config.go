package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "sitebuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Output     OutputConfig     `yaml:"output"`
	Build      BuildConfig      `yaml:"build"`
	Navigation NavigationConfig `yaml:"navigation,omitempty"`
	Theme      ThemeConfig      `yaml:"theme,omitempty"`
	Notify     NotifyConfig     `yaml:"notify,omitempty"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
}

// SiteConfig holds site-wide identity used in page metadata and head tags.
type SiteConfig struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description,omitempty"`
	Origin       string   `yaml:"origin"` // canonical scheme://host, no trailing slash
	Author       string   `yaml:"author,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	Color        string   `yaml:"color,omitempty"`         // theme-color meta tag
	SocialHandle string   `yaml:"social_handle,omitempty"` // twitter:site
	Language     string   `yaml:"language,omitempty"`
	// RepositoryBlobURL is the base of per-file source links, e.g.
	// https://github.com/org/site/blob/main/content
	RepositoryBlobURL string `yaml:"repository_blob_url,omitempty"`
}

// ContentConfig locates source documents.
type ContentConfig struct {
	Root      string   `yaml:"root"`
	StaticDir string   `yaml:"static_dir,omitempty"`
	Ignore    []string `yaml:"ignore,omitempty"` // doublestar globs relative to Root
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// InPlace writes straight into Directory instead of staging and promoting.
	InPlace     bool   `yaml:"in_place,omitempty"`
	Minify      *bool  `yaml:"minify,omitempty"`
	Precompress bool   `yaml:"precompress,omitempty"` // write .br siblings
	SitemapPath string `yaml:"sitemap_path,omitempty"`
}

// MinifyEnabled reports whether HTML minification is on (default true).
func (o OutputConfig) MinifyEnabled() bool { return o.Minify == nil || *o.Minify }

// BuildConfig holds build performance tuning knobs.
type BuildConfig struct {
	LoadConcurrency   int   `yaml:"load_concurrency,omitempty"`
	RenderConcurrency int   `yaml:"render_concurrency,omitempty"`
	IncludeDrafts     bool  `yaml:"include_drafts,omitempty"`
	GitLastmod        *bool `yaml:"git_lastmod,omitempty"`
}

// GitLastmodEnabled reports whether modification times come from git history (default true).
func (b BuildConfig) GitLastmodEnabled() bool { return b.GitLastmod == nil || *b.GitLastmod }

// NavigationConfig controls which pages appear in the navigation tree.
type NavigationConfig struct {
	Exclude []string `yaml:"exclude,omitempty"` // doublestar globs on canonical paths
}

// ThemeConfig controls the page layout and injected assets.
type ThemeConfig struct {
	LayoutDir   string   `yaml:"layout_dir,omitempty"`
	Stylesheets []string `yaml:"stylesheets,omitempty"`
	InlineCSS   []string `yaml:"inline_css,omitempty"` // files whose contents go into <style>
	Scripts     []string `yaml:"scripts,omitempty"`
}

// NotifyConfig configures the post-build NATS notification.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether a notification target is configured.
func (n NotifyConfig) Enabled() bool { return n.NATSURL != "" }

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Load reads, expands, defaults and validates the configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
				WithContext("path", configPath).
				Fatal().
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration").
			WithContext("path", configPath).
			Fatal().
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").
			WithContext("path", configPath).
			Fatal().
			Build()
	}
	return cfg, nil
}

// Parse expands ${VAR} references, unmarshals, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
