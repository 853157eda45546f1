package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Example returns the configuration written by `sitebuilder init`.
func Example() Config {
	minify := true
	return Config{
		Site: SiteConfig{
			Title:             "My Site",
			Description:       "Notes and documentation",
			Origin:            "https://example.com",
			Author:            "Jane Doe",
			Tags:              []string{"docs"},
			Color:             "#1e66f5",
			SocialHandle:      "@example",
			Language:          "en",
			RepositoryBlobURL: "https://github.com/example/site/blob/main/content",
		},
		Content: ContentConfig{
			Root:      "./content",
			StaticDir: "./static",
			Ignore:    []string{"**/_*.md"},
		},
		Output: OutputConfig{
			Directory:   "./public",
			Minify:      &minify,
			SitemapPath: "sitemap.xml",
		},
		Build: BuildConfig{
			LoadConcurrency:   8,
			RenderConcurrency: 8,
		},
		Navigation: NavigationConfig{
			Exclude: []string{"/drafts/**"},
		},
		Theme: ThemeConfig{
			Stylesheets: []string{"/css/site.css"},
		},
	}
}

// Init writes the example configuration to configPath. An existing file is
// only replaced when force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Example()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&example); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(configPath, &buf); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
