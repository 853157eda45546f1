package config

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/language"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks the defaulted configuration and returns the first problem found.
func Validate(cfg *Config) error {
	validator := &configurationValidator{config: cfg}
	return validator.validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	for _, check := range []func() error{
		cv.validateSite,
		cv.validatePaths,
		cv.validateGlobs,
		cv.validateBuild,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	site := cv.config.Site
	if site.Origin == "" {
		return invalid("site.origin", "is required")
	}
	u, err := url.Parse(site.Origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("site.origin", fmt.Sprintf("must be an absolute http(s) URL, got %q", site.Origin))
	}
	if u.Path != "" && u.Path != "/" {
		return invalid("site.origin", "must not contain a path")
	}
	if site.RepositoryBlobURL != "" {
		if bu, err := url.Parse(site.RepositoryBlobURL); err != nil || bu.Host == "" {
			return invalid("site.repository_blob_url", fmt.Sprintf("must be an absolute URL, got %q", site.RepositoryBlobURL))
		}
	}
	if site.Color != "" && !hexColor.MatchString(site.Color) {
		return invalid("site.color", fmt.Sprintf("must be a hex color, got %q", site.Color))
	}
	if _, err := language.Parse(site.Language); err != nil {
		return invalid("site.language", fmt.Sprintf("invalid BCP 47 tag %q", site.Language))
	}
	return nil
}

func (cv *configurationValidator) validatePaths() error {
	if cv.config.Content.Root == "" {
		return invalid("content.root", "is required")
	}
	if cv.config.Output.Directory == "" {
		return invalid("output.directory", "is required")
	}
	return nil
}

func (cv *configurationValidator) validateGlobs() error {
	for _, p := range cv.config.Content.Ignore {
		if !doublestar.ValidatePattern(p) {
			return invalid("content.ignore", fmt.Sprintf("invalid glob %q", p))
		}
	}
	for _, p := range cv.config.Navigation.Exclude {
		if !doublestar.ValidatePattern(p) {
			return invalid("navigation.exclude", fmt.Sprintf("invalid glob %q", p))
		}
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	if cv.config.Build.LoadConcurrency < 1 {
		return invalid("build.load_concurrency", "must be at least 1")
	}
	if cv.config.Build.RenderConcurrency < 1 {
		return invalid("build.render_concurrency", "must be at least 1")
	}
	return nil
}

func invalid(field, reason string) error {
	return ferrors.ConfigError(field + " " + reason).WithContext("field", field).Build()
}
