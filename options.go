package contentbody

import (
	"net/url"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Option configures a Body.
type Option func(*Body)

// bodyConfig holds internal configuration for Body.
type bodyConfig struct {
	logger            *zap.Logger
	measurer          Measurer
	collapseFootnotes bool
	validateURL       func(string) string
	excludeLink       func(string) bool
}

func defaultBodyConfig() bodyConfig {
	return bodyConfig{
		logger:            zap.NewNop(),
		collapseFootnotes: true,
		validateURL:       ValidateURL,
		excludeLink:       ExcludeFromPreview,
	}
}

// WithLogger sets the logger that receives rewrite failures.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("contentbody: WithLogger logger must not be nil")
	}
	return func(b *Body) {
		b.cfg.logger = l
	}
}

// WithMeasurer enables overflow detection. The body does not own m and never
// closes it.
func WithMeasurer(m Measurer) Option {
	return func(b *Body) {
		b.cfg.measurer = m
	}
}

// WithCollapsedFootnotes toggles footnote collapsing (on by default).
func WithCollapsedFootnotes(enabled bool) Option {
	return func(b *Body) {
		b.cfg.collapseFootnotes = enabled
	}
}

// WithURLValidator replaces ValidateURL for call-to-action targets.
func WithURLValidator(fn func(string) string) Option {
	if fn == nil {
		panic("contentbody: WithURLValidator function must not be nil")
	}
	return func(b *Body) {
		b.cfg.validateURL = fn
	}
}

// WithLinkExcluder replaces ExcludeFromPreview.
func WithLinkExcluder(fn func(string) bool) Option {
	if fn == nil {
		panic("contentbody: WithLinkExcluder function must not be nil")
	}
	return func(b *Body) {
		b.cfg.excludeLink = fn
	}
}

// ValidateURL returns raw if it is a relative URL or uses http, https or
// mailto, and "" otherwise.
func ValidateURL(raw string) string {
	return validateScheme(raw, defaultSchemes)
}

var defaultSchemes = []string{"http", "https", "mailto"}

// AllowSchemes returns a URL validator accepting relative URLs and the given
// schemes, compared case-insensitively. It is meant for WithURLValidator.
func AllowSchemes(schemes ...string) func(string) string {
	allowed := make([]string, len(schemes))
	for i, s := range schemes {
		allowed[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return func(raw string) string {
		return validateScheme(raw, allowed)
	}
}

func validateScheme(raw string, allowed []string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if u.Scheme == "" || slices.Contains(allowed, strings.ToLower(u.Scheme)) {
		return trimmed
	}
	return ""
}

// ExcludeFromPreview reports links that should stay plain: in-page anchors
// such as footnote references, and mail links.
func ExcludeFromPreview(href string) bool {
	return strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "mailto:")
}
