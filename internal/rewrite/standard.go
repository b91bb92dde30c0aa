package rewrite

import "go.uber.org/zap"

// Config selects what the standard pipeline does.
type Config struct {
	Highlights []Substitution
	Glossary   []Substitution
	Insertions map[string]Value

	Nofollow          bool
	CollapseFootnotes bool
	NoPrefetch        bool

	ValidateURL func(string) string
	ExcludeLink func(string) bool

	// Measurer enables overflow detection; nil skips it.
	Measurer Measurer

	Description string
	Logger      *zap.Logger
}

// StandardPasses returns the passes in the order they must run.
//
// Substring highlighting comes before everything that matches elements as a
// unit: it can split a link in two, and the link pass must see the result.
func StandardPasses(cfg Config) []Pass {
	var passes []Pass
	if cfg.Nofollow {
		passes = append(passes, NofollowPass{})
	}
	if len(cfg.Highlights) > 0 {
		passes = append(passes, &SubstringPass{
			Label:         "highlights",
			Substitutions: cfg.Highlights,
			Description:   cfg.Description,
			Logger:        cfg.Logger,
		})
	}
	if len(cfg.Glossary) > 0 {
		passes = append(passes, &SubstringPass{
			Label:         "glossary",
			Substitutions: cfg.Glossary,
			ForceMatchAll: true,
			Description:   cfg.Description,
			Logger:        cfg.Logger,
		})
	}
	return append(passes,
		&CTAPass{ValidateURL: cfg.ValidateURL},
		&OverflowPass{Measurer: cfg.Measurer},
		&FootnotePass{Enabled: cfg.CollapseFootnotes},
		&LinkPass{Exclude: cfg.ExcludeLink, NoPrefetch: cfg.NoPrefetch, Description: cfg.Description},
		ElicitPass{},
		StrawPollPass{},
		&InsertionPass{Insertions: cfg.Insertions},
		InternalIDPass{},
	)
}
