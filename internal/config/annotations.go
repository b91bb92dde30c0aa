package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-contentbody/internal/yamlutil"
)

var (
	ErrAnnotationsNotFound = errors.New("annotations file not found")
	ErrAnnotationsParse    = errors.New("failed to parse annotations")
	ErrMissingComponent    = errors.New("component name required")
)

// Annotation limits.
const (
	MaxSearchStringLength = 1000
	MaxComponentLength    = 100
	MaxIDLength           = 200
	MaxAnnotations        = 10000 // Per list
)

// Annotations are the curated decorations of one piece of content, kept
// beside it: highlights such as inline reactions, glossary terms, and
// values inserted inside elements by id.
type Annotations struct {
	ReplacedSubstrings []Replacement        `yaml:"replacedSubstrings"`
	Glossary           []Replacement        `yaml:"glossary"`
	IDInsertions       map[string]Insertion `yaml:"idInsertions"`
}

// Replacement wraps matches of SearchString in Component.
type Replacement struct {
	SearchString        string         `yaml:"searchString"`
	Component           string         `yaml:"component"`
	Props               map[string]any `yaml:"props"`
	MatchAllOccurrences bool           `yaml:"matchAllOccurrences"`
}

// Insertion is a component prepended inside an element.
type Insertion struct {
	Component string         `yaml:"component"`
	Props     map[string]any `yaml:"props"`
}

// LoadAnnotations reads and validates an annotations file.
func LoadAnnotations(path string) (*Annotations, error) {
	f, err := os.Open(path) // #nosec G304 -- annotations path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAnnotationsNotFound, path)
		}
		return nil, fmt.Errorf("reading annotations file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var a Annotations
	if err := yamlutil.ReadStrict(f, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAnnotationsParse, path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks that every entry names a component and stays within
// limits. Blank search strings are allowed; they never match.
func (a *Annotations) Validate() error {
	if err := validateReplacements("replacedSubstrings", a.ReplacedSubstrings); err != nil {
		return err
	}
	if err := validateReplacements("glossary", a.Glossary); err != nil {
		return err
	}

	if len(a.IDInsertions) > MaxAnnotations {
		return fmt.Errorf("%w: idInsertions: %d entries (max %d)", ErrInvalidValue, len(a.IDInsertions), MaxAnnotations)
	}
	for id, ins := range a.IDInsertions {
		field := fmt.Sprintf("idInsertions[%q]", id)
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: %s: empty id", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field, id, MaxIDLength); err != nil {
			return err
		}
		if err := validateComponent(field, ins.Component); err != nil {
			return err
		}
	}
	return nil
}

func validateReplacements(list string, rs []Replacement) error {
	if len(rs) > MaxAnnotations {
		return fmt.Errorf("%w: %s: %d entries (max %d)", ErrInvalidValue, list, len(rs), MaxAnnotations)
	}
	for i, r := range rs {
		field := fmt.Sprintf("%s[%d]", list, i)
		if err := validateFieldLength(field+".searchString", r.SearchString, MaxSearchStringLength); err != nil {
			return err
		}
		if err := validateComponent(field, r.Component); err != nil {
			return err
		}
	}
	return nil
}

func validateComponent(field, component string) error {
	if strings.TrimSpace(component) == "" {
		return fmt.Errorf("%w: %s", ErrMissingComponent, field)
	}
	return validateFieldLength(field+".component", component, MaxComponentLength)
}
