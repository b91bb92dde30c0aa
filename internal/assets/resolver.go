package assets

import "errors"

// Resolver combines custom and embedded loaders. A custom loader, when
// configured, is tried first; embedded assets fill in whatever it lacks.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewResolver creates a Resolver. An empty customBasePath uses embedded
// assets only; an invalid one is an error.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle loads a CSS style, custom first.
func (r *Resolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadComponent loads a component template, custom first.
func (r *Resolver) LoadComponent(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) {
		return l.LoadComponent(name)
	})
}

// HasCustomLoader returns true if a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

func (r *Resolver) loadWithFallback(loadFn func(Loader) (string, error)) (string, error) {
	if r.custom == nil {
		return loadFn(r.embedded)
	}

	content, err := loadFn(r.custom)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !IsNotFound(err) {
		return "", err
	}
	return loadFn(r.embedded)
}

// IsNotFound reports whether err means the asset does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrComponentNotFound)
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
