package assets

// DefaultStyleName is the built-in stylesheet for measured content.
const DefaultStyleName = "content"

// Loader loads stylesheets and component templates by name.
type Loader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadComponent loads the template of a component (without .html extension).
	// Returns ErrComponentNotFound if there is none.
	LoadComponent(name string) (string, error)
}
