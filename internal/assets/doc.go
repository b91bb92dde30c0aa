// Package assets provides the HTML component templates used to project slot
// values and the stylesheet used to lay content out for measurement.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (defaults)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css        # e.g. content.css
//	└── components/
//	    └── {Component}.html  # html/template, e.g. HoverPreviewLink.html
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
