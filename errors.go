package contentbody

import "errors"

// Sentinel errors for library operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrMeasure        = errors.New("layout measurement failed")
	ErrInvalidWidth   = errors.New("invalid measurement width")
	ErrPoolClosed     = errors.New("measurer pool closed")

	// Projection errors.
	ErrTemplateParse   = errors.New("component template parse failed")
	ErrTemplateExecute = errors.New("component template execution failed")
	ErrProjectionDepth = errors.New("slots nested too deeply")
)
