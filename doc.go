// Package contentbody post-processes sanitized post and comment HTML for
// display.
//
// # Quick Start
//
// Create a body, hand it its inputs, and read back the rendered state:
//
//	body := contentbody.New(contentbody.WithLogger(logger))
//	body.Update(ctx, contentbody.Input{
//	    HTML: `<p>AI safety is <a href="/posts/1">important</a>.</p>`,
//	    ReplacedSubstrings: []contentbody.ReplacementSpec{
//	        {SearchString: "AI safety", Component: "Highlight"},
//	    },
//	})
//	r := body.Rendered()
//
// r.Markup is the mutated tree. Every enriched span of it was swapped for a
// neutral placeholder, and r.Slots pairs each placeholder with the value a
// rendering boundary mounts there. Projector is a reference boundary that
// renders slot values through html/template.
//
// # Rewrite Pipeline
//
// Each build runs these steps in order over a fresh tree:
//
//  1. Optional rel="nofollow" on every link
//  2. Substring highlights, longest search string first
//  3. Glossary terms, every occurrence
//  4. Call-to-action buttons (href promotion, click hooks)
//  5. Overflowing blocks (only with a Measurer)
//  6. Footnote collapsing
//  7. Hover-preview links
//  8. Prediction widgets and poll embeds
//  9. Id insertions
//  10. Internal id exposure
//
// A failing step is logged and skipped. The content is never withheld
// because enrichment failed; Body.Err reports what went wrong.
//
// # Rebuilds
//
// Update rebuilds only when the markup or the highlight or glossary specs
// change (deep equality). Other inputs, such as the class name, update in
// place and leave the tree and its slots alone.
//
// # Measurement
//
// Overflow detection needs a real layout. RodMeasurer lays the content out in
// headless Chrome; MeasurerPool shares measurers between concurrent builds:
//
//	pool := contentbody.NewMeasurerPool(contentbody.ResolvePoolSize(0), 720)
//	defer pool.Close()
//
//	m, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(m)
//	body := contentbody.New(contentbody.WithMeasurer(m))
//
// Without a measurer the overflow step is skipped.
package contentbody
