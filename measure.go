package contentbody

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-contentbody/internal/assets"
	"github.com/alnah/go-contentbody/internal/fileutil"
	"github.com/alnah/go-contentbody/internal/hints"
	"github.com/alnah/go-contentbody/internal/process"
)

// Compile-time interface check.
var _ Measurer = (*RodMeasurer)(nil)

// Measurement defaults.
const (
	// DefaultWidth is the content column width in CSS pixels.
	DefaultWidth = 720

	defaultMeasureTimeout = 30 * time.Second

	// measureRootID is the container the markup is laid out in.
	measureRootID = "contentbody-root"
)

// measureScript reads the container's client width and the scroll width of
// each element child, the same elements the overflow step walks.
const measureScript = `() => {
	const root = document.getElementById("` + measureRootID + `");
	return {
		containerWidth: root.clientWidth,
		blockWidths: Array.from(root.children, c => c.scrollWidth),
	};
}`

// RodMeasurer lays content out in headless Chrome. The browser starts on the
// first measurement; rod downloads Chromium on first run if none is found.
// Measurements are serialized, so concurrent builds should take measurers
// from a MeasurerPool.
type RodMeasurer struct {
	width   int
	timeout time.Duration
	css     string

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodMeasurer creates a measurer for a column of width CSS pixels, styled
// with the built-in content stylesheet.
func NewRodMeasurer(width int) (*RodMeasurer, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	css, err := assets.NewEmbeddedLoader().LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, err
	}
	return &RodMeasurer{width: width, timeout: defaultMeasureTimeout, css: css}, nil
}

// WithStyle replaces the stylesheet the content is laid out with.
func (m *RodMeasurer) WithStyle(css string) *RodMeasurer {
	m.css = css
	return m
}

// Measure implements Measurer.
func (m *RodMeasurer) Measure(ctx context.Context, markup string) (Layout, error) {
	if err := ctx.Err(); err != nil {
		return Layout{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureBrowser(); err != nil {
		return Layout{}, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(m.page(markup), "html")
	if err != nil {
		return Layout{}, err
	}
	defer cleanup()

	page, err := m.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return Layout{}, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	res, err := page.Eval(measureScript)
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrMeasure, err)
	}

	layout := Layout{ContainerWidth: res.Value.Get("containerWidth").Num()}
	for _, w := range res.Value.Get("blockWidths").Arr() {
		layout.BlockWidths = append(layout.BlockWidths, w.Num())
	}
	return layout, nil
}

// page wraps markup in a document that reproduces the content column.
func (m *RodMeasurer) page(markup string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><style>")
	b.WriteString(m.css)
	b.WriteString("</style></head><body><div id=\"")
	b.WriteString(measureRootID)
	b.WriteString("\" style=\"width: ")
	b.WriteString(strconv.Itoa(m.width))
	b.WriteString("px\">")
	b.WriteString(markup)
	b.WriteString("</div></body></html>")
	return b.String()
}

// ensureBrowser lazily launches and connects to the browser.
func (m *RodMeasurer) ensureBrowser() error {
	if m.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		m.kill(l)
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}
	m.launcher = l
	m.browser = browser
	return nil
}

// Close releases browser resources. The measurer can be used again after.
func (m *RodMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.kill(m.launcher)
		m.launcher = nil
	}
	return err
}

// kill takes down the browser's whole process tree.
func (m *RodMeasurer) kill(l *launcher.Launcher) {
	process.KillProcessGroup(l.PID())
	l.Kill()
}
