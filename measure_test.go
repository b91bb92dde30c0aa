package contentbody

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewRodMeasurer_Width(t *testing.T) {
	t.Parallel()

	for _, w := range []int{0, -10} {
		if _, err := NewRodMeasurer(w); !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("NewRodMeasurer(%d) error = %v, want ErrInvalidWidth", w, err)
		}
	}

	m, err := NewRodMeasurer(DefaultWidth)
	if err != nil {
		t.Fatalf("NewRodMeasurer() error = %v", err)
	}
	if m.css == "" {
		t.Error("NewRodMeasurer() did not load the content stylesheet")
	}
}

func TestRodMeasurer_Page(t *testing.T) {
	t.Parallel()

	m, err := NewRodMeasurer(480)
	if err != nil {
		t.Fatalf("NewRodMeasurer() error = %v", err)
	}
	page := m.WithStyle("p { margin: 0 }").page("<table><tr><td>x</td></tr></table>")

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<style>p { margin: 0 }</style>",
		`<div id="` + measureRootID + `" style="width: 480px">`,
		"<table><tr><td>x</td></tr></table></div>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page() missing %q in:\n%s", want, page)
		}
	}
	if !strings.Contains(measureScript, measureRootID) {
		t.Error("measureScript does not read the measurement root")
	}
}

func TestRodMeasurer_CanceledContext(t *testing.T) {
	t.Parallel()

	m, err := NewRodMeasurer(DefaultWidth)
	if err != nil {
		t.Fatalf("NewRodMeasurer() error = %v", err)
	}
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Fails before any browser is launched
	if _, err := m.Measure(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("Measure() error = %v, want context.Canceled", err)
	}
	if m.browser != nil {
		t.Error("Measure() launched a browser for a canceled context")
	}
}

func TestRodMeasurer_CloseUnused(t *testing.T) {
	t.Parallel()

	m, err := NewRodMeasurer(DefaultWidth)
	if err != nil {
		t.Fatalf("NewRodMeasurer() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close() on unused measurer error = %v", err)
	}
}
