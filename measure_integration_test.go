//go:build integration

package contentbody

import (
	"context"
	"testing"
	"time"
)

func TestRodMeasurer_Measure(t *testing.T) {
	m, err := NewRodMeasurer(400)
	if err != nil {
		t.Fatalf("NewRodMeasurer() error = %v", err)
	}
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	layout, err := m.Measure(ctx, `<p>short</p><pre>`+
		`a_line_far_too_long_to_fit_in_four_hundred_pixels_of_column_width_without_wrapping</pre>`)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	if layout.ContainerWidth != 400 {
		t.Errorf("ContainerWidth = %v, want 400", layout.ContainerWidth)
	}
	if len(layout.BlockWidths) != 2 {
		t.Fatalf("BlockWidths = %v, want 2 entries", layout.BlockWidths)
	}
	if layout.BlockWidths[0] > 400 {
		t.Errorf("paragraph width = %v, want <= 400", layout.BlockWidths[0])
	}
	if layout.BlockWidths[1] <= 401 {
		t.Errorf("pre width = %v, want overflow past 401", layout.BlockWidths[1])
	}
}

func TestBody_OverflowWithBrowser(t *testing.T) {
	pool := NewMeasurerPool(1, 400)
	defer pool.Close()

	m, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer pool.Release(m)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body := New(WithMeasurer(m))
	body.Update(ctx, Input{HTML: `<p>fits</p><pre>` +
		`a_line_far_too_long_to_fit_in_four_hundred_pixels_of_column_width_without_wrapping</pre>`})

	if err := body.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	slots := body.Rendered().Slots
	if len(slots) != 1 || slots[0].Value.Component != "HorizScrollBlock" {
		t.Errorf("slots = %+v, want one HorizScrollBlock", slots)
	}
}
