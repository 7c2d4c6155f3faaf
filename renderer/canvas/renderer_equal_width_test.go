package canvasrenderer

import (
	"testing"

	"github.com/ByLCY/poster/layout"
)

// 一行宽度恰好等于最大宽度时不应被拆开。
func TestSegmentKeepsLineOfExactWidth(t *testing.T) {
	c := New(200, 200, Options{})
	c.SetFont("normal 12px sans-serif")

	first := "SAMPLE-A"
	limit := 0.0
	for _, r := range first {
		limit += c.MeasureText(string(r))
	}
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	lines := layout.Segment(c.MeasureText, first+first, limit)
	if got := len(lines); got != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", got, lines)
	}
	for i, line := range lines {
		if line != first {
			t.Fatalf("line %d mismatch: got=%q want=%q", i, line, first)
		}
	}
}
