package citygrid

import (
	"math"
	"testing"
)

func TestSnapAngle(t *testing.T) {
	cases := []struct {
		dx, dy float64
		want   float64
	}{
		{1, 0, 0},
		{1, 1, 45},
		{0, 1, 90},
		{-1, 1, 135},
		{-1, 0, 0},
		{0, -1, 90},
		{1, -1, 135},
		{3, 1, 15},
		{10, 1, 0},
		{-1, -0.0001, 0},
		{0, 0, 0},
	}
	for _, tt := range cases {
		got := snapAngle(tt.dx, tt.dy).Degrees()
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("snapAngle(%v, %v) = %v, want %v", tt.dx, tt.dy, got, tt.want)
		}
		if got < 0 || got >= 180 {
			t.Errorf("snapAngle(%v, %v) = %v, outside [0, 180)", tt.dx, tt.dy, got)
		}
	}
}

func TestRoadOptionsRendered(t *testing.T) {
	off := false
	var nilOpts *RoadOptions
	if !nilOpts.rendered() {
		t.Error("nil options should be rendered")
	}
	if !(&RoadOptions{}).rendered() {
		t.Error("unset Rendered should be rendered")
	}
	if (&RoadOptions{Rendered: &off}).rendered() {
		t.Error("Rendered false should not be rendered")
	}
}
