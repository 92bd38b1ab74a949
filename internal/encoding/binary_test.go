package encoding

import (
	"image"
	"testing"
)

func TestPointKey(t *testing.T) {
	tests := []image.Point{
		image.Pt(0, 0),
		image.Pt(1, 0),
		image.Pt(0, 1),
		image.Pt(300, 17),
		image.Pt(65535, 65535),
	}
	for _, p := range tests {
		got := KeyPoint(PointKey(p))
		if got != p {
			t.Errorf("KeyPoint(PointKey(%v)) = %v, want %v", p, got, p)
		}
	}

	if PointKey(image.Pt(1, 2)) == PointKey(image.Pt(2, 1)) {
		t.Error("PointKey should not collide for swapped coords")
	}
}
