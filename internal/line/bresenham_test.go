package line

import (
	"image"
	"reflect"
	"testing"
)

func TestPointsBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b image.Point
		want []image.Point
	}{
		{
			name: "single",
			a:    image.Pt(3, 3), b: image.Pt(3, 3),
			want: []image.Point{image.Pt(3, 3)},
		},
		{
			name: "diagonal",
			a:    image.Pt(0, 0), b: image.Pt(4, 4),
			want: []image.Point{image.Pt(0, 0), image.Pt(1, 1), image.Pt(2, 2), image.Pt(3, 3), image.Pt(4, 4)},
		},
		{
			name: "horizontal reversed",
			a:    image.Pt(3, 1), b: image.Pt(0, 1),
			want: []image.Point{image.Pt(3, 1), image.Pt(2, 1), image.Pt(1, 1), image.Pt(0, 1)},
		},
		{
			name: "vertical up",
			a:    image.Pt(2, 2), b: image.Pt(2, 0),
			want: []image.Point{image.Pt(2, 2), image.Pt(2, 1), image.Pt(2, 0)},
		},
		{
			name: "anti diagonal",
			a:    image.Pt(2, 0), b: image.Pt(0, 2),
			want: []image.Point{image.Pt(2, 0), image.Pt(1, 1), image.Pt(0, 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointsBetween(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PointsBetween(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPointsBetweenConnected(t *testing.T) {
	ends := []image.Point{
		image.Pt(7, 2), image.Pt(-5, 3), image.Pt(1, -9), image.Pt(-4, -4), image.Pt(0, 11), image.Pt(12, -1),
	}
	origin := image.Pt(0, 0)

	for _, end := range ends {
		for _, pts := range [][]image.Point{PointsBetween(origin, end), PointsBetween(end, origin)} {
			if len(pts) == 0 {
				t.Fatalf("no points for %v", end)
			}
			for i := 1; i < len(pts); i++ {
				d := pts[i].Sub(pts[i-1])
				if d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 || d == image.ZP {
					t.Errorf("gap between %v and %v walking to %v", pts[i-1], pts[i], end)
				}
			}
		}

		fwd := PointsBetween(origin, end)
		if fwd[0] != origin || fwd[len(fwd)-1] != end {
			t.Errorf("PointsBetween(%v, %v) endpoints = %v,%v", origin, end, fwd[0], fwd[len(fwd)-1])
		}
	}
}

func TestPointsWithinMatchesClippedLine(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 8)
	lines := [][2]image.Point{
		{image.Pt(-5, 2), image.Pt(20, 2)},
		{image.Pt(3, -4), image.Pt(3, 30)},
		{image.Pt(-3, -3), image.Pt(12, 12)},
		{image.Pt(14, -2), image.Pt(-6, 9)},
		{image.Pt(2, 2), image.Pt(5, 6)},
		{image.Pt(-4, 0), image.Pt(-1, 5)},
	}

	for _, l := range lines {
		want := []image.Point{}
		for _, p := range PointsBetween(l[0], l[1]) {
			if p.In(bounds) {
				want = append(want, p)
			}
		}
		got := PointsWithin(l[0], l[1], bounds)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("PointsWithin(%v, %v) = %v, want %v", l[0], l[1], got, want)
		}
	}
}

func TestPointsWithinStopsPastBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)

	// walking this whole line would take far longer than the test timeout
	got := PointsWithin(image.Pt(0, 0), image.Pt(1<<40, 3), bounds)
	if len(got) != 10 {
		t.Fatalf("PointsWithin kept %d points, want 10", len(got))
	}
	for i, p := range got {
		if p != image.Pt(i, 0) {
			t.Errorf("point %d = %v, want (%d,0)", i, p, i)
		}
	}
}
