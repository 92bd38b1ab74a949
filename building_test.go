package citygrid

import (
	"image"
	"testing"
)

func TestAddBuildingTruncatesAtGap(t *testing.T) {
	c := mustMap(t, 20, 20)

	b := c.AddBuilding(0, []image.Point{{14, 14}, {16, 14}}, "", 8)
	if b == nil {
		t.Fatal("AddBuilding returned nil")
	}
	if len(b.Tiles) != 1 || b.Tiles[0] != image.Pt(14, 14) {
		t.Errorf("tiles = %v, want [(14,14)]", b.Tiles)
	}
	if c.IsBuilding(16, 14) {
		t.Error("(16,14) should not be built on")
	}
}

func TestAddBuildingStopsAtFirstReject(t *testing.T) {
	c := mustMap(t, 10, 10)
	c.AddRoadSegment(image.Pt(0, 4), image.Pt(9, 4), 1, 1, nil)

	b := c.AddBuilding(0, []image.Point{{1, 2}, {1, 3}, {1, 4}, {2, 3}}, "shop", 4)
	if len(b.Tiles) != 2 {
		t.Errorf("tiles = %v, want 2 tiles", b.Tiles)
	}
	if c.IsBuilding(2, 3) {
		t.Error("tiles after the road tile should be dropped")
	}

	if b := c.AddBuilding(0, []image.Point{{5, 4}}, "", 4); b != nil {
		t.Error("a building on a road tile should be rejected")
	}
	if b := c.AddBuilding(0, []image.Point{{1, 2}}, "", 4); b != nil {
		t.Error("a building on a built tile should be rejected")
	}
	if b := c.AddBuilding(0, []image.Point{{-1, 2}}, "", 4); b != nil {
		t.Error("an out of bounds building should be rejected")
	}
}

func TestAddBuildingIDs(t *testing.T) {
	c := mustMap(t, 10, 10)

	a := c.AddBuilding(0, []image.Point{{0, 0}}, "", 1)
	b := c.AddBuilding(7, []image.Point{{2, 0}}, "", 1)
	d := c.AddBuilding(0, []image.Point{{4, 0}}, "", 1)

	if a.ID != 1 || b.ID != 7 || d.ID != 8 {
		t.Errorf("ids = %d %d %d, want 1 7 8", a.ID, b.ID, d.ID)
	}
	if len(c.Buildings()) != 3 {
		t.Errorf("Buildings() = %d, want 3", len(c.Buildings()))
	}
}

func TestRoadCutsBackBuildings(t *testing.T) {
	c := mustMap(t, 10, 10)
	kept := c.AddBuilding(0, []image.Point{{3, 3}, {4, 3}, {5, 3}, {5, 4}}, "", 8)
	c.AddBuilding(0, []image.Point{{4, 6}, {5, 6}}, "", 8)

	c.AddRoadSegment(image.Pt(4, 0), image.Pt(4, 9), 1, 1, nil)
	c.Finalize()

	if len(kept.Tiles) != 1 || kept.Tiles[0] != image.Pt(3, 3) {
		t.Errorf("first building tiles = %v, want [(3,3)]", kept.Tiles)
	}
	if len(c.Buildings()) != 1 {
		t.Fatalf("buildings = %d, want 1 (second one fully under the road)", len(c.Buildings()))
	}
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if c.IsRoad(x, y) && c.IsBuilding(x, y) {
				t.Errorf("tile (%d,%d) is both road & building", x, y)
			}
		}
	}
	if c.IsBuilding(5, 3) || c.IsBuilding(5, 6) {
		t.Error("tiles after the cut should no longer be built on")
	}

	again, err := FromSpec(c.ExportSpec())
	if err != nil {
		t.Fatalf("FromSpec error: %v", err)
	}
	if len(again.Buildings()) != 1 || len(again.Buildings()[0].Tiles) != 1 {
		t.Errorf("rebuilt buildings = %+v, want one single tile building", again.Buildings())
	}
}
