package h2d

import (
	"testing"

	"github.com/phanxgames/h2d/resources"
)

func TestNewPolygonSpriteFan(t *testing.T) {
	r := resources.NewRegion("r", nil, 64, 64, 8, 4, 16, 16)
	ps := NewPolygonSprite(r, []Vec2{{0, 0}, {16, 0}, {16, 16}, {0, 16}}, Vec2{})
	if ps == nil {
		t.Fatal("NewPolygonSprite = nil")
	}
	if ps.Len() != 4 {
		t.Errorf("Len = %d, want 4", ps.Len())
	}
	want := []uint16{0, 1, 2, 0, 2, 3}
	got := ps.Indices()
	if len(got) != len(want) {
		t.Fatalf("Indices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Indices[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPolygonSourceIsYDown(t *testing.T) {
	r := resources.NewRegion("r", nil, 64, 64, 8, 4, 16, 16)
	ps := NewPolygonSprite(r, []Vec2{{0, 0}, {16, 0}, {16, 16}}, Vec2{})
	src := ps.SourceVertices()
	// The bottom-left corner samples the bottom row of the region.
	if src[0] != (Vec2{8, 20}) {
		t.Errorf("src[0] = %v, want {8 20}", src[0])
	}
	if src[2] != (Vec2{24, 4}) {
		t.Errorf("src[2] = %v, want {24 4}", src[2])
	}
}

func TestPolygonSpriteRejectsDegenerateInput(t *testing.T) {
	r := resources.NewRegion("r", nil, 64, 64, 0, 0, 16, 16)
	if NewPolygonSprite(nil, rectPolygon(1, 1), Vec2{}) != nil {
		t.Error("nil region should give nil sprite")
	}
	if NewPolygonSprite(r, []Vec2{{0, 0}, {1, 1}}, Vec2{}) != nil {
		t.Error("two points should give nil sprite")
	}
	empty := resources.NewRegion("e", nil, 64, 64, 0, 0, 0, 16)
	if NewPolygonSprite(empty, rectPolygon(1, 1), Vec2{}) != nil {
		t.Error("zero-width region should give nil sprite")
	}
}

func TestPolygonWorldVerticesRotation(t *testing.T) {
	r := resources.NewRegion("r", nil, 64, 64, 0, 0, 16, 16)
	ps := NewPolygonSprite(r, []Vec2{{0, 0}, {2, 0}, {0, 2}}, Vec2{})
	ps.Rotation = 90
	ps.SetScale(2)
	ps.SetPosition(10, 0)

	v := ps.WorldVertices(nil)
	// (2, 0) scaled to (4, 0), rotated to (0, 4), moved by (10, 0).
	if !approxEqual(v[1].X, 10, 1e-9) || !approxEqual(v[1].Y, 4, 1e-9) {
		t.Errorf("v[1] = %v, want (10, 4)", v[1])
	}
}

func TestRefreshRebuildsOnSizeChange(t *testing.T) {
	tr := &TextureRegionData{Region: tileRegion(), IsRepeat: true, dirty: true}
	dim := &DimensionsData{Width: 100, Height: 50}
	tr.Refresh(dim)
	first := tr.Sprite()
	if first == nil {
		t.Fatal("no sprite for repeating region")
	}

	tr.Refresh(dim)
	if tr.Sprite() != first {
		t.Error("sprite rebuilt without a change")
	}

	dim.Width = 200
	tr.Refresh(dim)
	if tr.Sprite() == first {
		t.Error("sprite not rebuilt after width change")
	}

	// 200x100 at 5 units per region pixel is a centered 40x20 mesh.
	second := tr.Sprite()
	dim.Height = 100
	tr.Refresh(dim)
	if tr.Sprite() == second {
		t.Fatal("sprite not rebuilt after height change")
	}
	if got := tr.Sprite().LocalVertices()[2]; got != (Vec2{20, 10}) {
		t.Errorf("top-right corner = %v, want {20 10}", got)
	}

	tr.SetRepeat(false)
	tr.Refresh(dim)
	if tr.Sprite() != nil {
		t.Error("sprite kept after repeat turned off")
	}
}

func TestRefreshRebuildsOnPolygonChange(t *testing.T) {
	tr := &TextureRegionData{Region: tileRegion(), IsPolygon: true, dirty: true}
	dim := &DimensionsData{
		Width:   40,
		Height:  20,
		Polygon: []Vec2{{0, 0}, {40, 0}, {20, 20}},
	}
	tr.Refresh(dim)
	first := tr.Sprite()
	if first == nil {
		t.Fatal("no sprite for polygon region")
	}

	dim.Polygon[2] = Vec2{20, 10}
	tr.Refresh(dim)
	if tr.Sprite() == first {
		t.Fatal("sprite not rebuilt after vertex moved")
	}
	// The mesh is centered on (20, 10).
	if got := tr.Sprite().LocalVertices()[2]; got != (Vec2{0, 0}) {
		t.Errorf("apex = %v, want {0 0}", got)
	}

	second := tr.Sprite()
	dim.Polygon = append(dim.Polygon, Vec2{0, 10})
	tr.Refresh(dim)
	if tr.Sprite() == second || tr.Sprite().Len() != 4 {
		t.Error("sprite not rebuilt after vertex added")
	}
}
