package h2d

import (
	"errors"
	"slices"
	"testing"

	"github.com/phanxgames/h2d/lighting"
	"github.com/phanxgames/h2d/resources"
)

func level1() *resources.SceneVO {
	return &resources.SceneVO{
		Name: "Level1",
		PhysicsProperties: resources.PhysicsPropertiesVO{
			Enabled: true, GravityY: -10,
		},
		Composite: &resources.ItemVO{
			Type: resources.ItemComposite,
			Children: []*resources.ItemVO{
				{
					Type: resources.ItemImage, Name: "ground", ImageName: "tile",
					Width: 10, Height: 1,
					Physics: &resources.PhysicsBodyVO{BodyType: "static"},
				},
				{
					Type: resources.ItemImage, Name: "enemy", ImageName: "tile",
					Tags: []string{"enemy"}, X: 3, Y: 4, Width: 1, Height: 1,
					Physics: &resources.PhysicsBodyVO{BodyType: "dynamic", Density: 1},
				},
				{Type: resources.ItemLight, Name: "lamp", X: 2, Y: 2},
				{
					Type: resources.ItemComposite, Name: "group",
					Children: []*resources.ItemVO{
						{Type: resources.ItemImage, Name: "inner", ImageName: "tile", Tags: []string{"enemy"}},
					},
				},
			},
		},
	}
}

func newTestManager() *resources.Manager {
	rm := resources.NewManager("", nil)
	rm.SetProject(&resources.ProjectInfoVO{
		PixelToWorld:       32,
		OriginalResolution: resources.ResolutionEntryVO{Name: "orig", Width: 640, Height: 320},
		LibraryItems: map[string]*resources.ItemVO{
			"crate": {Type: resources.ItemComposite, Name: "crate", Children: []*resources.ItemVO{
				{Type: resources.ItemImage, Name: "lid", ImageName: "tile"},
			}},
		},
		LibraryActions: map[string]*resources.ActionVO{
			"hop": {Type: "moveBy", Y: 1, Duration: 0},
		},
	})
	rm.AddScene("Level1", level1())
	rm.AddRegion(resources.NewRegion("tile", nil, 128, 64, 32, 16, 64, 32))
	return rm
}

func newTestLoader(t *testing.T) *SceneLoader {
	t.Helper()
	l := NewSceneLoader(NewSceneConfiguration(newTestManager()))
	l.CreateEngine()
	t.Cleanup(l.Dispose)
	return l
}

func TestLoadSceneWithoutEngine(t *testing.T) {
	l := NewSceneLoader(NewSceneConfiguration(newTestManager()))
	if _, err := l.LoadScene("Level1", nil, false); !errors.Is(err, ErrEngineNotInitialized) {
		t.Errorf("err = %v, want ErrEngineNotInitialized", err)
	}
}

func TestLoadSceneUnknown(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Nowhere", nil, false); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("err = %v, want ErrSceneNotFound", err)
	}
	if l.Root() != NoEntity {
		t.Error("root set after a failed load")
	}
}

func TestLoadSceneBuildsTree(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadSceneDefault("Level1", false); err != nil {
		t.Fatal(err)
	}
	w := l.World()

	// root, ground, enemy, lamp, group, inner
	if got := w.Len(); got != 6 {
		t.Fatalf("entities = %d, want 6", got)
	}
	root := l.Root()
	if st := w.State(root); st != StateActive {
		t.Errorf("root state = %v, want active", st)
	}
	children := Children(w, root)
	if len(children) != 4 {
		t.Fatalf("root children = %d, want 4", len(children))
	}
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = MainItem.Get(w.Entry(c)).Name
	}
	assertLog(t, names, "ground", "enemy", "lamp", "group")

	if got := l.Physics().BodyCount(); got != 2 {
		t.Errorf("bodies = %d, want 2", got)
	}
	if got := len(l.Lights().Lights()); got != 1 {
		t.Errorf("lights = %d, want 1", got)
	}
	if got := l.PixelsPerWU(); got != 32 {
		t.Errorf("PixelsPerWU = %v, want 32", got)
	}

	// An image without authored size takes the region size in world units.
	inner := Children(w, children[3])[0]
	dim := Dimensions.Get(w.Entry(inner))
	if dim.Width != 2 || dim.Height != 1 {
		t.Errorf("inner size = %vx%v, want 2x1", dim.Width, dim.Height)
	}

	vp := ViewPort.Get(w.Entry(root)).Viewport
	if vp.WorldWidth != 20 || vp.WorldHeight != 10 {
		t.Errorf("viewport = %vx%v, want 20x10", vp.WorldWidth, vp.WorldHeight)
	}
}

// treeShape returns the depth of every node under root in walk order.
func treeShape(w *World, root Entity) []int {
	var depths []int
	Walk(w, root, func(e Entity, depth int) bool {
		depths = append(depths, depth)
		return true
	})
	return depths
}

func TestLoadSceneInitsTaggedScriptOnce(t *testing.T) {
	rm := newTestManager()
	rm.AddScene("Patrol", &resources.SceneVO{
		Name: "Patrol",
		Composite: &resources.ItemVO{
			Type: resources.ItemComposite,
			Children: []*resources.ItemVO{
				{Type: resources.ItemImage, Name: "hero", ImageName: "tile"},
				{
					Type: resources.ItemImage, Name: "guard", ImageName: "tile",
					Tags: []string{"enemy"}, Scripts: []string{"patrol"},
				},
			},
		},
	})
	var log []string
	cfg := NewSceneConfiguration(rm)
	cfg.Scripts = ScriptProviderFunc(func(name string) (Script, error) {
		return &recordingScript{name: name, log: &log}, nil
	})
	l := NewSceneLoader(cfg)
	l.CreateEngine()
	t.Cleanup(l.Dispose)

	if _, err := l.LoadScene("Patrol", nil, false); err != nil {
		t.Fatal(err)
	}
	l.Update(1.0 / 60)
	l.Update(1.0 / 60)

	enemies := l.EntitiesByTag("enemy")
	if len(enemies) != 1 {
		t.Fatalf("enemies = %d, want 1", len(enemies))
	}
	if got := MainItem.Get(l.World().Entry(enemies[0])).Name; got != "guard" {
		t.Errorf("enemy = %q, want guard", got)
	}
	assertLog(t, log, "init:patrol")
}

func TestReloadSceneReleasesEverything(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Level1", nil, false); err != nil {
		t.Fatal(err)
	}
	first := l.Root()
	shape := treeShape(l.World(), first)
	n := l.World().Len()
	var lights []*lighting.Light
	lights = append(lights, l.Lights().Lights()...)

	if _, err := l.LoadScene("Level1", nil, false); err != nil {
		t.Fatal(err)
	}
	if l.World().Valid(first) {
		t.Error("previous root still valid")
	}
	if got := l.World().Len(); got != n {
		t.Errorf("entities after reload = %d, want %d", got, n)
	}
	if got := treeShape(l.World(), l.Root()); !slices.Equal(got, shape) {
		t.Errorf("tree depths after reload = %v, want %v", got, shape)
	}
	if got := l.Physics().BodyCount(); got != 2 {
		t.Errorf("bodies after reload = %d, want 2", got)
	}
	for _, old := range lights {
		if !old.Removed() {
			t.Error("light of the previous scene not removed")
		}
	}
	if got := len(l.Lights().Lights()); got != 1 {
		t.Errorf("lights after reload = %d, want 1", got)
	}
}

func TestDeleteTaggedEnemy(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Level1", nil, false); err != nil {
		t.Fatal(err)
	}
	w := l.World()
	enemies := l.EntitiesByTag("enemy")
	if len(enemies) != 2 {
		t.Fatalf("tagged = %d, want 2", len(enemies))
	}
	enemy := enemies[0]
	body := PhysicsBody.Get(w.Entry(enemy)).Body

	var removed []string
	OnEntityRemoved(w, func(ev EntityRemovedEvent) {
		removed = append(removed, ev.Name)
	})

	w.Delete(enemy)
	if got := len(l.EntitiesByTag("enemy")); got != 1 {
		t.Errorf("tagged after delete = %d, want 1", got)
	}
	l.Update(1.0 / 60)

	if w.Valid(enemy) {
		t.Error("enemy still valid after update")
	}
	if l.Physics().HasBody(body) {
		t.Error("enemy body still in the physics world")
	}
	if got := len(Children(w, l.Root())); got != 3 {
		t.Errorf("root children = %d, want 3", got)
	}
	assertLog(t, removed, "enemy")
}

func TestLoadSceneUnknownItemType(t *testing.T) {
	rm := newTestManager()
	rm.AddScene("Broken", &resources.SceneVO{Composite: &resources.ItemVO{
		Children: []*resources.ItemVO{
			{Type: resources.ItemImage, Name: "ok"},
			{Type: "spine", Name: "bad"},
		},
	}})
	l := NewSceneLoader(NewSceneConfiguration(rm))
	l.CreateEngine()
	defer l.Dispose()

	if _, err := l.LoadScene("Broken", nil, false); !errors.Is(err, ErrUnknownItemType) {
		t.Fatalf("err = %v, want ErrUnknownItemType", err)
	}
	if got := l.World().Len(); got != 0 {
		t.Errorf("entities after failed load = %d, want 0", got)
	}
}

func TestExternalItemType(t *testing.T) {
	rm := newTestManager()
	rm.AddScene("Ext", &resources.SceneVO{Composite: &resources.ItemVO{
		Children: []*resources.ItemVO{{Type: "marker", Name: "m"}},
	}})
	cfg := NewSceneConfiguration(rm)
	var initialized []string
	cfg.AddExternalItemType(ExternalItemType{
		TypeID:   EntityType(100),
		TypeName: "marker",
		Initialize: func(w *World, e Entity, vo *resources.ItemVO) error {
			initialized = append(initialized, vo.Name)
			return nil
		},
	})
	l := NewSceneLoader(cfg)
	l.CreateEngine()
	defer l.Dispose()

	if _, err := l.LoadScene("Ext", nil, false); err != nil {
		t.Fatal(err)
	}
	assertLog(t, initialized, "m")
	child := Children(l.World(), l.Root())[0]
	if typ := MainItem.Get(l.World().Entry(child)).Type; typ != EntityType(100) {
		t.Errorf("Type = %v, want 100", typ)
	}
}

func TestSetAmbientInfo(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Level1", nil, false); err != nil {
		t.Fatal(err)
	}
	sim := l.Lights()
	vo := &resources.SceneVO{LightsProperties: resources.LightsPropertiesVO{
		Enabled:           true,
		LightType:         resources.LightTypeDirectional,
		AmbientColor:      []float64{0.2, 0.2, 0.3, 1},
		DirectionalColor:  []float64{1, 1, 1, 1},
		DirectionalRays:   8,
		DirectionalDegree: -45,
		BlurNum:           2,
	}}

	l.SetAmbientInfo(vo, false)
	if !l.Renderer().UseLights() {
		t.Error("lights not enabled")
	}
	if got := sim.AmbientLight(); got != (lighting.Color{R: 0.2, G: 0.2, B: 0.3, A: 1}) {
		t.Errorf("ambient = %+v", got)
	}
	if got := sim.BlurNum(); got != 2 {
		t.Errorf("BlurNum = %d, want 2", got)
	}
	base := len(sim.Lights())

	// Applying again replaces the directional light instead of stacking.
	l.SetAmbientInfo(vo, false)
	if got := len(sim.Lights()); got != base {
		t.Errorf("lights = %d, want %d", got, base)
	}

	bright := *vo
	bright.LightsProperties.LightType = resources.LightTypeBright
	l.SetAmbientInfo(&bright, false)
	if sim.Diffuse() {
		t.Error("bright scene left diffuse on")
	}
	if got := len(sim.Lights()); got != base-1 {
		t.Errorf("lights = %d, want %d", got, base-1)
	}

	l.SetAmbientInfo(&bright, true)
	if !sim.Diffuse() {
		t.Error("override did not restore diffuse")
	}
	if got := sim.AmbientLight(); got != (lighting.Color{R: 1, G: 1, B: 1, A: 1}) {
		t.Errorf("override ambient = %+v, want white", got)
	}
}

func TestLoadFromLibrary(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Level1", nil, false); err != nil {
		t.Fatal(err)
	}
	w := l.World()
	e, err := l.LoadFromLibrary("crate")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Parent(w, e); ok {
		t.Error("library item has a parent")
	}
	if got := len(Children(w, e)); got != 1 {
		t.Errorf("children = %d, want 1", got)
	}
	w.Flush()
	if st := w.State(e); st != StateActive {
		t.Errorf("state = %v, want active", st)
	}

	if _, err := l.LoadFromLibrary("barrel"); !errors.Is(err, ErrLibraryItemNotFound) {
		t.Errorf("err = %v, want ErrLibraryItemNotFound", err)
	}
}

func TestAddActionByTagName(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Level1", nil, false); err != nil {
		t.Fatal(err)
	}
	l.Physics().SetEnabled(false)
	w := l.World()
	enemies := l.EntitiesByTag("enemy")

	if err := l.AddActionByTagNameFromLibrary("enemy", "hop"); err != nil {
		t.Fatal(err)
	}
	if err := l.AddActionByTagNameFromLibrary("enemy", "nope"); !errors.Is(err, ErrLibraryItemNotFound) {
		t.Errorf("err = %v, want ErrLibraryItemNotFound", err)
	}
	l.Update(0)

	want := map[Entity]float64{enemies[0]: 5, enemies[1]: 1}
	for e, y := range want {
		if got := Transform.Get(w.Entry(e)).Y; got != y {
			t.Errorf("Y = %v, want %v", got, y)
		}
	}
}

func TestDisposeTwice(t *testing.T) {
	l := newTestLoader(t)
	l.Dispose()
	l.Dispose()
	if !l.Physics().Disposed() || !l.Lights().Disposed() {
		t.Error("collaborators not disposed")
	}
}
