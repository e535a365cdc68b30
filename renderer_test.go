package h2d

import (
	"testing"

	"github.com/phanxgames/h2d/resources"
)

type drawn struct {
	name  string
	alpha float64
}

// newTestScene builds a root composite with "bg" and "fg" layers and returns
// a renderer drawing it through a recording drawable.
func newTestScene(t *testing.T) (*World, *Renderer, Entity, *[]drawn) {
	t.Helper()
	w, ci, _ := newTestWorld(t)
	root := w.Create(MainItem, Transform, Dimensions, Tint, ZIndex, Node, LayerMap)
	MainItem.SetValue(w.Entry(root), MainItemData{Name: "root", Visible: true, Type: EntityComposite})
	LayerMap.SetValue(w.Entry(root), LayerMapData{Layers: []resources.LayerVO{
		{Name: "bg", Visible: true},
		{Name: "fg", Visible: true},
		{Name: "hidden", Visible: false},
	}})

	var out []drawn
	r := NewRenderer(w, ci, nil, nil, nil)
	r.SetDrawable(EntityImage, DrawableFunc(func(b Batch, e Entity, parentAlpha float64) {
		out = append(out, drawn{MainItem.Get(w.Entry(e)).Name, parentAlpha})
	}))
	r.SetRoot(root)
	return w, r, root, &out
}

func addLayered(w *World, parent Entity, name, layer string, z int) Entity {
	e := newItem(w, name)
	ZIndex.SetValue(w.Entry(e), ZIndexData{LayerName: layer, ZIndex: z})
	AddChild(w, parent, e)
	return e
}

func drawnNames(d []drawn) []string {
	out := make([]string, len(d))
	for i, x := range d {
		out[i] = x.name
	}
	return out
}

func TestDrawPassOrder(t *testing.T) {
	w, r, root, out := newTestScene(t)
	addLayered(w, root, "a", "fg", 0)
	addLayered(w, root, "b", "bg", 5)
	addLayered(w, root, "c", "bg", 1)
	addLayered(w, root, "d", "bg", 1)
	w.Flush()

	r.DrawPass(newRecordingBatch(), LayerScreen, identityTransform)
	assertLog(t, drawnNames(*out), "c", "d", "b", "a")
}

func TestDrawPassSkips(t *testing.T) {
	w, r, root, out := newTestScene(t)
	addLayered(w, root, "shown", "bg", 0)
	hidden := addLayered(w, root, "hidden", "bg", 0)
	MainItem.Get(w.Entry(hidden)).Visible = false
	culled := addLayered(w, root, "culled", "bg", 0)
	MainItem.Get(w.Entry(culled)).Culled = true
	addLayered(w, root, "in-hidden-layer", "hidden", 0)
	overlay := addLayered(w, root, "overlay", "fg", 0)
	setComponent(w.Entry(overlay), Shader, ShaderData{RenderingLayer: LayerOverlay})
	w.Flush()

	b := newRecordingBatch()
	r.DrawPass(b, LayerScreen, identityTransform)
	assertLog(t, drawnNames(*out), "shown")

	*out = nil
	r.DrawPass(b, LayerOverlay, identityTransform)
	assertLog(t, drawnNames(*out), "overlay")
}

func TestDrawPassParentAlpha(t *testing.T) {
	w, r, root, out := newTestScene(t)
	group := w.Create(MainItem, Transform, Dimensions, Tint, ZIndex, Node)
	MainItem.SetValue(w.Entry(group), MainItemData{Name: "group", Visible: true, Type: EntityComposite})
	Tint.SetValue(w.Entry(group), TintData{Color: Color{1, 1, 1, 0.5}})
	ZIndex.SetValue(w.Entry(group), ZIndexData{LayerName: "bg"})
	AddChild(w, root, group)
	AddChild(w, group, newItem(w, "leaf"))
	w.Flush()

	r.DrawPass(newRecordingBatch(), LayerScreen, identityTransform)
	if len(*out) != 1 {
		t.Fatalf("drawn = %v, want one item", *out)
	}
	if got := (*out)[0].alpha; got != 0.5 {
		t.Errorf("parent alpha = %v, want 0.5", got)
	}
}

func TestDrawPassRestoresTransform(t *testing.T) {
	w, r, root, _ := newTestScene(t)
	e := addLayered(w, root, "moved", "bg", 0)
	SetPosition(w, e, 4, 4)
	w.Flush()

	b := newRecordingBatch()
	saved := [6]float64{2, 0, 0, 2, 1, 1}
	b.SetTransform(saved)
	r.DrawPass(b, LayerScreen, identityTransform)
	if b.Transform() != saved {
		t.Errorf("transform = %v, want %v", b.Transform(), saved)
	}
}

func TestRemovedEntityDropsShaderCache(t *testing.T) {
	w, r, root, _ := newTestScene(t)
	e := addLayered(w, root, "fx", "bg", 0)
	setComponent(w.Entry(e), Shader, ShaderData{ShaderName: "missing"})
	w.Flush()
	r.DrawPass(newRecordingBatch(), LayerScreen, identityTransform)
	if got := r.SpecialEntities(); got != 1 {
		t.Fatalf("special = %d, want 1", got)
	}

	c := NewLifecycleCoordinator(r.index, nil, nil, r, nil)
	w.AddHooks(c)
	w.Delete(e)
	w.Flush()
	if got := r.SpecialEntities(); got != 0 {
		t.Errorf("special = %d, want 0", got)
	}
}
