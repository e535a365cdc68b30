package h2d

// Drawable draws one entity into a batch.
type Drawable interface {
	Draw(batch Batch, e Entity, parentAlpha float64)
}

// DrawableFunc adapts a function to Drawable.
type DrawableFunc func(batch Batch, e Entity, parentAlpha float64)

// Draw calls f(batch, e, parentAlpha).
func (f DrawableFunc) Draw(batch Batch, e Entity, parentAlpha float64) {
	f(batch, e, parentAlpha)
}

// TextureRegionDrawLogic draws image items. Items with a prepared polygon
// sprite are drawn as tiled polygons through the region shader; everything
// else is drawn as a single quad.
type TextureRegionDrawLogic struct {
	index *ComponentIndex
}

// NewTextureRegionDrawLogic creates the image drawable.
func NewTextureRegionDrawLogic(index *ComponentIndex) *TextureRegionDrawLogic {
	return &TextureRegionDrawLogic{index: index}
}

// Draw draws e. The batch color is restored afterwards.
func (d *TextureRegionDrawLogic) Draw(batch Batch, e Entity, parentAlpha float64) {
	tr, ok := Lookup[TextureRegionData](d.index, e, KindTextureRegion)
	if !ok {
		return
	}
	dim, _ := Lookup[DimensionsData](d.index, e, KindDimensions)
	tr.Refresh(dim)

	saved := batch.Color()
	if d.tiled(e, tr) {
		d.drawTiledPolygon(batch, e, tr, dim)
	} else {
		d.drawSprite(batch, e, tr, dim, parentAlpha)
	}
	batch.SetColor(saved)
}

// tiled reports whether e takes the tiled polygon path.
func (d *TextureRegionDrawLogic) tiled(e Entity, tr *TextureRegionData) bool {
	if tr.sprite == nil || tr.Region == nil || tr.Region.RegionWidth() == 0 {
		return false
	}
	sh, ok := Lookup[ShaderData](d.index, e, KindShader)
	return !ok || sh.RenderingLayer == LayerScreen
}

func (d *TextureRegionDrawLogic) drawSprite(batch Batch, e Entity, tr *TextureRegionData, dim *DimensionsData, parentAlpha float64) {
	tint := d.tint(e)
	t := d.transform(e)
	w, h := d.size(tr, dim)
	batch.SetColor(Color{tint.R, tint.G, tint.B, tint.A * parentAlpha})
	batch.Draw(tr.Region, t.X, t.Y, t.OriginX, t.OriginY, w, h, t.ScaleX, t.ScaleY, t.Rotation)
}

func (d *TextureRegionDrawLogic) drawTiledPolygon(batch Batch, e Entity, tr *TextureRegionData, dim *DimensionsData) {
	batch.Flush()
	tint := d.tint(e)
	t := d.transform(e)
	r := tr.Region

	ppwu := dim.Width / float64(r.RegionWidth())
	repeat := float32(0)
	if tr.IsRepeat {
		repeat = 1
	}
	batch.SetUniform(UniformIsRepeat, repeat)
	batch.SetUniform(UniformAtlasCoord, []float32{float32(r.U), float32(r.V)})
	batch.SetUniform(UniformAtlasSize, []float32{float32(r.U2 - r.U), float32(r.V2 - r.V)})

	ps := tr.sprite
	ps.Color = tint
	originX := t.OriginX * t.ScaleX / ppwu
	originY := t.OriginY * t.ScaleY / ppwu
	ps.SetOrigin(originX, originY)
	ps.SetPosition(t.X-originX+dim.Width/2, t.Y-originY+dim.Height/2)
	ps.Rotation = t.Rotation
	ps.SetScale(ppwu)
	batch.DrawPolygon(ps)
	batch.Flush()
	batch.SetUniform(UniformIsRepeat, float32(0))
}

func (d *TextureRegionDrawLogic) tint(e Entity) Color {
	if t, ok := Lookup[TintData](d.index, e, KindTint); ok {
		return t.Color
	}
	return ColorWhite
}

func (d *TextureRegionDrawLogic) transform(e Entity) TransformData {
	if t, ok := Lookup[TransformData](d.index, e, KindTransform); ok {
		return *t
	}
	return TransformData{ScaleX: 1, ScaleY: 1}
}

// size returns the drawn size, falling back to the region's pixel size when
// the item has no dimensions.
func (d *TextureRegionDrawLogic) size(tr *TextureRegionData, dim *DimensionsData) (float64, float64) {
	if dim != nil {
		return dim.Width, dim.Height
	}
	if tr.Region == nil {
		return 0, 0
	}
	return float64(tr.Region.RegionWidth()), float64(tr.Region.RegionHeight())
}
