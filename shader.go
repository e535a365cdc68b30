package h2d

import "github.com/hajimehoshi/ebiten/v2"

// Uniform names understood by the region shader.
const (
	UniformIsRepeat   = "IsRepeat"
	UniformAtlasCoord = "AtlasCoord"
	UniformAtlasSize  = "AtlasSize"
)

// regionShaderSrc samples the atlas page. With IsRepeat set, source
// coordinates are wrapped into the region described by AtlasCoord and
// AtlasSize (normalized to the page), so a mesh larger than its region tiles
// it.
const regionShaderSrc = `//kage:unit pixels
package main

var IsRepeat float
var AtlasCoord vec2
var AtlasSize vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	p := src
	if IsRepeat > 0.5 {
		size := AtlasSize * imageSrc0Size()
		origin := imageSrc0Origin() + AtlasCoord*imageSrc0Size()
		if size.x > 0 && size.y > 0 {
			p = origin + mod(src-origin, size)
		}
	}
	return imageSrc0At(p) * color
}
`

// --- Lazy shader compilation (single-threaded, no sync.Once) ---

var regionShader *ebiten.Shader

func ensureRegionShader() *ebiten.Shader {
	if regionShader == nil {
		s, err := ebiten.NewShader([]byte(regionShaderSrc))
		if err != nil {
			panic("h2d: failed to compile region shader: " + err.Error())
		}
		regionShader = s
	}
	return regionShader
}

// defaultUniforms returns the uniforms the region shader starts with.
func defaultUniforms() map[string]any {
	return map[string]any{
		UniformIsRepeat:   float32(0),
		UniformAtlasCoord: []float32{0, 0},
		UniformAtlasSize:  []float32{1, 1},
	}
}
