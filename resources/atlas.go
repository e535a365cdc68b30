package resources

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Region is a sub-rectangle of an atlas page, in page pixels, together with
// its normalized UV bounds.
type Region struct {
	Name       string
	Page       *ebiten.Image
	PageWidth  int
	PageHeight int
	X, Y       int
	Width      int
	Height     int
	U, V       float64 // top-left UV
	U2, V2     float64 // bottom-right UV
}

// NewRegion builds a Region and computes its UVs from the page size.
// A zero page size leaves the UVs at zero.
func NewRegion(name string, page *ebiten.Image, pageW, pageH, x, y, w, h int) *Region {
	r := &Region{
		Name:       name,
		Page:       page,
		PageWidth:  pageW,
		PageHeight: pageH,
		X:          x,
		Y:          y,
		Width:      w,
		Height:     h,
	}
	if pageW > 0 && pageH > 0 {
		r.U = float64(x) / float64(pageW)
		r.V = float64(y) / float64(pageH)
		r.U2 = float64(x+w) / float64(pageW)
		r.V2 = float64(y+h) / float64(pageH)
	}
	return r
}

// RegionWidth returns the region width in pixels.
func (r *Region) RegionWidth() int { return r.Width }

// RegionHeight returns the region height in pixels.
func (r *Region) RegionHeight() int { return r.Height }

// Atlas holds the regions of one or more atlas pages by name.
type Atlas struct {
	Pages   []*ebiten.Image
	regions map[string]*Region
}

// Region returns the named region.
func (a *Atlas) Region(name string) (*Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.regions) }

// LoadAtlas parses TexturePacker JSON data and associates the given page images.
// Supports both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists). Page sizes come from the page
// images, or from the JSON "size" entries when a page image is missing.
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Size jsonSize `json:"size"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("h2d: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]*Region),
	}

	if probe.Textures != nil {
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	} else if probe.Frames != nil {
		if err := parseHashFrames(probe.Frames, 0, probe.Meta.Size, atlas); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("h2d: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame jsonRect `json:"frame"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Size   jsonSize             `json:"size"`
	Frames map[string]jsonFrame `json:"frames"`
}

func parseHashFrames(raw json.RawMessage, pageIndex int, size jsonSize, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("h2d: failed to parse atlas frames: %w", err)
	}
	page, pw, ph := atlas.page(pageIndex, size)
	for name, f := range frames {
		atlas.regions[name] = NewRegion(name, page, pw, ph, f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H)
	}
	return nil
}

func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("h2d: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		page, pw, ph := atlas.page(i, tex.Size)
		for name, f := range tex.Frames {
			atlas.regions[name] = NewRegion(name, page, pw, ph, f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H)
		}
	}
	return nil
}

func (a *Atlas) page(i int, size jsonSize) (*ebiten.Image, int, int) {
	if i < len(a.Pages) && a.Pages[i] != nil {
		b := a.Pages[i].Bounds()
		return a.Pages[i], b.Dx(), b.Dy()
	}
	return nil, size.W, size.H
}

// AtlasPageNames returns the page image file names referenced by TexturePacker
// JSON data, in page order.
func AtlasPageNames(jsonData []byte) ([]string, error) {
	var probe struct {
		Textures []jsonTexturePage `json:"textures"`
		Meta     struct {
			Image string `json:"image"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("h2d: failed to parse atlas JSON: %w", err)
	}
	if len(probe.Textures) > 0 {
		names := make([]string, len(probe.Textures))
		for i, t := range probe.Textures {
			names[i] = t.Image
		}
		return names, nil
	}
	if probe.Meta.Image != "" {
		return []string{probe.Meta.Image}, nil
	}
	return nil, nil
}
