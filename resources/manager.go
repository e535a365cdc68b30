package resources

import (
	"fmt"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Retriever resolves project metadata, scenes and texture regions by name.
// Lookups report absence instead of substituting a default.
type Retriever interface {
	ProjectVO() *ProjectInfoVO
	SceneVO(name string) (*SceneVO, bool)
	TextureRegion(name string) (*Region, bool)
}

// Manager is the default Retriever. It reads a project directory laid out as
//
//	project.yaml       project metadata, library items and actions
//	scenes/*.yaml      one SceneVO per file, named after the file
//	<atlas>.json       TexturePacker atlas plus its page images
//
// Scenes and regions can also be added in memory.
type Manager struct {
	dir     string
	project *ProjectInfoVO
	scenes  map[string]*SceneVO
	atlas   *Atlas
	log     *zap.Logger
}

// NewManager creates an empty manager rooted at dir.
func NewManager(dir string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		dir:     dir,
		project: &ProjectInfoVO{PixelToWorld: 1},
		scenes:  make(map[string]*SceneVO),
		atlas:   &Atlas{regions: make(map[string]*Region)},
		log:     log,
	}
}

// LoadAll reads project.yaml, every scene file and, when atlasFile is not
// empty, the atlas and its pages.
func (m *Manager) LoadAll(atlasFile string) error {
	if err := m.loadProject(filepath.Join(m.dir, "project.yaml")); err != nil {
		return err
	}
	if err := m.loadScenes(filepath.Join(m.dir, "scenes")); err != nil {
		return err
	}
	if atlasFile != "" {
		if err := m.loadAtlas(filepath.Join(m.dir, atlasFile)); err != nil {
			return err
		}
	}
	m.log.Info("resources loaded",
		zap.String("dir", m.dir),
		zap.Int("scenes", len(m.scenes)),
		zap.Int("regions", m.atlas.Len()))
	return nil
}

func (m *Manager) loadProject(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read project %s: %w", path, err)
	}
	project := &ProjectInfoVO{PixelToWorld: 1}
	if err := yaml.Unmarshal(raw, project); err != nil {
		return fmt.Errorf("parse project %s: %w", path, err)
	}
	if project.PixelToWorld <= 0 {
		project.PixelToWorld = 1
	}
	m.project = project
	return nil
}

func (m *Manager) loadScenes(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read scenes %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read scene %s: %w", path, err)
		}
		vo, err := ParseScene(raw)
		if err != nil {
			return fmt.Errorf("parse scene %s: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		if vo.Name == "" {
			vo.Name = name
		}
		m.scenes[name] = vo
		m.log.Debug("loaded scene", zap.String("scene", name), zap.String("file", path))
	}
	return nil
}

func (m *Manager) loadAtlas(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read atlas %s: %w", path, err)
	}
	names, err := AtlasPageNames(raw)
	if err != nil {
		return err
	}
	pages := make([]*ebiten.Image, len(names))
	for i, name := range names {
		img, _, err := ebitenutil.NewImageFromFile(filepath.Join(filepath.Dir(path), name))
		if err != nil {
			return fmt.Errorf("load atlas page %s: %w", name, err)
		}
		pages[i] = img
	}
	atlas, err := LoadAtlas(raw, pages)
	if err != nil {
		return err
	}
	m.atlas = atlas
	return nil
}

// ParseScene decodes a YAML scene description.
func ParseScene(raw []byte) (*SceneVO, error) {
	var vo SceneVO
	if err := yaml.Unmarshal(raw, &vo); err != nil {
		return nil, err
	}
	return &vo, nil
}

// SetProject replaces the project metadata.
func (m *Manager) SetProject(p *ProjectInfoVO) {
	m.project = p
}

// AddScene registers a scene under name, replacing any previous one.
func (m *Manager) AddScene(name string, vo *SceneVO) {
	m.scenes[name] = vo
}

// AddRegion registers a texture region under its name.
func (m *Manager) AddRegion(r *Region) {
	m.atlas.regions[r.Name] = r
}

// ProjectVO returns the project metadata.
func (m *Manager) ProjectVO() *ProjectInfoVO {
	return m.project
}

// SceneVO returns the named scene.
func (m *Manager) SceneVO(name string) (*SceneVO, bool) {
	vo, ok := m.scenes[name]
	return vo, ok
}

// TextureRegion returns the named atlas region.
func (m *Manager) TextureRegion(name string) (*Region, bool) {
	return m.atlas.Region(name)
}

// SceneNames returns the names of all known scenes, sorted.
func (m *Manager) SceneNames() []string {
	names := make([]string, 0, len(m.scenes))
	for name := range m.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
