// h2dview loads a project directory and shows one of its scenes.
//
// Usage:
//
//	h2dview -config h2d.toml -scene MainScene
//
// Arrow keys scroll the camera, +/- zoom, R reloads the scene and F toggles
// the FPS overlay.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/h2d"
	"github.com/phanxgames/h2d/config"
	"github.com/phanxgames/h2d/resources"
	"github.com/phanxgames/h2d/scripting"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

const (
	scrollSpeed = 0.5 // fraction of the view per second
	zoomStep    = 1.1
	fpsInterval = 0.5
)

var clearColor = color.RGBA{R: 30, G: 30, B: 40, A: 255}

type viewer struct {
	loader *h2d.SceneLoader
	scene  string
	log    *zap.Logger

	showFPS   bool
	fpsText   string
	sinceFPS  float64
	lastError error
}

func (v *viewer) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		v.showFPS = !v.showFPS
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if _, err := v.loader.LoadSceneDefault(v.scene, false); err != nil {
			v.log.Error("reload failed", zap.String("scene", v.scene), zap.Error(err))
			v.lastError = err
		}
	}
	v.moveCamera(dt)

	v.loader.Update(dt)

	v.sinceFPS += dt
	if v.sinceFPS >= fpsInterval {
		v.sinceFPS = 0
		v.fpsText = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	return nil
}

func (v *viewer) moveCamera(dt float64) {
	root := v.loader.Root()
	if root == h2d.NoEntity {
		return
	}
	vpd, ok := h2d.Lookup[h2d.ViewPortData](v.loader.Index(), root, h2d.KindViewPort)
	if !ok || vpd.Viewport == nil {
		return
	}
	vp := vpd.Viewport
	step := scrollSpeed * dt
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyLeft):
		vp.SetPosition(vp.X-vp.WorldWidth*step, vp.Y)
	case ebiten.IsKeyPressed(ebiten.KeyRight):
		vp.SetPosition(vp.X+vp.WorldWidth*step, vp.Y)
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyUp):
		vp.SetPosition(vp.X, vp.Y+vp.WorldHeight*step)
	case ebiten.IsKeyPressed(ebiten.KeyDown):
		vp.SetPosition(vp.X, vp.Y-vp.WorldHeight*step)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		vp.SetZoom(vp.Zoom * zoomStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		vp.SetZoom(vp.Zoom / zoomStep)
	}
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(clearColor)
	v.loader.Draw(screen)
	if v.lastError != nil {
		ebitenutil.DebugPrintAt(screen, v.lastError.Error(), 4, screen.Bounds().Dy()-16)
	}
	if v.showFPS {
		ebitenutil.DebugPrint(screen, v.fpsText)
	}
}

func (v *viewer) Layout(w, h int) (int, int) {
	return w, h
}

func run(cfgPath, scene string) error {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	if scene == "" {
		scene = cfg.Assets.Scene
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	rm := resources.NewManager(cfg.Assets.ProjectDir, log.Named("resources"))
	if err := rm.LoadAll(cfg.Assets.AtlasFile); err != nil {
		return fmt.Errorf("load assets: %w", err)
	}

	scriptsDir := cfg.Assets.ScriptsDir
	if scriptsDir != "" && !filepath.IsAbs(scriptsDir) {
		scriptsDir = filepath.Join(cfg.Assets.ProjectDir, scriptsDir)
	}
	lua, err := scripting.NewEngine(scriptsDir, log.Named("lua"))
	if err != nil {
		return err
	}
	defer lua.Close()

	sc := h2d.ConfigurationFromConfig(cfg, rm, log)
	sc.Scripts = h2d.ScriptProviderFunc(func(name string) (h2d.Script, error) {
		s, err := lua.NewScript(name)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	loader := h2d.NewSceneLoader(sc)
	defer loader.Dispose()
	loader.CreateEngine()
	loader.Resize(cfg.Window.Width, cfg.Window.Height)
	if _, err := loader.LoadSceneDefault(scene, false); err != nil {
		return err
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	v := &viewer{loader: loader, scene: scene, log: log, showFPS: cfg.Engine.Debug}
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func main() {
	cfgPath := flag.String("config", "", "path to a TOML config file")
	scene := flag.String("scene", "", "scene to load (defaults to assets.scene)")
	prof := flag.String("profile", "", "write a cpu or mem profile to the current directory")
	flag.Parse()

	var p interface{ Stop() }
	switch *prof {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	}

	err := run(*cfgPath, *scene)
	if p != nil {
		p.Stop()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "h2dview:", err)
		os.Exit(1)
	}
}
