// Package viewer provides the skybox and texture viewing scene.
package viewer

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/skyview/internal/application/demo"
	"github.com/younwookim/skyview/internal/application/replay"
	"github.com/younwookim/skyview/internal/application/scene"
	"github.com/younwookim/skyview/internal/application/scene/browse"
	"github.com/younwookim/skyview/internal/application/state"
	"github.com/younwookim/skyview/internal/application/system"
	"github.com/younwookim/skyview/internal/domain/texture"
	"github.com/younwookim/skyview/internal/ecs"
	"github.com/younwookim/skyview/internal/gfx"
	"github.com/younwookim/skyview/internal/infrastructure/config"
	"github.com/younwookim/skyview/internal/infrastructure/picker"
)

// Colors for rendering
var (
	colorBG      = color.RGBA{26, 26, 46, 255}
	colorActor   = color.RGBA{230, 160, 60, 255}
	colorOverlay = color.RGBA{0, 0, 0, 128}
)

const (
	demoActorName = "spinner"
	demoSize      = 48.0
	tileRepeats   = 3
)

// Deps are the collaborators a Viewer draws on.
type Deps struct {
	Config *config.ViewerConfig
	Device *gfx.EbitenDevice
	World  *ecs.World
	Input  *system.InputSystem
	// Browser backs the file picker scene. Nil disables it.
	Browser *picker.Browser
	// Recorder, if set, records every frame of viewer input.
	Recorder *replay.Recorder
	// Replayer, if set, replaces live input. The game ends when it runs out.
	Replayer *replay.Replayer
}

// Viewer shows a skybox face for the camera direction, or a loaded texture,
// with the demo actor spinning on top
type Viewer struct {
	config  *config.ViewerConfig
	dev     *gfx.EbitenDevice
	world   *ecs.World
	input   *system.InputSystem
	browser *picker.Browser

	recorder *replay.Recorder
	replayer *replay.Replayer

	state   state.ViewerState
	resume  state.ViewerState
	camera  system.Camera
	sky     *texture.Cubemap
	tex     *texture.Texture
	texOpts texture.Options
	actor   *ecs.Actor
	spinner *demo.Spinner
	status  string
	screenW int
	screenH int
}

// New creates the viewer scene, building the skybox and spawning the demo
// actor. A skybox that fails to load falls back to the procedural one.
func New(d Deps) (*Viewer, error) {
	cfg := d.Config
	sampler, err := cfg.Texture.Sampler()
	if err != nil {
		return nil, errors.Wrap(err, "viewer: texture sampler")
	}

	v := &Viewer{
		config:   cfg,
		dev:      d.Device,
		world:    d.World,
		input:    d.Input,
		browser:  d.Browser,
		recorder: d.Recorder,
		replayer: d.Replayer,
		state:    state.StateSkybox,
		camera:   system.NewCamera(),
		texOpts:  texture.Options{Sampler: sampler, Mipmaps: cfg.Texture.Mipmaps},
		screenW:  cfg.Display.ScreenWidth,
		screenH:  cfg.Display.ScreenHeight,
	}

	if v.sky, err = v.loadSky(); err != nil {
		return nil, err
	}
	if cfg.Demo.Enabled {
		v.spawnDemo()
	}
	return v, nil
}

func (v *Viewer) loadSky() (*texture.Cubemap, error) {
	opts := texture.DefaultCubemapOptions()
	opts.Mipmaps = v.config.Skybox.Mipmaps

	if len(v.config.Skybox.Faces) > 0 {
		sky, err := texture.LoadCubemap(v.dev, v.config.Skybox.Faces, opts)
		if err == nil {
			return sky, nil
		}
		v.status = "skybox: " + err.Error()
		slog.Warn("viewer: using procedural skybox", "err", err)
	}

	opts.Label = "procedural-sky"
	sky, err := texture.NewCubemap(v.dev, proceduralFaces(v.config.Skybox.Size), opts)
	if err != nil {
		return nil, errors.Wrap(err, "viewer: procedural skybox")
	}
	return sky, nil
}

func (v *Viewer) spawnDemo() {
	dc := v.config.Demo
	cfg := demo.SpinnerConfig{
		TexturePath:       dc.Texture,
		DegreesPerSecond:  dc.DegreesPerSecond,
		Axis:              dc.AxisVec(),
		DestroyAfterTicks: dc.DestroyAfterTicks,
	}
	v.actor, v.spinner = demo.Spawn(v.world, demoActorName, cfg, v.loadTexture)
}

func (v *Viewer) loadTexture(path string) (*texture.Texture, error) {
	return texture.Load(v.dev, path, v.texOpts)
}

// Open replaces the displayed texture with the image at path. On failure
// the current texture stays.
func (v *Viewer) Open(path string) error {
	tex, err := v.loadTexture(path)
	if err != nil {
		v.status = err.Error()
		return err
	}
	if v.tex != nil {
		v.tex.Release()
	}
	v.tex = tex
	v.status = ""
	v.state = state.StateTexture
	v.camera.Zoom = 1
	return nil
}

// Update implements scene.Scene
func (v *Viewer) Update(dt float64) (scene.Scene, error) {
	var in system.InputState
	if v.replayer != nil {
		var ok bool
		if in, ok = v.replayer.GetInput(); !ok {
			slog.Info("viewer: replay finished", "frames", v.replayer.TotalFrames())
			if v.recorder != nil {
				v.recorder.Stop()
			}
			return nil, ebiten.Termination
		}
	} else {
		in = v.input.GetInput()
	}
	if v.recorder != nil {
		v.recorder.RecordFrame(in)
	}
	return v.handle(in, dt)
}

func (v *Viewer) handle(in system.InputState, dt float64) (scene.Scene, error) {
	if in.Pause {
		if v.state == state.StatePaused {
			v.state = v.resume
		} else {
			v.resume = v.state
			v.state = state.StatePaused
		}
	}
	if v.state == state.StatePaused {
		return nil, nil
	}

	if in.ToggleMode {
		v.state = v.state.Next()
	}
	if in.Open {
		if v.browser == nil {
			v.status = "file picker unavailable"
		} else {
			return browse.New(v.browser, v.input, v, v.onPick, v.screenW, v.screenH), nil
		}
	}
	if in.Respawn && v.config.Demo.Enabled && (v.actor == nil || !v.actor.Alive()) {
		v.spawnDemo()
	}

	v.input.UpdateCamera(&v.camera, in, dt)
	v.world.Tick(dt)
	return nil, nil
}

func (v *Viewer) onPick(path string) {
	if err := v.Open(path); err != nil {
		slog.Warn("viewer: open failed", "path", path, "err", err)
	}
}

// Draw renders the current view and the HUD
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	view := v.state
	if view == state.StatePaused {
		view = v.resume
	}
	switch view {
	case state.StateSkybox:
		v.drawSky(screen)
	case state.StateTexture:
		v.drawTexture(screen)
	}
	v.drawActor(screen)
	v.drawHUD(screen)

	if v.state == state.StatePaused {
		ebitenutil.DrawRect(screen, 0, 0, float64(v.screenW), float64(v.screenH), colorOverlay)
		ebitenutil.DebugPrintAt(screen, "PAUSED\n\nPress ESC to resume", v.screenW/2-50, v.screenH/2-20)
	}
}

// skyPlacement returns the face to draw and where its top-left corner goes
// so the looked-at texel lands in the screen centre.
func (v *Viewer) skyPlacement() (texture.Face, float64, float64, float64) {
	face, u, w := texture.FaceForDirection(v.camera.Direction())
	size := float64(v.sky.Size())
	scale := v.camera.Zoom * float64(v.screenH) / size
	x := float64(v.screenW)/2 - float64(u)*size*scale
	y := float64(v.screenH)/2 - float64(w)*size*scale
	return face, x, y, scale
}

func (v *Viewer) drawSky(screen *ebiten.Image) {
	face, x, y, scale := v.skyPlacement()
	if err := v.dev.DrawImage(screen, v.sky.Handle(), int(face), x, y, scale); err != nil {
		slog.Debug("viewer: sky draw failed", "err", err)
	}
}

func (v *Viewer) drawTexture(screen *ebiten.Image) {
	if !v.tex.Valid() {
		ebitenutil.DebugPrintAt(screen, "No texture loaded. Press O to open one.", 10, v.screenH/2)
		return
	}

	scale := v.camera.Zoom
	w := float64(v.tex.Width()) * scale
	h := float64(v.tex.Height()) * scale
	x := (float64(v.screenW) - w) / 2
	y := (float64(v.screenH) - h) / 2
	if err := v.dev.DrawImage(screen, v.tex.Handle(), 0, x, y, scale); err != nil {
		slog.Debug("viewer: texture draw failed", "err", err)
	}

	v.drawTiled(screen, 0, float64(v.screenH)-32, float64(v.screenW), 32)
}

// drawTiled fills the rectangle with the texture repeated along x, using
// the texture's wrap mode.
func (v *Viewer) drawTiled(screen *ebiten.Image, x, y, w, h float64) {
	img, err := v.dev.Image(v.tex.Handle(), 0, 0)
	if err != nil {
		return
	}
	b := img.Bounds()
	s := v.tex.Sampler()
	vs, is := tileVertices(s, float32(b.Dx()), float32(b.Dy()), float32(x), float32(y), float32(w), float32(h))
	op := &ebiten.DrawTrianglesOptions{
		Address: gfx.EbitenAddress(s),
		Filter:  gfx.EbitenFilter(s, h/float64(b.Dy())),
	}
	screen.DrawTriangles(vs, is, img, op)
}

// tileVertices covers the destination rectangle with tileRepeats copies of
// a srcW x srcH image along x. ebiten leaves reads outside the image
// undefined for clamp to edge, so that mode draws one copy and stretches
// its last texel column over the rest.
func tileVertices(s gfx.Sampler, srcW, srcH, x, y, w, h float32) ([]ebiten.Vertex, []uint16) {
	if gfx.EbitenAddress(s) != ebiten.AddressUnsafe {
		return quad(x, y, x+w, y+h, 0, srcW*tileRepeats, srcH), []uint16{0, 1, 2, 1, 3, 2}
	}
	split := x + w/tileRepeats
	edge := srcW - 0.5
	vs := append(quad(x, y, split, y+h, 0, srcW, srcH), quad(split, y, x+w, y+h, edge, edge, srcH)...)
	return vs, []uint16{0, 1, 2, 1, 3, 2, 4, 5, 6, 5, 7, 6}
}

// quad maps source columns [sx0, sx1] and rows [0, sh] onto a destination
// rectangle.
func quad(x0, y0, x1, y1, sx0, sx1, sh float32) []ebiten.Vertex {
	return []ebiten.Vertex{
		{DstX: x0, DstY: y0, SrcX: sx0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x1, DstY: y0, SrcX: sx1, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x0, DstY: y1, SrcX: sx0, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x1, DstY: y1, SrcX: sx1, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
}

func (v *Viewer) drawActor(screen *ebiten.Image) {
	if v.actor == nil || v.actor.Destroyed() {
		return
	}
	fwd := v.actor.Transform.Forward()
	angle := math.Atan2(float64(fwd.X()), float64(-fwd.Z()))
	cx := float64(v.screenW) - demoSize
	cy := demoSize

	tex := v.spinner.Texture()
	if !tex.Valid() {
		// Unrotated marker; the HUD reports the angle.
		ebitenutil.DrawRect(screen, cx-demoSize/4, cy-demoSize/4, demoSize/2, demoSize/2, colorActor)
		return
	}
	img, err := v.dev.Image(tex.Handle(), 0, 0)
	if err != nil {
		return
	}
	b := img.Bounds()
	scale := demoSize / float64(max(b.Dx(), b.Dy()))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Rotate(angle)
	op.GeoM.Translate(cx, cy)
	op.Filter = gfx.EbitenFilter(tex.Sampler(), scale)
	screen.DrawImage(img, op)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	stats := v.dev.Stats()
	var line string
	switch v.state {
	case state.StateTexture:
		if v.tex.Valid() {
			line = fmt.Sprintf("%s %dx%d %s mips:%d", v.tex.Label(), v.tex.Width(), v.tex.Height(), v.tex.Format(), v.tex.MipLevels())
		}
	default:
		face, _, _, _ := v.skyPlacement()
		line = fmt.Sprintf("face %s yaw %.0f pitch %.0f", face, v.camera.Yaw, v.camera.Pitch)
	}

	actor := "none"
	if v.actor != nil {
		switch {
		case v.actor.Destroyed():
			actor = fmt.Sprintf("#%d destroyed (R: respawn)", v.actor.ID())
		default:
			actor = fmt.Sprintf("#%d ticks %d", v.actor.ID(), v.spinner.Ticks())
		}
	}

	text := fmt.Sprintf("%s | zoom %.2f\n%s\ntextures %d live, %d KiB uploaded | actors %d frame %d | demo %s\nTab: mode | O: open | WASD/drag: look | +/-: zoom | Esc: pause",
		v.state, v.camera.Zoom, line,
		stats.Live, stats.BytesUploaded/1024, v.world.Count(), v.world.Frame(), actor)
	ebitenutil.DebugPrint(screen, text)

	if v.status != "" {
		ebitenutil.DebugPrintAt(screen, "! "+v.status, 4, v.screenH-16)
	}
	if rs := v.sessionStatus(); rs != "" {
		ebitenutil.DebugPrintAt(screen, rs, v.screenW-96, v.screenH-16)
	}
}

// sessionStatus reports replay progress and whether input is being
// recorded, or "" when neither is active.
func (v *Viewer) sessionStatus() string {
	var parts []string
	if v.replayer != nil {
		parts = append(parts, fmt.Sprintf("REPLAY %d/%d", v.replayer.CurrentFrame(), v.replayer.TotalFrames()))
	}
	if v.recorder != nil && v.recorder.IsRecording() {
		parts = append(parts, fmt.Sprintf("REC %d", v.recorder.FrameCount()))
	}
	return strings.Join(parts, " ")
}

// State returns the current viewer state.
func (v *Viewer) State() state.ViewerState { return v.state }

// Sky returns the skybox cubemap.
func (v *Viewer) Sky() *texture.Cubemap { return v.sky }

// Texture returns the opened texture, or nil.
func (v *Viewer) Texture() *texture.Texture { return v.tex }

// Actor returns the demo actor, or nil when the demo is disabled.
func (v *Viewer) Actor() *ecs.Actor { return v.actor }

// Status returns the last problem shown in the HUD.
func (v *Viewer) Status() string { return v.status }

// OnEnter is called when entering this scene
func (v *Viewer) OnEnter() {
	// Scene is already initialized in New
}

// OnExit is called when leaving this scene. Resources stay alive because
// the picker scene returns here; Close releases them.
func (v *Viewer) OnExit() {}

// Close releases the skybox and texture.
func (v *Viewer) Close() {
	if v.tex != nil {
		v.tex.Release()
	}
	if v.sky != nil {
		v.sky.Release()
	}
}
