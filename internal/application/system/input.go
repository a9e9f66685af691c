package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/younwookim/skyview/internal/infrastructure/config"
)

// maxPitch keeps the camera off the poles where yaw degenerates.
const maxPitch = 89.0

// InputSystem turns key state into camera movement
type InputSystem struct {
	config *config.CameraConfig
}

// NewInputSystem creates a new input system
func NewInputSystem(cfg *config.CameraConfig) *InputSystem {
	return &InputSystem{config: cfg}
}

// InputState holds the current input state
type InputState struct {
	Left  bool
	Right bool
	Up    bool
	Down  bool

	ZoomIn  bool
	ZoomOut bool
	Wheel   float64

	ToggleMode bool // Tab
	Pause      bool // Esc
	Open       bool // O
	Respawn    bool // R
	NextFilter bool // F
	Hidden     bool // H
	Select     bool // Enter
	Back       bool // Backspace

	Drag   bool // left mouse button held
	MouseX int
	MouseY int
}

// GetInput reads the current input state
func (s *InputSystem) GetInput() InputState {
	mx, my := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	return InputState{
		Left:       ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:      ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Up:         ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:       ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		ZoomIn:     inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd),
		ZoomOut:    inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract),
		Wheel:      wy,
		ToggleMode: inpututil.IsKeyJustPressed(ebiten.KeyTab),
		Pause:      inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		Open:       inpututil.IsKeyJustPressed(ebiten.KeyO),
		Respawn:    inpututil.IsKeyJustPressed(ebiten.KeyR),
		NextFilter: inpututil.IsKeyJustPressed(ebiten.KeyF),
		Hidden:     inpututil.IsKeyJustPressed(ebiten.KeyH),
		Select:     inpututil.IsKeyJustPressed(ebiten.KeyEnter),
		Back:       inpututil.IsKeyJustPressed(ebiten.KeyBackspace),
		Drag:       ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		MouseX:     mx,
		MouseY:     my,
	}
}

// MenuInput is the edge-triggered navigation used by list screens.
// Holding a direction key does not repeat.
func (s *InputSystem) MenuInput() InputState {
	in := s.GetInput()
	in.Up = inpututil.IsKeyJustPressed(ebiten.KeyW) || inpututil.IsKeyJustPressed(ebiten.KeyArrowUp)
	in.Down = inpututil.IsKeyJustPressed(ebiten.KeyS) || inpututil.IsKeyJustPressed(ebiten.KeyArrowDown)
	in.Left = inpututil.IsKeyJustPressed(ebiten.KeyA) || inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft)
	in.Right = inpututil.IsKeyJustPressed(ebiten.KeyD) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight)
	return in
}

// Camera is a look direction plus a zoom factor.
type Camera struct {
	Yaw   float64 // degrees, 0 looks down -Z, 90 looks down +X
	Pitch float64 // degrees, positive looks up
	Zoom  float64

	dragging     bool
	lastX, lastY int
}

// NewCamera looks down -Z at zoom 1.
func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// Direction returns the unit look vector.
func (c Camera) Direction() mgl32.Vec3 {
	yaw := mgl32.DegToRad(float32(c.Yaw))
	pitch := mgl32.DegToRad(float32(c.Pitch))
	cp := float32(math.Cos(float64(pitch)))
	return mgl32.Vec3{
		cp * float32(math.Sin(float64(yaw))),
		float32(math.Sin(float64(pitch))),
		-cp * float32(math.Cos(float64(yaw))),
	}
}

// UpdateCamera applies input to the camera
func (s *InputSystem) UpdateCamera(cam *Camera, input InputState, dt float64) {
	step := s.config.LookSpeed * dt
	if input.Left {
		cam.Yaw -= step
	}
	if input.Right {
		cam.Yaw += step
	}
	if input.Up {
		cam.Pitch += step
	}
	if input.Down {
		cam.Pitch -= step
	}
	s.handleDrag(cam, input)
	cam.Yaw = math.Mod(cam.Yaw, 360)
	if cam.Yaw < 0 {
		cam.Yaw += 360
	}
	cam.Pitch = math.Max(-maxPitch, math.Min(maxPitch, cam.Pitch))

	s.handleZoom(cam, input)
}

// handleDrag turns the camera by the cursor movement since the previous
// frame while the button is held. Dragging right looks right.
func (s *InputSystem) handleDrag(cam *Camera, input InputState) {
	if !input.Drag {
		cam.dragging = false
		return
	}
	if cam.dragging {
		cam.Yaw += float64(input.MouseX-cam.lastX) * s.config.DragSpeed
		cam.Pitch -= float64(input.MouseY-cam.lastY) * s.config.DragSpeed
	}
	cam.dragging = true
	cam.lastX, cam.lastY = input.MouseX, input.MouseY
}

// handleZoom handles key and wheel zoom
func (s *InputSystem) handleZoom(cam *Camera, input InputState) {
	notches := input.Wheel
	if input.ZoomIn {
		notches++
	}
	if input.ZoomOut {
		notches--
	}
	if notches == 0 {
		return
	}
	if cam.Zoom <= 0 {
		cam.Zoom = 1
	}
	cam.Zoom *= math.Pow(s.config.ZoomStep, notches)
	cam.Zoom = math.Max(s.config.MinZoom, math.Min(s.config.MaxZoom, cam.Zoom))
}
