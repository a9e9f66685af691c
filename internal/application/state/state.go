package state

// ViewerState represents what the viewer is currently showing
type ViewerState int

const (
	StateSkybox ViewerState = iota
	StateTexture
	StatePaused
)

// String returns the string representation of the viewer state
func (s ViewerState) String() string {
	switch s {
	case StateSkybox:
		return "Skybox"
	case StateTexture:
		return "Texture"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Next cycles between the two display states. Paused is left unchanged.
func (s ViewerState) Next() ViewerState {
	switch s {
	case StateSkybox:
		return StateTexture
	case StateTexture:
		return StateSkybox
	default:
		return s
	}
}
