// Package replay records viewer input frame by frame and plays it back.
package replay

// Version is written to every session file.
const Version = "1.0"

// FrameInput records input state for a single frame
type FrameInput struct {
	F   int     `json:"f"`             // Frame number
	L   bool    `json:"l,omitempty"`   // Left
	R   bool    `json:"r,omitempty"`   // Right
	U   bool    `json:"u,omitempty"`   // Up
	D   bool    `json:"d,omitempty"`   // Down
	ZI  bool    `json:"zi,omitempty"`  // ZoomIn
	ZO  bool    `json:"zo,omitempty"`  // ZoomOut
	W   float64 `json:"w,omitempty"`   // Wheel
	Tab bool    `json:"tab,omitempty"` // ToggleMode
	P   bool    `json:"p,omitempty"`   // Pause
	O   bool    `json:"o,omitempty"`   // Open
	RS  bool    `json:"rs,omitempty"`  // Respawn
	Drg bool    `json:"drg,omitempty"` // Drag
	MX  int     `json:"mx"`            // MouseX
	MY  int     `json:"my"`            // MouseY
}

// Session contains everything needed to replay a viewer run
type Session struct {
	Version   string       `json:"version"`
	Config    string       `json:"config,omitempty"` // config file the run used, empty for the embedded one
	StartTime string       `json:"startTime"`
	Frames    []FrameInput `json:"frames"`
}
