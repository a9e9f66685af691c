package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/younwookim/skyview/internal/application/system"
)

// ErrEmpty is returned when saving a recording with no frames.
var ErrEmpty = errors.New("replay: no frames to save")

// Recorder handles input recording
type Recorder struct {
	data      Session
	recording bool
}

// NewRecorder creates a new recorder. config names the config file of the
// run so a replay can load the same one.
func NewRecorder(config string) *Recorder {
	return &Recorder{
		data: Session{
			Version:   Version,
			Config:    config,
			StartTime: time.Now().Format(time.RFC3339),
			Frames:    make([]FrameInput, 0, 3600), // ~1 minute at 60fps
		},
		recording: true,
	}
}

// RecordFrame records a single frame's input
func (r *Recorder) RecordFrame(in system.InputState) {
	if !r.recording {
		return
	}
	r.data.Frames = append(r.data.Frames, FrameInput{
		F:   len(r.data.Frames),
		L:   in.Left,
		R:   in.Right,
		U:   in.Up,
		D:   in.Down,
		ZI:  in.ZoomIn,
		ZO:  in.ZoomOut,
		W:   in.Wheel,
		Tab: in.ToggleMode,
		P:   in.Pause,
		O:   in.Open,
		RS:  in.Respawn,
		Drg: in.Drag,
		MX:  in.MouseX,
		MY:  in.MouseY,
	})
}

// Save writes the session to filename
func (r *Recorder) Save(filename string) error {
	if len(r.data.Frames) == 0 {
		return ErrEmpty
	}

	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r.data); err != nil {
		return errors.Wrap(err, "failed to encode replay")
	}
	return file.Close()
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.recording = false
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	return r.recording
}

// FrameCount returns the number of recorded frames
func (r *Recorder) FrameCount() int {
	return len(r.data.Frames)
}

// Session returns the recorded data
func (r *Recorder) Session() Session {
	return r.data
}

// GenerateFilename creates a filename based on current time
func GenerateFilename() string {
	return fmt.Sprintf("session_%s.json", time.Now().Format("20060102_150405"))
}
