package replay

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/younwookim/skyview/internal/application/system"
)

// Replayer handles input playback from recorded data
type Replayer struct {
	data  Session
	frame int
}

// NewReplayer creates a new replayer from a session
func NewReplayer(data Session) *Replayer {
	return &Replayer{data: data}
}

// Load reads a session from a file
func Load(filename string) (*Session, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	var data Session
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "failed to decode replay")
	}
	if data.Version != Version {
		return nil, errors.Newf("replay: unsupported version %q", data.Version)
	}
	return &data, nil
}

// GetInput returns the input for the current frame and advances
func (r *Replayer) GetInput() (system.InputState, bool) {
	if r.frame >= len(r.data.Frames) {
		return system.InputState{}, false
	}

	fi := r.data.Frames[r.frame]
	r.frame++

	return system.InputState{
		Left:       fi.L,
		Right:      fi.R,
		Up:         fi.U,
		Down:       fi.D,
		ZoomIn:     fi.ZI,
		ZoomOut:    fi.ZO,
		Wheel:      fi.W,
		ToggleMode: fi.Tab,
		Pause:      fi.P,
		Open:       fi.O,
		Respawn:    fi.RS,
		Drag:       fi.Drg,
		MouseX:     fi.MX,
		MouseY:     fi.MY,
	}, true
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// Config returns the config file the session was recorded with
func (r *Replayer) Config() string {
	return r.data.Config
}
