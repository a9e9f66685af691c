// Package browse provides the file picker scene.
package browse

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/skyview/internal/application/scene"
	"github.com/younwookim/skyview/internal/application/system"
	"github.com/younwookim/skyview/internal/infrastructure/picker"
)

var (
	colorBG     = color.RGBA{20, 24, 36, 255}
	colorCursor = color.RGBA{60, 90, 140, 255}
)

const (
	lineHeight = 16
	headerRows = 2
)

// Browse lists a directory and hands the chosen file to onPick.
type Browse struct {
	browser *picker.Browser
	input   *system.InputSystem
	back    scene.Scene
	onPick  func(path string)
	screenW int
	screenH int
	status  string

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Browse scene. Picking a file or cancelling returns to back.
func New(b *picker.Browser, input *system.InputSystem, back scene.Scene, onPick func(path string), screenW, screenH int) *Browse {
	return &Browse{
		browser: b,
		input:   input,
		back:    back,
		onPick:  onPick,
		screenW: screenW,
		screenH: screenH,
	}
}

// Update implements scene.Scene
func (s *Browse) Update(_ float64) (scene.Scene, error) {
	return s.handle(s.input.MenuInput())
}

func (s *Browse) handle(in system.InputState) (scene.Scene, error) {
	b := s.browser
	if b.Dirty() {
		if err := b.Refresh(); err != nil {
			s.fail(err)
		}
	}

	switch {
	case in.Pause:
		slog.Debug("browse: cancelled", "dir", b.Dir())
		return s.back, nil
	case in.Up:
		b.Move(-1)
	case in.Down:
		b.Move(1)
	case in.Back, in.Left:
		s.try(b.Up())
	case in.NextFilter:
		s.try(b.NextFilter())
	case in.Hidden:
		s.try(b.ShowHidden(!b.HiddenShown()))
	case in.Select, in.Right:
		path, err := b.Activate()
		if err != nil {
			s.fail(err)
			return nil, nil
		}
		s.status = ""
		if path != "" {
			slog.Info("browse: picked", "path", path)
			if s.onPick != nil {
				s.onPick(path)
			}
			return s.back, nil
		}
	}
	return nil, nil
}

func (s *Browse) try(err error) {
	if err != nil {
		s.fail(err)
		return
	}
	s.status = ""
}

func (s *Browse) fail(err error) {
	slog.Warn("browse: action failed", "dir", s.browser.Dir(), "err", err)
	s.status = err.Error()
}

// Status returns the last error shown to the user, if any.
func (s *Browse) Status() string { return s.status }

// Draw renders the listing around the cursor
func (s *Browse) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	b := s.browser

	header := fmt.Sprintf("%s  [%s]", b.Dir(), b.Filter().Name)
	ebitenutil.DebugPrintAt(screen, header, 4, 0)
	ebitenutil.DebugPrintAt(screen, "Enter: open | Bksp: up | F: filter | H: hidden | Esc: cancel", 4, lineHeight)

	rows := s.screenH/lineHeight - headerRows - 1
	entries := b.Entries()
	first, last := window(b.Cursor(), len(entries), rows)
	for i := first; i < last; i++ {
		y := (headerRows + i - first) * lineHeight
		if i == b.Cursor() {
			ebitenutil.DrawRect(screen, 0, float64(y), float64(s.screenW), lineHeight, colorCursor)
		}
		ebitenutil.DebugPrintAt(screen, label(entries[i]), 8, y)
	}

	if s.status != "" {
		ebitenutil.DebugPrintAt(screen, "! "+s.status, 4, s.screenH-lineHeight)
	}
}

// window returns the visible range [first, last) of n rows that keeps
// cursor on screen.
func window(cursor, n, rows int) (int, int) {
	if rows <= 0 || n == 0 {
		return 0, 0
	}
	first := max(cursor-rows/2, 0)
	last := min(first+rows, n)
	first = max(last-rows, 0)
	return first, last
}

func label(e picker.Entry) string {
	if e.Dir {
		return e.Name + "/"
	}
	return fmt.Sprintf("%-32s %8s", e.Name, humanSize(e.Size))
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/float64(div)), ".0") + " " + string("KMGTPE"[exp]) + "iB"
}

// OnEnter starts watching the directory
func (s *Browse) OnEnter() {
	if err := s.browser.Refresh(); err != nil {
		s.fail(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		if err := s.browser.Watch(ctx); err != nil {
			slog.Warn("browse: directory watch stopped", "err", err)
		}
	}(s.done)
}

// OnExit stops the watcher and waits for it
func (s *Browse) OnExit() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}
