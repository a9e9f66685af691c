package main

import (
	"context"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/skyview/internal/application/game"
	"github.com/younwookim/skyview/internal/application/replay"
	"github.com/younwookim/skyview/internal/application/scene/viewer"
	"github.com/younwookim/skyview/internal/application/system"
	"github.com/younwookim/skyview/internal/ecs"
	"github.com/younwookim/skyview/internal/gfx"
	"github.com/younwookim/skyview/internal/infrastructure/config"
	"github.com/younwookim/skyview/internal/infrastructure/picker"
)

func main() {
	configFlag := flag.String("config", "", "Config file (.json or .yaml); defaults to the embedded viewer.json")
	openFlag := flag.String("open", "", "Texture to open on start")
	pickFlag := flag.Bool("pick", false, "Pick the texture to open from the terminal before starting")
	recordFlag := flag.String("record", "", "Record input to file (e.g., -record session.json, or -record auto for a timestamped name)")
	replayFlag := flag.String("replay", "", "Replay input from a recorded session")
	flag.Parse()

	opts := options{
		config: *configFlag,
		open:   *openFlag,
		pick:   *pickFlag,
		record: *recordFlag,
		replay: *replayFlag,
	}
	if err := run(opts); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			slog.Info("viewer: nothing picked")
			return
		}
		slog.Error("viewer: exiting", "err", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.ViewerConfig, error) {
	if path != "" {
		return config.NewLoader(filepath.Dir(path)).Load(filepath.Base(path))
	}
	// Load configurations using embedded filesystem
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config subfs")
	}
	return config.NewFSLoader(fsys, "configs").LoadAll()
}

func setupLogger(cfg config.LogConfig) error {
	lvl, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func newBrowser(cfg config.PickerConfig) *picker.Browser {
	filters, err := cfg.ParsedFilters()
	if err != nil {
		slog.Warn("viewer: picker filters ignored", "filters", cfg.Filters, "err", err)
		filters = nil
	}
	opts := picker.Options{StartDir: cfg.StartDir, Filters: filters, ShowHidden: cfg.ShowHidden}
	b, err := picker.NewBrowser(opts)
	if err == nil {
		return b
	}
	slog.Warn("viewer: picker start dir unusable, using working directory", "dir", cfg.StartDir, "err", err)
	opts.StartDir = "."
	if b, err = picker.NewBrowser(opts); err != nil {
		slog.Warn("viewer: file picker disabled", "err", err)
		return nil
	}
	return b
}

// autoRecord as the -record value names the file after the start time.
const autoRecord = "auto"

type options struct {
	config string
	open   string
	pick   bool
	record string
	replay string
}

func run(opts options) error {
	var replayer *replay.Replayer
	if opts.replay != "" {
		session, err := replay.Load(opts.replay)
		if err != nil {
			return err
		}
		replayer = replay.NewReplayer(*session)
		if opts.config == "" {
			opts.config = replayer.Config()
		}
	}

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := setupLogger(cfg.Log); err != nil {
		return err
	}

	browser := newBrowser(cfg.Picker)
	openPath := opts.open
	if opts.pick {
		if browser == nil {
			return errors.New("file picker unavailable")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		lp := &picker.LinePicker{Browser: browser, In: os.Stdin, Out: os.Stdout}
		openPath, err = lp.Pick(ctx)
		stop()
		if err != nil {
			return err
		}
	}

	var recorder *replay.Recorder
	if opts.record == autoRecord {
		opts.record = replay.GenerateFilename()
	}
	if opts.record != "" {
		recorder = replay.NewRecorder(opts.config)
		defer func() {
			if err := recorder.Save(opts.record); err != nil {
				slog.Warn("viewer: failed to save recording", "file", opts.record, "err", err)
				return
			}
			slog.Info("viewer: recording saved", "file", opts.record, "frames", recorder.FrameCount())
		}()
	}

	dev := gfx.NewEbitenDevice()
	defer dev.Close()
	world := ecs.NewWorld()
	defer world.Shutdown()

	v, err := viewer.New(viewer.Deps{
		Config:   cfg,
		Device:   dev,
		World:    world,
		Input:    system.NewInputSystem(&cfg.Camera),
		Browser:  browser,
		Recorder: recorder,
		Replayer: replayer,
	})
	if err != nil {
		return err
	}
	defer v.Close()

	if openPath != "" {
		if err := v.Open(openPath); err != nil {
			slog.Warn("viewer: could not open texture", "path", openPath, "err", err)
		}
	}

	d := cfg.Display
	g := game.New(v, d.ScreenWidth, d.ScreenHeight)
	defer g.Close()
	g.SetDT(1.0 / float64(d.Framerate))

	ebiten.SetWindowSize(d.ScreenWidth*d.Scale, d.ScreenHeight*d.Scale)
	ebiten.SetWindowTitle(d.Title)
	ebiten.SetTPS(d.Framerate)

	slog.Info("viewer: starting", "size", [2]int{d.ScreenWidth, d.ScreenHeight}, "tps", d.Framerate)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
