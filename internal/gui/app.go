// Package gui hosts the simulation in a raylib window. It turns window input
// into intents, runs one frame per redraw and draws the result through the
// render pipeline.
package gui

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/orrery/internal/audio"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/gui/controls"
	"github.com/san-kum/orrery/internal/logging"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/render"
	"github.com/san-kum/orrery/internal/sim"
	"github.com/san-kum/orrery/internal/storage"
)

const statusTTL = 3 * time.Second

var helpLines = []string{
	"click a body to follow it, click again for details",
	"wheel zoom   space pause   r reset view",
	"+/- speed   s snapshot   m sound   h help   q quit",
}

// Deps are the optional collaborators of a window session.
type Deps struct {
	Log       logging.Logger
	Store     *storage.Store
	Observers []sim.Observer
	Preset    string
}

type App struct {
	cfg   *config.Config
	sim   *sim.Context
	pipe  *render.Pipeline
	surf  render.Surface
	epoch time.Time
	log   logging.Logger
	store *storage.Store

	preset string
	player audio.Player
	drone  *audio.Drone
	sound  bool
	muted  bool

	frame    sim.Frame
	help     bool
	quit     bool
	shoot    bool
	status   string
	statusAt time.Time
}

func initWindow(cfg config.WindowConfig) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), cfg.Title)
	rl.SetTargetFPS(int32(cfg.FPS))
	rl.SetExitKey(0)
}

func loadFont(path string) rl.Font {
	if path == "" {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(path, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp wires a simulation context and its observers. The surface is nil
// until the window exists.
func NewApp(cfg *config.Config, deps Deps) *App {
	base := deps.Log
	if base == nil {
		base = logging.Noop()
	}
	log := base.With(logging.String("component", "gui"))

	ctx := sim.New(cfg, sim.WithLogger(base))
	ctx.AddObserver(sim.NewLogObserver(base))
	for _, o := range deps.Observers {
		ctx.AddObserver(o)
	}

	a := &App{
		cfg:    cfg,
		sim:    ctx,
		pipe:   render.NewPipeline(render.ThemeFrom(cfg)),
		log:    log,
		store:  deps.Store,
		preset: deps.Preset,
		frame:  ctx.Last(),
	}
	a.epoch, _ = cfg.EpochTime()

	if cfg.Audio.Enabled {
		if cfg.Audio.Track != "" {
			a.player = audio.NewTrack(cfg.Audio.Track, cfg.Audio.Volume)
		} else {
			a.drone = audio.NewDrone()
			a.player = a.drone
		}
		ctx.AddObserver(a.player)
	}
	return a
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	initWindow(cfg.Window)
	defer rl.CloseWindow()

	app := NewApp(cfg, deps)
	app.surf = &surface{font: loadFont(cfg.Window.Font)}
	defer app.Close()

	app.sim.Post(sim.Resize{Width: rl.GetScreenWidth(), Height: rl.GetScreenHeight()})
	return app.RunLoop(ctx)
}

func (a *App) RunLoop(ctx context.Context) error {
	for !rl.WindowShouldClose() && !a.quit {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		a.Update()
		a.Draw()
	}
	return nil
}

func (a *App) Close() {
	if a.sound {
		if err := a.player.Stop(); err != nil {
			a.log.Warn(context.Background(), "audio stop failed", logging.Err(err))
		}
		a.sound = false
	}
}

// Update polls input and runs one frame.
func (a *App) Update() {
	in := poll()
	a.handle(in)
	a.frame = a.sim.Frame()

	if a.frame.Cursor == sim.CursorPointer {
		rl.SetMouseCursor(rl.MouseCursorPointingHand)
	} else {
		rl.SetMouseCursor(rl.MouseCursorDefault)
	}
}

// handle posts the intents for in and applies the window-only keys.
func (a *App) handle(in controls.Input) {
	for _, it := range controls.Intents(in) {
		a.sim.Post(it)
	}
	switch {
	case a.player == nil:
	case in.Pressed[controls.KeyAudio]:
		a.toggleAudio()
	case in.Gesture() && !a.sound && !a.muted:
		a.startAudio()
	}
	if in.Pressed[controls.KeyHelp] {
		a.help = !a.help
	}
	if in.Pressed[controls.KeySnapshot] {
		a.shoot = true
	}
	if in.Pressed[controls.KeyQuit] {
		a.quit = true
	}
}

// startAudio runs on the first user gesture. Failures only reach the log and
// the status line.
func (a *App) startAudio() {
	a.sound = true
	if err := a.player.Start(); err != nil {
		a.log.Warn(context.Background(), "audio unavailable", logging.Err(err))
		a.setStatus("sound unavailable")
		a.player = nil
		a.drone = nil
		a.sound = false
	}
}

func (a *App) toggleAudio() {
	if !a.sound {
		a.muted = false
		a.startAudio()
		return
	}
	a.muted = true
	a.sound = false
	if err := a.player.Stop(); err != nil {
		a.log.Warn(context.Background(), "audio stop failed", logging.Err(err))
	}
	a.setStatus("sound off")
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusAt = time.Now()
}

func (a *App) Draw() {
	rl.BeginDrawing()

	f := a.frame
	a.pipe.Draw(a.surf, a.sim, f)
	a.pipe.Overlay(a.surf, f, render.NewHUD(f, a.epoch))

	if a.shoot {
		a.shoot = false
		a.capture(f)
	}
	a.drawChrome()

	rl.EndDrawing()
}

// drawChrome draws what never appears in snapshots: the meter, help, status
// and frame rate.
func (a *App) drawChrome() {
	w, h := a.surf.Size()
	dim := a.pipe.Theme.Dim
	size := a.pipe.Theme.LabelSize
	bottom := float64(h) - 20

	a.surf.Text(orbit.Vec2{X: 20, Y: bottom}, size, fmt.Sprintf("%d FPS", rl.GetFPS()), dim, render.AlignLeft)
	if a.drone != nil && a.sound {
		a.surf.Text(orbit.Vec2{X: 20, Y: bottom - 24}, size, "SOUND "+meter(a.drone.Levels()), dim, render.AlignLeft)
	}
	if a.status != "" && time.Since(a.statusAt) < statusTTL {
		a.surf.Text(orbit.Vec2{X: float64(w) / 2, Y: bottom}, size, a.status, a.pipe.Theme.Label, render.AlignCenter)
	}
	if a.help {
		for i, line := range helpLines {
			y := bottom - float64(len(helpLines)-i)*(size+8) - 40
			a.surf.Text(orbit.Vec2{X: float64(w) - 20 - float64(len(line))*size*0.55, Y: y}, size, line, dim, render.AlignLeft)
		}
	} else {
		a.surf.Text(orbit.Vec2{X: float64(w) - 100, Y: bottom}, size, "[H] HELP", dim, render.AlignLeft)
	}
}

// capture grabs the back buffer and stores it as PNG.
func (a *App) capture(f sim.Frame) {
	img := rl.LoadImageFromScreen()
	defer rl.UnloadImage(img)

	where, err := a.saveSnapshot(img.ToImage(), f)
	if err != nil {
		a.log.Error(context.Background(), "snapshot failed", logging.Err(err))
		a.setStatus("snapshot failed")
		return
	}
	a.log.Info(context.Background(), "snapshot saved", logging.String("path", where))
	a.setStatus("saved " + where)
}

// saveSnapshot writes img to the gallery when one is configured, otherwise to
// the configured snapshot file.
func (a *App) saveSnapshot(img image.Image, f sim.Frame) (string, error) {
	var buf bytes.Buffer
	if err := export.EncodePNG(&buf, img); err != nil {
		return "", err
	}
	if a.store != nil {
		meta := storage.Describe(storage.Metadata{Preset: a.preset, Seed: a.cfg.Seed}, f)
		id, err := a.store.SaveSnapshot(meta, string(export.FormatPNG), buf.Bytes())
		if err != nil {
			return "", fmt.Errorf("store snapshot: %w", err)
		}
		return id, nil
	}
	out := a.cfg.Snapshot
	if out == "" {
		out = config.DefaultSnapshotOut
	}
	if !strings.HasSuffix(strings.ToLower(out), export.FormatPNG.Ext()) {
		out += export.FormatPNG.Ext()
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return out, nil
}

func meter(l audio.Levels) string {
	return controls.Meter(l.Bass, l.Mid, l.High, 20)
}
