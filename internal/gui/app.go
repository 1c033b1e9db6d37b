package gui

import (
	"fmt"
	"log"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/physbox/internal/config"
	"github.com/san-kum/physbox/internal/metrics"
	"github.com/san-kum/physbox/internal/physics"
	"github.com/san-kum/physbox/internal/sandbox"
	"github.com/san-kum/physbox/internal/scene"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColFloor   = rl.NewColor(119, 119, 119, 255)
	ColBody    = rl.NewColor(200, 200, 200, 255)
)

// gravityNudge is how far Up/Down move the gravity slider per frame.
const gravityNudge = 0.05

type App struct {
	Session *sandbox.Session
	Camera  rl.Camera3D
	Font    rl.Font

	Telemetry  []float64
	MaxHistory int

	sound    rl.Sound
	soundOK  bool
	width    int32
	height   int32
	showHelp bool
	quit     bool
}

type action int

const (
	actionQuit action = iota
	actionBox
	actionSphere
	actionReset
	actionHelp
)

// keyActions are triggered once per key press.
var keyActions = []struct {
	key int32
	act action
}{
	{rl.KeyQ, actionQuit},
	{rl.KeyB, actionBox},
	{rl.KeyS, actionSphere},
	{rl.KeyR, actionReset},
	{rl.KeyH, actionHelp},
}

func initWindow(w config.WindowConfig) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w.Width), int32(w.Height), "physbox")
	rl.SetTargetFPS(int32(w.FPS))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// soundPlayer plays one loaded sound through the raylib mixer.
type soundPlayer struct {
	sound rl.Sound
}

func (p soundPlayer) Rewind()             { rl.StopSound(p.sound) }
func (p soundPlayer) SetVolume(v float64) { rl.SetSoundVolume(p.sound, float32(v)) }
func (p soundPlayer) Play()               { rl.PlaySound(p.sound) }

func NewApp(s *sandbox.Session) *App {
	cfg := s.Config()
	app := &App{
		Session:    s,
		Font:       loadFont(),
		MaxHistory: 200,
		Telemetry:  make([]float64, 0, 200),
		width:      int32(cfg.Window.Width),
		height:     int32(cfg.Window.Height),
		showHelp:   true,
	}
	app.syncCamera(s.Camera)

	rl.InitAudioDevice()
	if rl.IsAudioDeviceReady() && cfg.Sound.Enabled {
		app.sound = rl.LoadSound(cfg.Sound.Asset)
		app.soundOK = app.sound.FrameCount > 0
	}
	if app.soundOK {
		s.SetPlayer(soundPlayer{sound: app.sound})
	} else {
		log.Printf("[GUI] sound %q unavailable, impacts are silent", cfg.Sound.Asset)
	}

	s.SetRenderer(app)
	s.Resize(cfg.Window.Width, cfg.Window.Height, float64(rl.GetWindowScaleDPI().X))
	return app
}

// Run opens the window and drives the session until it is closed.
func Run(s *sandbox.Session) {
	initWindow(s.Config().Window)
	defer rl.CloseWindow()

	app := NewApp(s)
	defer app.Close()
	app.RunLoop()
}

func (a *App) Close() {
	if a.soundOK {
		rl.UnloadSound(a.sound)
	}
	rl.CloseAudioDevice()
}

// RunLoop handles input and ticks the session until the window is closed
// or Q is pressed. The window itself is closed by Run.
func (a *App) RunLoop() {
	for !a.done(rl.WindowShouldClose()) {
		a.Update()
		if a.quit {
			return
		}
		a.Session.Tick()
	}
}

func (a *App) done(closeRequested bool) bool {
	return a.quit || closeRequested
}

func (a *App) apply(act action) {
	s := a.Session
	switch act {
	case actionQuit:
		a.quit = true
	case actionBox:
		s.CreateRandomBox()
	case actionSphere:
		s.CreateRandomSphere()
	case actionReset:
		s.ResetAll()
	case actionHelp:
		a.showHelp = !a.showHelp
	}
}

// Update applies keyboard and mouse input for one frame.
func (a *App) Update() {
	s := a.Session
	for _, ka := range keyActions {
		if rl.IsKeyPressed(ka.key) {
			a.apply(ka.act)
		}
	}
	if a.quit {
		return
	}
	if rl.IsKeyDown(rl.KeyUp) {
		s.SetGravity(s.Gravity() + gravityNudge)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		s.SetGravity(s.Gravity() - gravityNudge)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		if o := s.Orbit(); o != nil {
			o.Rotate(-float64(d.X)*0.005, -float64(d.Y)*0.005)
		}
	}

	if rl.IsWindowResized() {
		a.width, a.height = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		s.Resize(int(a.width), int(a.height), float64(rl.GetWindowScaleDPI().X))
	}
}

func (a *App) syncCamera(c *scene.Camera) {
	a.Camera = rl.NewCamera3D(
		vec3(c.Position),
		vec3(c.Target),
		rl.NewVector3(0, 1, 0),
		float32(c.FOV),
		rl.CameraPerspective,
	)
}

// Render draws one frame. The session calls it after every step.
func (a *App) Render(sc *scene.Scene, c *scene.Camera) {
	a.syncCamera(c)
	a.recordEnergy()

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	for _, m := range sc.Meshes() {
		drawMesh(m)
	}
	rl.EndMode3D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) recordEnergy() {
	objs := a.Session.Registry.Objects()
	bodies := make([]*physics.Body, len(objs))
	for i, o := range objs {
		bodies[i] = o.Body
	}
	e := metrics.TotalEnergy(bodies, a.Session.Gravity())
	a.Telemetry = append(a.Telemetry, e)
	if len(a.Telemetry) > a.MaxHistory {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) DrawHUD() {
	s := a.Session
	a.drawText("physbox", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %d objects", s.Registry.Len()), 150, 34, 16, ColText)

	a.drawGravitySlider(30, 70, 240)
	a.DrawTelemetry()

	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, a.height-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("impacts %d", s.Sounds()), 110, a.height-40, 14, ColTextDim)
	if a.showHelp {
		help := []string{"[B] BOX", "[S] SPHERE", "[R] RESET", "[UP/DOWN] GRAVITY", "[DRAG] ORBIT", "[H] HELP", "[Q] QUIT"}
		a.drawText(strings.Join(help, "  "), a.width-620, a.height-40, 14, ColTextDim)
	}
}

func (a *App) drawGravitySlider(x, y, w int32) {
	g := a.Session.Gravity()
	frac := (g - config.GravityMin) / (config.GravityMax - config.GravityMin)
	rl.DrawRectangle(x, y+20, w, 2, ColTextDim)
	knob := x + int32(frac*float64(w))
	rl.DrawRectangle(knob-3, y+14, 6, 14, ColSelect)
	a.drawText(fmt.Sprintf("gravity %.4f", g), x, y, 14, ColText)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := int32(30), a.height-130
	width, height := int32(400), int32(60)

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2f J", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawText(text string, x, y int32, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
