package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/ui"
)

// groupPalette maps group tags to draw colors, cycling for large group counts.
var groupPalette = []color.RGBA{
	{R: 240, G: 240, B: 240, A: 255}, // white
	{R: 255, G: 255, B: 0, A: 255},   // yellow
	{R: 80, G: 140, B: 255, A: 255},  // blue
	{R: 255, G: 0, B: 255, A: 255},   // magenta
	{R: 50, G: 220, B: 50, A: 255},   // green
	{R: 255, G: 60, B: 60, A: 255},   // red
	{R: 0, G: 255, B: 255, A: 255},   // cyan
}

// Game is the ebiten binding around a flock.World. It owns no simulation
// state beyond the latest snapshot; all interaction goes through the world's
// command queue.
type Game struct {
	world    *flock.World
	cfg      *flock.Config
	snapshot []flock.AgentState

	panel      *ui.Panel
	wSep       *ui.Slider
	wAlign     *ui.Slider
	wCoh       *ui.Slider
	wEvade     *ui.Slider
	wTarget    *ui.Slider
	wLeader    *ui.Slider
	wMaxSpeed  *ui.Slider
	wMinSpeed  *ui.Slider
	chkWalls   *ui.Checkbox
	wallsState bool

	// Rolling tick-time average (ms), exponential moving average.
	tickAvg float64
}

// New builds the game around a freshly initialized world.
func New(cfg *flock.Config) (*Game, error) {
	world, err := flock.NewWorld(cfg)
	if err != nil {
		return nil, err
	}

	panel := ui.NewPanel(10, 10, 230)
	g := &Game{
		world:      world,
		cfg:        cfg,
		panel:      panel,
		wSep:       panel.AddSlider("Separation", 0, 0.5, cfg.SeparationWeight),
		wAlign:     panel.AddSlider("Alignment", 0, 0.2, cfg.AlignmentWeight),
		wCoh:       panel.AddSlider("Cohesion", 0, 0.02, cfg.CohesionWeight),
		wEvade:     panel.AddSlider("Wall push", 0, 3, cfg.EvasionWeight),
		wTarget:    panel.AddSlider("Target pull", 0, 0.002, cfg.TargetWeight),
		wLeader:    panel.AddSlider("Leader pull", 0, 0.002, cfg.LeaderWeight),
		wMaxSpeed:  panel.AddSlider("Max speed", 1, 12, cfg.MaxSpeed),
		wMinSpeed:  panel.AddSlider("Min speed", 0, 8, cfg.MinSpeed),
		chkWalls:   panel.AddCheckbox("Wall evasion (W)", true),
		wallsState: true,
	}
	return g, nil
}

// Update handles input, pushes UI values into the config and runs one tick.
func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.tickAvg = g.tickAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// Live-tunable weights. Applied between ticks, so every rule evaluation
	// within one tick sees a single consistent set.
	g.cfg.SeparationWeight = g.wSep.Value
	g.cfg.AlignmentWeight = g.wAlign.Value
	g.cfg.CohesionWeight = g.wCoh.Value
	g.cfg.EvasionWeight = g.wEvade.Value
	g.cfg.TargetWeight = g.wTarget.Value
	g.cfg.LeaderWeight = g.wLeader.Value
	g.cfg.MaxSpeed = g.wMaxSpeed.Value
	if g.wMinSpeed.Value > g.wMaxSpeed.Value {
		g.wMinSpeed.Value = g.wMaxSpeed.Value
	}
	g.cfg.MinSpeed = g.wMinSpeed.Value

	// Keyboard bindings.
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.chkWalls.Value = !g.chkWalls.Value
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.world.ToggleLeader()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.world.ClearTarget()
	}

	// The checkbox mirrors the world's wall-evasion state whichever way it
	// was flipped (click or key).
	if g.chkWalls.Value != g.wallsState {
		g.world.ToggleWallEvasion()
		g.wallsState = g.chkWalls.Value
	}

	// Left click outside the panel drops the flock target there.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if !g.panel.Contains(mx, my) {
			g.world.SetTarget(geometry.NewVector(float64(mx), float64(my)))
		}
	}

	g.world.Tick()
	g.snapshot = g.world.Snapshot(g.snapshot[:0])
	return nil
}

// Draw renders the flock, the target and leader markers, the panel and a HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	tog := g.world.Toggles()
	if tog.HasTarget {
		vector.FillCircle(screen, float32(tog.Target.X), float32(tog.Target.Y), 8,
			color.RGBA{R: 255, G: 60, B: 60, A: 255}, true)
	}

	for i := range g.snapshot {
		b := &g.snapshot[i]
		if b.Leader {
			vector.StrokeCircle(screen, float32(b.Pos.X), float32(b.Pos.Y), 18, 3,
				color.RGBA{R: 255, G: 255, B: 0, A: 255}, true)
		}
		drawBoid(screen, b)
	}

	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nTick: %.2fms  Boids: %d\nClick: target  Space: clear  W: walls  L: leader",
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.tickAvg, len(g.snapshot))
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.ScreenWidth)-360, 10)
}

// drawBoid renders one boid as a triangle pointing along its velocity.
func drawBoid(screen *ebiten.Image, b *flock.AgentState) {
	angle := math.Atan2(b.Vel.Y, b.Vel.X)

	tipX := b.Pos.X + math.Cos(angle)*7
	tipY := b.Pos.Y + math.Sin(angle)*7
	rightX := b.Pos.X + math.Cos(angle+2.5)*5
	rightY := b.Pos.Y + math.Sin(angle+2.5)*5
	leftX := b.Pos.X + math.Cos(angle-2.5)*5
	leftY := b.Pos.Y + math.Sin(angle-2.5)*5

	clr := groupPalette[int(b.Group)%len(groupPalette)]
	r := float32(clr.R) / 255
	gcol := float32(clr.G) / 255
	bl := float32(clr.B) / 255

	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: gcol, ColorB: bl, ColorA: 1},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: gcol, ColorB: bl, ColorA: 1},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: r, ColorG: gcol, ColorB: bl, ColorA: 1},
	}
	indices := []uint16{0, 1, 2}

	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

// Layout implements ebiten.Game.
func (g *Game) Layout(w, h int) (int, int) {
	return int(g.cfg.ScreenWidth), int(g.cfg.ScreenHeight)
}

var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}
