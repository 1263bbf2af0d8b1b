package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything the panel can lay out vertically.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
}

// Panel stacks labeled widgets on a translucent background. Widgets are
// positioned once, at Add time; the panel does not scroll.
type Panel struct {
	X, Y    float64
	Width   float64
	widgets []Widget
	labels  []string
	nextY   float64
}

// NewPanel creates an empty panel anchored at (x, y).
func NewPanel(x, y, width float64) *Panel {
	return &Panel{X: x, Y: y, Width: width, nextY: y + 24}
}

// AddSlider appends a slider row and returns it for value reads.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, p.nextY+16, p.Width-20, label, min, max, value)
	p.widgets = append(p.widgets, s)
	p.labels = append(p.labels, label)
	p.nextY += 38
	return s
}

// AddCheckbox appends a checkbox row and returns it for value reads.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, p.nextY+2, label, value)
	p.widgets = append(p.widgets, c)
	p.labels = append(p.labels, label)
	p.nextY += 24
	return c
}

// Contains reports whether the screen point (x, y) falls inside the panel.
// The game uses it to keep panel clicks from setting a flock target.
func (p *Panel) Contains(x, y int) bool {
	return float64(x) >= p.X && float64(x) <= p.X+p.Width &&
		float64(y) >= p.Y && float64(y) <= p.nextY+6
}

// Update handles input for all widgets.
func (p *Panel) Update() {
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel background, labels and widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	h := p.nextY + 6 - p.Y
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(h),
		color.RGBA{R: 40, G: 40, B: 45, A: 230}, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(h),
		2, color.RGBA{R: 100, G: 100, B: 110, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, "Settings", int(p.X+10), int(p.Y+4))

	y := p.Y + 24.0
	for i, w := range p.widgets {
		switch w.(type) {
		case *Slider:
			ebitenutil.DebugPrintAt(screen, p.labels[i], int(p.X+10), int(y))
			y += 38
		case *Checkbox:
			ebitenutil.DebugPrintAt(screen, p.labels[i], int(p.X+30), int(y))
			y += 24
		}
		w.Draw(screen)
	}
}
