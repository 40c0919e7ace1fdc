package viewer

import (
	"math"
	"time"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/layout"
	"gonum.org/v1/gonum/spatial/r2"
)

// Zoom limits and steps.
const (
	MinScale     = 0.1
	MaxScale     = 3.0
	InspectScale = 1.2

	WheelIn   = 1.05
	WheelOut  = 0.95
	ButtonIn  = 1.1
	ButtonOut = 1 / 1.1

	// FitPadding is kept free around the content when fitting.
	FitPadding = 100.0
	// FitNudge lifts fitted content above the bottom tab bar.
	FitNudge = 40.0
)

// Animation lengths of programmatic camera moves.
const (
	ZoomAnimation   = 300 * time.Millisecond
	ButtonAnimation = 200 * time.Millisecond
)

// PanState is the state of the pan gesture.
type PanState int

const (
	Idle PanState = iota
	Panning
)

func (s PanState) String() string {
	if s == Panning {
		return "panning"
	}
	return "idle"
}

// Viewport is the visible area in screen pixels.
type Viewport struct {
	Width, Height float64
}

// Center of the viewport in screen coordinates.
func (v Viewport) Center() orgchart.Point {
	return orgchart.Point{X: v.Width / 2, Y: v.Height / 2}
}

// Transition describes how the next transform change is drawn.
type Transition struct {
	Duration time.Duration
	Easing   string
}

// CSS renders the transition as a CSS transition value.
func (t Transition) CSS() string {
	if t.Duration == 0 {
		return "none"
	}
	return "transform " + t.Duration.String() + " " + t.Easing
}

// Camera is a similarity transform without rotation:
// screen = canvas*Scale + Offset.
type Camera struct {
	Scale  float64
	Offset orgchart.Point

	state     PanState
	panAnchor orgchart.Point

	animUntil time.Time
	animFor   time.Duration
	now       func() time.Time
}

// NewCamera returns a camera at 100% with no offset.
func NewCamera() *Camera {
	return &Camera{Scale: 1, now: time.Now}
}

func clampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// ToScreen maps a canvas point to the screen.
func (c *Camera) ToScreen(p orgchart.Point) orgchart.Point {
	return layout.ToScreen(p, c.Scale, c.Offset)
}

// ToCanvas maps a screen point to the canvas.
func (c *Camera) ToCanvas(p orgchart.Point) orgchart.Point {
	return layout.ToCanvas(p, c.Scale, c.Offset)
}

// ZoomAt multiplies the scale by factor, clamped, keeping the canvas point
// under anchor fixed on screen. It returns the applied scale.
func (c *Camera) ZoomAt(anchor orgchart.Point, factor float64) float64 {
	next := clampScale(c.Scale * factor)
	ratio := next / c.Scale
	a := r2.Vec{X: anchor.X, Y: anchor.Y}
	o := r2.Vec{X: c.Offset.X, Y: c.Offset.Y}
	// offset' = anchor - (anchor - offset) * ratio
	off := r2.Sub(a, r2.Scale(ratio, r2.Sub(a, o)))
	c.Scale = next
	c.Offset = orgchart.Point{X: off.X, Y: off.Y}
	return next
}

// CenterOn sets scale and places the canvas point p at the viewport center,
// raised by nudge pixels.
func (c *Camera) CenterOn(p orgchart.Point, scale float64, vp Viewport, nudge float64) {
	c.Scale = scale
	c.Offset = orgchart.Point{
		X: vp.Width/2 - p.X*scale,
		Y: vp.Height/2 - p.Y*scale - nudge,
	}
}

// FitScale is the largest scale, never above 1, at which b fits in vp with
// padding on every side.
func FitScale(b layout.Bounds, vp Viewport, padding float64) float64 {
	s := 1.0
	if w := b.Width(); w > 0 {
		s = math.Min(s, (vp.Width-2*padding)/w)
	}
	if h := b.Height(); h > 0 {
		s = math.Min(s, (vp.Height-2*padding)/h)
	}
	return s
}

// Fit shows all of b.
func (c *Camera) Fit(b layout.Bounds, vp Viewport) {
	c.CenterOn(b.Center(), FitScale(b, vp, FitPadding), vp, FitNudge)
	c.animate(ZoomAnimation)
}

// ActualSize shows b at 100%, centered.
func (c *Camera) ActualSize(b layout.Bounds, vp Viewport) {
	c.CenterOn(b.Center(), 1, vp, FitNudge)
	c.animate(ZoomAnimation)
}

// Inspect zooms in on a single canvas point.
func (c *Camera) Inspect(p orgchart.Point, vp Viewport) {
	c.CenterOn(p, InspectScale, vp, 0)
	c.animate(ZoomAnimation)
}

// Wheel zooms one tick around the cursor. Positive deltaY zooms out.
func (c *Camera) Wheel(cursor orgchart.Point, deltaY float64) {
	factor := WheelIn
	if deltaY > 0 {
		factor = WheelOut
	}
	c.animUntil = time.Time{}
	c.ZoomAt(cursor, factor)
}

// ZoomIn zooms one button step around the viewport center.
func (c *Camera) ZoomIn(vp Viewport) {
	c.ZoomAt(vp.Center(), ButtonIn)
	c.animate(ButtonAnimation)
}

// ZoomOut zooms one button step around the viewport center.
func (c *Camera) ZoomOut(vp Viewport) {
	c.ZoomAt(vp.Center(), ButtonOut)
	c.animate(ButtonAnimation)
}

// BeginPan starts panning from screen point p.
func (c *Camera) BeginPan(p orgchart.Point) {
	c.state = Panning
	c.panAnchor = orgchart.Point{X: p.X - c.Offset.X, Y: p.Y - c.Offset.Y}
}

// PanTo moves the canvas with the pointer. It is a no-op when idle.
func (c *Camera) PanTo(p orgchart.Point) {
	if c.state != Panning {
		return
	}
	c.Offset = orgchart.Point{X: p.X - c.panAnchor.X, Y: p.Y - c.panAnchor.Y}
}

// EndPan returns to idle.
func (c *Camera) EndPan() { c.state = Idle }

// State returns the pan state.
func (c *Camera) State() PanState { return c.state }

func (c *Camera) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *Camera) animate(d time.Duration) {
	c.animFor = d
	c.animUntil = c.clock().Add(d)
}

// Animating reports whether a programmatic move is still easing in.
func (c *Camera) Animating() bool {
	return c.clock().Before(c.animUntil)
}

// Transition returns how to draw the current transform: instant while panning
// or for direct input, eased while a programmatic move is animating.
func (c *Camera) Transition() Transition {
	if c.state == Panning || !c.Animating() {
		return Transition{}
	}
	return Transition{Duration: c.animFor, Easing: "ease-out"}
}

// ZoomPercent is the scale rounded to whole percent.
func (c *Camera) ZoomPercent() int {
	return int(math.Round(c.Scale * 100))
}
