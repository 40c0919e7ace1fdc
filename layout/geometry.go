package layout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/meikuraledutech/orgchart"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrSegment is returned for a segment or waypoint index that does not exist.
var ErrSegment = errors.New("layout: index out of range")

func vec(p orgchart.Point) r2.Vec   { return r2.Vec{X: p.X, Y: p.Y} }
func point(v r2.Vec) orgchart.Point { return orgchart.Point{X: v.X, Y: v.Y} }

// Anchor returns the center of the card at pos. Connector endpoints always
// attach here, never to the card border.
func Anchor(pos orgchart.Position, cfg Config) orgchart.Point {
	half := r2.Vec{X: cfg.NodeWidth / 2, Y: cfg.NodeHeight / 2}
	return point(r2.Add(vec(pos.Point()), half))
}

// ElbowPath is the default connector route: down from the source to the
// vertical midpoint, across, then down into the target.
func ElbowPath(from, to orgchart.Point) []orgchart.Point {
	midY := (from.Y + to.Y) / 2
	return []orgchart.Point{
		from,
		{X: from.X, Y: midY},
		{X: to.X, Y: midY},
		to,
	}
}

// ConnectorPath returns the polyline of a connector. Any waypoint replaces the
// elbow wholesale.
func ConnectorPath(from, to orgchart.Point, waypoints []orgchart.Point) []orgchart.Point {
	if len(waypoints) == 0 {
		return ElbowPath(from, to)
	}
	return ControlPolyline(from, to, waypoints)
}

// ControlPolyline is [from, waypoints..., to]; waypoint insert handles sit on
// its segment midpoints.
func ControlPolyline(from, to orgchart.Point, waypoints []orgchart.Point) []orgchart.Point {
	pts := make([]orgchart.Point, 0, len(waypoints)+2)
	pts = append(pts, from)
	pts = append(pts, waypoints...)
	return append(pts, to)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b orgchart.Point) orgchart.Point {
	return point(r2.Scale(0.5, r2.Add(vec(a), vec(b))))
}

// SegmentMidpoints returns the midpoint of every consecutive pair of points.
func SegmentMidpoints(pts []orgchart.Point) []orgchart.Point {
	if len(pts) < 2 {
		return nil
	}
	mids := make([]orgchart.Point, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		mids = append(mids, Midpoint(pts[i], pts[i+1]))
	}
	return mids
}

// InsertWaypoint returns a copy of wps with p inserted at index i. Segment i
// of the control polyline ends at waypoint i, so inserting the midpoint of
// segment i at index i keeps the path order.
func InsertWaypoint(wps []orgchart.Point, i int, p orgchart.Point) ([]orgchart.Point, error) {
	if i < 0 || i > len(wps) {
		return nil, fmt.Errorf("%w: waypoint %d of [0,%d]", ErrSegment, i, len(wps))
	}
	out := make([]orgchart.Point, 0, len(wps)+1)
	out = append(out, wps[:i]...)
	out = append(out, p)
	return append(out, wps[i:]...), nil
}

// RemoveWaypoint returns a copy of wps without index i.
func RemoveWaypoint(wps []orgchart.Point, i int) ([]orgchart.Point, error) {
	if i < 0 || i >= len(wps) {
		return nil, fmt.Errorf("%w: waypoint %d of [0,%d)", ErrSegment, i, len(wps))
	}
	out := make([]orgchart.Point, 0, len(wps)-1)
	out = append(out, wps[:i]...)
	return append(out, wps[i+1:]...), nil
}

// MoveWaypoint returns a copy of wps with index i replaced by p.
func MoveWaypoint(wps []orgchart.Point, i int, p orgchart.Point) ([]orgchart.Point, error) {
	if i < 0 || i >= len(wps) {
		return nil, fmt.Errorf("%w: waypoint %d of [0,%d)", ErrSegment, i, len(wps))
	}
	out := append([]orgchart.Point{}, wps...)
	out[i] = p
	return out, nil
}

// Bounds is an axis-aligned box in canvas coordinates.
type Bounds struct {
	Min, Max orgchart.Point
}

// Width of the box.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height of the box.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Center of the box.
func (b Bounds) Center() orgchart.Point { return Midpoint(b.Min, b.Max) }

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p orgchart.Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// BoundingBox covers every card. ok is false when there are no positions.
func BoundingBox(positions Positions, cfg Config) (b Bounds, ok bool) {
	if len(positions) == 0 {
		return Bounds{}, false
	}
	box := r2.Box{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, p := range positions {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X+cfg.NodeWidth)
		box.Max.Y = math.Max(box.Max.Y, p.Y+cfg.NodeHeight)
	}
	return Bounds{Min: point(box.Min), Max: point(box.Max)}, true
}

// ToScreen applies screen = canvas*scale + offset.
func ToScreen(p orgchart.Point, scale float64, offset orgchart.Point) orgchart.Point {
	return point(r2.Add(r2.Scale(scale, vec(p)), vec(offset)))
}

// ToCanvas inverts ToScreen.
func ToCanvas(p orgchart.Point, scale float64, offset orgchart.Point) orgchart.Point {
	d := r2.Sub(vec(p), vec(offset))
	return orgchart.Point{X: d.X / scale, Y: d.Y / scale}
}

// PathData renders a polyline as SVG path data ("M x y L x y ...").
func PathData(pts []orgchart.Point) string {
	var sb strings.Builder
	for i, p := range pts {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	return sb.String()
}
