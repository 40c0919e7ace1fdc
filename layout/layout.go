// Package layout computes member card positions and connector geometry for
// organization charts. Everything here is a pure function of its inputs so
// the editor, the viewer and the SVG renderer agree on every coordinate.
package layout

import (
	"math"

	"github.com/meikuraledutech/orgchart"
)

// Config holds the card size and spacing of the default layout.
type Config struct {
	NodeWidth   float64 `yaml:"node_width"`
	NodeHeight  float64 `yaml:"node_height"`
	GridSize    float64 `yaml:"grid_size"`
	SiblingGap  float64 `yaml:"sibling_gap"`
	RootGap     float64 `yaml:"root_gap"`
	VerticalGap float64 `yaml:"vertical_gap"`
	CanvasWidth float64 `yaml:"canvas_width"`
	MinRootX    float64 `yaml:"min_root_x"`
	RootY       float64 `yaml:"root_y"`
}

// DefaultConfig returns the layout used by the editor and the viewer.
func DefaultConfig() Config {
	return Config{
		NodeWidth:   280,
		NodeHeight:  160,
		GridSize:    20,
		SiblingGap:  60,
		RootGap:     120,
		VerticalGap: 80,
		CanvasWidth: 3000,
		MinRootX:    400,
		RootY:       400,
	}
}

// Positions maps member ids to card positions.
type Positions map[string]orgchart.Position

// Snap rounds v to the nearest multiple of grid.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapPoint snaps both coordinates of p.
func SnapPoint(p orgchart.Point, grid float64) orgchart.Point {
	return orgchart.Point{X: Snap(p.X, grid), Y: Snap(p.Y, grid)}
}

// Compute walks the forest depth-first in pre-order and assigns a position to
// every member. Members with a saved custom position keep it verbatim; the
// rest are placed relative to their parent and snapped to the grid.
func Compute(roots []*orgchart.Member, cfg Config) (Positions, error) {
	out := make(Positions)
	visited := make(map[string]bool)

	var place func(nodes []*orgchart.Member, parent *orgchart.Position) error
	place = func(nodes []*orgchart.Member, parent *orgchart.Position) error {
		for i, n := range nodes {
			if visited[n.ID] {
				return orgchart.ErrMalformedTree
			}
			visited[n.ID] = true

			var pos orgchart.Position
			if n.HasCustomPosition() {
				pos = orgchart.Position{ID: n.ID, X: *n.CustomX, Y: *n.CustomY}
			} else {
				pos = defaultPosition(cfg, n.ID, i, len(nodes), parent)
			}
			out[n.ID] = pos

			if len(n.Children) > 0 {
				if err := place(n.Children, &pos); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := place(roots, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func defaultPosition(cfg Config, id string, index, count int, parent *orgchart.Position) orgchart.Position {
	var x, y float64
	if parent != nil {
		step := cfg.NodeWidth + cfg.SiblingGap
		x = parent.X + float64(index)*step - float64(count-1)*step/2
		y = parent.Y + cfg.NodeHeight + cfg.VerticalGap
	} else {
		step := cfg.NodeWidth + cfg.RootGap
		total := float64(count) * step
		startX := math.Max(cfg.MinRootX, (cfg.CanvasWidth-total)/2)
		x = startX + float64(index)*step
		y = cfg.RootY
	}
	return orgchart.Position{
		ID: id,
		X:  Snap(x, cfg.GridSize),
		Y:  Snap(y, cfg.GridSize),
	}
}
