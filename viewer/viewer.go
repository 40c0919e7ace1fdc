// Package viewer is the read-only organization chart view: it lays out a
// structure, draws its connectors and moves a pan/zoom camera over it.
//
// A Viewer is driven by one UI goroutine and is not safe for concurrent use.
package viewer

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/layout"
	"go.uber.org/zap"
)

// Deps are the collaborators of a Viewer.
type Deps struct {
	Source    orgchart.ChartSource
	Navigator orgchart.Navigator
	// Admin is true when the current user may edit layouts.
	Admin  bool
	Logger *zap.Logger
}

// LoadResult tells the caller what Load did.
type LoadResult int

const (
	Loaded LoadResult = iota
	// Empty means the structure has no members and the user is not an admin.
	Empty
	// Redirected means an admin was sent to the layout editor.
	Redirected
)

// NodeView is a member card to draw.
type NodeView struct {
	Member   *orgchart.Member
	Position orgchart.Position
	Width    float64
	Height   float64
}

// ConnectorView is a connector line to draw.
type ConnectorView struct {
	Path  string
	Color string
	Dash  string
}

// Viewer shows one structure.
type Viewer struct {
	structureID string
	cfg         layout.Config
	deps        Deps
	log         *zap.Logger

	roots       []*orgchart.Member
	positions   layout.Positions
	connections []orgchart.Connection

	camera   *Camera
	viewport Viewport
	fitted   bool
}

// New returns a viewer for structureID using the default layout.
func New(structureID string, deps Deps) *Viewer {
	return NewWithConfig(structureID, layout.DefaultConfig(), deps)
}

// NewWithConfig returns a viewer with a custom layout configuration.
func NewWithConfig(structureID string, cfg layout.Config, deps Deps) *Viewer {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{
		structureID: structureID,
		cfg:         cfg,
		deps:        deps,
		log:         log.With(zap.String("structure_id", structureID)),
		positions:   layout.Positions{},
		camera:      NewCamera(),
	}
}

// Load fetches the member tree and connectors and computes the layout.
// A missing connector list is not an error; the chart is drawn without lines.
func (v *Viewer) Load(ctx context.Context) (LoadResult, error) {
	roots, err := v.deps.Source.Tree(ctx, v.structureID)
	if err != nil {
		return Loaded, fmt.Errorf("viewer: load tree: %w", err)
	}
	v.roots = roots

	if len(roots) == 0 {
		v.positions = layout.Positions{}
		v.connections = nil
		if v.deps.Admin && v.structureID != "" && v.deps.Navigator != nil {
			v.deps.Navigator.Navigate(orgchart.EditorPath(v.structureID))
			return Redirected, nil
		}
		return Empty, nil
	}

	pos, err := layout.Compute(roots, v.cfg)
	if err != nil {
		return Loaded, fmt.Errorf("viewer: layout: %w", err)
	}
	v.positions = pos

	conns, err := v.deps.Source.Connections(ctx, v.structureID)
	if err != nil {
		v.log.Warn("no connections loaded, drawing without lines", zap.Error(err))
		conns = nil
	}
	v.connections = conns

	v.log.Debug("chart loaded", zap.Int("nodes", len(pos)), zap.Int("connections", len(conns)))
	v.autoFit()
	return Loaded, nil
}

// SetViewport records the visible area. The first time both a layout and a
// viewport are known the chart is fitted once.
func (v *Viewer) SetViewport(vp Viewport) {
	v.viewport = vp
	v.autoFit()
}

func (v *Viewer) autoFit() {
	if v.fitted || len(v.positions) == 0 || v.viewport.Width <= 0 || v.viewport.Height <= 0 {
		return
	}
	v.FitToView()
	v.fitted = true
}

// Camera exposes the current transform.
func (v *Viewer) Camera() *Camera { return v.camera }

// Positions returns the computed layout.
func (v *Viewer) Positions() layout.Positions { return v.positions }

// FitToView shows every card.
func (v *Viewer) FitToView() {
	b, ok := layout.BoundingBox(v.positions, v.cfg)
	if !ok {
		return
	}
	v.camera.Fit(b, v.viewport)
}

// ZoomToActualSize shows the chart at 100%, centered.
func (v *Viewer) ZoomToActualSize() {
	b, ok := layout.BoundingBox(v.positions, v.cfg)
	if !ok {
		return
	}
	v.camera.ActualSize(b, v.viewport)
}

// ZoomToNode centers and zooms in on one card. It reports whether the node
// is on the chart.
func (v *Viewer) ZoomToNode(id string) bool {
	pos, ok := v.positions[id]
	if !ok {
		return false
	}
	v.camera.Inspect(layout.Anchor(pos, v.cfg), v.viewport)
	return true
}

// DoubleClickNode is the double-click gesture on a card.
func (v *Viewer) DoubleClickNode(id string) bool { return v.ZoomToNode(id) }

// Wheel zooms around the cursor, given in viewport coordinates.
func (v *Viewer) Wheel(cursor orgchart.Point, deltaY float64) { v.camera.Wheel(cursor, deltaY) }

// ZoomIn is the + button.
func (v *Viewer) ZoomIn() { v.camera.ZoomIn(v.viewport) }

// ZoomOut is the − button.
func (v *Viewer) ZoomOut() { v.camera.ZoomOut(v.viewport) }

// PointerDownCanvas starts a pan. Presses on cards never reach it.
func (v *Viewer) PointerDownCanvas(p orgchart.Point) { v.camera.BeginPan(p) }

// PointerMove pans while panning.
func (v *Viewer) PointerMove(p orgchart.Point) { v.camera.PanTo(p) }

// PointerUp ends a pan.
func (v *Viewer) PointerUp() { v.camera.EndPan() }

// PointerLeave ends a pan when the pointer leaves the canvas.
func (v *Viewer) PointerLeave() { v.camera.EndPan() }

// EditLayout sends an admin to the layout editor. It reports whether the
// user was allowed to go.
func (v *Viewer) EditLayout() bool {
	if !v.deps.Admin || v.deps.Navigator == nil {
		return false
	}
	v.deps.Navigator.Navigate(orgchart.EditorPath(v.structureID))
	return true
}

// Nodes returns every card in tree pre-order.
func (v *Viewer) Nodes() []NodeView {
	var out []NodeView
	orgchart.Walk(v.roots, func(m *orgchart.Member) bool {
		if pos, ok := v.positions[m.ID]; ok {
			out = append(out, NodeView{Member: m, Position: pos, Width: v.cfg.NodeWidth, Height: v.cfg.NodeHeight})
		}
		return true
	})
	return out
}

// Connectors returns every drawable connector.
func (v *Viewer) Connectors() []ConnectorView {
	routes := layout.Routes(v.connections, v.positions, v.cfg)
	out := make([]ConnectorView, 0, len(routes))
	for _, r := range routes {
		out = append(out, ConnectorView{
			Path:  r.PathData(),
			Color: r.Connection.Color,
			Dash:  r.Connection.Type.DashArray(),
		})
	}
	return out
}
