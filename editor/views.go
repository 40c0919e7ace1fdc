package editor

import (
	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/layout"
)

// NodeView is a card to draw.
type NodeView struct {
	Member        *orgchart.Member
	Position      orgchart.Position
	Dragging      bool
	ConnectSource bool
	// Cursor is the CSS cursor over the card.
	Cursor string
}

// ConnectorView is a connector to draw with its editing handles.
type ConnectorView struct {
	Index  int
	ID     string
	Points []orgchart.Point
	Path   string
	Color  string
	Dash   string

	// Insert handles sit on every segment midpoint of the control polyline;
	// move mode only.
	InsertHandles []orgchart.Point
	// Waypoint handles can be dragged or removed; move mode only.
	WaypointHandles []orgchart.Point
	// Delete is the delete button; delete-connection mode only.
	Delete *orgchart.Point
}

// PreviewView is the line following the pointer while a connection is drawn.
type PreviewView struct {
	Path    string
	Color   string
	Dash    string
	Opacity float64
}

func (e *Editor) cursorCSS() string {
	switch e.st.mode {
	case ModeMove:
		return "move"
	case ModeConnect:
		return "crosshair"
	default:
		return "default"
	}
}

// Nodes returns every card in tree pre-order.
func (e *Editor) Nodes() []NodeView {
	var out []NodeView
	dragged, _ := e.DraggedNode()
	orgchart.Walk(e.roots, func(m *orgchart.Member) bool {
		pos, ok := e.positions[m.ID]
		if !ok {
			return true
		}
		out = append(out, NodeView{
			Member:        m,
			Position:      pos,
			Dragging:      dragged == m.ID,
			ConnectSource: e.st.source == m.ID,
			Cursor:        e.cursorCSS(),
		})
		return true
	})
	return out
}

// Connectors returns every drawable connector, routed against the current
// positions so moved cards never leave stale lines behind.
func (e *Editor) Connectors() []ConnectorView {
	routes := layout.Routes(e.connections, e.positions, e.cfg)
	out := make([]ConnectorView, 0, len(routes))
	for _, r := range routes {
		v := ConnectorView{
			Index:  r.Index,
			ID:     r.Connection.ID,
			Points: r.Path,
			Path:   r.PathData(),
			Color:  r.Connection.Color,
			Dash:   r.Connection.Type.DashArray(),
		}
		switch e.st.mode {
		case ModeMove:
			v.InsertHandles = layout.SegmentMidpoints(layout.ControlPolyline(r.From, r.To, r.Connection.Waypoints))
			v.WaypointHandles = append([]orgchart.Point{}, r.Connection.Waypoints...)
		case ModeDeleteConnection:
			mid := layout.Midpoint(r.From, r.To)
			v.Delete = &mid
		}
		out = append(out, v)
	}
	return out
}

// Preview returns the elbow from the pending source to the pointer.
func (e *Editor) Preview() (PreviewView, bool) {
	if e.st.mode != ModeConnect || e.st.source == "" {
		return PreviewView{}, false
	}
	pos, ok := e.positions[e.st.source]
	if !ok {
		return PreviewView{}, false
	}
	path := layout.ElbowPath(layout.Anchor(pos, e.cfg), e.st.cursor)
	return PreviewView{
		Path:    layout.PathData(path),
		Color:   e.st.color,
		Dash:    e.st.lineType.DashArray(),
		Opacity: 0.5,
	}, true
}
