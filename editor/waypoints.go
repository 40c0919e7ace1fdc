package editor

import (
	"context"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/layout"
	"go.uber.org/zap"
)

func (e *Editor) connection(index int) (*orgchart.Connection, error) {
	if index < 0 || index >= len(e.connections) {
		return nil, ErrBadConnection
	}
	return &e.connections[index], nil
}

// controlPoints returns [source anchor, waypoints..., target anchor].
func (e *Editor) controlPoints(c *orgchart.Connection) ([]orgchart.Point, error) {
	from, ok := e.positions[c.FromID]
	if !ok {
		return nil, ErrUnknownNode
	}
	to, ok := e.positions[c.ToID]
	if !ok {
		return nil, ErrUnknownNode
	}
	return layout.ControlPolyline(layout.Anchor(from, e.cfg), layout.Anchor(to, e.cfg), c.Waypoints), nil
}

// AddWaypoint inserts a waypoint at the midpoint of segment seg of a
// connector's control polyline and saves the new waypoint list.
func (e *Editor) AddWaypoint(ctx context.Context, conn, seg int) error {
	if e.st.mode != ModeMove {
		return ErrWrongMode
	}
	c, err := e.connection(conn)
	if err != nil {
		return err
	}
	pts, err := e.controlPoints(c)
	if err != nil {
		return err
	}
	mids := layout.SegmentMidpoints(pts)
	if seg < 0 || seg >= len(mids) {
		return layout.ErrSegment
	}
	wps, err := layout.InsertWaypoint(c.Waypoints, seg, mids[seg])
	if err != nil {
		return err
	}
	return e.commitWaypoints(ctx, c, wps, MsgAddWaypointFailed)
}

// RemoveWaypoint deletes one waypoint and saves the new waypoint list.
// Removing the last waypoint brings back the default elbow route.
func (e *Editor) RemoveWaypoint(ctx context.Context, conn, wp int) error {
	if e.st.mode != ModeMove {
		return ErrWrongMode
	}
	c, err := e.connection(conn)
	if err != nil {
		return err
	}
	wps, err := layout.RemoveWaypoint(c.Waypoints, wp)
	if err != nil {
		return err
	}
	return e.commitWaypoints(ctx, c, wps, MsgRemoveWaypointFailed)
}

// PointerDownWaypoint starts dragging an existing waypoint.
func (e *Editor) PointerDownWaypoint(conn, wp int) error {
	if e.st.mode != ModeMove {
		return ErrWrongMode
	}
	c, err := e.connection(conn)
	if err != nil {
		return err
	}
	if wp < 0 || wp >= len(c.Waypoints) {
		return layout.ErrSegment
	}
	e.st.drag = nil
	e.st.wpDrag = &waypointDrag{
		conn:   conn,
		wp:     wp,
		before: append([]orgchart.Point{}, c.Waypoints...),
	}
	return nil
}

// commitWaypoints saves wps for c and applies them once the store agrees.
// Unsaved connectors are updated locally.
func (e *Editor) commitWaypoints(ctx context.Context, c *orgchart.Connection, wps []orgchart.Point, failMsg string) error {
	if c.Persisted() {
		if _, err := e.deps.Connections.PatchConnection(ctx, orgchart.ConnectionPatch{ID: c.ID, Waypoints: &wps}); err != nil {
			e.log.Error("failed to save waypoints", zap.String("id", c.ID), zap.Error(err))
			e.alert(failMsg)
			return err
		}
	}
	c.Waypoints = wps
	return nil
}
