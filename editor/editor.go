// Package editor is the interactive organization chart layout editor.
//
// The editor owns the card positions and the connector list of one structure
// and is driven by explicit pointer callbacks in screen coordinates. Card
// positions are saved in one batch on SaveLayout; every connector change is
// saved the moment it is made. In-memory connector state changes only after
// the store confirms the write.
//
// An Editor is driven by one UI goroutine and is not safe for concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/layout"
	"go.uber.org/zap"
)

// Messages shown to the admin.
const (
	MsgCreateConnectionFailed = "Gagal membuat koneksi"
	MsgDeleteConnectionFailed = "Gagal menghapus koneksi"
	MsgSaveWaypointsFailed    = "Gagal menyimpan waypoints"
	MsgAddWaypointFailed      = "Gagal menyimpan waypoint"
	MsgRemoveWaypointFailed   = "Gagal menghapus waypoint"
	MsgSaveLayoutFailed       = "Gagal menyimpan layout"
	MsgLayoutSaved            = "Layout berhasil disimpan!"
	MsgConfirmReset           = "Reset semua posisi ke layout default?"
	MsgResetFailed            = "Gagal reset layout"
	MsgLayoutReset            = "Layout berhasil direset!"
)

var (
	ErrForbidden     = errors.New("editor: admin access required")
	ErrWrongMode     = errors.New("editor: action not available in this mode")
	ErrUnknownNode   = errors.New("editor: node is not on the canvas")
	ErrBadConnection = errors.New("editor: connection index out of range")
)

// Access is the authorization capability handed to the editor.
type Access interface {
	IsAdmin() bool
}

// AdminFlag is a fixed Access.
type AdminFlag bool

func (a AdminFlag) IsAdmin() bool { return bool(a) }

// ConnectionWriter is the write side of the connection store.
type ConnectionWriter interface {
	CreateConnection(ctx context.Context, c *orgchart.Connection) (*orgchart.Connection, error)
	PatchConnection(ctx context.Context, p orgchart.ConnectionPatch) (*orgchart.Connection, error)
	DeleteConnection(ctx context.Context, id string) error
}

// Confirmer asks the admin a yes/no question.
type Confirmer interface {
	Confirm(msg string) bool
}

// Deps are the collaborators of an Editor.
type Deps struct {
	Source      orgchart.ChartSource
	Positions   orgchart.PositionStore
	Connections ConnectionWriter
	Notifier    orgchart.Notifier
	Navigator   orgchart.Navigator
	Confirmer   Confirmer
	Access      Access
}

// Option configures an Editor.
type Option func(*Editor)

// WithLayout overrides the layout configuration.
func WithLayout(cfg layout.Config) Option {
	return func(e *Editor) { e.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// Editor edits the layout of one structure.
type Editor struct {
	structureID string
	cfg         layout.Config
	deps        Deps
	log         *zap.Logger

	roots       []*orgchart.Member
	positions   layout.Positions
	connections []orgchart.Connection

	// screen = canvas*scale + offset
	scale  float64
	offset orgchart.Point

	st interaction
}

// New returns an editor for structureID.
func New(structureID string, deps Deps, opts ...Option) *Editor {
	e := &Editor{
		structureID: structureID,
		cfg:         layout.DefaultConfig(),
		deps:        deps,
		log:         zap.NewNop(),
		positions:   layout.Positions{},
		scale:       1,
		st:          newInteraction(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("structure_id", structureID))
	return e
}

func (e *Editor) alert(msg string) {
	if e.deps.Notifier != nil {
		e.deps.Notifier.Alert(msg)
	}
}

func (e *Editor) navigate(path string) {
	if e.deps.Navigator != nil {
		e.deps.Navigator.Navigate(path)
	}
}

// Load fetches the member tree and the connectors and lays the chart out.
// Users without admin access are sent back to the chart page.
func (e *Editor) Load(ctx context.Context) error {
	if e.deps.Access == nil || !e.deps.Access.IsAdmin() {
		e.navigate(orgchart.ChartPath)
		return ErrForbidden
	}

	roots, err := e.deps.Source.Tree(ctx, e.structureID)
	if err != nil {
		return fmt.Errorf("editor: load tree: %w", err)
	}
	pos, err := layout.Compute(roots, e.cfg)
	if err != nil {
		return fmt.Errorf("editor: layout: %w", err)
	}

	conns, err := e.deps.Source.Connections(ctx, e.structureID)
	if err != nil {
		e.log.Warn("failed to fetch connections, may not exist yet", zap.Error(err))
		conns = []orgchart.Connection{}
	}
	for i := range conns {
		if conns[i].Waypoints == nil {
			conns[i].Waypoints = []orgchart.Point{}
		}
	}

	e.roots = roots
	e.positions = pos
	e.connections = conns
	e.st.endDrags()
	e.st.source = ""
	e.log.Debug("editor loaded", zap.Int("nodes", len(pos)), zap.Int("connections", len(conns)))
	return nil
}

// Mode returns the active tool.
func (e *Editor) Mode() Mode { return e.st.mode }

// SetMode switches tools. Any pending connection and any drag end.
func (e *Editor) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("editor: unknown mode %q", m)
	}
	e.st.mode = m
	e.st.source = ""
	e.st.endDrags()
	return nil
}

// SetLineStyle picks the style of the next connection.
func (e *Editor) SetLineStyle(t orgchart.LineType, color string) error {
	if !t.Valid() {
		return fmt.Errorf("editor: unknown line type %q", t)
	}
	e.st.lineType = t
	if color != "" {
		e.st.color = color
	}
	return nil
}

// LineStyle returns the style of the next connection.
func (e *Editor) LineStyle() (orgchart.LineType, string) { return e.st.lineType, e.st.color }

// SetViewport sets the screen transform of the canvas. A scrolling canvas
// at 100% has scale 1 and offset equal to minus the scroll position.
func (e *Editor) SetViewport(scale float64, offset orgchart.Point) {
	if scale <= 0 {
		scale = 1
	}
	e.scale = scale
	e.offset = offset
}

func (e *Editor) toCanvas(screen orgchart.Point) orgchart.Point {
	return layout.ToCanvas(screen, e.scale, e.offset)
}

// CenterInViewport scrolls so the content center sits at the viewport
// center and returns the scroll position. Scroll never goes negative.
func (e *Editor) CenterInViewport(width, height float64) orgchart.Point {
	b, ok := layout.BoundingBox(e.positions, e.cfg)
	if !ok {
		return orgchart.Point{}
	}
	c := b.Center()
	scroll := orgchart.Point{
		X: max(0, c.X-width/2),
		Y: max(0, c.Y-height/2),
	}
	e.SetViewport(1, orgchart.Point{X: -scroll.X, Y: -scroll.Y})
	return scroll
}

// Positions returns the current card positions.
func (e *Editor) Positions() layout.Positions { return e.positions }

// Connections returns the current connector list.
func (e *Editor) Connections() []orgchart.Connection { return e.connections }

// PendingSource returns the node a connection is being drawn from.
func (e *Editor) PendingSource() (string, bool) { return e.st.source, e.st.source != "" }

// DraggedNode returns the node being dragged.
func (e *Editor) DraggedNode() (string, bool) {
	if e.st.drag == nil {
		return "", false
	}
	return e.st.drag.id, true
}

// DraggedWaypoint returns the connection and waypoint index being dragged.
func (e *Editor) DraggedWaypoint() (conn, wp int, ok bool) {
	if e.st.wpDrag == nil {
		return 0, 0, false
	}
	return e.st.wpDrag.conn, e.st.wpDrag.wp, true
}

// PointerDownNode handles a press on a card.
//
// In move mode it starts dragging the card. In connect mode the first press
// picks the source, a press on another card creates the connection and a
// second press on the source cancels. Delete mode ignores cards.
func (e *Editor) PointerDownNode(ctx context.Context, id string, screen orgchart.Point) error {
	switch e.st.mode {
	case ModeConnect:
		return e.connectClick(ctx, id)
	case ModeDeleteConnection:
		return nil
	}

	pos, ok := e.positions[id]
	if !ok {
		return ErrUnknownNode
	}
	canvas := e.toCanvas(screen)
	e.st.wpDrag = nil
	e.st.drag = &nodeDrag{
		id:     id,
		offset: orgchart.Point{X: canvas.X - pos.X, Y: canvas.Y - pos.Y},
	}
	return nil
}

func (e *Editor) connectClick(ctx context.Context, id string) error {
	if _, ok := e.positions[id]; !ok {
		return ErrUnknownNode
	}
	switch {
	case e.st.source == "":
		e.st.source = id
		return nil
	case e.st.source == id:
		e.st.source = ""
		return nil
	}

	from := e.st.source
	e.st.source = ""

	saved, err := e.deps.Connections.CreateConnection(ctx, &orgchart.Connection{
		StructureID: e.structureID,
		FromID:      from,
		ToID:        id,
		Type:        e.st.lineType,
		Color:       e.st.color,
		Waypoints:   []orgchart.Point{},
	})
	if err != nil {
		e.log.Error("failed to create connection", zap.String("from", from), zap.String("to", id), zap.Error(err))
		e.alert(MsgCreateConnectionFailed)
		return err
	}

	c := *saved
	c.FromID, c.ToID = from, id
	if c.Type == "" {
		c.Type = e.st.lineType
	}
	if c.Color == "" {
		c.Color = e.st.color
	}
	if c.Waypoints == nil {
		c.Waypoints = []orgchart.Point{}
	}
	e.connections = append(e.connections, c)
	e.log.Debug("connection created", zap.String("id", c.ID), zap.String("from", from), zap.String("to", id))
	return nil
}

// PointerMove handles pointer motion anywhere over the canvas.
func (e *Editor) PointerMove(screen orgchart.Point) {
	canvas := e.toCanvas(screen)
	e.st.cursor = canvas

	if d := e.st.wpDrag; d != nil {
		c := &e.connections[d.conn]
		wps, err := layout.MoveWaypoint(c.Waypoints, d.wp, layout.SnapPoint(canvas, e.cfg.GridSize))
		if err == nil {
			c.Waypoints = wps
		}
		return
	}

	if d := e.st.drag; d != nil {
		e.positions[d.id] = orgchart.Position{
			ID: d.id,
			X:  layout.Snap(canvas.X-d.offset.X, e.cfg.GridSize),
			Y:  layout.Snap(canvas.Y-d.offset.Y, e.cfg.GridSize),
		}
	}
}

// PointerUp ends any drag. A dragged waypoint is saved; if that fails the
// waypoints from before the drag come back.
func (e *Editor) PointerUp(ctx context.Context) error {
	d := e.st.wpDrag
	e.st.endDrags()
	if d == nil {
		return nil
	}

	c := &e.connections[d.conn]
	if !c.Persisted() {
		return nil
	}
	wps := append([]orgchart.Point{}, c.Waypoints...)
	if _, err := e.deps.Connections.PatchConnection(ctx, orgchart.ConnectionPatch{ID: c.ID, Waypoints: &wps}); err != nil {
		e.log.Error("failed to save waypoints", zap.String("id", c.ID), zap.Error(err))
		c.Waypoints = d.before
		e.alert(MsgSaveWaypointsFailed)
		return err
	}
	return nil
}

// SaveLayout writes every card position in one batch and switches the
// structure to the custom layout. On success the admin goes back to the
// chart page.
func (e *Editor) SaveLayout(ctx context.Context) error {
	updates := make([]orgchart.PositionUpdate, 0, len(e.positions))
	seen := make(map[string]bool, len(e.positions))
	orgchart.Walk(e.roots, func(m *orgchart.Member) bool {
		if p, ok := e.positions[m.ID]; ok && !seen[m.ID] {
			seen[m.ID] = true
			updates = append(updates, orgchart.PositionUpdate{ID: p.ID, CustomX: p.X, CustomY: p.Y})
		}
		return true
	})

	custom := true
	n, err := e.deps.Positions.SavePositions(ctx, orgchart.SavePositionsRequest{
		Positions:       updates,
		UseCustomLayout: &custom,
		StructureID:     e.structureID,
	})
	if err != nil {
		e.log.Error("failed to save layout", zap.Error(err))
		e.alert(MsgSaveLayoutFailed)
		return err
	}

	e.log.Info("layout saved", zap.Int("updated", n))
	e.alert(MsgLayoutSaved)
	e.navigate(orgchart.ChartPath)
	return nil
}

// ResetLayout clears every saved position of the structure after the admin
// confirms, then reloads the page. It reports whether a reset happened.
func (e *Editor) ResetLayout(ctx context.Context) (bool, error) {
	if e.deps.Confirmer != nil && !e.deps.Confirmer.Confirm(MsgConfirmReset) {
		return false, nil
	}
	if err := e.deps.Positions.ResetLayout(ctx, e.structureID); err != nil {
		e.log.Error("failed to reset layout", zap.Error(err))
		e.alert(MsgResetFailed)
		return false, err
	}
	e.alert(MsgLayoutReset)
	if e.deps.Navigator != nil {
		e.deps.Navigator.Reload()
	}
	return true, nil
}

// DeleteConnection removes a connector. Saved connectors are deleted from
// the store first; unsaved ones only exist here.
func (e *Editor) DeleteConnection(ctx context.Context, index int) error {
	if e.st.mode != ModeDeleteConnection {
		return ErrWrongMode
	}
	if index < 0 || index >= len(e.connections) {
		return ErrBadConnection
	}

	c := e.connections[index]
	if c.Persisted() {
		if err := e.deps.Connections.DeleteConnection(ctx, c.ID); err != nil {
			e.log.Error("failed to delete connection", zap.String("id", c.ID), zap.Error(err))
			e.alert(MsgDeleteConnectionFailed)
			return err
		}
	}
	e.connections = append(e.connections[:index:index], e.connections[index+1:]...)
	return nil
}
