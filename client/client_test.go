package client

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/editor"
	"github.com/meikuraledutech/orgchart/httpapi"
	"github.com/meikuraledutech/orgchart/memory"
	"github.com/meikuraledutech/orgchart/viewer"
)

type env struct {
	base  string
	token string
	store *memory.Store
	sid   string
	ids   map[string]string
}

// serve runs the REST API over a memory store on a loopback port.
func serve(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	sid, err := store.CreateStructure(ctx, &orgchart.Structure{Name: "Pemdes", IsActive: true})
	require.NoError(t, err)
	ids := map[string]string{}
	for _, m := range []struct{ name, parent string }{{"A", ""}, {"B", "A"}, {"C", "A"}} {
		mem := &orgchart.Member{StructureID: sid, Name: m.name, IsActive: true}
		if m.parent != "" {
			p := ids[m.parent]
			mem.ParentID = &p
			mem.Level = 1
		}
		id, err := store.AddMember(ctx, mem)
		require.NoError(t, err)
		ids[m.name] = id
	}

	sessions, err := httpapi.NewSessions("secret")
	require.NoError(t, err)
	token, err := sessions.Issue("admin", time.Hour)
	require.NoError(t, err)

	app := httpapi.New(store, httpapi.WithSessions(sessions))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true}) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return &env{base: "http://" + ln.Addr().String(), token: token, store: store, sid: sid, ids: ids}
}

type ui struct{ alerts, paths []string }

func (u *ui) Alert(msg string) { u.alerts = append(u.alerts, msg) }
func (u *ui) Navigate(path string) { u.paths = append(u.paths, path) }
func (u *ui) Reload() {}

func TestReadsAreAnonymous(t *testing.T) {
	e := serve(t)
	ctx := context.Background()
	c := New(e.base)

	admin, err := c.IsAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, admin)

	roots, err := c.Tree(ctx, e.sid)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Len(t, roots[0].Children, 2)

	conns, err := c.Connections(ctx, e.sid)
	require.NoError(t, err)
	assert.Empty(t, conns)

	list, err := c.Structures(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	svg, err := c.ChartSVG(ctx, e.sid)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<?xml"))

	_, err = c.CreateConnection(ctx, &orgchart.Connection{StructureID: e.sid, FromID: e.ids["A"], ToID: e.ids["B"]})
	assert.True(t, IsStatus(err, 401), "%v", err)

	_, err = c.Tree(ctx, "")
	assert.ErrorIs(t, err, orgchart.ErrStructureRequired)
}

func TestWritesWithSession(t *testing.T) {
	e := serve(t)
	ctx := context.Background()
	c := New(e.base, WithSession(e.token), WithTimeout(5*time.Second))

	admin, err := c.IsAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, admin)

	conn, err := c.CreateConnection(ctx, &orgchart.Connection{StructureID: e.sid, FromID: e.ids["A"], ToID: e.ids["B"]})
	require.NoError(t, err)
	assert.NotEmpty(t, conn.ID)

	_, err = c.CreateConnection(ctx, &orgchart.Connection{StructureID: e.sid, FromID: e.ids["A"], ToID: e.ids["B"]})
	assert.ErrorIs(t, err, orgchart.ErrConnectionExists)

	empty := []orgchart.Point{}
	patched, err := c.PatchConnection(ctx, orgchart.ConnectionPatch{ID: conn.ID, Waypoints: &empty})
	require.NoError(t, err)
	assert.Empty(t, patched.Waypoints)

	_, err = c.PatchConnection(ctx, orgchart.ConnectionPatch{ID: "missing"})
	assert.True(t, IsStatus(err, 404))

	n, err := c.SavePositions(ctx, orgchart.SavePositionsRequest{
		Positions:   []orgchart.PositionUpdate{{ID: e.ids["A"], CustomX: 1000, CustomY: 400}},
		StructureID: e.sid,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, c.ResetLayout(ctx, e.sid))

	require.NoError(t, c.DeleteConnectionBetween(ctx, e.ids["A"], e.ids["B"]))
	require.NoError(t, c.DeleteConnection(ctx, "missing"))
	conns, err := c.Connections(ctx, e.sid)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

// The editor and the viewer run unchanged against the REST API.
func TestEditorAndViewerOverREST(t *testing.T) {
	e := serve(t)
	ctx := context.Background()
	c := New(e.base, WithSession(e.token))
	u := &ui{}

	ed := editor.New(e.sid, editor.Deps{
		Source:      c,
		Positions:   c,
		Connections: c,
		Notifier:    u,
		Navigator:   u,
		Access:      editor.AdminFlag(true),
	})
	require.NoError(t, ed.Load(ctx))

	require.NoError(t, ed.SetMode(editor.ModeConnect))
	require.NoError(t, ed.PointerDownNode(ctx, e.ids["A"], orgchart.Point{}))
	require.NoError(t, ed.PointerDownNode(ctx, e.ids["C"], orgchart.Point{}))
	require.NoError(t, ed.SetMode(editor.ModeMove))
	require.NoError(t, ed.AddWaypoint(ctx, 0, 0))

	b := ed.Positions()[e.ids["B"]]
	require.NoError(t, ed.PointerDownNode(ctx, e.ids["B"], orgchart.Point{X: b.X, Y: b.Y}))
	ed.PointerMove(orgchart.Point{X: b.X - 200, Y: b.Y + 100})
	require.NoError(t, ed.PointerUp(ctx))
	moved := ed.Positions()[e.ids["B"]]
	assert.NotEqual(t, b, moved)
	require.NoError(t, ed.SaveLayout(ctx))
	assert.Equal(t, []string{editor.MsgLayoutSaved}, u.alerts)

	v := viewer.New(e.sid, viewer.Deps{Source: c})
	res, err := v.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, viewer.Loaded, res)
	assert.Equal(t, moved, v.Positions()[e.ids["B"]])

	connectors := v.Connectors()
	require.Len(t, connectors, 1)
	saved, err := c.Connections(ctx, e.sid)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Len(t, saved[0].Waypoints, 1)
}
