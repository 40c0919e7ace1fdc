package memory

import (
	"context"
	"testing"

	"github.com/meikuraledutech/orgchart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) (*Store, string, map[string]string) {
	t.Helper()
	ctx := context.Background()
	s := New()

	sid, err := s.CreateStructure(ctx, &orgchart.Structure{Name: "Pemerintah Desa", IsActive: true})
	require.NoError(t, err)

	ids := map[string]string{}
	add := func(name, parent string, level, order int, active bool) {
		m := &orgchart.Member{StructureID: sid, Name: name, Level: level, Order: order, IsActive: active}
		if parent != "" {
			p := ids[parent]
			m.ParentID = &p
		}
		id, err := s.AddMember(ctx, m)
		require.NoError(t, err)
		ids[name] = id
	}
	add("Kepala Desa", "", 0, 0, true)
	add("Bendahara", "Kepala Desa", 1, 2, true)
	add("Sekretaris", "Kepala Desa", 1, 1, true)
	add("Mantan", "Kepala Desa", 1, 3, false)
	return s, sid, ids
}

func TestListMembersOrderAndActive(t *testing.T) {
	s, sid, _ := seeded(t)

	members, err := s.ListMembers(context.Background(), sid)
	require.NoError(t, err)

	var names []string
	for _, m := range members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Kepala Desa", "Sekretaris", "Bendahara"}, names)

	roots, err := orgchart.Tree(context.Background(), s, sid)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Len(t, roots[0].Children, 2)
}

func TestListStructures(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateStructure(ctx, &orgchart.Structure{Name: "BPD", Order: 2, IsActive: true})
	require.NoError(t, err)
	_, err = s.CreateStructure(ctx, &orgchart.Structure{Name: "Pemdes", Order: 1, IsActive: true})
	require.NoError(t, err)
	_, err = s.CreateStructure(ctx, &orgchart.Structure{Name: "Lama", Order: 0})
	require.NoError(t, err)

	list, err := s.ListStructures(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Pemdes", list[0].Name)
	assert.Equal(t, "BPD", list[1].Name)
}

func TestSavePositionsSwitchesWholeStructure(t *testing.T) {
	ctx := context.Background()
	s, sid, ids := seeded(t)

	n, err := s.SavePositions(ctx, orgchart.SavePositionsRequest{
		Positions:   []orgchart.PositionUpdate{{ID: ids["Kepala Desa"], CustomX: 1200, CustomY: 400}},
		StructureID: sid,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	members, err := s.ListMembers(ctx, sid)
	require.NoError(t, err)
	for _, m := range members {
		assert.True(t, m.UseCustomLayout, m.Name)
		if m.ID == ids["Kepala Desa"] {
			require.True(t, m.HasCustomPosition())
			assert.Equal(t, 1200.0, *m.CustomX)
		} else {
			assert.False(t, m.HasCustomPosition(), "unlisted members keep no coordinates")
		}
	}
}

func TestSavePositionsUnknownMember(t *testing.T) {
	s, _, _ := seeded(t)
	_, err := s.SavePositions(context.Background(), orgchart.SavePositionsRequest{
		Positions: []orgchart.PositionUpdate{{ID: "nope"}},
	})
	assert.ErrorIs(t, err, orgchart.ErrMemberNotFound)
}

func TestResetLayout(t *testing.T) {
	ctx := context.Background()
	s, sid, ids := seeded(t)

	_, err := s.SavePositions(ctx, orgchart.SavePositionsRequest{
		Positions:   []orgchart.PositionUpdate{{ID: ids["Sekretaris"], CustomX: 10, CustomY: 20}},
		StructureID: sid,
	})
	require.NoError(t, err)
	require.NoError(t, s.ResetLayout(ctx, sid))

	members, err := s.ListMembers(ctx, sid)
	require.NoError(t, err)
	for _, m := range members {
		assert.False(t, m.UseCustomLayout)
		assert.Nil(t, m.CustomX)
		assert.Nil(t, m.CustomY)
	}
	assert.ErrorIs(t, s.ResetLayout(ctx, ""), orgchart.ErrStructureRequired)
}

func TestConnectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s, sid, ids := seeded(t)
	head, sec, tre := ids["Kepala Desa"], ids["Sekretaris"], ids["Bendahara"]

	c1, err := s.CreateConnection(ctx, &orgchart.Connection{StructureID: sid, FromID: head, ToID: sec})
	require.NoError(t, err)
	assert.NotEmpty(t, c1.ID)
	assert.Equal(t, orgchart.Solid, c1.Type)
	assert.Equal(t, "#000000", c1.Color)
	assert.Equal(t, []orgchart.Point{}, c1.Waypoints)

	_, err = s.CreateConnection(ctx, &orgchart.Connection{StructureID: sid, FromID: head, ToID: sec})
	assert.ErrorIs(t, err, orgchart.ErrConnectionExists)
	_, err = s.CreateConnection(ctx, &orgchart.Connection{StructureID: sid, FromID: head, ToID: head})
	assert.ErrorIs(t, err, orgchart.ErrSelfLoop)

	c2, err := s.CreateConnection(ctx, &orgchart.Connection{StructureID: sid, FromID: head, ToID: tre, Type: orgchart.Dashed})
	require.NoError(t, err)

	list, err := s.ListConnections(ctx, sid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c1.ID, list[0].ID)
	assert.Equal(t, c2.ID, list[1].ID)

	wps := []orgchart.Point{{X: 1, Y: 2}}
	patched, err := s.PatchConnection(ctx, orgchart.ConnectionPatch{ID: c1.ID, Waypoints: &wps})
	require.NoError(t, err)
	assert.Equal(t, wps, patched.Waypoints)
	assert.Equal(t, orgchart.Solid, patched.Type)
	assert.True(t, patched.UpdatedAt.After(patched.CreatedAt))

	// returned values are copies
	patched.Waypoints[0].X = 50
	list, err = s.ListConnections(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 1.0, list[0].Waypoints[0].X)

	_, err = s.PatchConnection(ctx, orgchart.ConnectionPatch{ID: "missing", Waypoints: &wps})
	assert.ErrorIs(t, err, orgchart.ErrConnectionNotFound)
	wavy := orgchart.LineType("wavy")
	_, err = s.PatchConnection(ctx, orgchart.ConnectionPatch{ID: c1.ID, Type: &wavy})
	assert.ErrorIs(t, err, orgchart.ErrInvalidLineType)

	require.NoError(t, s.DeleteConnection(ctx, c1.ID))
	require.NoError(t, s.DeleteConnectionBetween(ctx, head, tre))
	require.NoError(t, s.DeleteConnection(ctx, "missing"))

	list, err = s.ListConnections(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestDropSchema(t *testing.T) {
	ctx := context.Background()
	s, sid, _ := seeded(t)
	require.NoError(t, s.DropSchema(ctx))

	members, err := s.ListMembers(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, members)
}
