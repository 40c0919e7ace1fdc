package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/memory"
	"github.com/meikuraledutech/orgchart/metrics"
)

const secret = "test-secret"

type fixture struct {
	app   *fiber.App
	store *memory.Store
	token string
	sid   string
	head  string
	sec   string
	reg   *metrics.Registry
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	sessions, err := NewSessions(secret)
	require.NoError(t, err)
	token, err := sessions.Issue("admin@desa", time.Hour)
	require.NoError(t, err)

	store := memory.New()
	sid, err := store.CreateStructure(ctx, &orgchart.Structure{Name: "Pemdes", Order: 1, IsActive: true})
	require.NoError(t, err)
	head := &orgchart.Member{StructureID: sid, Name: "Budi", Position: "Kepala Desa", IsActive: true}
	_, err = store.AddMember(ctx, head)
	require.NoError(t, err)
	sec := &orgchart.Member{StructureID: sid, ParentID: &head.ID, Name: "Siti", Level: 1, Order: 1, IsActive: true}
	_, err = store.AddMember(ctx, sec)
	require.NoError(t, err)

	reg := metrics.NewRegistry()
	app := New(store, WithSessions(sessions), WithMetrics(reg))
	return &fixture{app: app, store: store, token: token, sid: sid, head: head.ID, sec: sec.ID, reg: reg}
}

// do sends a request; admin attaches the session cookie.
func (f *fixture) do(t *testing.T, method, target, body string, admin bool) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: f.token})
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHealthAndCheckAdmin(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, "GET", "/", "", false)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))

	_, body = f.do(t, "GET", "/api/check-admin", "", false)
	assert.JSONEq(t, `{"isAdmin":false}`, string(body))
	_, body = f.do(t, "GET", "/api/check-admin", "", true)
	assert.JSONEq(t, `{"isAdmin":true}`, string(body))
}

func TestAdminRoutesNeedSession(t *testing.T) {
	f := setup(t)

	for _, r := range []struct{ method, path string }{
		{"PATCH", "/api/org-members/positions"},
		{"POST", "/api/org-members/positions"},
		{"POST", "/api/org-connections"},
		{"PATCH", "/api/org-connections"},
		{"DELETE", "/api/org-connections?id=x"},
		{"POST", "/api/org-members"},
		{"POST", "/api/org-structures"},
	} {
		resp, body := f.do(t, r.method, r.path, `{}`, false)
		assert.Equal(t, 401, resp.StatusCode, r.path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
	}

	req := httptest.NewRequest("POST", "/api/org-connections", strings.NewReader(`{}`))
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMemberTree(t *testing.T) {
	f := setup(t)

	resp, _ := f.do(t, "GET", "/api/org-members", "", false)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body := f.do(t, "GET", "/api/org-members?structure_id="+f.sid, "", false)
	require.Equal(t, 200, resp.StatusCode)
	roots := decode[[]orgchart.Member](t, body)
	require.Len(t, roots, 1)
	assert.Equal(t, "Budi", roots[0].Name)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Siti", roots[0].Children[0].Name)
}

func TestStructures(t *testing.T) {
	f := setup(t)

	resp, _ := f.do(t, "POST", "/api/org-structures", `{"name":"BPD"}`, true)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body := f.do(t, "POST", "/api/org-structures", `{"name":"BPD","color":"#16a34a"}`, true)
	require.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, 2, decode[orgchart.Structure](t, body).Order)

	_, body = f.do(t, "GET", "/api/org-structures", "", false)
	list := decode[[]orgchart.Structure](t, body)
	require.Len(t, list, 2)
	assert.Equal(t, "Pemdes", list[0].Name)
}

func TestCreateMemberDerivesLevelAndOrder(t *testing.T) {
	f := setup(t)

	resp, _ := f.do(t, "POST", "/api/org-members", `{"structure_id":"`+f.sid+`","name":"X"}`, true)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body := f.do(t, "POST", "/api/org-members",
		`{"structure_id":"`+f.sid+`","parent_id":"`+f.head+`","name":"Andi","position":"Kaur","role":"staff"}`, true)
	require.Equal(t, 201, resp.StatusCode)
	m := decode[orgchart.Member](t, body)
	assert.Equal(t, 1, m.Level)
	assert.Equal(t, 2, m.Order)
	assert.True(t, m.IsActive)
}

func TestSaveAndResetPositions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	resp, body := f.do(t, "PATCH", "/api/org-members/positions", `{"structure_id":"`+f.sid+`"}`, true)
	assert.Equal(t, 400, resp.StatusCode)
	assert.JSONEq(t, `{"error":"positions array is required"}`, string(body))

	resp, body = f.do(t, "PATCH", "/api/org-members/positions",
		`{"positions":[{"id":"`+f.head+`","custom_x":1200,"custom_y":420}],"structure_id":"`+f.sid+`","use_custom_layout":true}`, true)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"updated":1}`, string(body))

	members, err := f.store.ListMembers(ctx, f.sid)
	require.NoError(t, err)
	for _, m := range members {
		assert.True(t, m.UseCustomLayout)
	}

	resp, _ = f.do(t, "POST", "/api/org-members/positions", `{}`, true)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body = f.do(t, "POST", "/api/org-members/positions", `{"structure_id":"`+f.sid+`"}`, true)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))

	members, err = f.store.ListMembers(ctx, f.sid)
	require.NoError(t, err)
	for _, m := range members {
		assert.False(t, m.UseCustomLayout)
		assert.Nil(t, m.CustomX)
	}
}

func TestConnectionsCRUD(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, "POST", "/api/org-connections", `{"structure_id":"`+f.sid+`"}`, true)
	assert.Equal(t, 400, resp.StatusCode)
	assert.JSONEq(t, `{"error":"structure_id, from_member_id, and to_member_id are required"}`, string(body))

	create := `{"structure_id":"` + f.sid + `","from_member_id":"` + f.head + `","to_member_id":"` + f.sec + `"}`
	resp, body = f.do(t, "POST", "/api/org-connections", create, true)
	require.Equal(t, 201, resp.StatusCode)
	conn := decode[orgchart.Connection](t, body)
	assert.NotEmpty(t, conn.ID)
	assert.Equal(t, orgchart.Solid, conn.Type)
	assert.Equal(t, "#000000", conn.Color)
	assert.Equal(t, []orgchart.Point{}, conn.Waypoints)

	resp, body = f.do(t, "POST", "/api/org-connections", create, true)
	assert.Equal(t, 409, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Connection already exists"}`, string(body))

	self := `{"structure_id":"` + f.sid + `","from_member_id":"` + f.head + `","to_member_id":"` + f.head + `"}`
	resp, _ = f.do(t, "POST", "/api/org-connections", self, true)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body = f.do(t, "PATCH", "/api/org-connections", `{"id":"`+conn.ID+`","waypoints":[{"x":10,"y":20}]}`, true)
	require.Equal(t, 200, resp.StatusCode)
	patched := decode[orgchart.Connection](t, body)
	assert.Equal(t, []orgchart.Point{{X: 10, Y: 20}}, patched.Waypoints)
	assert.Equal(t, "#000000", patched.Color)

	resp, _ = f.do(t, "PATCH", "/api/org-connections", `{"waypoints":[]}`, true)
	assert.Equal(t, 400, resp.StatusCode)
	resp, _ = f.do(t, "PATCH", "/api/org-connections", `{"id":"nope","color":"#fff"}`, true)
	assert.Equal(t, 404, resp.StatusCode)

	resp, body = f.do(t, "GET", "/api/org-connections?structure_id="+f.sid, "", false)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, decode[[]orgchart.Connection](t, body), 1)

	resp, _ = f.do(t, "DELETE", "/api/org-connections", "", true)
	assert.Equal(t, 400, resp.StatusCode)
	resp, _ = f.do(t, "DELETE", "/api/org-connections?from_member_id="+f.head, "", true)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body = f.do(t, "DELETE", "/api/org-connections?from_member_id="+f.head+"&to_member_id="+f.sec, "", true)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))

	_, body = f.do(t, "GET", "/api/org-connections?structure_id="+f.sid, "", false)
	assert.JSONEq(t, `[]`, string(body))
}

func TestChartSVG(t *testing.T) {
	f := setup(t)

	resp, _ := f.do(t, "GET", "/api/org-chart.svg", "", false)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body := f.do(t, "GET", "/api/org-chart.svg?structure_id="+f.sid, "", false)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<svg")
	assert.Contains(t, string(body), "Kepala Desa")
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t)
	f.do(t, "GET", "/api/org-structures", "", false)

	resp, body := f.do(t, "GET", "/metrics", "", false)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `orgchart_http_requests_total{method="GET",path="/api/org-structures",status="200"} 1`)
}

func TestSessions(t *testing.T) {
	_, err := NewSessions("")
	assert.ErrorIs(t, err, ErrNoSecret)

	s, err := NewSessions(secret)
	require.NoError(t, err)
	other, err := NewSessions("other")
	require.NoError(t, err)

	token, err := s.Issue("ops", time.Minute)
	require.NoError(t, err)
	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = other.Verify(token)
	assert.Error(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = s.Verify(token)
	assert.Error(t, err, "expired")
}
