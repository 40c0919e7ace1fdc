// Package client talks to the org chart REST API. It implements the
// interfaces the editor and the viewer load from and save to.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3/client"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/editor"
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Method string
	Path   string
	Status int
	// Message is the "error" field of the body, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("client: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Client is a REST client for one API base URL.
type Client struct {
	http *client.Client
}

var (
	_ orgchart.ChartSource    = (*Client)(nil)
	_ orgchart.PositionStore  = (*Client)(nil)
	_ editor.ConnectionWriter = (*Client)(nil)
)

// Option configures a Client.
type Option func(*client.Client)

// WithSession sends the admin session token as a cookie.
func WithSession(token string) Option {
	return func(c *client.Client) { c.SetCookie("admin_session", token) }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *client.Client) { c.SetTimeout(d) }
}

// New returns a client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	cc := client.New()
	cc.SetBaseURL(baseURL)
	cc.SetTimeout(10 * time.Second)
	for _, opt := range opts {
		opt(cc)
	}
	return &Client{http: cc}
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends a request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, cfg client.Config, out any) error {
	cfg.Ctx = ctx

	var (
		resp *client.Response
		err  error
	)
	switch method {
	case "GET":
		resp, err = c.http.Get(path, cfg)
	case "POST":
		resp, err = c.http.Post(path, cfg)
	case "PATCH":
		resp, err = c.http.Patch(path, cfg)
	case "DELETE":
		resp, err = c.http.Delete(path, cfg)
	default:
		return fmt.Errorf("client: unsupported method %s", method)
	}
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Close()

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		var body errorBody
		_ = resp.JSON(&body)
		if status == 409 {
			return orgchart.ErrConnectionExists
		}
		return &StatusError{Method: method, Path: path, Status: status, Message: body.Error}
	}
	if out == nil {
		return nil
	}
	if err := resp.JSON(out); err != nil {
		return fmt.Errorf("client: %s %s: decode: %w", method, path, err)
	}
	return nil
}

func structureParam(id string) client.Config {
	return client.Config{Param: map[string]string{"structure_id": id}}
}

// IsAdmin asks the API whether the session cookie belongs to an admin.
func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	var out struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := c.do(ctx, "GET", "/api/check-admin", client.Config{}, &out); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

// Structures lists the active structures.
func (c *Client) Structures(ctx context.Context) ([]orgchart.Structure, error) {
	out := []orgchart.Structure{}
	err := c.do(ctx, "GET", "/api/org-structures", client.Config{}, &out)
	return out, err
}

// Tree loads the member tree of a structure.
func (c *Client) Tree(ctx context.Context, structureID string) ([]*orgchart.Member, error) {
	if structureID == "" {
		return nil, orgchart.ErrStructureRequired
	}
	out := []*orgchart.Member{}
	err := c.do(ctx, "GET", "/api/org-members", structureParam(structureID), &out)
	return out, err
}

// Connections lists the connectors of a structure.
func (c *Client) Connections(ctx context.Context, structureID string) ([]orgchart.Connection, error) {
	out := []orgchart.Connection{}
	err := c.do(ctx, "GET", "/api/org-connections", structureParam(structureID), &out)
	return out, err
}

// SavePositions saves a batch of card positions.
func (c *Client) SavePositions(ctx context.Context, req orgchart.SavePositionsRequest) (int, error) {
	var out struct {
		Updated int `json:"updated"`
	}
	if err := c.do(ctx, "PATCH", "/api/org-members/positions", client.Config{Body: req}, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// ResetLayout clears the saved positions of a structure.
func (c *Client) ResetLayout(ctx context.Context, structureID string) error {
	body := map[string]string{"structure_id": structureID}
	return c.do(ctx, "POST", "/api/org-members/positions", client.Config{Body: body}, nil)
}

// CreateConnection creates a connector and returns it with its id.
// An existing connector between the same members is ErrConnectionExists.
func (c *Client) CreateConnection(ctx context.Context, conn *orgchart.Connection) (*orgchart.Connection, error) {
	var out orgchart.Connection
	if err := c.do(ctx, "POST", "/api/org-connections", client.Config{Body: conn}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchConnection updates the fields set in p.
func (c *Client) PatchConnection(ctx context.Context, p orgchart.ConnectionPatch) (*orgchart.Connection, error) {
	var out orgchart.Connection
	if err := c.do(ctx, "PATCH", "/api/org-connections", client.Config{Body: p}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConnection deletes a connector by id.
func (c *Client) DeleteConnection(ctx context.Context, id string) error {
	cfg := client.Config{Param: map[string]string{"id": id}}
	return c.do(ctx, "DELETE", "/api/org-connections", cfg, nil)
}

// DeleteConnectionBetween deletes the connector from one member to another.
func (c *Client) DeleteConnectionBetween(ctx context.Context, fromID, toID string) error {
	cfg := client.Config{Param: map[string]string{"from_member_id": fromID, "to_member_id": toID}}
	return c.do(ctx, "DELETE", "/api/org-connections", cfg, nil)
}

// ChartSVG fetches the rendered chart of a structure.
func (c *Client) ChartSVG(ctx context.Context, structureID string) ([]byte, error) {
	cfg := structureParam(structureID)
	cfg.Ctx = ctx
	resp, err := c.http.Get("/api/org-chart.svg", cfg)
	if err != nil {
		return nil, fmt.Errorf("client: GET /api/org-chart.svg: %w", err)
	}
	defer resp.Close()
	if resp.StatusCode() != 200 {
		var body errorBody
		_ = resp.JSON(&body)
		return nil, &StatusError{Method: "GET", Path: "/api/org-chart.svg", Status: resp.StatusCode(), Message: body.Error}
	}
	return append([]byte(nil), resp.Body()...), nil
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
