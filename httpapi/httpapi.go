// Package httpapi serves the org chart REST API with fiber.
//
// Reads are public. Writes need an admin session cookie.
package httpapi

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/layout"
	"github.com/meikuraledutech/orgchart/metrics"
	"github.com/meikuraledutech/orgchart/render"
)

// Option configures the API.
type Option func(*server)

// WithSessions enables admin routes. Without it every admin route answers 401.
func WithSessions(s *Sessions) Option { return func(srv *server) { srv.sessions = s } }

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option { return func(srv *server) { srv.log = l } }

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(r *metrics.Registry) Option { return func(srv *server) { srv.metrics = r } }

// WithLayout sets the layout used by the SVG endpoint.
func WithLayout(cfg layout.Config) Option { return func(srv *server) { srv.layout = cfg } }

type server struct {
	store    orgchart.Store
	sessions *Sessions
	log      *zap.Logger
	metrics  *metrics.Registry
	layout   layout.Config
}

// New returns a fiber app serving store.
func New(store orgchart.Store, opts ...Option) *fiber.App {
	srv := &server{
		store:  store,
		log:    zap.NewNop(),
		layout: layout.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	app := fiber.New(fiber.Config{AppName: "orgchart"})
	app.Use(fiberrecover.New())
	app.Use(srv.requestLogger)
	app.Use(cors.New())

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	if srv.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(srv.metrics.Handler()))
	}

	api := app.Group("/api")

	api.Get("/check-admin", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"isAdmin": srv.isAdmin(c)})
	})

	// ── Structures ────────────────────────────────────────────────────
	api.Get("/org-structures", srv.listStructures)
	api.Post("/org-structures", srv.requireAdmin, srv.createStructure)

	// ── Members ───────────────────────────────────────────────────────
	api.Get("/org-members", srv.memberTree)
	api.Post("/org-members", srv.requireAdmin, srv.createMember)
	api.Patch("/org-members/positions", srv.requireAdmin, srv.savePositions)
	api.Post("/org-members/positions", srv.requireAdmin, srv.resetLayout)

	// ── Connections ───────────────────────────────────────────────────
	api.Get("/org-connections", srv.listConnections)
	api.Post("/org-connections", srv.requireAdmin, srv.createConnection)
	api.Patch("/org-connections", srv.requireAdmin, srv.patchConnection)
	api.Delete("/org-connections", srv.requireAdmin, srv.deleteConnection)

	api.Get("/org-chart.svg", srv.chartSVG)

	return app
}

// requestLogger logs every request and records its metrics.
func (s *server) requestLogger(c fiber.Ctx) error {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()
	}

	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}
	elapsed := time.Since(start)
	path := c.Route().Path

	s.log.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
	)
	if s.metrics != nil {
		s.metrics.RecordHTTPRequest(c.Method(), path, strconv.Itoa(status), elapsed)
	}
	return err
}

func (s *server) isAdmin(c fiber.Ctx) bool {
	if s.sessions == nil {
		return false
	}
	token := c.Cookies(SessionCookie)
	if token == "" {
		return false
	}
	_, err := s.sessions.Verify(token)
	return err == nil
}

func (s *server) requireAdmin(c fiber.Ctx) error {
	if !s.isAdmin(c) {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.Next()
}

// fail maps store errors to a status and logs the unexpected ones.
func (s *server) fail(c fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, orgchart.ErrConnectionExists):
		return c.Status(409).JSON(fiber.Map{"error": "Connection already exists"})
	case errors.Is(err, orgchart.ErrConnectionNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Connection not found"})
	case errors.Is(err, orgchart.ErrMemberNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Member not found"})
	case errors.Is(err, orgchart.ErrSelfLoop),
		errors.Is(err, orgchart.ErrInvalidLineType),
		errors.Is(err, orgchart.ErrMissingEndpoints),
		errors.Is(err, orgchart.ErrStructureRequired):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	s.log.Error("request failed", zap.String("action", action), zap.Error(err))
	return c.Status(500).JSON(fiber.Map{"error": "Failed to " + action})
}

func (s *server) chartSVG(c fiber.Ctx) error {
	sid := c.Query("structure_id")
	if sid == "" {
		return c.Status(400).JSON(fiber.Map{"error": "structure_id is required"})
	}

	var buf bytes.Buffer
	err := render.Chart(c.Context(), orgchart.NewStoreSource(s.store), sid, &buf, render.Options{
		Layout:  s.layout,
		Padding: render.DefaultOptions().Padding,
		Logger:  s.log,
	})
	if s.metrics != nil {
		s.metrics.RecordRender(err)
	}
	if err != nil {
		return s.fail(c, err, "render chart")
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(buf.Bytes())
}
