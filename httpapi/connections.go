package httpapi

import (
	"github.com/gofiber/fiber/v3"
)

func (s *server) recordMutation(action string, err error) {
	if s.metrics != nil {
		s.metrics.RecordConnectionMutation(action, err)
	}
}

func (s *server) listConnections(c fiber.Ctx) error {
	sid := c.Query("structure_id")
	if sid == "" {
		return c.Status(400).JSON(fiber.Map{"error": "structure_id is required"})
	}
	conns, err := s.store.ListConnections(c.Context(), sid)
	if err != nil {
		return s.fail(c, err, "fetch connections")
	}
	return c.JSON(conns)
}

func (s *server) createConnection(c fiber.Ctx) error {
	var req createConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "structure_id, from_member_id, and to_member_id are required"})
	}

	conn, err := s.store.CreateConnection(c.Context(), req.connection())
	s.recordMutation("create", err)
	if err != nil {
		return s.fail(c, err, "create connection")
	}
	return c.Status(201).JSON(conn)
}

func (s *server) patchConnection(c fiber.Ctx) error {
	var req patchConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "id is required"})
	}

	conn, err := s.store.PatchConnection(c.Context(), req.patch())
	s.recordMutation("patch", err)
	if err != nil {
		return s.fail(c, err, "update connection")
	}
	return c.JSON(conn)
}

// deleteConnection deletes by ?id=, or by ?from_member_id=&to_member_id=.
func (s *server) deleteConnection(c fiber.Ctx) error {
	id := c.Query("id")
	from, to := c.Query("from_member_id"), c.Query("to_member_id")

	var err error
	switch {
	case id != "":
		err = s.store.DeleteConnection(c.Context(), id)
	case from != "" && to != "":
		err = s.store.DeleteConnectionBetween(c.Context(), from, to)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Either id or both from_member_id and to_member_id are required"})
	}
	s.recordMutation("delete", err)
	if err != nil {
		return s.fail(c, err, "delete connection")
	}
	return c.JSON(fiber.Map{"success": true})
}
