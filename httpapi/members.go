package httpapi

import (
	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/orgchart"
)

func (s *server) listStructures(c fiber.Ctx) error {
	list, err := s.store.ListStructures(c.Context())
	if err != nil {
		return s.fail(c, err, "fetch structures")
	}
	return c.JSON(list)
}

// createStructure appends the structure after the current last one.
func (s *server) createStructure(c fiber.Ctx) error {
	var req createStructureRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Name and color are required"})
	}

	existing, err := s.store.ListStructures(c.Context())
	if err != nil {
		return s.fail(c, err, "create structure")
	}
	order := 0
	for _, st := range existing {
		order = max(order, st.Order)
	}

	st := &orgchart.Structure{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Order:       order + 1,
		IsActive:    true,
	}
	if _, err := s.store.CreateStructure(c.Context(), st); err != nil {
		return s.fail(c, err, "create structure")
	}
	return c.Status(201).JSON(st)
}

func (s *server) memberTree(c fiber.Ctx) error {
	sid := c.Query("structure_id")
	if sid == "" {
		return c.Status(400).JSON(fiber.Map{"error": "structure_id is required"})
	}
	roots, err := orgchart.Tree(c.Context(), s.store, sid)
	if err != nil {
		return s.fail(c, err, "fetch org members")
	}
	return c.JSON(roots)
}

// createMember derives the level from the parent unless a manual level is
// given, and appends to the end of that level when no order is given.
func (s *server) createMember(c fiber.Ctx) error {
	var req createMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "structure_id, name, position, and role are required"})
	}

	siblings, err := s.store.ListMembers(c.Context(), req.StructureID)
	if err != nil {
		return s.fail(c, err, "create org member")
	}

	level := 0
	if req.ManualLevel != nil {
		level = *req.ManualLevel
	} else if req.ParentID != nil && *req.ParentID != "" {
		for _, m := range siblings {
			if m.ID == *req.ParentID {
				level = m.Level + 1
				break
			}
		}
	}

	order := req.Order
	if order == 0 {
		for _, m := range siblings {
			if m.Level == level {
				order = max(order, m.Order)
			}
		}
		order++
	}

	parent := req.ParentID
	if parent != nil && *parent == "" {
		parent = nil
	}
	m := &orgchart.Member{
		StructureID: req.StructureID,
		ParentID:    parent,
		Name:        req.Name,
		Position:    req.Position,
		Role:        req.Role,
		Level:       level,
		Order:       order,
		PhotoURL:    req.PhotoURL,
		Description: req.Description,
		Phone:       req.Phone,
		Email:       req.Email,
		IsActive:    true,
	}
	if _, err := s.store.AddMember(c.Context(), m); err != nil {
		return s.fail(c, err, "create org member")
	}
	return c.Status(201).JSON(m)
}

func (s *server) savePositions(c fiber.Ctx) error {
	var req orgchart.SavePositionsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "positions array is required"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "positions array is required"})
	}

	n, err := s.store.SavePositions(c.Context(), req)
	if s.metrics != nil {
		s.metrics.PositionBatchSize.Observe(float64(len(req.Positions)))
	}
	if err != nil {
		return s.fail(c, err, "update positions")
	}
	return c.JSON(fiber.Map{"success": true, "updated": n})
}

func (s *server) resetLayout(c fiber.Ctx) error {
	var req resetLayoutRequest
	if err := c.Bind().JSON(&req); err != nil || validate.Struct(&req) != nil {
		return c.Status(400).JSON(fiber.Map{"error": "structure_id is required"})
	}
	if err := s.store.ResetLayout(c.Context(), req.StructureID); err != nil {
		return s.fail(c, err, "reset layout")
	}
	if s.metrics != nil {
		s.metrics.LayoutResetsTotal.Inc()
	}
	return c.JSON(fiber.Map{"success": true})
}
