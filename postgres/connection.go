package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/meikuraledutech/orgchart"
)

const connectionColumns = `id, structure_id, from_member_id, to_member_id, connection_type, color,
	waypoints, created_at, updated_at`

// CreateConnection inserts a connection with defaults applied.
// If c.ID is empty, a UUID is auto-generated. A second connection between
// the same two members returns ErrConnectionExists.
func (s *PGStore) CreateConnection(ctx context.Context, c *orgchart.Connection) (*orgchart.Connection, error) {
	if err := orgchart.ValidateConnection(c); err != nil {
		return nil, err
	}

	out := *c
	out.ApplyDefaults()
	if out.ID == "" {
		out.ID = uuid.NewString()
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO org_connections (id, structure_id, from_member_id, to_member_id, connection_type, color, waypoints)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		out.ID, out.StructureID, out.FromID, out.ToID, string(out.Type), out.Color, out.Waypoints,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		switch pgCode(err) {
		case uniqueViolation:
			return nil, orgchart.ErrConnectionExists
		case checkViolation:
			return nil, orgchart.ErrSelfLoop
		case foreignKeyViolation:
			return nil, orgchart.ErrMemberNotFound
		}
		return nil, fmt.Errorf("orgchart: insert connection: %w", err)
	}
	return &out, nil
}

// ListConnections returns all connections of a structure, ordered by created_at.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListConnections(ctx context.Context, structureID string) ([]orgchart.Connection, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+connectionColumns+` FROM org_connections WHERE structure_id = $1 ORDER BY created_at`,
		structureID)
	if err != nil {
		return nil, fmt.Errorf("orgchart: list connections: %w", err)
	}
	defer rows.Close()

	conns := []orgchart.Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("orgchart: scan connection: %w", err)
		}
		conns = append(conns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orgchart: rows connections: %w", err)
	}
	return conns, nil
}

// PatchConnection updates only the fields set in p and bumps updated_at.
// Returns ErrConnectionNotFound if the connection doesn't exist.
func (s *PGStore) PatchConnection(ctx context.Context, p orgchart.ConnectionPatch) (*orgchart.Connection, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if p.Waypoints != nil {
		wps := *p.Waypoints
		if wps == nil {
			wps = []orgchart.Point{}
		}
		set("waypoints", wps)
	}
	if p.Type != nil && *p.Type != "" {
		if !p.Type.Valid() {
			return nil, orgchart.ErrInvalidLineType
		}
		set("connection_type", string(*p.Type))
	}
	if p.Color != nil && *p.Color != "" {
		set("color", *p.Color)
	}
	args = append(args, p.ID)

	query := `UPDATE org_connections SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + connectionColumns

	c, err := scanConnection(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, orgchart.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("orgchart: update connection: %w", err)
	}
	return c, nil
}

// DeleteConnection deletes a connection by its ID.
// No error if the connection doesn't exist.
func (s *PGStore) DeleteConnection(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM org_connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("orgchart: delete connection: %w", err)
	}
	return nil
}

// DeleteConnectionBetween deletes the connection from one member to another.
// No error if there is none.
func (s *PGStore) DeleteConnectionBetween(ctx context.Context, fromID, toID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM org_connections WHERE from_member_id = $1 AND to_member_id = $2`, fromID, toID)
	if err != nil {
		return fmt.Errorf("orgchart: delete connection: %w", err)
	}
	return nil
}

func scanConnection(row scanner) (*orgchart.Connection, error) {
	var c orgchart.Connection
	var lineType string
	err := row.Scan(&c.ID, &c.StructureID, &c.FromID, &c.ToID, &lineType, &c.Color,
		&c.Waypoints, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Type = orgchart.LineType(lineType)
	if c.Waypoints == nil {
		c.Waypoints = []orgchart.Point{}
	}
	return &c, nil
}
