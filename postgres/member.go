package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/orgchart"
)

const memberColumns = `id, structure_id, parent_id, name, position, role, level, "order",
	photo_url, description, phone, email, is_active, custom_x, custom_y, use_custom_layout,
	created_at, updated_at`

// AddMember inserts a single member.
// If m.ID is empty, a UUID is auto-generated.
func (s *PGStore) AddMember(ctx context.Context, m *orgchart.Member) (string, error) {
	if m.StructureID == "" {
		return "", orgchart.ErrStructureRequired
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO org_members (id, structure_id, parent_id, name, position, role, level, "order",
			photo_url, description, phone, email, is_active, custom_x, custom_y, use_custom_layout)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at, updated_at`,
		m.ID, m.StructureID, m.ParentID, m.Name, m.Position, m.Role, m.Level, m.Order,
		m.PhotoURL, m.Description, m.Phone, m.Email, m.IsActive, m.CustomX, m.CustomY, m.UseCustomLayout,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return "", fmt.Errorf("orgchart: insert member: unknown structure or parent: %w", err)
		}
		return "", fmt.Errorf("orgchart: insert member: %w", err)
	}
	return m.ID, nil
}

// GetMember fetches a single member by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetMember(ctx context.Context, id string) (*orgchart.Member, error) {
	row := s.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM org_members WHERE id = $1`, id)
	m, err := scanMember(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("orgchart: get member: %w", err)
	}
	return m, nil
}

// ListMembers returns the active members of a structure ordered by level, then order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListMembers(ctx context.Context, structureID string) ([]orgchart.Member, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+memberColumns+` FROM org_members
		 WHERE structure_id = $1 AND is_active
		 ORDER BY level, "order", created_at`, structureID)
	if err != nil {
		return nil, fmt.Errorf("orgchart: list members: %w", err)
	}
	defer rows.Close()

	members := []orgchart.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("orgchart: scan member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orgchart: rows members: %w", err)
	}
	return members, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*orgchart.Member, error) {
	var m orgchart.Member
	err := row.Scan(&m.ID, &m.StructureID, &m.ParentID, &m.Name, &m.Position, &m.Role,
		&m.Level, &m.Order, &m.PhotoURL, &m.Description, &m.Phone, &m.Email, &m.IsActive,
		&m.CustomX, &m.CustomY, &m.UseCustomLayout, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
