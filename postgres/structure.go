package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/orgchart"
)

// CreateStructure inserts a structure.
// If st.ID is empty, a UUID is auto-generated.
func (s *PGStore) CreateStructure(ctx context.Context, st *orgchart.Structure) (string, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO org_structures (id, name, description, color, icon, "order", is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		st.ID, st.Name, st.Description, st.Color, st.Icon, st.Order, st.IsActive,
	).Scan(&st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("orgchart: insert structure: %w", err)
	}
	return st.ID, nil
}

// ListStructures returns active structures ordered by order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListStructures(ctx context.Context) ([]orgchart.Structure, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, color, icon, "order", is_active, created_at, updated_at
		 FROM org_structures WHERE is_active ORDER BY "order", created_at`)
	if err != nil {
		return nil, fmt.Errorf("orgchart: list structures: %w", err)
	}
	defer rows.Close()

	out := []orgchart.Structure{}
	for rows.Next() {
		var st orgchart.Structure
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.Color, &st.Icon,
			&st.Order, &st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("orgchart: scan structure: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orgchart: rows structures: %w", err)
	}
	return out, nil
}
