package postgres

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/meikuraledutech/orgchart"
)

// SavePositions writes custom coordinates for every listed member, one UPDATE
// per member, run concurrently. Any failed UPDATE fails the batch; rows
// already written stay written.
//
// When req.StructureID is set and the custom flag is on, every member of the
// structure is switched to the custom layout afterwards.
func (s *PGStore) SavePositions(ctx context.Context, req orgchart.SavePositionsRequest) (int, error) {
	custom := req.CustomLayout()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)
	for _, p := range req.Positions {
		g.Go(func() error {
			ct, err := s.db.Exec(gctx,
				`UPDATE org_members
				 SET custom_x = $1, custom_y = $2, use_custom_layout = $3, updated_at = NOW()
				 WHERE id = $4`,
				p.CustomX, p.CustomY, custom, p.ID,
			)
			if err != nil {
				return fmt.Errorf("orgchart: update position %s: %w", p.ID, err)
			}
			if ct.RowsAffected() == 0 {
				return fmt.Errorf("orgchart: update position %s: %w", p.ID, orgchart.ErrMemberNotFound)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if req.StructureID != "" && custom {
		if _, err := s.db.Exec(ctx,
			`UPDATE org_members SET use_custom_layout = TRUE, updated_at = NOW() WHERE structure_id = $1`,
			req.StructureID,
		); err != nil {
			return 0, fmt.Errorf("orgchart: enable custom layout: %w", err)
		}
	}

	return len(req.Positions), nil
}

// ResetLayout clears the saved positions of every member of a structure.
func (s *PGStore) ResetLayout(ctx context.Context, structureID string) error {
	if structureID == "" {
		return orgchart.ErrStructureRequired
	}
	_, err := s.db.Exec(ctx,
		`UPDATE org_members
		 SET custom_x = NULL, custom_y = NULL, use_custom_layout = FALSE, updated_at = NOW()
		 WHERE structure_id = $1`,
		structureID,
	)
	if err != nil {
		return fmt.Errorf("orgchart: reset layout: %w", err)
	}
	return nil
}
