package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/meikuraledutech/orgchart"
)

func cloneConnection(c orgchart.Connection) orgchart.Connection {
	c.Waypoints = append([]orgchart.Point{}, c.Waypoints...)
	return c
}

// ListConnections returns the connections of a structure ordered by creation time.
func (s *Store) ListConnections(ctx context.Context, structureID string) ([]orgchart.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []orgchart.Connection{}
	for _, c := range s.connections {
		if c.StructureID == structureID {
			out = append(out, cloneConnection(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CreateConnection inserts a connection with defaults applied.
// A second connection between the same two members is ErrConnectionExists.
func (s *Store) CreateConnection(ctx context.Context, c *orgchart.Connection) (*orgchart.Connection, error) {
	if err := orgchart.ValidateConnection(c); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.connections {
		if existing.FromID == c.FromID && existing.ToID == c.ToID {
			return nil, orgchart.ErrConnectionExists
		}
	}

	stored := cloneConnection(*c)
	stored.ApplyDefaults()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = s.stamp()
	stored.UpdatedAt = stored.CreatedAt
	s.connections[stored.ID] = stored

	out := cloneConnection(stored)
	return &out, nil
}

// PatchConnection applies the non-nil fields of p.
func (s *Store) PatchConnection(ctx context.Context, p orgchart.ConnectionPatch) (*orgchart.Connection, error) {
	if p.Type != nil && *p.Type != "" && !p.Type.Valid() {
		return nil, orgchart.ErrInvalidLineType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.connections[p.ID]
	if !ok {
		return nil, orgchart.ErrConnectionNotFound
	}
	p.Apply(&c)
	c.UpdatedAt = s.stamp()
	s.connections[c.ID] = c

	out := cloneConnection(c)
	return &out, nil
}

// DeleteConnection deletes a connection by id. Missing ids are not an error.
func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, id)
	return nil
}

// DeleteConnectionBetween deletes the connection from one member to another.
func (s *Store) DeleteConnectionBetween(ctx context.Context, fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.connections {
		if c.FromID == fromID && c.ToID == toID {
			delete(s.connections, id)
		}
	}
	return nil
}
