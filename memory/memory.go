// Package memory is an in-process implementation of orgchart.Store.
// It is used by tests, the example walkthrough and `server serve --memory`.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/orgchart"
)

// Store keeps structures, members and connections in maps guarded by a
// read-write mutex. Values handed out are copies.
type Store struct {
	mu          sync.RWMutex
	structures  map[string]orgchart.Structure
	members     map[string]orgchart.Member
	connections map[string]orgchart.Connection
	seq         int64
	now         func() time.Time
}

var _ orgchart.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	s := &Store{now: time.Now}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.structures = map[string]orgchart.Structure{}
	s.members = map[string]orgchart.Member{}
	s.connections = map[string]orgchart.Connection{}
}

// stamp returns a strictly increasing timestamp so created_at ordering is
// stable even when the clock does not move between calls.
func (s *Store) stamp() time.Time {
	s.seq++
	return s.now().Add(time.Duration(s.seq))
}

// CreateSchema is a no-op.
func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema removes everything.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// ListStructures returns active structures ordered by order.
func (s *Store) ListStructures(ctx context.Context) ([]orgchart.Structure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []orgchart.Structure{}
	for _, st := range s.structures {
		if st.IsActive {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateStructure inserts a structure. An empty ID is generated.
func (s *Store) CreateStructure(ctx context.Context, st *orgchart.Structure) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	st.CreatedAt = s.stamp()
	st.UpdatedAt = st.CreatedAt
	s.structures[st.ID] = *st
	return st.ID, nil
}

// ListMembers returns active members of a structure ordered by level, then order.
func (s *Store) ListMembers(ctx context.Context, structureID string) ([]orgchart.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []orgchart.Member{}
	for _, m := range s.members {
		if m.StructureID == structureID && m.IsActive {
			m.Children = nil
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

// AddMember inserts a member. An empty ID is generated.
func (s *Store) AddMember(ctx context.Context, m *orgchart.Member) (string, error) {
	if m.StructureID == "" {
		return "", orgchart.ErrStructureRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = s.stamp()
	m.UpdatedAt = m.CreatedAt
	stored := *m
	stored.Children = nil
	s.members[m.ID] = stored
	return m.ID, nil
}

// SavePositions writes custom coordinates for every listed member. When a
// structure id is given with the custom flag on, every member of that
// structure is switched to the custom layout as well.
func (s *Store) SavePositions(ctx context.Context, req orgchart.SavePositionsRequest) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range req.Positions {
		if _, ok := s.members[p.ID]; !ok {
			return 0, orgchart.ErrMemberNotFound
		}
	}

	now := s.stamp()
	custom := req.CustomLayout()
	for _, p := range req.Positions {
		m := s.members[p.ID]
		x, y := p.CustomX, p.CustomY
		m.CustomX, m.CustomY = &x, &y
		m.UseCustomLayout = custom
		m.UpdatedAt = now
		s.members[p.ID] = m
	}

	if req.StructureID != "" && custom {
		for id, m := range s.members {
			if m.StructureID == req.StructureID {
				m.UseCustomLayout = true
				m.UpdatedAt = now
				s.members[id] = m
			}
		}
	}
	return len(req.Positions), nil
}

// ResetLayout clears the saved positions of every member of a structure.
func (s *Store) ResetLayout(ctx context.Context, structureID string) error {
	if structureID == "" {
		return orgchart.ErrStructureRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	for id, m := range s.members {
		if m.StructureID == structureID {
			m.CustomX, m.CustomY = nil, nil
			m.UseCustomLayout = false
			m.UpdatedAt = now
			s.members[id] = m
		}
	}
	return nil
}
