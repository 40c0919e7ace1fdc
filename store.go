package orgchart

import (
	"context"
	"errors"
)

var (
	ErrMemberNotFound     = errors.New("orgchart: member not found")
	ErrConnectionNotFound = errors.New("orgchart: connection not found")
	ErrConnectionExists   = errors.New("orgchart: connection already exists")
	ErrSelfLoop           = errors.New("orgchart: connection must join two different members")
	ErrMalformedTree      = errors.New("orgchart: malformed tree, parent links form a cycle")
	ErrStructureRequired  = errors.New("orgchart: structure_id is required")
	ErrMissingEndpoints   = errors.New("orgchart: structure_id, from_member_id, and to_member_id are required")
	ErrInvalidLineType    = errors.New("orgchart: connection_type must be solid, dashed or dotted")
)

// MemberStore serves the member tree of a structure.
type MemberStore interface {
	ListStructures(ctx context.Context) ([]Structure, error)
	CreateStructure(ctx context.Context, s *Structure) (string, error)

	// ListMembers returns active members ordered by level, then order.
	ListMembers(ctx context.Context, structureID string) ([]Member, error)
	AddMember(ctx context.Context, m *Member) (string, error)
}

// PositionStore persists editor-owned layout fields of members.
type PositionStore interface {
	SavePositions(ctx context.Context, req SavePositionsRequest) (int, error)
	ResetLayout(ctx context.Context, structureID string) error
}

// ConnectionStore persists connector lines.
type ConnectionStore interface {
	ListConnections(ctx context.Context, structureID string) ([]Connection, error)
	CreateConnection(ctx context.Context, c *Connection) (*Connection, error)
	PatchConnection(ctx context.Context, p ConnectionPatch) (*Connection, error)
	DeleteConnection(ctx context.Context, id string) error
	DeleteConnectionBetween(ctx context.Context, fromID, toID string) error
}

// Store is the full persistence contract.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	MemberStore
	PositionStore
	ConnectionStore
}

// Tree loads the member tree of a structure.
func Tree(ctx context.Context, s MemberStore, structureID string) ([]*Member, error) {
	if structureID == "" {
		return nil, ErrStructureRequired
	}
	members, err := s.ListMembers(ctx, structureID)
	if err != nil {
		return nil, err
	}
	return BuildTree(members)
}

// ValidateConnection checks a connection before it is created.
func ValidateConnection(c *Connection) error {
	if c.StructureID == "" || c.FromID == "" || c.ToID == "" {
		return ErrMissingEndpoints
	}
	if c.FromID == c.ToID {
		return ErrSelfLoop
	}
	if c.Type != "" && !c.Type.Valid() {
		return ErrInvalidLineType
	}
	return nil
}
