package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS org_structures (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    color       TEXT NOT NULL DEFAULT '',
    icon        TEXT NOT NULL DEFAULT '',
    "order"     INTEGER NOT NULL DEFAULT 0,
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS org_members (
    id                TEXT PRIMARY KEY,
    structure_id      TEXT NOT NULL REFERENCES org_structures(id) ON DELETE CASCADE,
    parent_id         TEXT REFERENCES org_members(id) ON DELETE SET NULL,
    name              TEXT NOT NULL,
    position          TEXT NOT NULL DEFAULT '',
    role              TEXT NOT NULL DEFAULT '',
    level             INTEGER NOT NULL DEFAULT 0,
    "order"           INTEGER NOT NULL DEFAULT 0,
    photo_url         TEXT,
    description       TEXT NOT NULL DEFAULT '',
    phone             TEXT NOT NULL DEFAULT '',
    email             TEXT NOT NULL DEFAULT '',
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    custom_x          DOUBLE PRECISION,
    custom_y          DOUBLE PRECISION,
    use_custom_layout BOOLEAN NOT NULL DEFAULT FALSE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS org_connections (
    id              TEXT PRIMARY KEY,
    structure_id    TEXT NOT NULL REFERENCES org_structures(id) ON DELETE CASCADE,
    from_member_id  TEXT NOT NULL REFERENCES org_members(id) ON DELETE CASCADE,
    to_member_id    TEXT NOT NULL REFERENCES org_members(id) ON DELETE CASCADE,
    connection_type TEXT NOT NULL DEFAULT 'solid',
    color           TEXT NOT NULL DEFAULT '#000000',
    waypoints       JSONB NOT NULL DEFAULT '[]',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (from_member_id, to_member_id),
    CHECK (from_member_id <> to_member_id)
);

CREATE INDEX IF NOT EXISTS idx_org_members_structure     ON org_members(structure_id, level, "order");
CREATE INDEX IF NOT EXISTS idx_org_members_parent        ON org_members(parent_id);
CREATE INDEX IF NOT EXISTS idx_org_connections_structure ON org_connections(structure_id, created_at);
`

// CreateSchema creates the org_structures, org_members and org_connections
// tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops all three tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS org_connections, org_members, org_structures CASCADE;`)
	return err
}
