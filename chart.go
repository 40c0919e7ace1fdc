package orgchart

import (
	"context"
	"net/url"
)

// Public paths of the chart pages.
const ChartPath = "/kelembagaan"

// EditorPath is the layout editor page of a structure.
func EditorPath(structureID string) string {
	return ChartPath + "/customize?structure_id=" + url.QueryEscape(structureID)
}

// ChartSource loads what both the editor and the viewer draw.
type ChartSource interface {
	Tree(ctx context.Context, structureID string) ([]*Member, error)
	Connections(ctx context.Context, structureID string) ([]Connection, error)
}

// Navigator moves the embedding application to another page.
type Navigator interface {
	Navigate(path string)
	Reload()
}

// Notifier shows a blocking message to the admin.
type Notifier interface {
	Alert(msg string)
}

// StoreSource reads charts straight from stores.
type StoreSource struct {
	members MemberStore
	conns   ConnectionStore
}

// NewStoreSource returns a ChartSource backed by s.
func NewStoreSource(s interface {
	MemberStore
	ConnectionStore
}) *StoreSource {
	return &StoreSource{members: s, conns: s}
}

func (s *StoreSource) Tree(ctx context.Context, structureID string) ([]*Member, error) {
	return Tree(ctx, s.members, structureID)
}

func (s *StoreSource) Connections(ctx context.Context, structureID string) ([]Connection, error) {
	return s.conns.ListConnections(ctx, structureID)
}
