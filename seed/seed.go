// Package seed loads organization structures from YAML files into a store.
//
// Members refer to each other by a file-local ref; refs are resolved to store
// ids as members are inserted, parents before children.
//
//	structures:
//	  - name: Pemerintah Desa
//	    members:
//	      - ref: kades
//	        name: Budi
//	        position: Kepala Desa
//	      - ref: sekdes
//	        parent: kades
//	        name: Siti
//	        position: Sekretaris Desa
//	    connections:
//	      - from: kades
//	        to: sekdes
//	        type: dashed
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/orgchart"
)

// File is a seed document.
type File struct {
	Structures []Structure `yaml:"structures" validate:"required,min=1,dive"`
}

// Structure is one chart with its members and connections.
type Structure struct {
	Name        string       `yaml:"name" validate:"required"`
	Description string       `yaml:"description"`
	Color       string       `yaml:"color"`
	Icon        string       `yaml:"icon"`
	Order       int          `yaml:"order"`
	Inactive    bool         `yaml:"inactive"`
	Members     []Member     `yaml:"members" validate:"dive"`
	Connections []Connection `yaml:"connections" validate:"dive"`
}

// Member is a member entry. Level defaults to its depth in the tree.
type Member struct {
	Ref         string   `yaml:"ref" validate:"required"`
	Parent      string   `yaml:"parent"`
	Name        string   `yaml:"name" validate:"required"`
	Position    string   `yaml:"position"`
	Role        string   `yaml:"role"`
	Level       *int     `yaml:"level"`
	Order       int      `yaml:"order"`
	PhotoURL    string   `yaml:"photo_url"`
	Description string   `yaml:"description"`
	Phone       string   `yaml:"phone"`
	Email       string   `yaml:"email"`
	Inactive    bool     `yaml:"inactive"`
	X           *float64 `yaml:"x"`
	Y           *float64 `yaml:"y"`
}

// Connection is a connector between two member refs.
type Connection struct {
	From      string           `yaml:"from" validate:"required"`
	To        string           `yaml:"to" validate:"required,nefield=From"`
	Type      string           `yaml:"type" validate:"omitempty,oneof=solid dashed dotted"`
	Color     string           `yaml:"color"`
	Waypoints []orgchart.Point `yaml:"waypoints"`
}

var validate = validator.New()

// Parse decodes and validates a seed document.
func Parse(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("seed: %s: failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &f, nil
}

// Store is what Apply writes to.
type Store interface {
	orgchart.MemberStore
	orgchart.PositionStore
	orgchart.ConnectionStore
}

// Result lists what Apply created.
type Result struct {
	StructureIDs []string
	Members      int
	Connections  int
}

// Apply inserts every structure of f. Members are inserted in parent-first
// order; an unknown parent ref, a duplicate ref or a parent cycle is an error.
func Apply(ctx context.Context, s Store, f *File) (Result, error) {
	var res Result
	for _, st := range f.Structures {
		sid, n, c, err := applyStructure(ctx, s, st)
		if err != nil {
			return res, fmt.Errorf("seed: structure %q: %w", st.Name, err)
		}
		res.StructureIDs = append(res.StructureIDs, sid)
		res.Members += n
		res.Connections += c
	}
	return res, nil
}

func applyStructure(ctx context.Context, s Store, st Structure) (string, int, int, error) {
	order, err := parentFirst(st.Members)
	if err != nil {
		return "", 0, 0, err
	}

	sid, err := s.CreateStructure(ctx, &orgchart.Structure{
		Name:        st.Name,
		Description: st.Description,
		Color:       st.Color,
		Icon:        st.Icon,
		Order:       st.Order,
		IsActive:    !st.Inactive,
	})
	if err != nil {
		return "", 0, 0, err
	}

	refMap := make(map[string]string, len(order))
	depth := make(map[string]int, len(order))
	var positions []orgchart.PositionUpdate

	for _, m := range order {
		mem := &orgchart.Member{
			StructureID: sid,
			Name:        m.Name,
			Position:    m.Position,
			Role:        m.Role,
			Order:       m.Order,
			Description: m.Description,
			Phone:       m.Phone,
			Email:       m.Email,
			IsActive:    !m.Inactive,
		}
		if m.Parent != "" {
			pid := refMap[m.Parent]
			mem.ParentID = &pid
			depth[m.Ref] = depth[m.Parent] + 1
		}
		mem.Level = depth[m.Ref]
		if m.Level != nil {
			mem.Level = *m.Level
		}
		if m.PhotoURL != "" {
			mem.PhotoURL = &m.PhotoURL
		}

		id, err := s.AddMember(ctx, mem)
		if err != nil {
			return "", 0, 0, fmt.Errorf("member %q: %w", m.Ref, err)
		}
		refMap[m.Ref] = id

		if m.X != nil && m.Y != nil {
			positions = append(positions, orgchart.PositionUpdate{ID: id, CustomX: *m.X, CustomY: *m.Y})
		}
	}

	if len(positions) > 0 {
		if _, err := s.SavePositions(ctx, orgchart.SavePositionsRequest{
			Positions:   positions,
			StructureID: sid,
		}); err != nil {
			return "", 0, 0, fmt.Errorf("positions: %w", err)
		}
	}

	for _, c := range st.Connections {
		from, ok := refMap[c.From]
		if !ok {
			return "", 0, 0, fmt.Errorf("connection: unknown member ref %q", c.From)
		}
		to, ok := refMap[c.To]
		if !ok {
			return "", 0, 0, fmt.Errorf("connection: unknown member ref %q", c.To)
		}
		if _, err := s.CreateConnection(ctx, &orgchart.Connection{
			StructureID: sid,
			FromID:      from,
			ToID:        to,
			Type:        orgchart.LineType(c.Type),
			Color:       c.Color,
			Waypoints:   c.Waypoints,
		}); err != nil {
			return "", 0, 0, fmt.Errorf("connection %s->%s: %w", c.From, c.To, err)
		}
	}

	return sid, len(order), len(st.Connections), nil
}

// parentFirst orders members so every parent precedes its children, keeping
// file order otherwise.
func parentFirst(members []Member) ([]Member, error) {
	byRef := make(map[string]int, len(members))
	for i, m := range members {
		if _, dup := byRef[m.Ref]; dup {
			return nil, fmt.Errorf("duplicate member ref %q", m.Ref)
		}
		byRef[m.Ref] = i
	}
	for _, m := range members {
		if m.Parent == "" {
			continue
		}
		if _, ok := byRef[m.Parent]; !ok {
			return nil, fmt.Errorf("member %q: unknown parent ref %q", m.Ref, m.Parent)
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(members))
	out := make([]Member, 0, len(members))

	var visit func(i int) error
	visit = func(i int) error {
		m := members[i]
		switch state[m.Ref] {
		case visiting:
			return orgchart.ErrMalformedTree
		case visited:
			return nil
		}
		state[m.Ref] = visiting
		if m.Parent != "" {
			if err := visit(byRef[m.Parent]); err != nil {
				return err
			}
		}
		state[m.Ref] = visited
		out = append(out, m)
		return nil
	}

	for i := range members {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}
