package httpapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/meikuraledutech/orgchart"
)

// validate is a singleton validator instance.
var validate = validator.New()

type createConnectionRequest struct {
	StructureID string           `json:"structure_id" validate:"required"`
	FromID      string           `json:"from_member_id" validate:"required"`
	ToID        string           `json:"to_member_id" validate:"required"`
	Type        string           `json:"connection_type"`
	Color       string           `json:"color"`
	Waypoints   []orgchart.Point `json:"waypoints"`
}

func (r createConnectionRequest) connection() *orgchart.Connection {
	return &orgchart.Connection{
		StructureID: r.StructureID,
		FromID:      r.FromID,
		ToID:        r.ToID,
		Type:        orgchart.LineType(r.Type),
		Color:       r.Color,
		Waypoints:   r.Waypoints,
	}
}

type patchConnectionRequest struct {
	ID        string            `json:"id" validate:"required"`
	Waypoints *[]orgchart.Point `json:"waypoints"`
	Type      *string           `json:"connection_type"`
	Color     *string           `json:"color"`
}

func (r patchConnectionRequest) patch() orgchart.ConnectionPatch {
	p := orgchart.ConnectionPatch{ID: r.ID, Waypoints: r.Waypoints, Color: r.Color}
	if r.Type != nil {
		t := orgchart.LineType(*r.Type)
		p.Type = &t
	}
	return p
}

type resetLayoutRequest struct {
	StructureID string `json:"structure_id" validate:"required"`
}

type createStructureRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"required"`
	Icon        string `json:"icon"`
}

type createMemberRequest struct {
	StructureID string  `json:"structure_id" validate:"required"`
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" validate:"required"`
	Position    string  `json:"position" validate:"required"`
	Role        string  `json:"role" validate:"required"`
	PhotoURL    *string `json:"photo_url"`
	Description string  `json:"description"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	ManualLevel *int    `json:"manual_level"`
	Order       int     `json:"order"`
}
