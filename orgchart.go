package orgchart

import "time"

// Structure is a named organization chart (e.g. a village council).
type Structure struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon,omitempty"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is a node of an organization chart.
// CustomX, CustomY and UseCustomLayout are written only by the layout editor.
// Children is derived from ParentID links and never persisted.
type Member struct {
	ID              string    `json:"id"`
	StructureID     string    `json:"structure_id"`
	ParentID        *string   `json:"parent_id"`
	Name            string    `json:"name"`
	Position        string    `json:"position"`
	Role            string    `json:"role"`
	Level           int       `json:"level"`
	Order           int       `json:"order"`
	PhotoURL        *string   `json:"photo_url"`
	Description     string    `json:"description,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Email           string    `json:"email,omitempty"`
	IsActive        bool      `json:"is_active"`
	CustomX         *float64  `json:"custom_x"`
	CustomY         *float64  `json:"custom_y"`
	UseCustomLayout bool      `json:"use_custom_layout"`
	Children        []*Member `json:"children"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasCustomPosition reports whether the member's saved coordinates should be used.
func (m *Member) HasCustomPosition() bool {
	return m.UseCustomLayout && m.CustomX != nil && m.CustomY != nil
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position is the top-left canvas coordinate of a member card.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Point returns the position without its id.
func (p Position) Point() Point { return Point{X: p.X, Y: p.Y} }

// LineType is the stroke style of a connection.
type LineType string

const (
	Solid  LineType = "solid"
	Dashed LineType = "dashed"
	Dotted LineType = "dotted"
)

// Valid reports whether t is a known line type.
func (t LineType) Valid() bool {
	switch t {
	case Solid, Dashed, Dotted:
		return true
	}
	return false
}

// DashArray returns the SVG stroke-dasharray for the line type.
func (t LineType) DashArray() string {
	switch t {
	case Dashed:
		return "10,5"
	case Dotted:
		return "2,3"
	default:
		return "none"
	}
}

// Defaults applied when a connection is created without a style.
const (
	DefaultLineType LineType = Solid
	DefaultColor             = "#000000"
)

// Connection is a directed connector line between two members.
// ID is empty until the connection has been persisted.
// Waypoints are ordered; they define the polyline between the two anchors.
type Connection struct {
	ID          string    `json:"id,omitempty"`
	StructureID string    `json:"structure_id"`
	FromID      string    `json:"from_member_id"`
	ToID        string    `json:"to_member_id"`
	Type        LineType  `json:"connection_type"`
	Color       string    `json:"color"`
	Waypoints   []Point   `json:"waypoints"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Persisted reports whether the connection has a store-assigned id.
func (c *Connection) Persisted() bool { return c.ID != "" }

// ApplyDefaults fills an unset type, color and waypoint list.
func (c *Connection) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DefaultLineType
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if c.Waypoints == nil {
		c.Waypoints = []Point{}
	}
}

// ConnectionPatch updates only the non-nil fields of a connection.
type ConnectionPatch struct {
	ID        string    `json:"id"`
	Waypoints *[]Point  `json:"waypoints,omitempty"`
	Type      *LineType `json:"connection_type,omitempty"`
	Color     *string   `json:"color,omitempty"`
}

// Apply writes the patch onto c.
func (p ConnectionPatch) Apply(c *Connection) {
	if p.Waypoints != nil {
		c.Waypoints = append([]Point{}, (*p.Waypoints)...)
	}
	if p.Type != nil && *p.Type != "" {
		c.Type = *p.Type
	}
	if p.Color != nil && *p.Color != "" {
		c.Color = *p.Color
	}
}

// PositionUpdate is one entry of a batch position save.
type PositionUpdate struct {
	ID      string  `json:"id" validate:"required"`
	CustomX float64 `json:"custom_x"`
	CustomY float64 `json:"custom_y"`
}

// SavePositionsRequest saves custom coordinates for many members at once.
// When StructureID is set and UseCustomLayout is true, every member of the
// structure is switched to the custom layout, listed or not.
type SavePositionsRequest struct {
	Positions       []PositionUpdate `json:"positions" validate:"required,dive"`
	UseCustomLayout *bool            `json:"use_custom_layout,omitempty"`
	StructureID     string           `json:"structure_id,omitempty"`
}

// CustomLayout returns the flag to write on each listed member; it defaults to true.
func (r SavePositionsRequest) CustomLayout() bool {
	if r.UseCustomLayout == nil {
		return true
	}
	return *r.UseCustomLayout
}
