package layout

import "github.com/meikuraledutech/orgchart"

// Route is a connector resolved against the current positions.
type Route struct {
	// Index of the connection in the list it came from.
	Index      int
	Connection orgchart.Connection
	From, To   orgchart.Point
	Path       []orgchart.Point
}

// PathData returns the SVG path of the route.
func (r Route) PathData() string { return PathData(r.Path) }

// Routes resolves every connection whose two endpoints have a position.
// Connections with a missing endpoint are skipped.
func Routes(conns []orgchart.Connection, pos Positions, cfg Config) []Route {
	routes := make([]Route, 0, len(conns))
	for i, c := range conns {
		fromPos, ok := pos[c.FromID]
		if !ok {
			continue
		}
		toPos, ok := pos[c.ToID]
		if !ok {
			continue
		}
		from, to := Anchor(fromPos, cfg), Anchor(toPos, cfg)
		routes = append(routes, Route{
			Index:      i,
			Connection: c,
			From:       from,
			To:         to,
			Path:       ConnectorPath(from, to, c.Waypoints),
		})
	}
	return routes
}
