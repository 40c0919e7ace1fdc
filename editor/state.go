package editor

import (
	"fmt"

	"github.com/meikuraledutech/orgchart"
)

// Mode is the active editor tool.
type Mode string

const (
	ModeMove             Mode = "move"
	ModeConnect          Mode = "connect"
	ModeDeleteConnection Mode = "delete-connection"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeMove, ModeConnect, ModeDeleteConnection:
		return true
	}
	return false
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("editor: unknown mode %q", s)
	}
	return m, nil
}

// nodeDrag is an active card drag. offset is the pointer position relative
// to the card's top-left corner at press time.
type nodeDrag struct {
	id     string
	offset orgchart.Point
}

// waypointDrag is an active waypoint drag. before holds the waypoints at
// press time so a failed save can put them back.
type waypointDrag struct {
	conn, wp int
	before   []orgchart.Point
}

// interaction is the ephemeral, never persisted editor state.
// At most one of drag and wpDrag is set.
type interaction struct {
	mode   Mode
	drag   *nodeDrag
	wpDrag *waypointDrag
	// source is the pending start of a connection in connect mode.
	source string
	cursor orgchart.Point

	lineType orgchart.LineType
	color    string
}

func newInteraction() interaction {
	return interaction{
		mode:     ModeMove,
		lineType: orgchart.DefaultLineType,
		color:    orgchart.DefaultColor,
	}
}

func (s *interaction) endDrags() {
	s.drag = nil
	s.wpDrag = nil
}
