package model

import "fmt"

// Direction is a fixed facing (heading 0-65535) or DirectionUndefined,
// in which case the placement resolver picks a facing per instance.
type Direction int32

// DirectionUndefined lets the resolver choose a facing at creation time.
const DirectionUndefined Direction = -1

// CompassHeadings are the eight compass facings, north first, clockwise.
var CompassHeadings = [8]uint16{0, 8192, 16384, 24576, 32768, 40960, 49152, 57344}

// FixedDirection returns a direction that always faces heading.
func FixedDirection(heading uint16) Direction {
	return Direction(heading)
}

// ParseDirection validates a raw stored value: -1 or 0-65535.
func ParseDirection(v int32) (Direction, error) {
	if v < int32(DirectionUndefined) || v > 65535 {
		return 0, fmt.Errorf("direction %d out of range", v)
	}
	return Direction(v), nil
}

// Heading returns the fixed heading and true, or false when undefined.
func (d Direction) Heading() (uint16, bool) {
	if d < 0 {
		return 0, false
	}
	return uint16(d), true
}

// IsUndefined reports whether the facing is chosen at creation time.
func (d Direction) IsUndefined() bool {
	return d < 0
}
