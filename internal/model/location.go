package model

// Location is a position on a map plus a facing.
// Value type, passed by value (immutable).
type Location struct {
	X       int32
	Y       int32
	Z       int32
	Heading uint16 // 0-65535
}

// NewLocation creates a Location with the given coordinates and heading.
func NewLocation(x, y, z int32, heading uint16) Location {
	return Location{X: x, Y: y, Z: z, Heading: heading}
}

// WithHeading returns a copy of l facing heading.
func (l Location) WithHeading(heading uint16) Location {
	l.Heading = heading
	return l
}

// WithCoordinates returns a copy of l moved to (x, y, z), keeping the heading.
func (l Location) WithCoordinates(x, y, z int32) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}
