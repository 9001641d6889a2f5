package model

import "fmt"

// Area bounds where spawned instances may appear: a single point or an
// inclusive axis-aligned rectangle. A point is a rectangle with
// XMin == XMax and YMin == YMax.
type Area struct {
	XMin, XMax int32
	YMin, YMax int32
	Z          int32
}

// PointArea returns an area covering exactly (x, y).
func PointArea(x, y int32) Area {
	return Area{XMin: x, XMax: x, YMin: y, YMax: y}
}

// RectArea returns the inclusive rectangle [xMin, xMax] x [yMin, yMax].
func RectArea(xMin, xMax, yMin, yMax int32) Area {
	return Area{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
}

// WithZ returns a copy of a with height z.
func (a Area) WithZ(z int32) Area {
	a.Z = z
	return a
}

// IsPoint reports whether the area is a single point.
func (a Area) IsPoint() bool {
	return a.XMin == a.XMax && a.YMin == a.YMax
}

// IsInverted reports whether a min bound exceeds its max bound.
func (a Area) IsInverted() bool {
	return a.XMin > a.XMax || a.YMin > a.YMax
}

// Contains reports whether (x, y) lies inside the area, bounds inclusive.
func (a Area) Contains(x, y int32) bool {
	return x >= a.XMin && x <= a.XMax && y >= a.YMin && y <= a.YMax
}

// Center returns the center point, rounded toward the min corner.
func (a Area) Center() (int32, int32) {
	return a.XMin + (a.XMax-a.XMin)/2, a.YMin + (a.YMax-a.YMin)/2
}

func (a Area) String() string {
	if a.IsPoint() {
		return fmt.Sprintf("point(%d,%d)", a.XMin, a.YMin)
	}
	return fmt.Sprintf("rect(%d..%d,%d..%d)", a.XMin, a.XMax, a.YMin, a.YMax)
}
