package model

import (
	"testing"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		x       int32
		y       int32
		z       int32
		heading uint16
		want    Location
	}{
		{
			name: "zero values",
			want: Location{},
		},
		{
			name:    "positive coordinates",
			x:       100,
			y:       200,
			z:       300,
			heading: 1000,
			want:    Location{X: 100, Y: 200, Z: 300, Heading: 1000},
		},
		{
			name:    "negative coordinates",
			x:       -100,
			y:       -200,
			z:       -300,
			heading: 32768,
			want:    Location{X: -100, Y: -200, Z: -300, Heading: 32768},
		},
		{
			name:    "max heading",
			heading: 65535,
			want:    Location{Heading: 65535},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLocation(tt.x, tt.y, tt.z, tt.heading)
			if got != tt.want {
				t.Errorf("NewLocation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocation_Immutability(t *testing.T) {
	loc := NewLocation(1, 2, 3, 100)

	moved := loc.WithCoordinates(10, 20, 30)
	turned := loc.WithHeading(200)

	if loc != NewLocation(1, 2, 3, 100) {
		t.Errorf("original location mutated: %+v", loc)
	}
	if moved != NewLocation(10, 20, 30, 100) {
		t.Errorf("WithCoordinates() = %+v", moved)
	}
	if turned != NewLocation(1, 2, 3, 200) {
		t.Errorf("WithHeading() = %+v", turned)
	}
}
