package grid

import "fmt"

// Direction is a facing in quarter turns counter-clockwise from East.
type Direction int

const (
	East Direction = iota
	North
	West
	South
)

// String returns the compass name of the direction.
func (d Direction) String() string {
	switch d.normalize() {
	case East:
		return "east"
	case North:
		return "north"
	case West:
		return "west"
	default:
		return "south"
	}
}

func (d Direction) normalize() Direction {
	return ((d % 4) + 4) % 4
}

// sin returns sin(d·90°) using only -1, 0 and 1.
func (d Direction) sin() int {
	n := int(d.normalize())
	if n%2 == 0 {
		return 0
	}
	return 2 - n
}

// cos returns cos(d·90°) using only -1, 0 and 1.
func (d Direction) cos() int {
	n := int(d.normalize())
	if n%2 == 1 {
		return 0
	}
	return 1 - n
}

// Next advances the facing by one quarter turn.
func (d Direction) Next() Direction { return (d.normalize() + 1) % 4 }

// Prev turns the facing back by one quarter turn (+3 mod 4).
func (d Direction) Prev() Direction { return (d.normalize() + 3) % 4 }

// Rotate turns the relative offset p by d.
//
// Postcondition: Rotate of (px,py) is (px·cos − py·sin, px·sin + py·cos).
func (d Direction) Rotate(p Coord) Coord {
	s, c := d.sin(), d.cos()
	return Coord{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// ParseDirection maps a compass name or quarter-turn index to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "east", "0":
		return East, nil
	case "north", "1":
		return North, nil
	case "west", "2":
		return West, nil
	case "south", "3":
		return South, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}
