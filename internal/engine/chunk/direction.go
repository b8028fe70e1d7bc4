package chunk

import "github.com/go-gl/mathgl/mgl32"

// Direction is one of the six axis-aligned faces of a voxel.
// -Z is north, +Z is south, -X is west, +X is east.
type Direction uint8

const (
	Down Direction = iota
	Up
	North
	South
	West
	East
)

// Directions lists every face in a fixed order.
var Directions = [6]Direction{Down, Up, North, South, West, East}

var directionNames = [6]string{"down", "up", "north", "south", "west", "east"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

func (d Direction) Offset() [3]int {
	switch d {
	case Down:
		return [3]int{0, -1, 0}
	case Up:
		return [3]int{0, 1, 0}
	case North:
		return [3]int{0, 0, -1}
	case South:
		return [3]int{0, 0, 1}
	case West:
		return [3]int{-1, 0, 0}
	case East:
		return [3]int{1, 0, 0}
	}
	return [3]int{}
}

// Normal returns the outward unit normal of the face.
func (d Direction) Normal() mgl32.Vec3 {
	o := d.Offset()
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}
