package engine

import "math"

// Path is the fixed ordered route enemies follow from entry to exit
type Path []Coordinate

// LastIndex returns the index of the exit node
func (p Path) LastIndex() int {
	return len(p) - 1
}

// Contains reports whether the integer cell (x, y) is a path node
func (p Path) Contains(x, y int) bool {
	for _, c := range p {
		if c.X == float64(x) && c.Y == float64(y) {
			return true
		}
	}
	return false
}

// Next returns the node an enemy at pathIndex is walking toward
func (p Path) Next(pathIndex int) (Coordinate, bool) {
	if pathIndex < 0 || pathIndex+1 >= len(p) {
		return Coordinate{}, false
	}
	return p[pathIndex+1], true
}

// Length returns the total walking distance from entry to exit
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// Progress returns how far along the path a position is, as a 0..1 fraction
func (p Path) Progress(pathIndex int, pos Coordinate) float64 {
	total := p.Length()
	if total == 0 || pathIndex < 0 {
		return 0
	}
	if pathIndex >= p.LastIndex() {
		return 1
	}

	walked := 0.0
	for i := 1; i <= pathIndex; i++ {
		walked += Distance(p[i-1], p[i])
	}
	walked += Distance(p[pathIndex], pos)

	return math.Min(walked/total, 1)
}

// NearestNode returns the index of the path node closest to pos
func (p Path) NearestNode(pos Coordinate) int {
	nearest := -1
	best := math.MaxFloat64
	for i, c := range p {
		if d := Distance(c, pos); d < best {
			best = d
			nearest = i
		}
	}
	return nearest
}

// Distance is the Euclidean distance between two grid points
func Distance(a, b Coordinate) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// CellCoordinate converts an integer grid cell to a Coordinate
func CellCoordinate(x, y int) Coordinate {
	return Coordinate{X: float64(x), Y: float64(y)}
}
