package state

// Vector returns the displacement from p1 to p2.
func Vector(p1, p2 Point) Point {
	return Point{X: p2.X - p1.X, Y: p2.Y - p1.Y}
}

// SquaredNorm returns the squared length of v.
func SquaredNorm(v Point) float64 {
	return v.X*v.X + v.Y*v.Y
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}
