package glyphatlas

import "math"

// Point is a 2D point or vector in float32 screen or texture space.
type Point struct {
	X, Y float32
}

// Pt creates a Point from x, y coordinates.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned rectangle spanning [Min, Max].
type Rect struct {
	Min, Max Point
}

// R creates a Rect from its corner coordinates.
func R(minX, minY, maxX, maxY float32) Rect {
	return Rect{Min: Point{minX, minY}, Max: Point{maxX, maxY}}
}

// InfiniteRect returns the rectangle covering the whole plane.
func InfiniteRect() Rect {
	inf := float32(math.Inf(1))
	return Rect{Min: Point{-inf, -inf}, Max: Point{inf, inf}}
}

// Width returns the extent of r along the x axis.
func (r Rect) Width() float32 {
	return r.Max.X - r.Min.X
}

// Height returns the extent of r along the y axis.
func (r Rect) Height() float32 {
	return r.Max.Y - r.Min.Y
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return !(r.Min.X < r.Max.X) || !(r.Min.Y < r.Max.Y)
}

// In reports whether r lies entirely inside s.
func (r Rect) In(s Rect) bool {
	return r.Min.X >= s.Min.X && r.Min.Y >= s.Min.Y &&
		r.Max.X <= s.Max.X && r.Max.Y <= s.Max.Y
}

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// White is opaque white, the default section color.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// RGBA creates a Color from its components.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}
