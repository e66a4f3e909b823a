// Package geom holds the 2D primitives shared by the model and collision packages.
package geom

import "math"

// Point2D is a point in world space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec2D is a velocity vector, same shape as Point2D but used for motion.
type Vec2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by v.
func (p Point2D) Add(v Vec2D) Point2D {
	return Point2D{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector from q to p.
func (p Point2D) Sub(q Point2D) Vec2D {
	return Vec2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dot returns the dot product of two vectors.
func (v Vec2D) Dot(u Vec2D) float64 {
	return v.X*u.X + v.Y*u.Y
}

// SqLen returns the squared length of v.
func (v Vec2D) SqLen() float64 {
	return v.Dot(v)
}

// Scale returns v scaled by k.
func (v Vec2D) Scale(k float64) Vec2D {
	return Vec2D{X: v.X * k, Y: v.Y * k}
}

// Len returns the length of v.
func (v Vec2D) Len() float64 {
	return math.Sqrt(v.SqLen())
}

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	Min Point2D
	Max Point2D
}

// Contains reports whether p lies within the rectangle, inclusive of bounds.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
