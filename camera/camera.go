// Package camera provides the fixed perspective camera used to project scene
// vertices onto the character grid.
package camera

import "github.com/ungerik/go3d/float64/vec3"

// DefaultDistance is the distance from the eye to the z=0 plane.
const DefaultDistance = 5.0

// Camera looks down +Z from (0, 0, -Distance).
// Projected coordinates span roughly [-1, 1] on the shorter viewport axis.
type Camera struct {
	// Distance from the eye to the origin plane
	Distance float64

	// Viewport dimensions in cells
	ViewportW, ViewportH float64

	// Zoom scales projected coordinates before pixel mapping (1.0 = fit shorter side)
	Zoom float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera for a viewport of the given size.
func New(viewportW, viewportH float64) *Camera {
	return &Camera{
		Distance:  DefaultDistance,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Zoom:      1.0,
		MinZoom:   0.25,
		MaxZoom:   4.0,
	}
}

// Aspect returns the viewport width/height ratio.
func (c *Camera) Aspect() float64 {
	if c.ViewportH == 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// Factor returns the perspective scale for a point at depth z.
func (c *Camera) Factor(z float64) float64 {
	return c.Distance / (c.Distance + z)
}

// Project applies the perspective divide. X is stretched by the aspect ratio,
// Z passes through unchanged for depth sorting.
func (c *Camera) Project(v vec3.T) vec3.T {
	f := c.Factor(v[2])
	return vec3.T{v[0] * f * c.Aspect(), v[1] * f, v[2]}
}

// scale returns cells per projected unit.
func (c *Camera) scale() float64 {
	half := c.ViewportW
	if c.ViewportH < half {
		half = c.ViewportH
	}
	return half / 2 * c.Zoom
}

// ToPixel maps projected coordinates to cell space. Y grows downward.
func (c *Camera) ToPixel(p vec3.T) (x, y float64) {
	s := c.scale()
	x = c.ViewportW/2 + p[0]*s
	y = c.ViewportH/2 - p[1]*s
	return x, y
}

// FromPixel is the inverse of ToPixel.
func (c *Camera) FromPixel(x, y float64) (px, py float64) {
	s := c.scale()
	if s == 0 {
		return 0, 0
	}
	px = (x - c.ViewportW/2) / s
	py = (c.ViewportH/2 - y) / s
	return px, py
}

// IsVisible returns true if a cell-space bounding box overlaps the viewport.
func (c *Camera) IsVisible(minX, minY, maxX, maxY float64) bool {
	return maxX >= 0 && maxY >= 0 && minX < c.ViewportW && minY < c.ViewportH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset restores the default distance and zoom.
func (c *Camera) Reset() {
	c.Distance = DefaultDistance
	c.Zoom = 1.0
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
